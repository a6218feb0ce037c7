package details

import (
	"chitfund_backend/internals/configs"
	database "chitfund_backend/internals/databases"
	enrollmentService "chitfund_backend/internals/features/chits/enrollments/service"
	interestService "chitfund_backend/internals/features/chits/interest/service"
	paymentService "chitfund_backend/internals/features/chits/payments/service"
	memberService "chitfund_backend/internals/features/users/members/service"
)

// Services is built once at startup and shared by every route group.
type Services struct {
	Members     *memberService.Service
	Enrollments *enrollmentService.Service
	Payments    *paymentService.Engine
	Interest    *interestService.Service
}

func NewServices(caps *database.Capabilities, cfg *configs.Config) Services {
	enrollments := enrollmentService.New(caps)
	return Services{
		Members:     memberService.New(caps, enrollments),
		Enrollments: enrollments,
		Payments:    paymentService.NewEngine(caps, enrollments),
		Interest:    interestService.New(cfg.Interest.RatePercent),
	}
}
