package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	enrollmentController "chitfund_backend/internals/features/chits/enrollments/controller"
	"chitfund_backend/internals/features/chits/enrollments/service"
)

// EnrollmentRoutes mounts under /payments, next to the payment endpoints.
func EnrollmentRoutes(r fiber.Router, db *gorm.DB, svc *service.Service) {
	ctl := enrollmentController.NewEnrollmentController(db, svc)

	chits := r.Group("/chits")
	{
		chits.Get("/", ctl.List)
		chits.Get("/user/:member_id", ctl.ListByMember)
		chits.Patch("/user/:member_id/chit/:chit_no", ctl.UpdateAmount)
	}

	users := r.Group("/chit_users")
	{
		users.Post("/", ctl.Enroll)
		users.Post("/:chit_id/pay_details", ctl.InitializeLedger)
		users.Get("/:chit_id/pay_details", ctl.ListWeeks)
		users.Patch("/:chit_id/pay_details/:week", ctl.SetWeek)
	}
}
