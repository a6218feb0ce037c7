package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	interestController "chitfund_backend/internals/features/chits/interest/controller"
	"chitfund_backend/internals/features/chits/interest/service"
	"chitfund_backend/internals/middlewares"
)

func InterestRoutes(r fiber.Router, db *gorm.DB, svc *service.Service) {
	ctl := interestController.NewInterestController(db, svc)

	r.Post("/calculate", middlewares.SettlementRateLimiter(), ctl.Calculate)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.Get)
	r.Patch("/:id", ctl.Update)
	r.Post("/:id/mark-paid", ctl.MarkPaid)
}
