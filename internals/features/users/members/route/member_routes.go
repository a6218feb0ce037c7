package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	memberController "chitfund_backend/internals/features/users/members/controller"
	"chitfund_backend/internals/features/users/members/service"
	"chitfund_backend/internals/middlewares"
)

func MemberRoutes(r fiber.Router, db *gorm.DB, svc *service.Service) {
	ctl := memberController.NewMemberController(db, svc)

	r.Post("/", middlewares.RegisterRateLimiter(), ctl.Register)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.Get)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}
