package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	paymentController "chitfund_backend/internals/features/chits/payments/controller"
	"chitfund_backend/internals/features/chits/payments/service"
)

// PaymentRoutes must be mounted after the enrollment routes sharing /payments.
func PaymentRoutes(r fiber.Router, db *gorm.DB, engine *service.Engine) {
	ctl := paymentController.NewPaymentController(db, engine)

	r.Post("/", ctl.Create)
	r.Post("/batch", ctl.CreateBatch)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.Get)
}
