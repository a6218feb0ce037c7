package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	historyController "chitfund_backend/internals/features/chits/history/controller"
)

func HistoryRoutes(r fiber.Router, db *gorm.DB) {
	ctl := historyController.NewHistoryController(db)

	r.Get("/", ctl.List)
	r.Get("/export", ctl.Export)
}
