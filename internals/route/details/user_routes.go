package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	memberRoute "chitfund_backend/internals/features/users/members/route"
)

func UserRoutes(api fiber.Router, db *gorm.DB, s Services) {
	memberRoute.MemberRoutes(api.Group("/members"), db, s.Members)
}
