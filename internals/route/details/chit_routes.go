package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	enrollmentRoute "chitfund_backend/internals/features/chits/enrollments/route"
	historyRoute "chitfund_backend/internals/features/chits/history/route"
	interestRoute "chitfund_backend/internals/features/chits/interest/route"
	paymentRoute "chitfund_backend/internals/features/chits/payments/route"
)

func ChitRoutes(api fiber.Router, db *gorm.DB, s Services) {
	// enrollments first so /payments/chits is not captured by /payments/:id
	payments := api.Group("/payments")
	enrollmentRoute.EnrollmentRoutes(payments, db, s.Enrollments)
	paymentRoute.PaymentRoutes(payments, db, s.Payments)

	interestRoute.InterestRoutes(api.Group("/interest"), db, s.Interest)
	historyRoute.HistoryRoutes(api.Group("/transaction-history"), db)
}
