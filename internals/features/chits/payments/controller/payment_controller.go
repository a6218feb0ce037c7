package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chitfund_backend/internals/features/chits/payments/dto"
	"chitfund_backend/internals/features/chits/payments/service"
	helper "chitfund_backend/internals/helpers"
)

type PaymentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Engine    *service.Engine
}

func NewPaymentController(db *gorm.DB, engine *service.Engine) *PaymentController {
	return &PaymentController{DB: db, Validator: helper.NewValidator(), Engine: engine}
}

// POST /payments
func (ctl *PaymentController) Create(c *fiber.Ctx) error {
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	rec, err := ctl.Engine.RecordPayment(c.UserContext(), ctl.DB, req.ToInput(), helper.CallerMemberID(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Payment recorded", dto.FromModel(*rec))
}

// POST /payments/batch
func (ctl *PaymentController) CreateBatch(c *fiber.Ctx) error {
	var req dto.CreateBatchPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	recs, err := ctl.Engine.RecordBatch(c.UserContext(), ctl.DB, req.ToInput(), helper.CallerMemberID(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Payments recorded", dto.FromModels(recs))
}

// GET /payments?member_id=&chit_no=&transaction_id=
func (ctl *PaymentController) List(c *fiber.Ctx) error {
	memberID, err := helper.QueryUintPtr(c, "member_id")
	if err != nil {
		return err
	}
	chitNo, err := helper.QueryIntPtr(c, "chit_no")
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)

	rows, total, err := ctl.Engine.ListPayments(c.UserContext(), ctl.DB, service.PaymentFilter{
		MemberID:      memberID,
		ChitNo:        chitNo,
		TransactionID: strings.TrimSpace(c.Query("transaction_id")),
		Paging:        p,
	})
	if err != nil {
		return err
	}
	return helper.JsonList(c, "Payments", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /payments/:id
func (ctl *PaymentController) Get(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	rec, err := ctl.Engine.GetPayment(c.UserContext(), ctl.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Payment", dto.FromModel(*rec))
}
