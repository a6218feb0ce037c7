package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chitfund_backend/internals/features/chits/enrollments/dto"
	"chitfund_backend/internals/features/chits/enrollments/model"
	"chitfund_backend/internals/features/chits/enrollments/service"
	helper "chitfund_backend/internals/helpers"
)

type EnrollmentController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Service   *service.Service
}

func NewEnrollmentController(db *gorm.DB, svc *service.Service) *EnrollmentController {
	return &EnrollmentController{DB: db, Validator: helper.NewValidator(), Service: svc}
}

/* ==== Enroll ==== */

// POST /payments/chit_users
func (ctl *EnrollmentController) Enroll(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	e, err := ctl.Service.Enroll(c.UserContext(), ctl.DB, req.ToInput(), helper.CallerMemberID(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Member enrolled", dto.FromModel(*e))
}

/* ==== Reads ==== */

// GET /payments/chits
func (ctl *EnrollmentController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	rows, total, err := ctl.Service.ListAll(c.UserContext(), ctl.DB, p)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "Enrollments", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /payments/chits/user/:member_id
func (ctl *EnrollmentController) ListByMember(c *fiber.Ctx) error {
	memberID, err := helper.ParamUint(c, "member_id")
	if err != nil {
		return err
	}
	rows, err := ctl.Service.ListByMember(c.UserContext(), ctl.DB, memberID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Enrollments", dto.FromModels(rows))
}

/* ==== Pledged amount ==== */

// PATCH /payments/chits/user/:member_id/chit/:chit_no
func (ctl *EnrollmentController) UpdateAmount(c *fiber.Ctx) error {
	memberID, err := helper.ParamUint(c, "member_id")
	if err != nil {
		return err
	}
	chitNo, err := strconv.Atoi(c.Params("chit_no"))
	if err != nil || chitNo < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "chit_no must be a positive integer")
	}

	var req dto.UpdateAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	e, err := ctl.Service.UpdatePledgedAmount(c.UserContext(), ctl.DB, memberID, chitNo, req.Amount, helper.CallerMemberID(c))
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "Pledged amount updated", dto.FromModel(*e))
}

/* ==== Week ledger ==== */

// POST /payments/chit_users/:chit_id/pay_details
func (ctl *EnrollmentController) InitializeLedger(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "chit_id")
	if err != nil {
		return err
	}
	rows, err := ctl.Service.InitializeLedger(c.UserContext(), ctl.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Week ledger initialized", dto.FromWeekStatuses(rows))
}

// GET /payments/chit_users/:chit_id/pay_details
func (ctl *EnrollmentController) ListWeeks(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "chit_id")
	if err != nil {
		return err
	}
	rows, err := ctl.Service.ListWeekStatuses(c.UserContext(), ctl.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Week ledger", dto.FromWeekStatuses(rows))
}

// PATCH /payments/chit_users/:chit_id/pay_details/:week?is_paid=Y
func (ctl *EnrollmentController) SetWeek(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "chit_id")
	if err != nil {
		return err
	}
	week, err := strconv.Atoi(c.Params("week"))
	if err != nil || !model.ValidWeek(week) {
		return fiber.NewError(fiber.StatusBadRequest, "week must be between 1 and 54")
	}
	flag, ok := model.ParsePaidFlag(c.Query("is_paid"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "is_paid must be Y or N")
	}

	row, err := ctl.Service.SetWeekStatus(c.UserContext(), ctl.DB, id, week, flag)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "Week status updated", dto.FromWeekStatus(*row))
}
