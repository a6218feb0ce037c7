package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chitfund_backend/internals/features/chits/interest/dto"
	"chitfund_backend/internals/features/chits/interest/service"
	helper "chitfund_backend/internals/helpers"
)

type InterestController struct {
	DB      *gorm.DB
	Service *service.Service
}

func NewInterestController(db *gorm.DB, svc *service.Service) *InterestController {
	return &InterestController{DB: db, Service: svc}
}

// POST /interest/calculate?month=&year=
func (ctl *InterestController) Calculate(c *fiber.Ctx) error {
	month, err := helper.QueryIntPtr(c, "month")
	if err != nil {
		return err
	}
	year, err := helper.QueryIntPtr(c, "year")
	if err != nil {
		return err
	}
	if month == nil || year == nil {
		return fiber.NewError(fiber.StatusBadRequest, "month and year are required")
	}

	rows, err := ctl.Service.Calculate(c.UserContext(), ctl.DB, *month, *year)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Interest calculated", dto.FromModels(rows))
}

// GET /interest?month=&year=&member_id=&chit_id=&is_paid=
func (ctl *InterestController) List(c *fiber.Ctx) error {
	var (
		f   service.InterestFilter
		err error
	)
	if f.Month, err = helper.QueryIntPtr(c, "month"); err != nil {
		return err
	}
	if f.Year, err = helper.QueryIntPtr(c, "year"); err != nil {
		return err
	}
	if f.MemberID, err = helper.QueryUintPtr(c, "member_id"); err != nil {
		return err
	}
	if f.EnrollmentID, err = helper.QueryUintPtr(c, "chit_id"); err != nil {
		return err
	}
	switch c.Query("is_paid") {
	case "":
	case "true", "1", "Y", "y":
		paid := true
		f.Paid = &paid
	case "false", "0", "N", "n":
		paid := false
		f.Paid = &paid
	default:
		return fiber.NewError(fiber.StatusBadRequest, "is_paid must be true or false")
	}

	rows, err := ctl.Service.List(c.UserContext(), ctl.DB, f)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Interest records", dto.FromModels(rows))
}

// GET /interest/:id
func (ctl *InterestController) Get(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	rec, err := ctl.Service.Get(c.UserContext(), ctl.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Interest record", dto.FromModel(*rec))
}

// PATCH /interest/:id
func (ctl *InterestController) Update(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateInterestRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	rec, err := ctl.Service.Update(c.UserContext(), ctl.DB, id, req.ToInput())
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "Interest record updated", dto.FromModel(*rec))
}

// POST /interest/:id/mark-paid
func (ctl *InterestController) MarkPaid(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	rec, err := ctl.Service.MarkPaid(c.UserContext(), ctl.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Interest marked as paid", dto.FromModel(*rec))
}
