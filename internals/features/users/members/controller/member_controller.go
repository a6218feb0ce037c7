package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chitfund_backend/internals/features/users/members/dto"
	"chitfund_backend/internals/features/users/members/service"
	helper "chitfund_backend/internals/helpers"
)

type MemberController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Service   *service.Service
}

func NewMemberController(db *gorm.DB, svc *service.Service) *MemberController {
	return &MemberController{DB: db, Validator: helper.NewValidator(), Service: svc}
}

// POST /members
func (ctl *MemberController) Register(c *fiber.Ctx) error {
	var req dto.RegisterMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	res, err := ctl.Service.Register(c.UserContext(), ctl.DB, req.ToInput(), helper.CallerMemberID(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Member registered", dto.FromRegisterResult(res))
}

// GET /members?q=&page=&per_page=
func (ctl *MemberController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	rows, total, err := ctl.Service.List(c.UserContext(), ctl.DB, strings.TrimSpace(c.Query("q")), p)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "Members", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /members/:id
func (ctl *MemberController) Get(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	m, err := ctl.Service.Get(c.UserContext(), ctl.DB, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Member", dto.FromModel(*m))
}

// PUT /members/:id
func (ctl *MemberController) Update(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err))
	}

	m, err := ctl.Service.Update(c.UserContext(), ctl.DB, id, req.ToInput(), helper.CallerMemberID(c))
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "Member updated", dto.FromModel(*m))
}

// DELETE /members/:id removes the member with their enrollments and week ledgers.
func (ctl *MemberController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParamUint(c, "id")
	if err != nil {
		return err
	}
	if err := ctl.Service.Delete(c.UserContext(), ctl.DB, id); err != nil {
		return err
	}
	return helper.JsonDeleted(c, "Member deleted", fiber.Map{"member_id": id})
}
