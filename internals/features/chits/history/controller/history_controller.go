package controller

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"chitfund_backend/internals/features/chits/history/dto"
	"chitfund_backend/internals/features/chits/history/service"
	helper "chitfund_backend/internals/helpers"
	"chitfund_backend/internals/helpers/apperr"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HistoryController struct {
	DB *gorm.DB
}

func NewHistoryController(db *gorm.DB) *HistoryController {
	return &HistoryController{DB: db}
}

func filterFromQuery(c *fiber.Ctx) (service.HistoryFilter, error) {
	var (
		f   service.HistoryFilter
		err error
	)
	if f.MemberID, err = helper.QueryUintPtr(c, "member_id"); err != nil {
		return f, err
	}
	if f.ChitNo, err = helper.QueryIntPtr(c, "chit_no"); err != nil {
		return f, err
	}
	return f, nil
}

// GET /transaction-history?member_id=&chit_no=&page=&per_page=
func (ctl *HistoryController) List(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	f.Paging = helper.ResolvePaging(c, 54, 540)

	rows, total, err := service.History(c.UserContext(), ctl.DB, f)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "Transaction history", dto.FromRows(rows), helper.BuildPagination(total, f.Paging, len(rows)))
}

// GET /transaction-history/export?member_id=&chit_no=
// Unpaged; the whole filtered history goes into the workbook.
func (ctl *HistoryController) Export(c *fiber.Ctx) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	rows, _, err := service.History(c.UserContext(), ctl.DB, f)
	if err != nil {
		return err
	}
	body, err := service.ExportXLSX(rows)
	if err != nil {
		return apperr.Internal("error exporting transaction history", err)
	}

	name := fmt.Sprintf("transaction-history-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(body)
}
