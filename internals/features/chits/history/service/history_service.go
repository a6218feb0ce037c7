package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	paymentModel "chitfund_backend/internals/features/chits/payments/model"
	helper "chitfund_backend/internals/helpers"
	"chitfund_backend/internals/helpers/apperr"
)

type HistoryFilter struct {
	MemberID *uint
	ChitNo   *int
	Paging   helper.Paging
}

// HistoryRow is one ledger week of an enrollment with the payment made for it, if any.
type HistoryRow struct {
	Enrollment enrollmentModel.EnrollmentModel
	Week       int
	IsPaid     enrollmentModel.PaidFlag
	Payment    *paymentModel.PaymentRecordModel
}

// flat scan target; payment columns are NULL for unpaid weeks
type historyScan struct {
	EnrollmentID     uint       `gorm:"column:enrollment_id"`
	MemberID         uint       `gorm:"column:member_id"`
	ChitNo           int        `gorm:"column:chit_no"`
	PledgedAmount    *int64     `gorm:"column:pledged_amount"`
	Week             int        `gorm:"column:week"`
	IsPaid           string     `gorm:"column:is_paid"`
	PaymentID        *uint      `gorm:"column:payment_id"`
	PaymentAmount    *int64     `gorm:"column:payment_amount"`
	PaymentType      *string    `gorm:"column:payment_type"`
	CardNetwork      *string    `gorm:"column:card_network"`
	CardName         *string    `gorm:"column:card_name"`
	CardExpiry       *string    `gorm:"column:card_expiry"`
	UPIRef           *string    `gorm:"column:upi_ref"`
	TransactionID    *string    `gorm:"column:transaction_id"`
	PaymentStatus    *string    `gorm:"column:payment_status"`
	Remarks          *string    `gorm:"column:remarks"`
	PaymentCreatedAt *time.Time `gorm:"column:payment_created_at"`
}

const historySelect = `
e.enrollment_id AS enrollment_id,
e.enrollment_member_id AS member_id,
e.enrollment_chit_no AS chit_no,
e.enrollment_amount AS pledged_amount,
w.week_status_week AS week,
w.week_status_is_paid AS is_paid,
p.payment_id AS payment_id,
p.payment_amount AS payment_amount,
p.payment_type AS payment_type,
p.payment_card_network AS card_network,
p.payment_card_name AS card_name,
p.payment_card_expiry AS card_expiry,
p.payment_upi_ref AS upi_ref,
p.payment_transaction_id AS transaction_id,
p.payment_status AS payment_status,
p.payment_remarks AS remarks,
p.payment_created_at AS payment_created_at`

func historyQuery(db *gorm.DB, f HistoryFilter) *gorm.DB {
	q := db.Table("chit_enrollments AS e").
		Joins("JOIN week_statuses w ON w.week_status_enrollment_id = e.enrollment_id").
		Joins(`LEFT JOIN payment_records p
  ON p.payment_member_id = e.enrollment_member_id
 AND p.payment_chit_no = e.enrollment_chit_no
 AND p.payment_week_no = w.week_status_week`)
	if f.MemberID != nil {
		q = q.Where("e.enrollment_member_id = ?", *f.MemberID)
	}
	if f.ChitNo != nil {
		q = q.Where("e.enrollment_chit_no = ?", *f.ChitNo)
	}
	return q
}

// History joins every enrollment week with its payments, ordered by member,
// chit, week and payment id. Weeks without a payment carry a nil Payment.
func History(ctx context.Context, db *gorm.DB, f HistoryFilter) ([]HistoryRow, int64, error) {
	base := db.WithContext(ctx)

	var total int64
	if err := historyQuery(base, f).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("error counting transaction history", err)
	}

	var scanned []historyScan
	if err := historyQuery(base, f).
		Select(historySelect).
		Order("e.enrollment_member_id ASC").
		Order("e.enrollment_chit_no ASC").
		Order("w.week_status_week ASC").
		Order("p.payment_id ASC").
		Offset(f.Paging.Offset()).Limit(f.Paging.Limit()).
		Scan(&scanned).Error; err != nil {
		return nil, 0, apperr.Internal("error loading transaction history", err)
	}

	rows := make([]HistoryRow, 0, len(scanned))
	for _, s := range scanned {
		row := HistoryRow{
			Enrollment: enrollmentModel.EnrollmentModel{
				EnrollmentID:       s.EnrollmentID,
				EnrollmentMemberID: s.MemberID,
				EnrollmentChitNo:   s.ChitNo,
				EnrollmentAmount:   s.PledgedAmount,
			},
			Week:   s.Week,
			IsPaid: enrollmentModel.PaidFlag(s.IsPaid),
		}
		if s.PaymentID != nil {
			p := &paymentModel.PaymentRecordModel{
				PaymentID:          *s.PaymentID,
				PaymentMemberID:    s.MemberID,
				PaymentChitNo:      s.ChitNo,
				PaymentWeekNo:      s.Week,
				PaymentCardNetwork: s.CardNetwork,
				PaymentCardName:    s.CardName,
				PaymentCardExpiry:  s.CardExpiry,
				PaymentUPIRef:      s.UPIRef,
				PaymentRemarks:     s.Remarks,
			}
			if s.PaymentAmount != nil {
				p.PaymentAmount = *s.PaymentAmount
			}
			if s.PaymentType != nil {
				p.PaymentType = paymentModel.PaymentType(*s.PaymentType)
			}
			if s.TransactionID != nil {
				p.PaymentTransactionID = *s.TransactionID
			}
			if s.PaymentStatus != nil {
				p.PaymentStatus = paymentModel.PaymentStatus(*s.PaymentStatus)
			}
			if s.PaymentCreatedAt != nil {
				p.PaymentCreatedAt = *s.PaymentCreatedAt
			}
			row.Payment = p
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

/* =========================================================
   XLSX export
========================================================= */

const exportSheet = "History"

var exportHeaders = []string{
	"Member ID", "Chit ID", "Chit No", "Pledged Amount", "Week", "Paid",
	"Payment ID", "Amount", "Pay Type", "Transaction ID", "Status", "Paid On",
}

// ExportXLSX renders history rows as a single-sheet workbook.
func ExportXLSX(rows []HistoryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		values := []any{
			r.Enrollment.EnrollmentMemberID,
			r.Enrollment.EnrollmentID,
			r.Enrollment.EnrollmentChitNo,
			optionalInt(r.Enrollment.EnrollmentAmount),
			r.Week,
			string(r.IsPaid),
			"", "", "", "", "", "",
		}
		if p := r.Payment; p != nil {
			values[6] = p.PaymentID
			values[7] = p.PaymentAmount
			values[8] = string(p.PaymentType)
			values[9] = p.PaymentTransactionID
			values[10] = string(p.PaymentStatus)
			values[11] = p.PaymentCreatedAt.Format("2006-01-02 15:04")
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "F", 12)
	_ = f.SetColWidth(exportSheet, "G", "L", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func optionalInt(v *int64) any {
	if v == nil {
		return ""
	}
	return *v
}
