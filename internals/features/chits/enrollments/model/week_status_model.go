package model

import "strings"

// LedgerWeeks is the number of weekly installments in one chit year.
const LedgerWeeks = 54

type PaidFlag string

const (
	WeekPaid   PaidFlag = "Y"
	WeekUnpaid PaidFlag = "N"
)

// ParsePaidFlag accepts exactly the two ledger tokens (case-insensitive).
func ParsePaidFlag(s string) (PaidFlag, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(WeekPaid):
		return WeekPaid, true
	case string(WeekUnpaid):
		return WeekUnpaid, true
	}
	return "", false
}

func ValidWeek(week int) bool { return week >= 1 && week <= LedgerWeeks }

// WeekStatusModel is one row of the 54-week paid/unpaid ledger of an enrollment.
type WeekStatusModel struct {
	WeekStatusID           uint     `gorm:"column:week_status_id;primaryKey;autoIncrement" json:"pay_id"`
	WeekStatusEnrollmentID uint     `gorm:"column:week_status_enrollment_id;not null;uniqueIndex:uq_week_status_enrollment_week,priority:1" json:"chit_id"`
	WeekStatusWeek         int      `gorm:"column:week_status_week;not null;uniqueIndex:uq_week_status_enrollment_week,priority:2;check:week_status_week BETWEEN 1 AND 54" json:"week"`
	WeekStatusIsPaid       PaidFlag `gorm:"column:week_status_is_paid;type:varchar(1);not null;default:N" json:"is_paid"`

	Enrollment *EnrollmentModel `gorm:"foreignKey:WeekStatusEnrollmentID;references:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WeekStatusModel) TableName() string { return "week_statuses" }

func (w *WeekStatusModel) IsPaid() bool { return w.WeekStatusIsPaid == WeekPaid }
