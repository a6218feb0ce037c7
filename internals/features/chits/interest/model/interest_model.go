package model

import (
	"database/sql/driver"
	"sort"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// WeekList is the set of ledger weeks that contributed to an interest record.
// Stored as int[] on postgres and as its text literal ("{1,2,3}") elsewhere.
type WeekList []int64

func (w WeekList) Value() (driver.Value, error) {
	return pq.Int64Array(w).Value()
}

func (w *WeekList) Scan(src any) error {
	var arr pq.Int64Array
	if err := arr.Scan(src); err != nil {
		return err
	}
	*w = WeekList(arr)
	return nil
}

func (WeekList) GormDataType() string { return "text" }

func (WeekList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "integer[]"
	}
	return "text"
}

// Sorted returns a copy in ascending order.
func (w WeekList) Sorted() WeekList {
	out := append(WeekList(nil), w...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InterestRecordModel is the monthly interest due on one enrollment (table interest_records).
type InterestRecordModel struct {
	InterestID           uint `gorm:"column:interest_id;primaryKey;autoIncrement" json:"interest_id"`
	InterestMemberID     uint `gorm:"column:interest_member_id;not null;uniqueIndex:uq_interest_period,priority:1" json:"user_id"`
	InterestEnrollmentID uint `gorm:"column:interest_enrollment_id;not null;uniqueIndex:uq_interest_period,priority:2" json:"chit_id"`
	InterestChitNo       int  `gorm:"column:interest_chit_no;not null" json:"chit_no"`
	InterestMonth        int  `gorm:"column:interest_month;not null;uniqueIndex:uq_interest_period,priority:3;check:interest_month BETWEEN 1 AND 12" json:"month"`
	InterestYear         int  `gorm:"column:interest_year;not null;uniqueIndex:uq_interest_period,priority:4" json:"year"`

	InterestWeeksPaid   int             `gorm:"column:interest_weeks_paid;not null;default:0" json:"weeks_paid"`
	InterestPaidWeeks   WeekList        `gorm:"column:interest_paid_weeks" json:"paid_weeks"`
	InterestTotalAmount int64           `gorm:"column:interest_total_amount;not null;default:0" json:"total_amount"`
	InterestRate        int             `gorm:"column:interest_rate;not null;default:1" json:"interest_rate"`
	InterestAmount      decimal.Decimal `gorm:"column:interest_amount;type:numeric(12,2);not null" json:"interest_amount"`

	InterestCalculatedAt time.Time  `gorm:"column:interest_calculated_at;not null" json:"calculated_at"`
	InterestIsPaid       bool       `gorm:"column:interest_is_paid;not null;default:false;index" json:"is_paid"`
	InterestPaidAt       *time.Time `gorm:"column:interest_paid_at" json:"paid_at"`
}

func (InterestRecordModel) TableName() string { return "interest_records" }
