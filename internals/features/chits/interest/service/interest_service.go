package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	"chitfund_backend/internals/features/chits/interest/model"
	paymentModel "chitfund_backend/internals/features/chits/payments/model"
	"chitfund_backend/internals/helpers/apperr"
	"chitfund_backend/internals/metrics"
)

type Service struct {
	RatePercent int
	Now         func() time.Time
}

func New(ratePercent int) *Service {
	return &Service{RatePercent: ratePercent, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

type InterestFilter struct {
	Month        *int
	Year         *int
	MemberID     *uint
	EnrollmentID *uint
	Paid         *bool
}

type UpdateInput struct {
	Paid   *bool
	PaidAt *time.Time
}

// periodRow is one enrollment's paid contributions within a month.
type periodRow struct {
	EnrollmentID uint
	MemberID     uint
	ChitNo       int
	WeeksPaid    int
	TotalAmount  int64
}

type weekRow struct {
	EnrollmentID uint
	Week         int64
}

// Payments count towards the member's first enrollment in that chit, the same
// enrollment the payment engine reconciles.
const periodJoin = `
FROM payment_records p
JOIN chit_enrollments e
  ON e.enrollment_id = (
    SELECT MIN(e2.enrollment_id) FROM chit_enrollments e2
    WHERE e2.enrollment_member_id = p.payment_member_id
      AND e2.enrollment_chit_no = p.payment_chit_no)
JOIN week_statuses w
  ON w.week_status_enrollment_id = e.enrollment_id
 AND w.week_status_week = p.payment_week_no
 AND w.week_status_is_paid = ?
WHERE p.payment_status = ?
  AND p.payment_created_at >= ?
  AND p.payment_created_at < ?`

/* =========================================================
   Calculate
========================================================= */

// Calculate recomputes interest for every enrollment with paid contributions
// in month/year. Reruns replace the period's figures; paid flags survive.
func (s *Service) Calculate(ctx context.Context, db *gorm.DB, month, year int) ([]model.InterestRecordModel, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Invalid("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, apperr.Invalid("year must be between 2000 and 2100")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	now := s.now()
	args := []any{enrollmentModel.WeekPaid, paymentModel.PaymentStatusCompleted, start, end}

	out := make([]model.InterestRecordModel, 0)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var agg []periodRow
		if err := tx.Raw(`
SELECT e.enrollment_id AS enrollment_id,
       e.enrollment_member_id AS member_id,
       e.enrollment_chit_no AS chit_no,
       COUNT(DISTINCT p.payment_week_no) AS weeks_paid,
       SUM(p.payment_amount) AS total_amount`+periodJoin+`
GROUP BY e.enrollment_id, e.enrollment_member_id, e.enrollment_chit_no
ORDER BY e.enrollment_id`, args...).Scan(&agg).Error; err != nil {
			return apperr.Internal("error aggregating payments", err)
		}

		var weeks []weekRow
		if err := tx.Raw(`
SELECT DISTINCT e.enrollment_id AS enrollment_id, p.payment_week_no AS week`+periodJoin+`
ORDER BY e.enrollment_id, p.payment_week_no`, args...).Scan(&weeks).Error; err != nil {
			return apperr.Internal("error listing paid weeks", err)
		}
		byEnrollment := make(map[uint]model.WeekList, len(agg))
		for _, w := range weeks {
			byEnrollment[w.EnrollmentID] = append(byEnrollment[w.EnrollmentID], w.Week)
		}

		produced := make([]uint, 0, len(agg))
		if len(agg) > 0 {
			rows := make([]model.InterestRecordModel, 0, len(agg))
			for _, a := range agg {
				rows = append(rows, model.InterestRecordModel{
					InterestMemberID:     a.MemberID,
					InterestEnrollmentID: a.EnrollmentID,
					InterestChitNo:       a.ChitNo,
					InterestMonth:        month,
					InterestYear:         year,
					InterestWeeksPaid:    a.WeeksPaid,
					InterestPaidWeeks:    byEnrollment[a.EnrollmentID].Sorted(),
					InterestTotalAmount:  a.TotalAmount,
					InterestRate:         s.RatePercent,
					InterestAmount:       InterestAmount(a.TotalAmount, s.RatePercent),
					InterestCalculatedAt: now,
				})
				produced = append(produced, a.EnrollmentID)
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "interest_member_id"},
					{Name: "interest_enrollment_id"},
					{Name: "interest_month"},
					{Name: "interest_year"},
				},
				DoUpdates: clause.AssignmentColumns([]string{
					"interest_chit_no",
					"interest_weeks_paid",
					"interest_paid_weeks",
					"interest_total_amount",
					"interest_rate",
					"interest_amount",
					"interest_calculated_at",
				}),
			}).Create(&rows).Error; err != nil {
				return apperr.Internal("error saving interest records", err)
			}
		}

		// unpaid figures the aggregate no longer produces are stale
		stale := tx.Where("interest_month = ? AND interest_year = ? AND interest_is_paid = ?", month, year, false)
		if len(produced) > 0 {
			stale = stale.Where("interest_enrollment_id NOT IN ?", produced)
		}
		if err := stale.Delete(&model.InterestRecordModel{}).Error; err != nil {
			return apperr.Internal("error removing stale interest records", err)
		}

		if err := tx.Where("interest_month = ? AND interest_year = ?", month, year).
			Order("interest_member_id ASC").Order("interest_enrollment_id ASC").
			Find(&out).Error; err != nil {
			return apperr.Internal("error loading interest records", err)
		}
		return nil
	})
	if err != nil {
		metrics.InterestRuns.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "interest calculation failed", "month", month, "year", year, "err", err)
		return nil, err
	}
	metrics.InterestRuns.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "interest calculated", "month", month, "year", year, "records", len(out))
	return out, nil
}

// InterestAmount is total × rate% rounded to paise.
func InterestAmount(total int64, ratePercent int) decimal.Decimal {
	return decimal.NewFromInt(total).
		Mul(decimal.NewFromInt(int64(ratePercent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

/* =========================================================
   Paid lifecycle
========================================================= */

// MarkPaid flags the record paid. A paid record is returned untouched.
func (s *Service) MarkPaid(ctx context.Context, db *gorm.DB, id uint) (*model.InterestRecordModel, error) {
	var rec model.InterestRecordModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadInterest(tx, id, &rec); err != nil {
			return err
		}
		if rec.InterestIsPaid {
			return nil
		}
		now := s.now()
		if err := tx.Model(&rec).Updates(map[string]any{
			"interest_is_paid": true,
			"interest_paid_at": now,
		}).Error; err != nil {
			return apperr.Internal("error marking interest paid", err)
		}
		rec.InterestIsPaid = true
		rec.InterestPaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update sets the paid flag and/or paid_at. Paying stamps paid_at when unset,
// unpaying clears it, and an explicit paid_at always wins.
func (s *Service) Update(ctx context.Context, db *gorm.DB, id uint, in UpdateInput) (*model.InterestRecordModel, error) {
	if in.Paid == nil && in.PaidAt == nil {
		return nil, apperr.Invalid("nothing to update: send is_paid and/or paid_at")
	}

	var rec model.InterestRecordModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadInterest(tx, id, &rec); err != nil {
			return err
		}

		paid := rec.InterestIsPaid
		paidAt := rec.InterestPaidAt
		if in.Paid != nil {
			paid = *in.Paid
			if paid && paidAt == nil {
				now := s.now()
				paidAt = &now
			}
			if !paid {
				paidAt = nil
			}
		}
		if in.PaidAt != nil {
			t := in.PaidAt.UTC()
			paidAt = &t
		}

		if err := tx.Model(&rec).Updates(map[string]any{
			"interest_is_paid": paid,
			"interest_paid_at": paidAt,
		}).Error; err != nil {
			return apperr.Internal("error updating interest record", err)
		}
		rec.InterestIsPaid = paid
		rec.InterestPaidAt = paidAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

/* =========================================================
   Reads
========================================================= */

func (s *Service) Get(ctx context.Context, db *gorm.DB, id uint) (*model.InterestRecordModel, error) {
	var rec model.InterestRecordModel
	if err := loadInterest(db.WithContext(ctx), id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) List(ctx context.Context, db *gorm.DB, f InterestFilter) ([]model.InterestRecordModel, error) {
	q := db.WithContext(ctx).Model(&model.InterestRecordModel{})
	if f.Month != nil {
		q = q.Where("interest_month = ?", *f.Month)
	}
	if f.Year != nil {
		q = q.Where("interest_year = ?", *f.Year)
	}
	if f.MemberID != nil {
		q = q.Where("interest_member_id = ?", *f.MemberID)
	}
	if f.EnrollmentID != nil {
		q = q.Where("interest_enrollment_id = ?", *f.EnrollmentID)
	}
	if f.Paid != nil {
		q = q.Where("interest_is_paid = ?", *f.Paid)
	}

	rows := make([]model.InterestRecordModel, 0)
	if err := q.Order("interest_year DESC").Order("interest_month DESC").
		Order("interest_member_id ASC").Order("interest_enrollment_id ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("error listing interest records", err)
	}
	return rows, nil
}

func loadInterest(tx *gorm.DB, id uint, rec *model.InterestRecordModel) error {
	if err := tx.First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("interest record %d not found", id)
		}
		return apperr.Internal("error loading interest record", err)
	}
	return nil
}
