package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chitfund_backend/internals/features/chits/enrollments/model"
	"chitfund_backend/internals/helpers/apperr"
)

// InitializeLedger writes weeks 1..54 as unpaid for an enrollment.
// A ledger that already has rows is a Conflict.
func (s *Service) InitializeLedger(ctx context.Context, db *gorm.DB, enrollmentID uint) ([]model.WeekStatusModel, error) {
	tx := db.WithContext(ctx)

	var exists int64
	if err := tx.Model(&model.EnrollmentModel{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&exists).Error; err != nil {
		return nil, apperr.Internal("error loading enrollment", err)
	}
	if exists == 0 {
		return nil, apperr.NotFound("chit enrollment %d not found", enrollmentID)
	}

	var have int64
	if err := tx.Model(&model.WeekStatusModel{}).
		Where("week_status_enrollment_id = ?", enrollmentID).
		Count(&have).Error; err != nil {
		return nil, apperr.Internal("error checking week ledger", err)
	}
	if have > 0 {
		return nil, ledgerExists(enrollmentID)
	}

	rows := make([]model.WeekStatusModel, 0, model.LedgerWeeks)
	for w := 1; w <= model.LedgerWeeks; w++ {
		rows = append(rows, model.WeekStatusModel{
			WeekStatusEnrollmentID: enrollmentID,
			WeekStatusWeek:         w,
			WeekStatusIsPaid:       model.WeekUnpaid,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		if apperr.IsDuplicateKey(err) {
			return nil, ledgerExists(enrollmentID)
		}
		return nil, apperr.Internal("error creating week ledger", err)
	}
	return rows, nil
}

func ledgerExists(enrollmentID uint) error {
	return apperr.Conflict("week ledger already initialized for chit %d", enrollmentID)
}

// SetWeekStatus writes the paid flag of one ledger week. Marking an already
// paid week as paid returns the stored row without writing.
func (s *Service) SetWeekStatus(ctx context.Context, db *gorm.DB, enrollmentID uint, week int, flag model.PaidFlag) (*model.WeekStatusModel, error) {
	if !model.ValidWeek(week) {
		return nil, apperr.Invalid("week must be between 1 and %d", model.LedgerWeeks)
	}
	if flag != model.WeekPaid && flag != model.WeekUnpaid {
		return nil, apperr.Invalid("is_paid must be %q or %q", model.WeekPaid, model.WeekUnpaid)
	}

	tx := db.WithContext(ctx)
	var row model.WeekStatusModel
	if err := tx.
		Where("week_status_enrollment_id = ? AND week_status_week = ?", enrollmentID, week).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("week %d of chit %d not found", week, enrollmentID)
		}
		return nil, apperr.Internal("error loading week status", err)
	}

	if row.IsPaid() && flag == model.WeekPaid {
		return &row, nil
	}

	if err := tx.Model(&row).Update("week_status_is_paid", flag).Error; err != nil {
		return nil, apperr.Internal("error updating week status", err)
	}
	row.WeekStatusIsPaid = flag
	return &row, nil
}

func (s *Service) ListWeekStatuses(ctx context.Context, db *gorm.DB, enrollmentID uint) ([]model.WeekStatusModel, error) {
	if _, err := s.GetByID(ctx, db, enrollmentID); err != nil {
		return nil, err
	}
	rows := make([]model.WeekStatusModel, 0, model.LedgerWeeks)
	if err := db.WithContext(ctx).
		Where("week_status_enrollment_id = ?", enrollmentID).
		Order("week_status_week ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("error listing week statuses", err)
	}
	return rows, nil
}
