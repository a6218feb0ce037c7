package service

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	database "chitfund_backend/internals/databases"
	"chitfund_backend/internals/features/chits/enrollments/model"
	memberModel "chitfund_backend/internals/features/users/members/model"
	helper "chitfund_backend/internals/helpers"
	"chitfund_backend/internals/helpers/apperr"
	"chitfund_backend/internals/metrics"
)

const (
	tableEnrollments = "chit_enrollments"

	// DefaultChitNo is the chit every new member is enrolled in.
	DefaultChitNo = 1
)

type Service struct {
	Caps *database.Capabilities
}

func New(caps *database.Capabilities) *Service {
	return &Service{Caps: caps}
}

type EnrollInput struct {
	MemberID uint
	ChitNo   int
	Amount   *int64
}

/* =========================================================
   Enroll
========================================================= */

// Enroll creates an enrollment and its 54-week ledger as one unit.
func (s *Service) Enroll(ctx context.Context, db *gorm.DB, in EnrollInput, caller *uint) (*model.EnrollmentModel, error) {
	e, err := s.enroll(ctx, db, in, caller)
	if err != nil {
		return nil, err
	}
	metrics.EnrollmentsCreated.WithLabelValues(metrics.PathExplicit).Inc()
	return e, nil
}

// EnrollDefault enrolls a freshly registered member in the default chit with
// no pledge yet. Meant to run inside the registration transaction.
func (s *Service) EnrollDefault(ctx context.Context, tx *gorm.DB, memberID uint, caller *uint) (*model.EnrollmentModel, error) {
	return s.enroll(ctx, tx, EnrollInput{MemberID: memberID, ChitNo: DefaultChitNo}, caller)
}

func (s *Service) enroll(ctx context.Context, db *gorm.DB, in EnrollInput, caller *uint) (*model.EnrollmentModel, error) {
	if in.ChitNo < 1 {
		return nil, apperr.Invalid("chit_no must be at least 1")
	}
	if in.Amount != nil && *in.Amount <= 0 {
		return nil, apperr.Invalid("amount must be positive")
	}

	var out model.EnrollmentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member memberModel.MemberModel
		if err := tx.Select("member_id", "member_fullname").First(&member, in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("member %d not found", in.MemberID)
			}
			return apperr.Internal("error loading member", err)
		}

		if in.Amount != nil {
			var n int64
			if err := tx.Model(&model.EnrollmentModel{}).
				Where("enrollment_member_id = ? AND enrollment_amount = ?", in.MemberID, *in.Amount).
				Count(&n).Error; err != nil {
				return apperr.Internal("error checking enrollment", err)
			}
			if n > 0 {
				return alreadyEnrolled(member.MemberFullname, *in.Amount)
			}
		}

		out = model.EnrollmentModel{
			EnrollmentMemberID: in.MemberID,
			EnrollmentChitNo:   in.ChitNo,
			EnrollmentAmount:   in.Amount,
		}
		database.StampCreated(ctx, &out, caller)
		if err := tx.Scopes(s.Caps.Writable(tableEnrollments)).Create(&out).Error; err != nil {
			if apperr.IsDuplicateKey(err) && in.Amount != nil {
				return alreadyEnrolled(member.MemberFullname, *in.Amount)
			}
			return apperr.Internal("error creating enrollment", err)
		}

		if _, err := s.InitializeLedger(ctx, tx, out.EnrollmentID); err != nil {
			slog.ErrorContext(ctx, "ledger init failed",
				"op", "enroll", "member_id", in.MemberID, "chit_id", out.EnrollmentID, "err", err)
			return apperr.Internal("error initializing week ledger", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func alreadyEnrolled(name string, amount int64) error {
	return apperr.Conflict("%s is already enrolled in a chit of amount %d", name, amount)
}

/* =========================================================
   Reads
========================================================= */

func (s *Service) GetByID(ctx context.Context, db *gorm.DB, id uint) (*model.EnrollmentModel, error) {
	var e model.EnrollmentModel
	if err := db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("chit enrollment %d not found", id)
		}
		return nil, apperr.Internal("error loading enrollment", err)
	}
	return &e, nil
}

func (s *Service) ListByMember(ctx context.Context, db *gorm.DB, memberID uint) ([]model.EnrollmentModel, error) {
	rows := make([]model.EnrollmentModel, 0)
	if err := db.WithContext(ctx).
		Where("enrollment_member_id = ?", memberID).
		Order("enrollment_id ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("error listing enrollments", err)
	}
	return rows, nil
}

func (s *Service) ListAll(ctx context.Context, db *gorm.DB, p helper.Paging) ([]model.EnrollmentModel, int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&model.EnrollmentModel{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("error counting enrollments", err)
	}
	rows := make([]model.EnrollmentModel, 0)
	if err := q.Order("enrollment_id ASC").Offset(p.Offset()).Limit(p.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal("error listing enrollments", err)
	}
	return rows, total, nil
}

// FindForChit returns the first enrollment of member in chitNo, or nil when none.
func (s *Service) FindForChit(ctx context.Context, db *gorm.DB, memberID uint, chitNo int) (*model.EnrollmentModel, error) {
	var rows []model.EnrollmentModel
	if err := db.WithContext(ctx).
		Where("enrollment_member_id = ? AND enrollment_chit_no = ?", memberID, chitNo).
		Order("enrollment_id ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

/* =========================================================
   Update pledged amount
========================================================= */

func (s *Service) UpdatePledgedAmount(ctx context.Context, db *gorm.DB, memberID uint, chitNo int, amount int64, caller *uint) (*model.EnrollmentModel, error) {
	if amount <= 0 {
		return nil, apperr.Invalid("amount must be positive")
	}

	var out *model.EnrollmentModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := s.FindForChit(ctx, tx, memberID, chitNo)
		if err != nil {
			return apperr.Internal("error loading enrollment", err)
		}
		if e == nil {
			return apperr.NotFound("no enrollment for member %d in chit %d", memberID, chitNo)
		}

		var clash int64
		if err := tx.Model(&model.EnrollmentModel{}).
			Where("enrollment_member_id = ? AND enrollment_amount = ? AND enrollment_id <> ?", memberID, amount, e.EnrollmentID).
			Count(&clash).Error; err != nil {
			return apperr.Internal("error checking enrollment", err)
		}
		if clash > 0 {
			return apperr.Conflict("member %d already has a chit of amount %d", memberID, amount)
		}

		updates := s.Caps.UpdatedBy(tableEnrollments, map[string]any{"enrollment_amount": amount}, caller)
		if err := tx.Model(e).Updates(updates).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return apperr.Conflict("member %d already has a chit of amount %d", memberID, amount)
			}
			return apperr.Internal("error updating enrollment", err)
		}
		e.EnrollmentAmount = &amount
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
