package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	database "chitfund_backend/internals/databases"
	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	enrollmentService "chitfund_backend/internals/features/chits/enrollments/service"
	"chitfund_backend/internals/features/users/members/model"
	helper "chitfund_backend/internals/helpers"
	"chitfund_backend/internals/helpers/apperr"
	"chitfund_backend/internals/metrics"
)

const (
	tableMembers = "members"

	generatedPasswordLen = 12
	passwordAlphabet     = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"
)

type Service struct {
	Caps        *database.Capabilities
	Enrollments *enrollmentService.Service
}

func New(caps *database.Capabilities, enrollments *enrollmentService.Service) *Service {
	return &Service{Caps: caps, Enrollments: enrollments}
}

type RegisterInput struct {
	Fullname   string
	Email      *string
	Phone      string
	NationalID *string
	DOB        time.Time
	Password   string // generated when empty
	PIN        *string
	Role       string
}

type RegisterResult struct {
	Member            *model.MemberModel
	Enrollment        *enrollmentModel.EnrollmentModel
	GeneratedPassword string
}

type UpdateInput struct {
	Fullname   *string
	Email      *string
	Phone      *string
	NationalID *string
	DOB        *time.Time
	Password   *string
	PIN        *string
	Role       *string
}

/* =========================================================
   Register
========================================================= */

// Register stores a member and enrolls them in the default chit in one transaction.
func (s *Service) Register(ctx context.Context, db *gorm.DB, in RegisterInput, caller *uint) (*RegisterResult, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Phone == "" {
		return nil, apperr.Invalid("phone is required")
	}
	in.Email = normalizeOptional(in.Email, strings.ToLower)
	in.NationalID = normalizeOptional(in.NationalID, strings.ToUpper)
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !validRole(in.Role) {
		return nil, apperr.Invalid("role must be %q or %q", model.RoleUser, model.RoleAdmin)
	}

	res := &RegisterResult{}
	if in.Password == "" {
		pw, err := GeneratePassword(generatedPasswordLen)
		if err != nil {
			return nil, apperr.Internal("error generating password", err)
		}
		in.Password = pw
		res.GeneratedPassword = pw
	}
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("error hashing password", err)
	}
	pinHash, err := hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}

	m := model.MemberModel{
		MemberFullname:     strings.TrimSpace(in.Fullname),
		MemberEmail:        in.Email,
		MemberPhone:        in.Phone,
		MemberNationalID:   in.NationalID,
		MemberDOB:          datatypes.Date(in.DOB),
		MemberPasswordHash: string(pwHash),
		MemberPinHash:      pinHash,
		MemberRole:         in.Role,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, 0, &in.Phone, in.Email, in.NationalID); err != nil {
			return err
		}
		database.StampCreated(ctx, &m, caller)
		if err := tx.Scopes(s.Caps.Writable(tableMembers)).Create(&m).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return apperr.Conflict("member with the same phone, email or national id already exists")
			}
			return apperr.Internal("error creating member", err)
		}

		e, err := s.Enrollments.EnrollDefault(ctx, tx, m.MemberID, caller)
		if err != nil {
			return err
		}
		res.Enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.EnrollmentsCreated.WithLabelValues(metrics.PathRegistration).Inc()

	res.Member = &m
	return res, nil
}

/* =========================================================
   Reads
========================================================= */

func (s *Service) Get(ctx context.Context, db *gorm.DB, id uint) (*model.MemberModel, error) {
	var m model.MemberModel
	if err := db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member %d not found", id)
		}
		return nil, apperr.Internal("error loading member", err)
	}
	return &m, nil
}

// List pages members, optionally filtered by a name or phone fragment.
func (s *Service) List(ctx context.Context, db *gorm.DB, q string, p helper.Paging) ([]model.MemberModel, int64, error) {
	tx := db.WithContext(ctx).Model(&model.MemberModel{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(member_fullname) LIKE ? OR member_phone LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("error counting members", err)
	}
	rows := make([]model.MemberModel, 0)
	if err := tx.Order("member_id ASC").Offset(p.Offset()).Limit(p.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal("error listing members", err)
	}
	return rows, total, nil
}

/* =========================================================
   Update
========================================================= */

func (s *Service) Update(ctx context.Context, db *gorm.DB, id uint, in UpdateInput, caller *uint) (*model.MemberModel, error) {
	updates := map[string]any{}
	if in.Fullname != nil {
		name := strings.TrimSpace(*in.Fullname)
		if name == "" {
			return nil, apperr.Invalid("fullname cannot be empty")
		}
		updates["member_fullname"] = name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			return nil, apperr.Invalid("phone cannot be empty")
		}
		in.Phone = &phone
		updates["member_phone"] = phone
	}
	if in.Email != nil {
		in.Email = normalizeOptional(in.Email, strings.ToLower)
		updates["member_email"] = in.Email
	}
	if in.NationalID != nil {
		in.NationalID = normalizeOptional(in.NationalID, strings.ToUpper)
		updates["member_national_id"] = in.NationalID
	}
	if in.DOB != nil {
		updates["member_dob"] = datatypes.Date(*in.DOB)
	}
	if in.Role != nil {
		if !validRole(*in.Role) {
			return nil, apperr.Invalid("role must be %q or %q", model.RoleUser, model.RoleAdmin)
		}
		updates["member_role"] = *in.Role
	}
	if in.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Internal("error hashing password", err)
		}
		updates["member_password_hash"] = string(h)
	}
	if in.PIN != nil {
		h, err := hashPIN(in.PIN)
		if err != nil {
			return nil, err
		}
		updates["member_pin_hash"] = h
	}

	var m model.MemberModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("member %d not found", id)
			}
			return apperr.Internal("error loading member", err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := checkUnique(tx, id, in.Phone, in.Email, in.NationalID); err != nil {
			return err
		}
		updates = s.Caps.UpdatedBy(tableMembers, updates, caller)
		if err := tx.Model(&m).Updates(updates).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return apperr.Conflict("member with the same phone, email or national id already exists")
			}
			return apperr.Internal("error updating member", err)
		}
		return tx.First(&m, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

/* =========================================================
   Delete
========================================================= */

// Delete removes the member with its enrollments and their week ledgers.
// Payment and interest records only reference the member and are kept.
func (s *Service) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.MemberModel
		if err := tx.Select("member_id").First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("member %d not found", id)
			}
			return apperr.Internal("error loading member", err)
		}

		owned := tx.Model(&enrollmentModel.EnrollmentModel{}).
			Select("enrollment_id").
			Where("enrollment_member_id = ?", id)
		if err := tx.Where("week_status_enrollment_id IN (?)", owned).
			Delete(&enrollmentModel.WeekStatusModel{}).Error; err != nil {
			return apperr.Internal("error deleting week statuses", err)
		}
		if err := tx.Where("enrollment_member_id = ?", id).
			Delete(&enrollmentModel.EnrollmentModel{}).Error; err != nil {
			return apperr.Internal("error deleting enrollments", err)
		}
		if err := tx.Delete(&model.MemberModel{}, id).Error; err != nil {
			return apperr.Internal("error deleting member", err)
		}
		return nil
	})
}

/* =========================================================
   Helpers
========================================================= */

func checkUnique(tx *gorm.DB, selfID uint, phone, email, nationalID *string) error {
	check := func(col, label string, val *string) error {
		if val == nil || *val == "" {
			return nil
		}
		var n int64
		q := tx.Model(&model.MemberModel{}).Where(col+" = ?", *val)
		if selfID != 0 {
			q = q.Where("member_id <> ?", selfID)
		}
		if err := q.Count(&n).Error; err != nil {
			return apperr.Internal("error checking member", err)
		}
		if n > 0 {
			return apperr.Conflict("%s %s is already registered", label, *val)
		}
		return nil
	}
	if err := check("member_phone", "phone", phone); err != nil {
		return err
	}
	if err := check("member_email", "email", email); err != nil {
		return err
	}
	return check("member_national_id", "national id", nationalID)
}

func validRole(r string) bool { return r == model.RoleUser || r == model.RoleAdmin }

func normalizeOptional(s *string, f func(string) string) *string {
	if s == nil {
		return nil
	}
	v := f(strings.TrimSpace(*s))
	if v == "" {
		return nil
	}
	return &v
}

func hashPIN(pin *string) (*string, error) {
	if pin == nil || *pin == "" {
		return nil, nil
	}
	p := *pin
	if len(p) < 4 || len(p) > 6 || strings.Trim(p, "0123456789") != "" {
		return nil, apperr.Invalid("pin must be 4 to 6 digits")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("error hashing pin", err)
	}
	out := string(h)
	return &out, nil
}

// GeneratePassword returns a random password without look-alike characters.
func GeneratePassword(n int) (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[idx.Int64()]
	}
	return string(b), nil
}
