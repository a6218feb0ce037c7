package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	database "chitfund_backend/internals/databases"
	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	enrollmentService "chitfund_backend/internals/features/chits/enrollments/service"
	"chitfund_backend/internals/features/chits/payments/model"
	memberModel "chitfund_backend/internals/features/users/members/model"
	"chitfund_backend/internals/helpers/apperr"
	"chitfund_backend/internals/metrics"
)

const (
	tablePayments    = "payment_records"
	tableEnrollments = "chit_enrollments"
)

// Engine records payments and keeps the enrollment and week ledger in step with them.
type Engine struct {
	Caps        *database.Capabilities
	Enrollments *enrollmentService.Service
	Now         func() time.Time
}

func NewEngine(caps *database.Capabilities, enrollments *enrollmentService.Service) *Engine {
	return &Engine{Caps: caps, Enrollments: enrollments, Now: time.Now}
}

type PaymentInput struct {
	MemberID      uint
	ChitNo        int
	Amount        int64
	WeekNo        int
	PayType       string
	CardNetwork   *string
	CardName      *string
	CardExpiry    *string
	UPIRef        *string
	TransactionID string
	Remarks       *string
}

// BatchPaymentInput pays the same amount for several weeks of one chit.
type BatchPaymentInput struct {
	PaymentInput
	Weeks []int
}

/* =========================================================
   RecordPayment
========================================================= */

func (e *Engine) RecordPayment(ctx context.Context, db *gorm.DB, in PaymentInput, caller *uint) (*model.PaymentRecordModel, error) {
	rec, err := buildRecord(in)
	if err != nil {
		return nil, err
	}
	if err := memberExists(ctx, db, in.MemberID); err != nil {
		return nil, err
	}
	rec.PaymentTransactionID = e.resolveTxnID(in.TransactionID)
	rec.PaymentCreatedAt = e.now()

	var lazy bool
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lazy, err = e.apply(ctx, tx, rec, caller)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.observe(rec.PaymentType, 1, lazy)
	return rec, nil
}

// RecordBatch records one payment per week under "<txn>-W<week>" ids, all or nothing.
func (e *Engine) RecordBatch(ctx context.Context, db *gorm.DB, in BatchPaymentInput, caller *uint) ([]model.PaymentRecordModel, error) {
	if len(in.Weeks) == 0 {
		return nil, apperr.Invalid("weeks must not be empty")
	}
	seen := make(map[int]struct{}, len(in.Weeks))
	for _, w := range in.Weeks {
		if !enrollmentModel.ValidWeek(w) {
			return nil, apperr.Invalid("week %d must be between 1 and %d", w, enrollmentModel.LedgerWeeks)
		}
		if _, dup := seen[w]; dup {
			return nil, apperr.Invalid("week %d listed twice", w)
		}
		seen[w] = struct{}{}
	}

	// validate the shared fields once against the first week
	probe := in.PaymentInput
	probe.WeekNo = in.Weeks[0]
	if _, err := buildRecord(probe); err != nil {
		return nil, err
	}
	if err := memberExists(ctx, db, in.MemberID); err != nil {
		return nil, err
	}

	base := e.resolveTxnID(in.TransactionID)
	at := e.now()
	out := make([]model.PaymentRecordModel, 0, len(in.Weeks))
	var lazy bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range in.Weeks {
			one := in.PaymentInput
			one.WeekNo = w
			rec, err := buildRecord(one)
			if err != nil {
				return err
			}
			rec.PaymentTransactionID = base + "-W" + strconv.Itoa(w)
			rec.PaymentCreatedAt = at
			created, err := e.apply(ctx, tx, rec, caller)
			if err != nil {
				return err
			}
			lazy = lazy || created
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.observe(out[0].PaymentType, len(out), lazy)
	return out, nil
}

// apply runs the three ledger writes for one payment on tx.
// It reports whether the enrollment had to be created. When the drifted or
// lazily created pledge collides with another chit of the same member at that
// amount, the whole payment is rejected with a Conflict.
func (e *Engine) apply(ctx context.Context, tx *gorm.DB, rec *model.PaymentRecordModel, caller *uint) (bool, error) {
	fail := func(step string, err error) (bool, error) {
		slog.ErrorContext(ctx, "payment not recorded",
			"step", step, "member_id", rec.PaymentMemberID, "chit_no", rec.PaymentChitNo,
			"week", rec.PaymentWeekNo, "txn", rec.PaymentTransactionID, "err", err)
		if apperr.Is(err, apperr.KindConflict) {
			return false, err
		}
		return false, apperr.Internal("error creating payment", err)
	}

	// 1. payment row
	database.StampCreated(ctx, rec, caller)
	if err := tx.Scopes(e.Caps.Writable(tablePayments)).Create(rec).Error; err != nil {
		return fail("insert payment", err)
	}

	// 2. enrollment: drift the pledge or create it lazily
	lazy := false
	enr, err := e.Enrollments.FindForChit(ctx, tx, rec.PaymentMemberID, rec.PaymentChitNo)
	if err != nil {
		return fail("find enrollment", err)
	}
	if enr != nil {
		if enr.AmountDiffers(rec.PaymentAmount) {
			updates := e.Caps.UpdatedBy(tableEnrollments,
				map[string]any{"enrollment_amount": rec.PaymentAmount}, caller)
			if err := tx.Model(enr).Updates(updates).Error; err != nil {
				if apperr.IsDuplicateKey(err) {
					return fail("update pledge", apperr.Conflict(
						"member %d already has a chit of amount %d", rec.PaymentMemberID, rec.PaymentAmount))
				}
				return fail("update pledge", err)
			}
		}
	} else {
		amount := rec.PaymentAmount
		enr = &enrollmentModel.EnrollmentModel{
			EnrollmentMemberID: rec.PaymentMemberID,
			EnrollmentChitNo:   rec.PaymentChitNo,
			EnrollmentAmount:   &amount,
		}
		database.StampCreated(ctx, enr, caller)
		if err := tx.Scopes(e.Caps.Writable(tableEnrollments)).Create(enr).Error; err != nil {
			if apperr.IsDuplicateKey(err) {
				return fail("create enrollment", apperr.Conflict(
					"member %d already has a chit of amount %d", rec.PaymentMemberID, rec.PaymentAmount))
			}
			return fail("create enrollment", err)
		}
		lazy = true
	}

	// 3. week row: flip, keep, or backfill just this week
	_, err = e.Enrollments.SetWeekStatus(ctx, tx, enr.EnrollmentID, rec.PaymentWeekNo, enrollmentModel.WeekPaid)
	switch {
	case err == nil:
	case apperr.Is(err, apperr.KindNotFound):
		row := enrollmentModel.WeekStatusModel{
			WeekStatusEnrollmentID: enr.EnrollmentID,
			WeekStatusWeek:         rec.PaymentWeekNo,
			WeekStatusIsPaid:       enrollmentModel.WeekPaid,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fail("create week status", err)
		}
	default:
		return fail("set week status", err)
	}
	return lazy, nil
}

func (e *Engine) observe(payType model.PaymentType, n int, lazy bool) {
	metrics.PaymentsRecorded.WithLabelValues(string(payType)).Add(float64(n))
	if lazy {
		metrics.EnrollmentsCreated.WithLabelValues(metrics.PathLazy).Inc()
	}
}

/* =========================================================
   Validation
========================================================= */

// buildRecord validates the submission and drops instrument fields that do
// not belong to the chosen instrument.
func buildRecord(in PaymentInput) (*model.PaymentRecordModel, error) {
	payType, ok := model.ParsePaymentType(in.PayType)
	if !ok {
		return nil, apperr.Invalid("pay_type %q must be one of card, UPI, netbanking", in.PayType)
	}
	if in.MemberID == 0 {
		return nil, apperr.Invalid("user_id is required")
	}
	if in.ChitNo < 1 {
		return nil, apperr.Invalid("chit_no must be at least 1")
	}
	if in.Amount <= 0 {
		return nil, apperr.Invalid("amount must be positive")
	}
	if !enrollmentModel.ValidWeek(in.WeekNo) {
		return nil, apperr.Invalid("week_no must be between 1 and %d", enrollmentModel.LedgerWeeks)
	}

	rec := &model.PaymentRecordModel{
		PaymentMemberID: in.MemberID,
		PaymentChitNo:   in.ChitNo,
		PaymentAmount:   in.Amount,
		PaymentWeekNo:   in.WeekNo,
		PaymentType:     payType,
		PaymentStatus:   model.PaymentStatusCompleted,
		PaymentRemarks:  trimmed(in.Remarks),
	}

	switch payType {
	case model.PaymentTypeCard:
		rec.PaymentCardNetwork = trimmed(in.CardNetwork)
		rec.PaymentCardName = trimmed(in.CardName)
		rec.PaymentCardExpiry = trimmed(in.CardExpiry)
		if rec.PaymentCardNetwork == nil || rec.PaymentCardName == nil || rec.PaymentCardExpiry == nil {
			return nil, apperr.Invalid("card payments require card_network, card_name and card_expiry")
		}
	case model.PaymentTypeUPI:
		rec.PaymentUPIRef = trimmed(in.UPIRef)
		if rec.PaymentUPIRef == nil {
			return nil, apperr.Invalid("UPI payments require qr")
		}
	}
	return rec, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func memberExists(ctx context.Context, db *gorm.DB, id uint) error {
	var m memberModel.MemberModel
	err := db.WithContext(ctx).Select("member_id").First(&m, id).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("member %d not found", id)
	default:
		return apperr.Internal("error loading member", err)
	}
}

// resolveTxnID keeps a caller supplied id verbatim, else mints "TXN<unix><4 digits>".
// Minted ids are not unique across same-second submissions.
func (e *Engine) resolveTxnID(supplied string) string {
	if strings.TrimSpace(supplied) != "" {
		return supplied
	}
	return "TXN" + strconv.FormatInt(e.now().Unix(), 10) + strconv.Itoa(1000+rand.IntN(9000))
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}
