package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	database "chitfund_backend/internals/databases"
	"chitfund_backend/internals/databases/dbtest"
	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	enrollmentService "chitfund_backend/internals/features/chits/enrollments/service"
	"chitfund_backend/internals/features/chits/payments/model"
	memberModel "chitfund_backend/internals/features/users/members/model"
	"chitfund_backend/internals/helpers/apperr"
)

var fixedNow = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*gorm.DB, *Engine) {
	t.Helper()
	db := dbtest.Open(t)
	caps := database.Probe(db)
	eng := NewEngine(caps, enrollmentService.New(caps))
	eng.Now = func() time.Time { return fixedNow }
	return db, eng
}

func seedMember(t *testing.T, db *gorm.DB, phone string) uint {
	t.Helper()
	m := memberModel.MemberModel{
		MemberFullname:     "Member " + phone,
		MemberPhone:        phone,
		MemberDOB:          datatypes.Date(time.Date(1988, 8, 8, 0, 0, 0, 0, time.UTC)),
		MemberPasswordHash: "hash",
	}
	require.NoError(t, db.Create(&m).Error)
	return m.MemberID
}

func str(s string) *string { return &s }

func upiPayment(memberID uint, chitNo int, amount int64, week int) PaymentInput {
	return PaymentInput{
		MemberID: memberID,
		ChitNo:   chitNo,
		Amount:   amount,
		WeekNo:   week,
		PayType:  "upi",
		UPIRef:   str("upi://pay?pa=chit@bank"),
	}
}

func enrollmentsOf(t *testing.T, db *gorm.DB, memberID uint, chitNo int) []enrollmentModel.EnrollmentModel {
	t.Helper()
	var rows []enrollmentModel.EnrollmentModel
	require.NoError(t, db.Where("enrollment_member_id = ? AND enrollment_chit_no = ?", memberID, chitNo).
		Order("enrollment_id").Find(&rows).Error)
	return rows
}

func weeksOf(t *testing.T, db *gorm.DB, enrollmentID uint) []enrollmentModel.WeekStatusModel {
	t.Helper()
	var rows []enrollmentModel.WeekStatusModel
	require.NoError(t, db.Where("week_status_enrollment_id = ?", enrollmentID).
		Order("week_status_week").Find(&rows).Error)
	return rows
}

func TestRecordPayment_SelfHealsMissingEnrollment(t *testing.T) {
	db, eng := setup(t)
	memberID := seedMember(t, db, "9200000001")

	rec, err := eng.RecordPayment(context.Background(), db, upiPayment(memberID, 77, 500, 3), nil)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusCompleted, rec.PaymentStatus)

	enrollments := enrollmentsOf(t, db, memberID, 77)
	require.Len(t, enrollments, 1)
	require.EqualValues(t, 500, *enrollments[0].EnrollmentAmount)

	weeks := weeksOf(t, db, enrollments[0].EnrollmentID)
	require.Len(t, weeks, 1)
	require.Equal(t, 3, weeks[0].WeekStatusWeek)
	require.True(t, weeks[0].IsPaid())

	var payments int64
	require.NoError(t, db.Model(&model.PaymentRecordModel{}).Count(&payments).Error)
	require.EqualValues(t, 1, payments)
}

func TestRecordPayment_AmountDrift(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000002")
	pledge := int64(500)
	e, err := eng.Enrollments.Enroll(ctx, db, enrollmentService.EnrollInput{MemberID: memberID, ChitNo: 77, Amount: &pledge}, nil)
	require.NoError(t, err)

	_, err = eng.RecordPayment(ctx, db, upiPayment(memberID, 77, 600, 1), nil)
	require.NoError(t, err)

	var got enrollmentModel.EnrollmentModel
	require.NoError(t, db.First(&got, e.EnrollmentID).Error)
	require.EqualValues(t, 600, *got.EnrollmentAmount)

	weeks := weeksOf(t, db, e.EnrollmentID)
	require.Len(t, weeks, enrollmentModel.LedgerWeeks)
	require.True(t, weeks[0].IsPaid())
	require.False(t, weeks[1].IsPaid())
}

func TestRecordPayment_SameWeekTwiceStaysPaid(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000003")

	for i := 0; i < 2; i++ {
		_, err := eng.RecordPayment(ctx, db, upiPayment(memberID, 5, 300, 8), nil)
		require.NoError(t, err)
	}

	enrollments := enrollmentsOf(t, db, memberID, 5)
	require.Len(t, enrollments, 1)
	weeks := weeksOf(t, db, enrollments[0].EnrollmentID)
	require.Len(t, weeks, 1)
	require.True(t, weeks[0].IsPaid())

	var payments int64
	require.NoError(t, db.Model(&model.PaymentRecordModel{}).Count(&payments).Error)
	require.EqualValues(t, 2, payments)
}

func TestRecordPayment_InstrumentValidation(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000004")

	card := PaymentInput{MemberID: memberID, ChitNo: 1, Amount: 100, WeekNo: 1, PayType: "card"}
	_, err := eng.RecordPayment(ctx, db, card, nil)
	require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	var payments int64
	require.NoError(t, db.Model(&model.PaymentRecordModel{}).Count(&payments).Error)
	require.Zero(t, payments)

	upi := PaymentInput{
		MemberID:    memberID,
		ChitNo:      1,
		Amount:      100,
		WeekNo:      1,
		PayType:     "UPI",
		UPIRef:      str("x"),
		CardNetwork: str("VISA"),
		CardName:    str("Ignored"),
		CardExpiry:  str("12/29"),
	}
	rec, err := eng.RecordPayment(ctx, db, upi, nil)
	require.NoError(t, err)

	var stored model.PaymentRecordModel
	require.NoError(t, db.First(&stored, rec.PaymentID).Error)
	require.Equal(t, model.PaymentTypeUPI, stored.PaymentType)
	require.Nil(t, stored.PaymentCardNetwork)
	require.Nil(t, stored.PaymentCardName)
	require.Nil(t, stored.PaymentCardExpiry)
	require.Equal(t, "x", *stored.PaymentUPIRef)
}

func TestRecordPayment_CardClearsUPIAndNetbankingClearsAll(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000005")

	card, err := eng.RecordPayment(ctx, db, PaymentInput{
		MemberID: memberID, ChitNo: 1, Amount: 100, WeekNo: 1, PayType: "CARD",
		CardNetwork: str("RuPay"), CardName: str("A Kumar"), CardExpiry: str("01/30"), UPIRef: str("stray"),
	}, nil)
	require.NoError(t, err)
	require.Nil(t, card.PaymentUPIRef)
	require.Equal(t, "RuPay", *card.PaymentCardNetwork)

	nb, err := eng.RecordPayment(ctx, db, PaymentInput{
		MemberID: memberID, ChitNo: 1, Amount: 100, WeekNo: 2, PayType: "Net-Banking",
		CardName: str("stray"), UPIRef: str("stray"),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, model.PaymentTypeNetBanking, nb.PaymentType)
	require.Nil(t, nb.PaymentCardName)
	require.Nil(t, nb.PaymentUPIRef)
}

func TestRecordPayment_RejectsBadInput(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000006")

	cases := map[string]PaymentInput{
		"unknown type": {MemberID: memberID, ChitNo: 1, Amount: 100, WeekNo: 1, PayType: "cash"},
		"week zero":    upiPayment(memberID, 1, 100, 0),
		"week 55":      upiPayment(memberID, 1, 100, 55),
		"zero amount":  upiPayment(memberID, 1, 0, 1),
		"chit zero":    upiPayment(memberID, 0, 100, 1),
		"upi no ref":   {MemberID: memberID, ChitNo: 1, Amount: 100, WeekNo: 1, PayType: "UPI", UPIRef: str("  ")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := eng.RecordPayment(ctx, db, in, nil)
			require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
		})
	}

	_, err := eng.RecordPayment(ctx, db, upiPayment(4040, 1, 100, 1), nil)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRecordPayment_TransactionID(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000007")

	in := upiPayment(memberID, 1, 100, 1)
	in.TransactionID = "BANK-REF-001"
	rec, err := eng.RecordPayment(ctx, db, in, nil)
	require.NoError(t, err)
	require.Equal(t, "BANK-REF-001", rec.PaymentTransactionID)

	rec, err = eng.RecordPayment(ctx, db, upiPayment(memberID, 1, 100, 2), nil)
	require.NoError(t, err)
	prefix := "TXN" + "1718011800" // fixedNow.Unix()
	require.True(t, strings.HasPrefix(rec.PaymentTransactionID, prefix), rec.PaymentTransactionID)
	require.Len(t, rec.PaymentTransactionID, len(prefix)+4)
}

func TestRecordPayment_DriftOntoExistingPledgeConflictsAndRollsBack(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000008")
	a, b := int64(500), int64(800)
	_, err := eng.Enrollments.Enroll(ctx, db, enrollmentService.EnrollInput{MemberID: memberID, ChitNo: 1, Amount: &a}, nil)
	require.NoError(t, err)
	_, err = eng.Enrollments.Enroll(ctx, db, enrollmentService.EnrollInput{MemberID: memberID, ChitNo: 2, Amount: &b}, nil)
	require.NoError(t, err)

	// chit 1 would drift to 800, which chit 2 already pledges
	_, err = eng.RecordPayment(ctx, db, upiPayment(memberID, 1, 800, 4), nil)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	var payments int64
	require.NoError(t, db.Model(&model.PaymentRecordModel{}).Count(&payments).Error)
	require.Zero(t, payments)

	rows := enrollmentsOf(t, db, memberID, 1)
	require.EqualValues(t, 500, *rows[0].EnrollmentAmount)
	require.False(t, weeksOf(t, db, rows[0].EnrollmentID)[3].IsPaid())
}

func TestRecordBatch_GroupsByPrefix(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000009")

	in := BatchPaymentInput{PaymentInput: upiPayment(memberID, 9, 250, 0), Weeks: []int{1, 2, 3}}
	in.TransactionID = "TXN42"
	recs, err := eng.RecordBatch(ctx, db, in, nil)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "TXN42-W2", recs[1].PaymentTransactionID)

	_, err = eng.RecordPayment(ctx, db, upiPayment(memberID, 9, 250, 4), nil)
	require.NoError(t, err)

	for _, q := range []string{"TXN42", "TXN42-W1", "TXN42-W3"} {
		rows, total, err := eng.ListPayments(ctx, db, PaymentFilter{TransactionID: q})
		require.NoError(t, err)
		require.EqualValues(t, 3, total, q)
		require.Len(t, rows, 3)
	}

	rows, total, err := eng.ListPayments(ctx, db, PaymentFilter{MemberID: &memberID})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, rows, 4)

	enrollments := enrollmentsOf(t, db, memberID, 9)
	require.Len(t, enrollments, 1)
	require.Len(t, weeksOf(t, db, enrollments[0].EnrollmentID), 4)
}

func TestRecordBatch_RejectsDuplicateWeeks(t *testing.T) {
	db, eng := setup(t)
	memberID := seedMember(t, db, "9200000010")

	in := BatchPaymentInput{PaymentInput: upiPayment(memberID, 1, 250, 0), Weeks: []int{2, 2}}
	_, err := eng.RecordBatch(context.Background(), db, in, nil)
	require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestGetPayment(t *testing.T) {
	db, eng := setup(t)
	ctx := context.Background()
	memberID := seedMember(t, db, "9200000011")

	rec, err := eng.RecordPayment(ctx, db, upiPayment(memberID, 1, 100, 1), nil)
	require.NoError(t, err)

	got, err := eng.GetPayment(ctx, db, rec.PaymentID)
	require.NoError(t, err)
	require.Equal(t, rec.PaymentTransactionID, got.PaymentTransactionID)

	_, err = eng.GetPayment(ctx, db, 9999)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
