package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	database "chitfund_backend/internals/databases"
	"chitfund_backend/internals/databases/dbtest"
	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	enrollmentService "chitfund_backend/internals/features/chits/enrollments/service"
	paymentModel "chitfund_backend/internals/features/chits/payments/model"
	"chitfund_backend/internals/features/users/members/model"
	helper "chitfund_backend/internals/helpers"
	"chitfund_backend/internals/helpers/apperr"
)

func setup(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db := dbtest.Open(t)
	caps := database.Probe(db)
	return db, New(caps, enrollmentService.New(caps))
}

func str(s string) *string { return &s }

func registerInput(phone string) RegisterInput {
	return RegisterInput{
		Fullname: "Ramesh Iyer",
		Phone:    phone,
		DOB:      time.Date(1982, 11, 4, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegister_AutoEnrollsDefaultChit(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, db, registerInput("9400000001"), nil)
	require.NoError(t, err)
	require.NotZero(t, res.Member.MemberID)
	require.Len(t, res.GeneratedPassword, generatedPasswordLen)
	require.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(res.Member.MemberPasswordHash), []byte(res.GeneratedPassword)))

	require.NotNil(t, res.Enrollment)
	require.Equal(t, 1, res.Enrollment.EnrollmentChitNo)
	require.Nil(t, res.Enrollment.EnrollmentAmount)

	var weeks int64
	require.NoError(t, db.Model(&enrollmentModel.WeekStatusModel{}).
		Where("week_status_enrollment_id = ?", res.Enrollment.EnrollmentID).Count(&weeks).Error)
	require.EqualValues(t, enrollmentModel.LedgerWeeks, weeks)
}

func TestRegister_KeepsSuppliedPasswordAndHashesPIN(t *testing.T) {
	db, svc := setup(t)
	in := registerInput("9400000002")
	in.Password = "s3cret-pass"
	in.PIN = str("4321")
	in.Email = str("  Ramesh@Example.COM ")

	res, err := svc.Register(context.Background(), db, in, nil)
	require.NoError(t, err)
	require.Empty(t, res.GeneratedPassword)
	require.Equal(t, "ramesh@example.com", *res.Member.MemberEmail)
	require.NotNil(t, res.Member.MemberPinHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(*res.Member.MemberPinHash), []byte("4321")))
}

func TestRegister_UniquenessConflicts(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	first := registerInput("9400000003")
	first.Email = str("a@example.com")
	first.NationalID = str("ABCDE1234F")
	_, err := svc.Register(ctx, db, first, nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, db, registerInput("9400000003"), nil)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Contains(t, err.Error(), "9400000003")

	dupEmail := registerInput("9400000004")
	dupEmail.Email = str("A@example.com")
	_, err = svc.Register(ctx, db, dupEmail, nil)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	dupID := registerInput("9400000005")
	dupID.NationalID = str("abcde1234f")
	_, err = svc.Register(ctx, db, dupID, nil)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// no half-registered member or enrollment is left behind
	var members, enrollments int64
	require.NoError(t, db.Model(&model.MemberModel{}).Count(&members).Error)
	require.NoError(t, db.Model(&enrollmentModel.EnrollmentModel{}).Count(&enrollments).Error)
	require.EqualValues(t, 1, members)
	require.EqualValues(t, 1, enrollments)
}

func TestRegister_Validation(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, db, registerInput("  "), nil)
	require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	in := registerInput("9400000006")
	in.PIN = str("12ab")
	_, err = svc.Register(ctx, db, in, nil)
	require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	in = registerInput("9400000006")
	in.Role = "owner"
	_, err = svc.Register(ctx, db, in, nil)
	require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestUpdate(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	a, err := svc.Register(ctx, db, registerInput("9400000007"), nil)
	require.NoError(t, err)
	_, err = svc.Register(ctx, db, registerInput("9400000008"), nil)
	require.NoError(t, err)

	caller := a.Member.MemberID
	m, err := svc.Update(ctx, db, a.Member.MemberID, UpdateInput{Fullname: str("Ramesh K Iyer")}, &caller)
	require.NoError(t, err)
	require.Equal(t, "Ramesh K Iyer", m.MemberFullname)
	require.NotNil(t, m.MemberUpdatedBy)

	_, err = svc.Update(ctx, db, a.Member.MemberID, UpdateInput{Phone: str("9400000008")}, nil)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// own phone is not a clash
	_, err = svc.Update(ctx, db, a.Member.MemberID, UpdateInput{Phone: str("9400000007")}, nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, db, 999, UpdateInput{Fullname: str("x")}, nil)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDelete_CascadesOwnedLedger(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	res, err := svc.Register(ctx, db, registerInput("9400000009"), nil)
	require.NoError(t, err)
	keep, err := svc.Register(ctx, db, registerInput("9400000010"), nil)
	require.NoError(t, err)

	// payments are a log and outlive the member
	pay := paymentModel.PaymentRecordModel{
		PaymentMemberID: res.Member.MemberID, PaymentChitNo: 1, PaymentAmount: 100, PaymentWeekNo: 1,
		PaymentType: paymentModel.PaymentTypeNetBanking, PaymentStatus: paymentModel.PaymentStatusCompleted,
		PaymentTransactionID: "TXN1",
	}
	require.NoError(t, db.Create(&pay).Error)

	require.NoError(t, svc.Delete(ctx, db, res.Member.MemberID))

	_, err = svc.Get(ctx, db, res.Member.MemberID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	var enrollments, weeks, payments int64
	require.NoError(t, db.Model(&enrollmentModel.EnrollmentModel{}).Count(&enrollments).Error)
	require.NoError(t, db.Model(&enrollmentModel.WeekStatusModel{}).Count(&weeks).Error)
	require.NoError(t, db.Model(&paymentModel.PaymentRecordModel{}).Count(&payments).Error)
	require.EqualValues(t, 1, enrollments)
	require.EqualValues(t, enrollmentModel.LedgerWeeks, weeks)
	require.EqualValues(t, 1, payments)

	_, err = svc.Get(ctx, db, keep.Member.MemberID)
	require.NoError(t, err)

	require.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.Delete(ctx, db, res.Member.MemberID)))
}

func TestList_SearchAndPaging(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()
	for _, phone := range []string{"9400000011", "9400000012", "9400000013"} {
		_, err := svc.Register(ctx, db, registerInput(phone), nil)
		require.NoError(t, err)
	}

	rows, total, err := svc.List(ctx, db, "", helper.Paging{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, rows, 2)

	rows, total, err = svc.List(ctx, db, "0013", helper.Paging{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "9400000013", rows[0].MemberPhone)
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(16)
	require.NoError(t, err)
	b, err := GeneratePassword(16)
	require.NoError(t, err)
	require.Len(t, a, 16)
	require.NotEqual(t, a, b)
	for _, r := range a {
		require.Contains(t, passwordAlphabet, string(r))
	}
}
