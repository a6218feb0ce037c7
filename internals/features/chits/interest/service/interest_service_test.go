package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	database "chitfund_backend/internals/databases"
	"chitfund_backend/internals/databases/dbtest"
	enrollmentService "chitfund_backend/internals/features/chits/enrollments/service"
	"chitfund_backend/internals/features/chits/interest/model"
	paymentService "chitfund_backend/internals/features/chits/payments/service"
	memberModel "chitfund_backend/internals/features/users/members/model"
	"chitfund_backend/internals/helpers/apperr"
)

type fixture struct {
	db       *gorm.DB
	payments *paymentService.Engine
	interest *Service
	clock    time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	caps := database.Probe(db)
	f := &fixture{
		db:       db,
		payments: paymentService.NewEngine(caps, enrollmentService.New(caps)),
		interest: New(1),
		clock:    time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
	}
	f.payments.Now = func() time.Time { return f.clock }
	f.interest.Now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) member(t *testing.T, phone string) uint {
	t.Helper()
	m := memberModel.MemberModel{
		MemberFullname:     "Member " + phone,
		MemberPhone:        phone,
		MemberDOB:          datatypes.Date(time.Date(1979, 2, 2, 0, 0, 0, 0, time.UTC)),
		MemberPasswordHash: "hash",
	}
	require.NoError(t, f.db.Create(&m).Error)
	return m.MemberID
}

func (f *fixture) pay(t *testing.T, memberID uint, chitNo int, amount int64, week int, at time.Time) {
	t.Helper()
	f.clock = at
	ref := "upi-ref"
	_, err := f.payments.RecordPayment(context.Background(), f.db, paymentService.PaymentInput{
		MemberID: memberID, ChitNo: chitNo, Amount: amount, WeekNo: week, PayType: "UPI", UPIRef: &ref,
	}, nil)
	require.NoError(t, err)
}

func june(day int) time.Time { return time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC) }

func TestCalculate_MonthlyArithmetic(t *testing.T) {
	f := setup(t)
	m := f.member(t, "9300000001")
	for week, day := range map[int]int{1: 3, 2: 10, 3: 17, 4: 24} {
		f.pay(t, m, 77, 500, week, june(day))
	}
	// outside the period
	f.pay(t, m, 77, 500, 5, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))

	recs, err := f.interest.Calculate(context.Background(), f.db, 6, 2024)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	require.Equal(t, m, r.InterestMemberID)
	require.Equal(t, 77, r.InterestChitNo)
	require.Equal(t, 4, r.InterestWeeksPaid)
	require.EqualValues(t, 2000, r.InterestTotalAmount)
	require.Equal(t, 1, r.InterestRate)
	require.True(t, decimal.NewFromInt(20).Equal(r.InterestAmount), r.InterestAmount.String())
	require.Equal(t, model.WeekList{1, 2, 3, 4}, r.InterestPaidWeeks)
	require.False(t, r.InterestIsPaid)
}

func TestCalculate_RerunReplacesAndKeepsPaid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.member(t, "9300000002")
	f.pay(t, m, 1, 400, 1, june(4))

	first, err := f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)
	require.Len(t, first, 1)

	paid, err := f.interest.MarkPaid(ctx, f.db, first[0].InterestID)
	require.NoError(t, err)

	f.pay(t, m, 1, 400, 2, june(11))
	second, err := f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].InterestID, second[0].InterestID)
	require.Equal(t, 2, second[0].InterestWeeksPaid)
	require.EqualValues(t, 800, second[0].InterestTotalAmount)
	require.True(t, second[0].InterestIsPaid)
	require.NotNil(t, second[0].InterestPaidAt)
	require.True(t, paid.InterestPaidAt.Equal(*second[0].InterestPaidAt))

	var n int64
	require.NoError(t, f.db.Model(&model.InterestRecordModel{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCalculate_DropsStaleUnpaidRows(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.member(t, "9300000003")
	f.pay(t, m, 1, 400, 1, june(5))

	recs, err := f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// the contribution is corrected to unpaid; the period no longer earns interest
	require.NoError(t, f.db.Exec(
		"UPDATE week_statuses SET week_status_is_paid = 'N' WHERE week_status_week = 1").Error)

	recs, err = f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestCalculate_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, c := range [][2]int{{0, 2024}, {13, 2024}, {6, 1999}, {6, 2101}} {
		_, err := f.interest.Calculate(ctx, f.db, c[0], c[1])
		require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), c)
	}

	recs, err := f.interest.Calculate(ctx, f.db, 1, 2030)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestMarkPaid_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.member(t, "9300000004")
	f.pay(t, m, 2, 1000, 1, june(6))
	recs, err := f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)

	f.clock = june(20)
	first, err := f.interest.MarkPaid(ctx, f.db, recs[0].InterestID)
	require.NoError(t, err)
	require.True(t, first.InterestIsPaid)
	require.NotNil(t, first.InterestPaidAt)

	f.clock = june(25)
	second, err := f.interest.MarkPaid(ctx, f.db, recs[0].InterestID)
	require.NoError(t, err)
	require.True(t, second.InterestIsPaid)
	require.True(t, first.InterestPaidAt.Equal(*second.InterestPaidAt))

	_, err = f.interest.MarkPaid(ctx, f.db, 999)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdate_PaidLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.member(t, "9300000005")
	f.pay(t, m, 3, 700, 1, june(7))
	recs, err := f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)
	id := recs[0].InterestID

	yes, no := true, false
	f.clock = june(21)
	rec, err := f.interest.Update(ctx, f.db, id, UpdateInput{Paid: &yes})
	require.NoError(t, err)
	require.True(t, rec.InterestIsPaid)
	require.True(t, june(21).Equal(*rec.InterestPaidAt))

	rec, err = f.interest.Update(ctx, f.db, id, UpdateInput{Paid: &no})
	require.NoError(t, err)
	require.False(t, rec.InterestIsPaid)
	require.Nil(t, rec.InterestPaidAt)

	explicit := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)
	rec, err = f.interest.Update(ctx, f.db, id, UpdateInput{Paid: &yes, PaidAt: &explicit})
	require.NoError(t, err)
	require.True(t, explicit.Equal(*rec.InterestPaidAt))

	stored, err := f.interest.Get(ctx, f.db, id)
	require.NoError(t, err)
	require.True(t, stored.InterestIsPaid)
	require.True(t, explicit.Equal(*stored.InterestPaidAt))

	_, err = f.interest.Update(ctx, f.db, id, UpdateInput{})
	require.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	_, err = f.interest.Update(ctx, f.db, 999, UpdateInput{Paid: &yes})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestList_Filters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.member(t, "9300000006")
	b := f.member(t, "9300000007")
	f.pay(t, a, 1, 100, 1, june(3))
	f.pay(t, b, 1, 200, 1, june(3))
	f.pay(t, a, 1, 100, 2, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC))

	_, err := f.interest.Calculate(ctx, f.db, 6, 2024)
	require.NoError(t, err)
	july, err := f.interest.Calculate(ctx, f.db, 7, 2024)
	require.NoError(t, err)
	_, err = f.interest.MarkPaid(ctx, f.db, july[0].InterestID)
	require.NoError(t, err)

	all, err := f.interest.List(ctx, f.db, InterestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	month := 6
	rows, err := f.interest.List(ctx, f.db, InterestFilter{Month: &month, MemberID: &a})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, a, rows[0].InterestMemberID)

	paid := true
	rows, err = f.interest.List(ctx, f.db, InterestFilter{Paid: &paid})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 7, rows[0].InterestMonth)
}

func TestInterestAmount_Rounds(t *testing.T) {
	require.Equal(t, "20", InterestAmount(2000, 1).String())
	require.Equal(t, "0.13", InterestAmount(25, 0).Add(InterestAmount(13, 1)).String())
	require.Equal(t, "3.33", InterestAmount(111, 3).String())
}
