package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"chitfund_backend/internals/features/chits/interest/model"
	"chitfund_backend/internals/features/chits/interest/service"
)

// PATCH /interest/:id
type UpdateInterestRequest struct {
	IsPaid *bool      `json:"is_paid"`
	PaidAt *time.Time `json:"paid_at"`
}

func (r UpdateInterestRequest) ToInput() service.UpdateInput {
	return service.UpdateInput{Paid: r.IsPaid, PaidAt: r.PaidAt}
}

type InterestResponse struct {
	InterestID     uint            `json:"interest_id"`
	UserID         uint            `json:"user_id"`
	ChitID         uint            `json:"chit_id"`
	ChitNo         int             `json:"chit_no"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	WeeksPaid      int             `json:"weeks_paid"`
	PaidWeeks      []int64         `json:"paid_weeks"`
	TotalAmount    int64           `json:"total_amount"`
	InterestRate   int             `json:"interest_rate"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	CalculatedAt   time.Time       `json:"calculated_at"`
	IsPaid         bool            `json:"is_paid"`
	PaidAt         *time.Time      `json:"paid_at"`
}

func FromModel(m model.InterestRecordModel) InterestResponse {
	weeks := []int64(m.InterestPaidWeeks.Sorted())
	if weeks == nil {
		weeks = []int64{}
	}
	return InterestResponse{
		InterestID:     m.InterestID,
		UserID:         m.InterestMemberID,
		ChitID:         m.InterestEnrollmentID,
		ChitNo:         m.InterestChitNo,
		Month:          m.InterestMonth,
		Year:           m.InterestYear,
		WeeksPaid:      m.InterestWeeksPaid,
		PaidWeeks:      weeks,
		TotalAmount:    m.InterestTotalAmount,
		InterestRate:   m.InterestRate,
		InterestAmount: m.InterestAmount,
		CalculatedAt:   m.InterestCalculatedAt,
		IsPaid:         m.InterestIsPaid,
		PaidAt:         m.InterestPaidAt,
	}
}

func FromModels(rows []model.InterestRecordModel) []InterestResponse {
	out := make([]InterestResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
