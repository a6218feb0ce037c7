package dto

import (
	"time"

	"chitfund_backend/internals/features/chits/enrollments/model"
	"chitfund_backend/internals/features/chits/enrollments/service"
)

/* =============== REQUESTS =============== */

// POST /payments/chit_users
type EnrollRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	ChitNo int    `json:"chit_no" validate:"required,min=1"`
	Amount *int64 `json:"amount"  validate:"omitempty,gt=0"`
}

func (r EnrollRequest) ToInput() service.EnrollInput {
	return service.EnrollInput{MemberID: r.UserID, ChitNo: r.ChitNo, Amount: r.Amount}
}

// PATCH /payments/chits/user/:member_id/chit/:chit_no
type UpdateAmountRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

/* =============== RESPONSES =============== */

type EnrollmentResponse struct {
	ChitID    uint      `json:"chit_id"`
	UserID    uint      `json:"user_id"`
	ChitNo    int       `json:"chit_no"`
	Amount    *int64    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy *uint     `json:"created_by,omitempty"`
	UpdatedBy *uint     `json:"updated_by,omitempty"`
}

func FromModel(m model.EnrollmentModel) EnrollmentResponse {
	return EnrollmentResponse{
		ChitID:    m.EnrollmentID,
		UserID:    m.EnrollmentMemberID,
		ChitNo:    m.EnrollmentChitNo,
		Amount:    m.EnrollmentAmount,
		CreatedAt: m.EnrollmentCreatedAt,
		UpdatedAt: m.EnrollmentUpdatedAt,
		CreatedBy: m.EnrollmentCreatedBy,
		UpdatedBy: m.EnrollmentUpdatedBy,
	}
}

func FromModels(rows []model.EnrollmentModel) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

type WeekStatusResponse struct {
	PayID  uint   `json:"pay_id"`
	ChitID uint   `json:"chit_id"`
	Week   int    `json:"week"`
	IsPaid string `json:"is_paid"`
}

func FromWeekStatus(w model.WeekStatusModel) WeekStatusResponse {
	return WeekStatusResponse{
		PayID:  w.WeekStatusID,
		ChitID: w.WeekStatusEnrollmentID,
		Week:   w.WeekStatusWeek,
		IsPaid: string(w.WeekStatusIsPaid),
	}
}

func FromWeekStatuses(rows []model.WeekStatusModel) []WeekStatusResponse {
	out := make([]WeekStatusResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromWeekStatus(r))
	}
	return out
}
