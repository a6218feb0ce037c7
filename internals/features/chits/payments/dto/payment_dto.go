package dto

import (
	"time"

	"chitfund_backend/internals/features/chits/payments/model"
	"chitfund_backend/internals/features/chits/payments/service"
)

/* =============== REQUESTS =============== */

// PaymentDetails is shared by single and multi-week submissions.
type PaymentDetails struct {
	UserID        uint    `json:"user_id"        validate:"required"`
	ChitNo        int     `json:"chit_no"        validate:"required,min=1"`
	Amount        int64   `json:"amount"         validate:"required,gt=0"`
	PayType       string  `json:"pay_type"       validate:"required,max=20"`
	CardNetwork   *string `json:"card_network"   validate:"omitempty,max=30"`
	CardName      *string `json:"card_name"      validate:"omitempty,max=100"`
	CardExpiry    *string `json:"card_expiry"    validate:"omitempty,max=7"`
	QR            *string `json:"qr"             validate:"omitempty,max=255"`
	TransactionID string  `json:"transaction_id" validate:"omitempty,max=60"`
	Remarks       *string `json:"remarks"        validate:"omitempty,max=500"`
}

func (d PaymentDetails) toInput(week int) service.PaymentInput {
	return service.PaymentInput{
		MemberID:      d.UserID,
		ChitNo:        d.ChitNo,
		Amount:        d.Amount,
		WeekNo:        week,
		PayType:       d.PayType,
		CardNetwork:   d.CardNetwork,
		CardName:      d.CardName,
		CardExpiry:    d.CardExpiry,
		UPIRef:        d.QR,
		TransactionID: d.TransactionID,
		Remarks:       d.Remarks,
	}
}

// POST /payments
type CreatePaymentRequest struct {
	PaymentDetails
	WeekNo int `json:"week_no" validate:"required,min=1,max=54"`
}

func (r CreatePaymentRequest) ToInput() service.PaymentInput {
	return r.PaymentDetails.toInput(r.WeekNo)
}

// POST /payments/batch
type CreateBatchPaymentRequest struct {
	PaymentDetails
	Weeks []int `json:"weeks" validate:"required,min=1,max=54,dive,min=1,max=54"`
}

func (r CreateBatchPaymentRequest) ToInput() service.BatchPaymentInput {
	return service.BatchPaymentInput{PaymentInput: r.PaymentDetails.toInput(0), Weeks: r.Weeks}
}

/* =============== RESPONSES =============== */

type PaymentResponse struct {
	PayID         uint      `json:"pay_id"`
	UserID        uint      `json:"user_id"`
	ChitNo        int       `json:"chit_no"`
	Amount        int64     `json:"amount"`
	WeekNo        int       `json:"week_no"`
	PayType       string    `json:"pay_type"`
	CardNetwork   *string   `json:"card_network"`
	CardName      *string   `json:"card_name"`
	CardExpiry    *string   `json:"card_expiry"`
	QR            *string   `json:"qr"`
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	Remarks       *string   `json:"remarks,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     *uint     `json:"created_by,omitempty"`
}

func FromModel(p model.PaymentRecordModel) PaymentResponse {
	return PaymentResponse{
		PayID:         p.PaymentID,
		UserID:        p.PaymentMemberID,
		ChitNo:        p.PaymentChitNo,
		Amount:        p.PaymentAmount,
		WeekNo:        p.PaymentWeekNo,
		PayType:       string(p.PaymentType),
		CardNetwork:   p.PaymentCardNetwork,
		CardName:      p.PaymentCardName,
		CardExpiry:    p.PaymentCardExpiry,
		QR:            p.PaymentUPIRef,
		TransactionID: p.PaymentTransactionID,
		Status:        string(p.PaymentStatus),
		Remarks:       p.PaymentRemarks,
		CreatedAt:     p.PaymentCreatedAt,
		CreatedBy:     p.PaymentCreatedBy,
	}
}

func FromModels(rows []model.PaymentRecordModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
