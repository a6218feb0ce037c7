package dto

import (
	"chitfund_backend/internals/features/chits/history/service"
	paymentDTO "chitfund_backend/internals/features/chits/payments/dto"
)

// HistoryResponse is one enrollment week; Payment is null for unpaid weeks.
type HistoryResponse struct {
	ChitID  uint                        `json:"chit_id"`
	UserID  uint                        `json:"user_id"`
	ChitNo  int                         `json:"chit_no"`
	Amount  *int64                      `json:"amount"`
	Week    int                         `json:"week"`
	IsPaid  string                      `json:"is_paid"`
	Payment *paymentDTO.PaymentResponse `json:"payment"`
}

func FromRows(rows []service.HistoryRow) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(rows))
	for _, r := range rows {
		item := HistoryResponse{
			ChitID: r.Enrollment.EnrollmentID,
			UserID: r.Enrollment.EnrollmentMemberID,
			ChitNo: r.Enrollment.EnrollmentChitNo,
			Amount: r.Enrollment.EnrollmentAmount,
			Week:   r.Week,
			IsPaid: string(r.IsPaid),
		}
		if r.Payment != nil {
			p := paymentDTO.FromModel(*r.Payment)
			item.Payment = &p
		}
		out = append(out, item)
	}
	return out
}
