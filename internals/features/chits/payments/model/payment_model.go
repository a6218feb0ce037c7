package model

import (
	"strings"
	"time"
)

/* ===================== Enums (string) ===================== */

type PaymentType string
type PaymentStatus string

const (
	PaymentTypeCard       PaymentType = "card"
	PaymentTypeUPI        PaymentType = "UPI"
	PaymentTypeNetBanking PaymentType = "netbanking"
)

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ParsePaymentType normalises the instrument token sent by clients
// ("upi", "Net-Banking", "CARD", ...) to its canonical value.
func ParsePaymentType(s string) (PaymentType, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	switch norm {
	case "card":
		return PaymentTypeCard, true
	case "upi":
		return PaymentTypeUPI, true
	case "netbanking":
		return PaymentTypeNetBanking, true
	}
	return "", false
}

/* ===================== Model ===================== */

// PaymentRecordModel is the append-only payment log (table payment_records).
// Member and chit are weak references; nothing here owns or is owned.
type PaymentRecordModel struct {
	PaymentID       uint          `gorm:"column:payment_id;primaryKey;autoIncrement" json:"pay_id"`
	PaymentMemberID uint          `gorm:"column:payment_member_id;not null;index:idx_payment_member_chit,priority:1" json:"user_id"`
	PaymentChitNo   int           `gorm:"column:payment_chit_no;not null;index:idx_payment_member_chit,priority:2" json:"chit_no"`
	PaymentAmount   int64         `gorm:"column:payment_amount;not null;check:payment_amount > 0" json:"amount"`
	PaymentWeekNo   int           `gorm:"column:payment_week_no;not null" json:"week_no"`
	PaymentType     PaymentType   `gorm:"column:payment_type;type:varchar(20);not null" json:"pay_type"`
	PaymentStatus   PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null;default:completed" json:"status"`

	// Card only
	PaymentCardNetwork *string `gorm:"column:payment_card_network;size:30" json:"card_network"`
	PaymentCardName    *string `gorm:"column:payment_card_name;size:100" json:"card_name"`
	PaymentCardExpiry  *string `gorm:"column:payment_card_expiry;size:7" json:"card_expiry"`
	// UPI only
	PaymentUPIRef *string `gorm:"column:payment_upi_ref;size:255" json:"qr"`

	// Not unique: grouped by the prefix before the first '-'
	PaymentTransactionID string  `gorm:"column:payment_transaction_id;size:64;not null;index" json:"transaction_id"`
	PaymentRemarks       *string `gorm:"column:payment_remarks;type:text" json:"remarks,omitempty"`

	PaymentCreatedAt time.Time `gorm:"column:payment_created_at;autoCreateTime;index" json:"created_at"`
	PaymentUpdatedAt time.Time `gorm:"column:payment_updated_at;autoUpdateTime" json:"updated_at"`

	PaymentCreatedBy *uint `gorm:"column:payment_created_by;-:migration" json:"created_by,omitempty"`
	PaymentUpdatedBy *uint `gorm:"column:payment_updated_by;-:migration" json:"updated_by,omitempty"`
}

func (PaymentRecordModel) TableName() string { return "payment_records" }

func (p *PaymentRecordModel) SetCreatedBy(id *uint) { p.PaymentCreatedBy = id }
func (p *PaymentRecordModel) SetUpdatedBy(id *uint) { p.PaymentUpdatedBy = id }

// TransactionPrefix returns the part of a transaction id before the first '-'.
func TransactionPrefix(txnID string) string {
	txnID = strings.TrimSpace(txnID)
	if i := strings.IndexByte(txnID, '-'); i >= 0 {
		return txnID[:i]
	}
	return txnID
}
