package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"chitfund_backend/internals/features/chits/payments/model"
	helper "chitfund_backend/internals/helpers"
	"chitfund_backend/internals/helpers/apperr"
)

type PaymentFilter struct {
	MemberID      *uint
	ChitNo        *int
	TransactionID string
	Paging        helper.Paging
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListPayments returns newest first. A transaction id filter matches every
// payment sharing its prefix before the first '-'.
func (e *Engine) ListPayments(ctx context.Context, db *gorm.DB, f PaymentFilter) ([]model.PaymentRecordModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.PaymentRecordModel{})
	if f.MemberID != nil {
		q = q.Where("payment_member_id = ?", *f.MemberID)
	}
	if f.ChitNo != nil {
		q = q.Where("payment_chit_no = ?", *f.ChitNo)
	}
	if strings.TrimSpace(f.TransactionID) != "" {
		prefix := model.TransactionPrefix(f.TransactionID)
		q = q.Where(`(payment_transaction_id = ? OR payment_transaction_id LIKE ? ESCAPE '\')`,
			prefix, likeEscaper.Replace(prefix)+"-%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("error counting payments", err)
	}
	rows := make([]model.PaymentRecordModel, 0)
	if err := q.Order("payment_created_at DESC").Order("payment_id DESC").
		Offset(f.Paging.Offset()).Limit(f.Paging.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal("error listing payments", err)
	}
	return rows, total, nil
}

func (e *Engine) GetPayment(ctx context.Context, db *gorm.DB, id uint) (*model.PaymentRecordModel, error) {
	var p model.PaymentRecordModel
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment %d not found", id)
		}
		return nil, apperr.Internal("error loading payment", err)
	}
	return &p, nil
}
