package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	enrollmentModel "chitfund_backend/internals/features/chits/enrollments/model"
	interestModel "chitfund_backend/internals/features/chits/interest/model"
	paymentModel "chitfund_backend/internals/features/chits/payments/model"
	memberModel "chitfund_backend/internals/features/users/members/model"
)

type auditTable struct {
	Table   string
	Columns []string // created_by, updated_by
}

// Optional attribution columns. They are not part of the base schema: older
// deployments may lack them, so they are added best-effort and probed at startup.
var auditTables = []auditTable{
	{Table: "members", Columns: []string{"member_created_by", "member_updated_by"}},
	{Table: "chit_enrollments", Columns: []string{"enrollment_created_by", "enrollment_updated_by"}},
	{Table: "payment_records", Columns: []string{"payment_created_by", "payment_updated_by"}},
}

func Models() []any {
	return []any{
		&memberModel.MemberModel{},
		&enrollmentModel.EnrollmentModel{},
		&enrollmentModel.WeekStatusModel{},
		&paymentModel.PaymentRecordModel{},
		&interestModel.InterestRecordModel{},
	}
}

// Migrate creates the ledger tables and then tries to add the audit columns.
// Only the base schema is fatal.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	EnsureAuditColumns(db)
	return nil
}

func EnsureAuditColumns(db *gorm.DB) {
	m := db.Migrator()
	for _, t := range auditTables {
		for _, col := range t.Columns {
			if m.HasColumn(t.Table, col) {
				continue
			}
			err := db.Exec("ALTER TABLE ? ADD COLUMN ? BIGINT",
				clause.Table{Name: t.Table}, clause.Column{Name: col}).Error
			if err != nil {
				slog.Warn("audit column not added", "table", t.Table, "column", col, "err", err)
				continue
			}
			slog.Info("audit column added", "table", t.Table, "column", col)
		}
	}
}
