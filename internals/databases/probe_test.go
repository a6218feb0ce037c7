package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	database "chitfund_backend/internals/databases"
	"chitfund_backend/internals/databases/dbtest"
	memberModel "chitfund_backend/internals/features/users/members/model"
)

func TestProbe_LegacySchemaUsesMinimalColumns(t *testing.T) {
	db := dbtest.OpenRaw(t)
	// base schema only, as an older deployment would have it
	require.NoError(t, db.AutoMigrate(database.Models()...))

	caps := database.Probe(db)
	require.False(t, caps.Audit("members"))

	caller := uint(42)
	m := memberModel.MemberModel{
		MemberFullname:     "Ravi Kumar",
		MemberPhone:        "9000000001",
		MemberDOB:          datatypes.Date(time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)),
		MemberPasswordHash: "x",
	}
	database.StampCreated(context.Background(), &m, &caller)
	require.NoError(t, db.Scopes(caps.Writable("members")).Create(&m).Error)
	require.NotZero(t, m.MemberID)
}

func TestMigrate_AddsAuditColumns(t *testing.T) {
	db := dbtest.Open(t)

	caps := database.Probe(db)
	for _, table := range []string{"members", "chit_enrollments", "payment_records"} {
		require.True(t, caps.Audit(table), table)
	}

	// idempotent on an up-to-date schema
	require.NoError(t, database.Migrate(db))

	caller := uint(7)
	m := memberModel.MemberModel{
		MemberFullname:     "Asha",
		MemberPhone:        "9000000002",
		MemberDOB:          datatypes.Date(time.Date(1985, 5, 5, 0, 0, 0, 0, time.UTC)),
		MemberPasswordHash: "x",
	}
	database.StampCreated(context.Background(), &m, &caller)
	require.NoError(t, db.Scopes(caps.Writable("members")).Create(&m).Error)

	var got memberModel.MemberModel
	require.NoError(t, db.First(&got, m.MemberID).Error)
	require.NotNil(t, got.MemberCreatedBy)
	require.Equal(t, caller, *got.MemberCreatedBy)
}

func TestNilCapabilitiesAreMinimal(t *testing.T) {
	var caps *database.Capabilities
	require.False(t, caps.Audit("members"))
	updates := caps.UpdatedBy("members", map[string]any{"member_fullname": "x"}, nil)
	require.Len(t, updates, 1)
}

func TestMigrate_FreshStoreCreatesInterestWeeks(t *testing.T) {
	db := dbtest.OpenRaw(t)
	require.NoError(t, database.Migrate(db))
	require.True(t, db.Migrator().HasColumn("interest_records", "interest_paid_weeks"))
}
