package database

import (
	"log/slog"

	"gorm.io/gorm"
)

// Capabilities records which optional columns the connected schema has.
// Computed once at startup; writers choose their column set from it.
type Capabilities struct {
	audit map[string]bool
}

func Probe(db *gorm.DB) *Capabilities {
	caps := &Capabilities{audit: make(map[string]bool, len(auditTables))}
	m := db.Migrator()
	for _, t := range auditTables {
		ok := true
		for _, col := range t.Columns {
			if !m.HasColumn(t.Table, col) {
				ok = false
				break
			}
		}
		caps.audit[t.Table] = ok
		slog.Info("schema probe", "table", t.Table, "audit_columns", ok)
	}
	return caps
}

// Audit reports whether table carries the created_by/updated_by columns.
func (c *Capabilities) Audit(table string) bool {
	if c == nil {
		return false
	}
	return c.audit[table]
}

// Writable scopes a write to the minimal column set when the audit columns are missing.
func (c *Capabilities) Writable(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.Audit(table) {
			return db
		}
		for _, t := range auditTables {
			if t.Table == table {
				return db.Omit(t.Columns...)
			}
		}
		return db
	}
}

// UpdatedBy adds the updated_by column to a map update when the schema has it.
func (c *Capabilities) UpdatedBy(table string, updates map[string]any, caller *uint) map[string]any {
	if !c.Audit(table) {
		return updates
	}
	for _, t := range auditTables {
		if t.Table == table {
			updates[t.Columns[1]] = caller
		}
	}
	return updates
}
