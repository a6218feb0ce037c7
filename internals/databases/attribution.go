package database

import (
	"context"
	"log/slog"
)

type attributable interface {
	SetCreatedBy(id *uint)
	SetUpdatedBy(id *uint)
}

// StampCreated sets created_by/updated_by on a new row. Attribution never
// fails the write: panics are logged and swallowed.
func StampCreated(ctx context.Context, row any, caller *uint) {
	defer func() {
		if r := recover(); r != nil {
			slog.WarnContext(ctx, "attribution skipped", "panic", r)
		}
	}()
	a, ok := row.(attributable)
	if !ok {
		return
	}
	a.SetCreatedBy(caller)
	a.SetUpdatedBy(caller)
}
