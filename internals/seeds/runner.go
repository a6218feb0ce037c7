package seeds

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	memberService "chitfund_backend/internals/features/users/members/service"
	members "chitfund_backend/internals/seeds/members"
)

// RunAllSeeds loads demo data from membersFile. Already present members are skipped.
func RunAllSeeds(ctx context.Context, db *gorm.DB, svc *memberService.Service, membersFile string) {
	//* Members (each one is auto-enrolled in chit 1)
	n, err := members.SeedMembersFromJSON(ctx, db, svc, membersFile)
	if err != nil {
		slog.Error("member seed failed", "file", membersFile, "err", err)
		return
	}
	slog.Info("member seed done", "file", membersFile, "inserted", n)
}
