package members

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"chitfund_backend/internals/features/users/members/model"
	memberService "chitfund_backend/internals/features/users/members/service"
)

type MemberSeed struct {
	Fullname   string  `json:"fullname"`
	Email      *string `json:"email"`
	Phone      string  `json:"phone"`
	NationalID *string `json:"national_id"`
	DOB        string  `json:"dob"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
}

// SeedMembersFromJSON registers every member of the file whose phone is not
// yet taken and returns how many were inserted.
func SeedMembersFromJSON(ctx context.Context, db *gorm.DB, svc *memberService.Service, filePath string) (int, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []MemberSeed
	if err := sonic.Unmarshal(file, &seeds); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	var existing []string
	if err := db.WithContext(ctx).Model(&model.MemberModel{}).
		Pluck("member_phone", &existing).Error; err != nil {
		return 0, fmt.Errorf("load existing phones: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p] = true
	}

	inserted := 0
	for _, s := range seeds {
		if taken[s.Phone] {
			slog.Info("seed member exists, skipped", "phone", s.Phone)
			continue
		}
		dob, err := time.Parse("2006-01-02", s.DOB)
		if err != nil {
			return inserted, fmt.Errorf("member %q: bad dob %q: %w", s.Fullname, s.DOB, err)
		}
		if _, err := svc.Register(ctx, db, memberService.RegisterInput{
			Fullname:   s.Fullname,
			Email:      s.Email,
			Phone:      s.Phone,
			NationalID: s.NationalID,
			DOB:        dob,
			Password:   s.Password,
			Role:       s.Role,
		}, nil); err != nil {
			return inserted, fmt.Errorf("member %q: %w", s.Fullname, err)
		}
		taken[s.Phone] = true
		inserted++
	}
	return inserted, nil
}
