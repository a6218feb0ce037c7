package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MemberModel represents the members table.
type MemberModel struct {
	MemberID uint `gorm:"column:member_id;primaryKey;autoIncrement" json:"member_id"`

	MemberFullname   string         `gorm:"column:member_fullname;size:100;not null;index" json:"member_fullname"`
	MemberEmail      *string        `gorm:"column:member_email;size:100;uniqueIndex" json:"member_email,omitempty"`
	MemberPhone      string         `gorm:"column:member_phone;size:20;not null;uniqueIndex" json:"member_phone"`
	MemberNationalID *string        `gorm:"column:member_national_id;size:20;uniqueIndex" json:"member_national_id,omitempty"`
	MemberDOB        datatypes.Date `gorm:"column:member_dob;not null" json:"member_dob"`

	// Credentials never leave the service
	MemberPasswordHash string  `gorm:"column:member_password_hash;not null" json:"-"`
	MemberPinHash      *string `gorm:"column:member_pin_hash" json:"-"`
	MemberRole         string  `gorm:"column:member_role;type:varchar(20);not null;default:user" json:"member_role"`

	MemberCreatedAt time.Time `gorm:"column:member_created_at;autoCreateTime" json:"member_created_at"`
	MemberUpdatedAt time.Time `gorm:"column:member_updated_at;autoUpdateTime" json:"member_updated_at"`

	// Optional audit columns, added by the best-effort migration pass
	MemberCreatedBy *uint `gorm:"column:member_created_by;-:migration" json:"member_created_by,omitempty"`
	MemberUpdatedBy *uint `gorm:"column:member_updated_by;-:migration" json:"member_updated_by,omitempty"`
}

func (MemberModel) TableName() string { return "members" }

func (m *MemberModel) SetCreatedBy(id *uint) { m.MemberCreatedBy = id }
func (m *MemberModel) SetUpdatedBy(id *uint) { m.MemberUpdatedBy = id }
