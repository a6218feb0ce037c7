package model

import (
	"time"

	memberModel "chitfund_backend/internals/features/users/members/model"
)

// EnrollmentModel is a member's stake in one chit cycle (table chit_enrollments).
//
// (member_id, amount) is unique; NULL amounts never collide so a member can
// hold any number of not-yet-priced enrollments.
type EnrollmentModel struct {
	EnrollmentID       uint   `gorm:"column:enrollment_id;primaryKey;autoIncrement" json:"chit_id"`
	EnrollmentMemberID uint   `gorm:"column:enrollment_member_id;not null;index;uniqueIndex:uq_enrollment_member_amount,priority:1" json:"user_id"`
	EnrollmentChitNo   int    `gorm:"column:enrollment_chit_no;not null;index" json:"chit_no"`
	EnrollmentAmount   *int64 `gorm:"column:enrollment_amount;uniqueIndex:uq_enrollment_member_amount,priority:2" json:"amount"`

	EnrollmentCreatedAt time.Time `gorm:"column:enrollment_created_at;autoCreateTime" json:"created_at"`
	EnrollmentUpdatedAt time.Time `gorm:"column:enrollment_updated_at;autoUpdateTime" json:"updated_at"`

	EnrollmentCreatedBy *uint `gorm:"column:enrollment_created_by;-:migration" json:"created_by,omitempty"`
	EnrollmentUpdatedBy *uint `gorm:"column:enrollment_updated_by;-:migration" json:"updated_by,omitempty"`

	Member *memberModel.MemberModel `gorm:"foreignKey:EnrollmentMemberID;references:MemberID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EnrollmentModel) TableName() string { return "chit_enrollments" }

func (e *EnrollmentModel) SetCreatedBy(id *uint) { e.EnrollmentCreatedBy = id }
func (e *EnrollmentModel) SetUpdatedBy(id *uint) { e.EnrollmentUpdatedBy = id }

// AmountDiffers reports whether a payment of amount would change the pledge.
func (e *EnrollmentModel) AmountDiffers(amount int64) bool {
	return e.EnrollmentAmount == nil || *e.EnrollmentAmount != amount
}
