package dto

import (
	"strings"
	"time"

	enrollmentDTO "chitfund_backend/internals/features/chits/enrollments/dto"
	"chitfund_backend/internals/features/users/members/model"
	"chitfund_backend/internals/features/users/members/service"
)

const dobLayout = "2006-01-02"

/* =============== REQUESTS =============== */

// POST /members
type RegisterMemberRequest struct {
	Fullname   string  `json:"fullname"    validate:"required,min=2,max=100"`
	Email      *string `json:"email"       validate:"omitempty,email,max=100"`
	Phone      string  `json:"phone"       validate:"required,min=8,max=20"`
	NationalID *string `json:"national_id" validate:"omitempty,max=20"`
	DOB        string  `json:"dob"         validate:"required,datetime=2006-01-02"`
	Password   string  `json:"password"    validate:"omitempty,min=8,max=72"`
	PIN        *string `json:"pin"         validate:"omitempty,numeric,min=4,max=6"`
	Role       string  `json:"role"        validate:"omitempty,oneof=user admin"`
}

func (r RegisterMemberRequest) ToInput() service.RegisterInput {
	dob, _ := time.Parse(dobLayout, strings.TrimSpace(r.DOB))
	return service.RegisterInput{
		Fullname:   r.Fullname,
		Email:      r.Email,
		Phone:      r.Phone,
		NationalID: r.NationalID,
		DOB:        dob,
		Password:   r.Password,
		PIN:        r.PIN,
		Role:       r.Role,
	}
}

// PUT /members/:id, only the fields sent are changed.
type UpdateMemberRequest struct {
	Fullname   *string `json:"fullname"    validate:"omitempty,min=2,max=100"`
	Email      *string `json:"email"       validate:"omitempty,email,max=100"`
	Phone      *string `json:"phone"       validate:"omitempty,min=8,max=20"`
	NationalID *string `json:"national_id" validate:"omitempty,max=20"`
	DOB        *string `json:"dob"         validate:"omitempty,datetime=2006-01-02"`
	Password   *string `json:"password"    validate:"omitempty,min=8,max=72"`
	PIN        *string `json:"pin"         validate:"omitempty,numeric,min=4,max=6"`
	Role       *string `json:"role"        validate:"omitempty,oneof=user admin"`
}

func (r UpdateMemberRequest) ToInput() service.UpdateInput {
	in := service.UpdateInput{
		Fullname:   r.Fullname,
		Email:      r.Email,
		Phone:      r.Phone,
		NationalID: r.NationalID,
		Password:   r.Password,
		PIN:        r.PIN,
		Role:       r.Role,
	}
	if r.DOB != nil {
		if dob, err := time.Parse(dobLayout, strings.TrimSpace(*r.DOB)); err == nil {
			in.DOB = &dob
		}
	}
	return in
}

/* =============== RESPONSES =============== */

type MemberResponse struct {
	MemberID   uint      `json:"member_id"`
	Fullname   string    `json:"fullname"`
	Email      *string   `json:"email"`
	Phone      string    `json:"phone"`
	NationalID *string   `json:"national_id"`
	DOB        string    `json:"dob"`
	Role       string    `json:"role"`
	HasPIN     bool      `json:"has_pin"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromModel(m model.MemberModel) MemberResponse {
	return MemberResponse{
		MemberID:   m.MemberID,
		Fullname:   m.MemberFullname,
		Email:      m.MemberEmail,
		Phone:      m.MemberPhone,
		NationalID: m.MemberNationalID,
		DOB:        time.Time(m.MemberDOB).Format(dobLayout),
		Role:       m.MemberRole,
		HasPIN:     m.MemberPinHash != nil,
		CreatedAt:  m.MemberCreatedAt,
		UpdatedAt:  m.MemberUpdatedAt,
	}
}

func FromModels(rows []model.MemberModel) []MemberResponse {
	out := make([]MemberResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

// RegisterResponse carries the generated password once; it is never stored in clear.
type RegisterResponse struct {
	Member            MemberResponse                    `json:"member"`
	Chit              *enrollmentDTO.EnrollmentResponse `json:"chit"`
	GeneratedPassword string                            `json:"generated_password,omitempty"`
}

func FromRegisterResult(res *service.RegisterResult) RegisterResponse {
	out := RegisterResponse{
		Member:            FromModel(*res.Member),
		GeneratedPassword: res.GeneratedPassword,
	}
	if res.Enrollment != nil {
		e := enrollmentDTO.FromModel(*res.Enrollment)
		out.Chit = &e
	}
	return out
}
