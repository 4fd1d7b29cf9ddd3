package user

import (
	"context"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/epointy/backend/core"
)

// Roles
const (
	RoleAdmin     = "ADMIN"
	RoleDirection = "DIRECTION_MEMBER"
	RoleProf      = "PROF"
	RoleStudent   = "STUDENT"
)

// DefaultPaymentStatus is assigned to newly enrolled students.
const DefaultPaymentStatus = "PENDING"

var AllRoles = []string{RoleAdmin, RoleDirection, RoleProf, RoleStudent}

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	PasswordHash []byte `json:"-"`

	// student-only fields; StudentUUID is issued once at enrollment and
	// never changes (it is the QR code payload).
	StudentUUID   string `json:"student_uuid,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Major         string `json:"major,omitempty"`
	Level         string `json:"level,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u *User) IsDirection() bool { return u.Role == RoleDirection }
func (u *User) IsProf() bool      { return u.Role == RoleProf }
func (u *User) IsStudent() bool   { return u.Role == RoleStudent }

// DefaultAvatarURL builds a deterministic placeholder avatar for a name.
func DefaultAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}

// NewUser contains information needed to create a new User.
// The account password is generated, not supplied; it is delivered to the
// new user by email.
type NewUser struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=ADMIN DIRECTION_MEMBER PROF STUDENT"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// NewStudent contains information needed to enroll a new student.
type NewStudent struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Major string `json:"major"`
	Level string `json:"level"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Major = core.CleanString(ns.Major)
	ns.Level = core.CleanString(ns.Level)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, ns.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name      string `json:"name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role" validate:"omitempty,oneof=ADMIN DIRECTION_MEMBER PROF STUDENT"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Role == "" {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, uu.Email, origUsr)
}
