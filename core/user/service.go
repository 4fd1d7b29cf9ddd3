package user

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if another user than
		// excludedUsers already holds the email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		QueryStudents(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// GetStudentByScanUUID matches the scan UUID exactly (case-sensitive)
		// against STUDENT users only.
		GetStudentByScanUUID(ctx context.Context, scanUUID string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetPasswordHash(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) error
	}

	// BadgeEncoder renders a student's scan UUID as a printable QR badge.
	BadgeEncoder interface {
		Badge(scanUUID string) ([]byte, error)
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		CreateStudent(ctx context.Context, ns NewStudent) (User, error)
		QueryAll(ctx context.Context) ([]User, error)
		QueryStudents(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetStudentByScanUUID(ctx context.Context, scanUUID string) (User, error)
		Update(ctx context.Context, id int, uu UpdateUser) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		conf    *core.Config
		repo    Repository
		mailSvc core.EmailService
		badge   BadgeEncoder
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService, badge BadgeEncoder) *service {
	return &service{
		conf:    conf,
		repo:    repo,
		mailSvc: mailSvc,
		badge:   badge,
	}
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		AvatarURL: nu.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if usr.AvatarURL == "" {
		usr.AvatarURL = DefaultAvatarURL(usr.Name)
	}

	pwd, err := core.RandomPassword()
	if err != nil {
		return User{}, errors.Wrap(err, "generating password")
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr, pwd)
	return usr, nil
}

func (svc *service) CreateStudent(ctx context.Context, ns NewStudent) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:          ns.Name,
		Email:         ns.Email,
		Role:          RoleStudent,
		AvatarURL:     DefaultAvatarURL(ns.Name),
		StudentUUID:   uuid.New().String(),
		PaymentStatus: DefaultPaymentStatus,
		Major:         ns.Major,
		Level:         ns.Level,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	pwd, err := core.RandomPassword()
	if err != nil {
		return User{}, errors.Wrap(err, "generating password")
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr, pwd)
	return usr, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *service) QueryStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) GetStudentByScanUUID(ctx context.Context, scanUUID string) (User, error) {
	return svc.repo.GetStudentByScanUUID(ctx, scanUUID)
}

func (svc *service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		Role:      uu.Role,
		AvatarURL: uu.AvatarURL,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// sendWelcomeMail delivers the generated credentials out-of-band. Students
// also get their QR badge attached so it can be printed right away.
func (svc *service) sendWelcomeMail(usr User, pwd string) {
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Your account credentials",
		BodyStr: fmt.Sprintf(
			"Hello %s,\n\nAn account has been created for you on %s.\n\n"+
				"Email: %s\nPassword: %s\n\n"+
				"Please log in at %s and change your password.\n",
			usr.Name, svc.conf.AppName, usr.Email, pwd, svc.conf.FrontendBaseURL,
		),
	}

	if usr.IsStudent() && svc.badge != nil {
		if png, err := svc.badge.Badge(usr.StudentUUID); err == nil {
			_ = msg.Attach(bytes.NewReader(png), "badge.png", "image/png")
		}
	}

	svc.mailSvc.SendMessages(msg)
}
