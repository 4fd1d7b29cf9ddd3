package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/user"
)

type dbUser struct {
	ID            int            `db:"id"`
	Name          string         `db:"name"`
	Email         string         `db:"email"`
	Role          string         `db:"role"`
	AvatarURL     sql.NullString `db:"avatar_url"`
	PasswordHash  []byte         `db:"password_hash"`
	StudentUUID   sql.NullString `db:"student_uuid"`
	PaymentStatus sql.NullString `db:"payment_status"`
	Major         sql.NullString `db:"major"`
	Level         sql.NullString `db:"level"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	LastLogin     sql.NullTime   `db:"last_login"`
}

func (u dbUser) toCore() user.User {
	return user.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		AvatarURL:     u.AvatarURL.String,
		PasswordHash:  u.PasswordHash,
		StudentUUID:   u.StudentUUID.String,
		PaymentStatus: u.PaymentStatus.String,
		Major:         u.Major.String,
		Level:         u.Level.String,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastLogin:     u.LastLogin.Time,
	}
}

func toDBUser(usr user.User) dbUser {
	return dbUser{
		ID:            usr.ID,
		Name:          usr.Name,
		Email:         usr.Email,
		Role:          usr.Role,
		AvatarURL:     sql.NullString{String: usr.AvatarURL, Valid: usr.AvatarURL != ""},
		PasswordHash:  usr.PasswordHash,
		StudentUUID:   sql.NullString{String: usr.StudentUUID, Valid: usr.StudentUUID != ""},
		PaymentStatus: sql.NullString{String: usr.PaymentStatus, Valid: usr.PaymentStatus != ""},
		Major:         sql.NullString{String: usr.Major, Valid: usr.Major != ""},
		Level:         sql.NullString{String: usr.Level, Valid: usr.Level != ""},
		CreatedAt:     usr.CreatedAt.UTC(),
		UpdatedAt:     usr.UpdatedAt.UTC(),
		LastLogin:     sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
}

const userColumns = `id, name, email, role, avatar_url, password_hash,
	student_uuid, payment_status, major, level, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a violation of the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == "23505" && pqErr.Constraint == constraint
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int64, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		exclIDs = append(exclIDs, int64(u.ID))
	}

	var exists bool
	err := repo.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND id <> ALL($2))`,
		email, pq.Array(exclIDs),
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	u := toDBUser(usr)
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO "user" (name, email, role, avatar_url, password_hash,
			student_uuid, payment_status, major, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		u.Name, u.Email, u.Role, u.AvatarURL, u.PasswordHash,
		u.StudentUUID, u.PaymentStatus, u.Major, u.Level, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return u.toCore(), nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var users []dbUser
	err := repo.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM "user" ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.toCoreSlice(users), nil
}

func (repo userRepository) QueryStudents(ctx context.Context) ([]user.User, error) {
	var users []dbUser
	err := repo.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM "user" WHERE role = $1 ORDER BY name ASC`,
		user.RoleStudent)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return repo.toCoreSlice(users), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM "user" WHERE id = $1`, id)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by ID")
	}
	return u.toCore(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM "user" WHERE email = $1`, email)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return u.toCore(), nil
}

func (repo userRepository) GetStudentByScanUUID(ctx context.Context, scanUUID string) (user.User, error) {
	var u dbUser
	err := repo.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM "user" WHERE role = $1 AND student_uuid = $2`,
		user.RoleStudent, scanUUID)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting student by scan UUID")
	}
	return u.toCore(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	u := toDBUser(usr)
	var updated dbUser
	// student_uuid is immutable once issued and deliberately not updatable
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE "user"
		SET name = $2, email = $3, role = $4, avatar_url = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.Role, u.AvatarURL, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return updated.toCore(), nil
}

func (repo userRepository) SetPasswordHash(ctx context.Context, usr user.User) (user.User, error) {
	var updated dbUser
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE "user" SET password_hash = $2, updated_at = $3 WHERE id = $1 RETURNING `+userColumns,
		usr.ID, usr.PasswordHash, time.Now().UTC())
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "setting password hash")
	}
	return updated.toCore(), nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	var updated dbUser
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE "user" SET last_login = $2 WHERE id = $1 RETURNING `+userColumns,
		usr.ID, time.Now().UTC())
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "setting last login")
	}
	return updated.toCore(), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	idArr := make([]int64, 0, len(ids))
	for _, id := range ids {
		idArr = append(idArr, int64(id))
	}
	if _, err := repo.db.ExecContext(ctx,
		`DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(idArr)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo userRepository) toCoreSlice(users []dbUser) []user.User {
	res := make([]user.User, 0, len(users))
	for _, u := range users {
		res = append(res, u.toCore())
	}
	return res
}
