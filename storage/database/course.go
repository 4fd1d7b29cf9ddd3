package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/course"
)

type dbCourse struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Code        string    `db:"code"`
	ProfessorID int       `db:"professor_id"`
	Schedule    string    `db:"schedule"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (c dbCourse) toCore() course.Course {
	return course.Course(c)
}

const courseColumns = `id, title, code, professor_id, schedule, created_at, updated_at`

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO course (title, code, professor_id, schedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		crs.Title, crs.Code, crs.ProfessorID, crs.Schedule, crs.CreatedAt.UTC(), crs.UpdatedAt.UTC(),
	).Scan(&crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var courses []dbCourse
	err := repo.db.SelectContext(ctx, &courses,
		`SELECT `+courseColumns+` FROM course ORDER BY title ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return repo.toCoreSlice(courses), nil
}

func (repo courseRepository) QueryCoursesByProfessor(ctx context.Context, profID int) ([]course.Course, error) {
	var courses []dbCourse
	err := repo.db.SelectContext(ctx, &courses,
		`SELECT `+courseColumns+` FROM course WHERE professor_id = $1 ORDER BY title ASC`, profID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by professor")
	}
	return repo.toCoreSlice(courses), nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	var c dbCourse
	err := repo.db.GetContext(ctx, &c,
		`SELECT `+courseColumns+` FROM course WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "getting course by ID")
	}
	return c.toCore(), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	var updated dbCourse
	err := repo.db.GetContext(ctx, &updated,
		`UPDATE course
		SET title = $2, code = $3, schedule = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+courseColumns,
		crs.ID, crs.Title, crs.Code, crs.Schedule, crs.UpdatedAt.UTC())
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "updating course")
	}
	return updated.toCore(), nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo courseRepository) toCoreSlice(courses []dbCourse) []course.Course {
	res := make([]course.Course, 0, len(courses))
	for _, c := range courses {
		res = append(res, c.toCore())
	}
	return res
}
