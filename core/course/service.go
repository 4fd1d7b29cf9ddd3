package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByProfessor(ctx context.Context, profID int) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		QueryByProfessor(ctx context.Context, profID int) ([]Course, error)
		GetByID(ctx context.Context, id int) (Course, error)
		Update(ctx context.Context, id int, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Code:        nc.Code,
		Schedule:    nc.Schedule,
		ProfessorID: nc.ProfessorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *service) QueryByProfessor(ctx context.Context, profID int) ([]Course, error) {
	return svc.repo.QueryCoursesByProfessor(ctx, profID)
}

func (svc *service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs := Course{
		ID:        id,
		Title:     uc.Title,
		Code:      uc.Code,
		Schedule:  uc.Schedule,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCourse(ctx, id)
}
