// Package faculty manages the university faculties users belong to.
package faculty

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
)

var (
	ErrNotFound   = core.NewNotFoundError("faculty")
	ErrCodeExists = errors.New("a faculty with this code already exists")
)

type Faculty struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type NewFaculty struct {
	Code string `json:"code" validate:"required,max=4,alphanum_"`
	Name string `json:"name" validate:"required,max=255"`
}

func (nf *NewFaculty) Validate(validate *validator.Validate) error {
	nf.Code = core.CleanString(nf.Code)
	nf.Name = core.CleanString(nf.Name)
	return validate.Struct(nf)
}

type Repository interface {
	CreateFaculty(ctx context.Context, f Faculty) (Faculty, error)
	GetFaculty(ctx context.Context, id string) (Faculty, error)
	QueryFaculties(ctx context.Context) ([]Faculty, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nf NewFaculty) (Faculty, error) {
	f, err := svc.repo.CreateFaculty(ctx, Faculty{ID: core.NewID(), Code: nf.Code, Name: nf.Name})
	if errors.Cause(err) == ErrCodeExists {
		return Faculty{}, core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	return f, err
}

func (svc *Service) GetByID(ctx context.Context, id string) (Faculty, error) {
	if !core.IsValidID(id) {
		return Faculty{}, ErrNotFound
	}
	return svc.repo.GetFaculty(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Faculty, error) {
	return svc.repo.QueryFaculties(ctx)
}
