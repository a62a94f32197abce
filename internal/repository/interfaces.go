package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a short ID prefix matches more than one run.
var ErrAmbiguous = errors.New("ambiguous id")

type RunRepo interface {
	Create(ctx context.Context, r *domain.Run) error
	GetByID(ctx context.Context, id string) (*domain.Run, error)
	GetByPrefix(ctx context.Context, prefix string) (*domain.Run, error)
	List(ctx context.Context, limit int) ([]*domain.Run, error)
	ListQuantities(ctx context.Context, runID string) ([]domain.RunQuantity, error)
	Delete(ctx context.Context, id string) error
}
