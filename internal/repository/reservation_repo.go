package repository

import (
	"context"
	"errors"

	"github.com/dukaramakaro/opa2-preview/internal/domain"
)

// ErrNotFound is returned by GetByCode when no reservation matches the code.
var ErrNotFound = errors.New("reservation not found")

// ReservationRepository is the storage contract shared by the file-backed and
// the Postgres-backed stores. Callers never see which one they talk to.
type ReservationRepository interface {
	// Append adds one record. CreatedAt is set by the store if zero.
	Append(ctx context.Context, r *domain.Reservation) error
	// GetByCode returns the most recent record with a matching code,
	// or ErrNotFound.
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)
	// UpdateStatus overwrites the status of every record matching code.
	// It reports false, nil when nothing matched.
	UpdateStatus(ctx context.Context, code string, status domain.ReservationStatus) (bool, error)
	// Delete removes matching records. Deleting an absent code is a no-op.
	Delete(ctx context.Context, code string) error
	// List returns all records in insertion order, oldest first.
	List(ctx context.Context) ([]domain.Reservation, error)
}
