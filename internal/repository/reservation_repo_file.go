package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/codec"
	"github.com/dukaramakaro/opa2-preview/internal/domain"
)

// FileReservationRepository persists reservations in a single quoted-CSV file.
// Appends and read-modify-write rewrites race without coordination, so every
// operation holds mu; readers take the shared side.
type FileReservationRepository struct {
	path string
	mu   sync.RWMutex
}

func NewFileRepository(path string) (*FileReservationRepository, error) {
	repo := &FileReservationRepository{path: path}
	if err := repo.init(); err != nil {
		return nil, err
	}
	return repo, nil
}

// init creates the backing file with the header row if absent. Safe to call
// again on an existing file.
func (r *FileReservationRepository) init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat reservation file: %w", err)
	}

	if err := os.WriteFile(r.path, []byte(codec.HeaderRow()+"\n"), 0o644); err != nil {
		return fmt.Errorf("create reservation file: %w", err)
	}
	return nil
}

func (r *FileReservationRepository) Append(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().Truncate(time.Second)
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open reservation file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(codec.EncodeRow(*res) + "\n"); err != nil {
		return fmt.Errorf("append reservation: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush reservation file: %w", err)
	}
	return nil
}

func (r *FileReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	// Last match wins: the most recent record with the code.
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Code == code {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdateStatus rewrites the whole file, overwriting only the Estado column of
// matching rows. The header and every non-matching row pass through unchanged.
func (r *FileReservationRepository) UpdateStatus(ctx context.Context, code string, status domain.ReservationStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.readRows()
	if err != nil {
		return false, err
	}

	updated := false
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if row[1] == code {
			row[codec.StatusColumn] = string(status)
			updated = true
		}
	}
	if !updated {
		return false, nil
	}

	if err := r.writeRows(rows); err != nil {
		return false, err
	}
	return true, nil
}

func (r *FileReservationRepository) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.readRows()
	if err != nil {
		return err
	}

	kept := rows[:0]
	removed := false
	for i, row := range rows {
		if i > 0 && row[1] == code {
			removed = true
			continue
		}
		kept = append(kept, row)
	}
	if !removed {
		return nil
	}
	return r.writeRows(kept)
}

func (r *FileReservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read reservation file: %w", err)
	}
	return codec.DecodeAll(data)
}

func (r *FileReservationRepository) readRows() ([][]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read reservation file: %w", err)
	}
	return codec.ReadRows(data)
}

func (r *FileReservationRepository) writeRows(rows [][]string) error {
	if err := os.WriteFile(r.path, codec.WriteRows(rows), 0o644); err != nil {
		return fmt.Errorf("rewrite reservation file: %w", err)
	}
	return nil
}

var _ ReservationRepository = (*FileReservationRepository)(nil)
