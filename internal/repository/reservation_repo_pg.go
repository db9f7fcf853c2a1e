package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewPGRepository(db *pgxpool.Pool) *PGReservationRepository {
	return &PGReservationRepository{db: db}
}

// InitSchema creates the reservations table if it does not exist. Idempotent,
// mirrors the header-row bootstrap of the file store.
func (r *PGReservationRepository) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS reservations (
		id bigserial PRIMARY KEY,
		created_at timestamptz NOT NULL DEFAULT now(),
		code text,
		name text NOT NULL DEFAULT '',
		email text NOT NULL DEFAULT '',
		phone text NOT NULL DEFAULT '',
		flight text NOT NULL DEFAULT '',
		service_type text NOT NULL DEFAULT '',
		origin text NOT NULL DEFAULT '',
		destination text NOT NULL DEFAULT '',
		travel_date text NOT NULL DEFAULT '',
		passengers text NOT NULL DEFAULT '',
		vehicle text NOT NULL DEFAULT '',
		total text NOT NULL DEFAULT '',
		status text NOT NULL DEFAULT '',
		notes text NOT NULL DEFAULT '',
		language text NOT NULL DEFAULT 'es'
	)`)
	if err != nil {
		return fmt.Errorf("init reservations schema: %w", err)
	}
	return nil
}

func (r *PGReservationRepository) Append(ctx context.Context, res *domain.Reservation) error {
	var createdAt *time.Time
	if !res.CreatedAt.IsZero() {
		createdAt = &res.CreatedAt
	}
	err := r.db.QueryRow(ctx, `INSERT INTO reservations
		(created_at, code, name, email, phone, flight, service_type, origin, destination, travel_date, passengers, vehicle, total, status, notes, language)
		VALUES (COALESCE($1, now()), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at`,
		createdAt, res.Code, res.Name, res.Email, res.Phone, res.Flight, res.ServiceType,
		res.Origin, res.Destination, res.TravelDate, res.Passengers, res.Vehicle,
		res.Total, res.Status, res.Notes, res.Language).
		Scan(&res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *PGReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT created_at, code, name, email, phone, flight, service_type, origin, destination, travel_date, passengers, vehicle, total, status, notes, language
		FROM reservations WHERE code=$1 ORDER BY id DESC LIMIT 1`, code)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select reservation: %w", err)
	}
	return res, nil
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, code string, status domain.ReservationStatus) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET status=$1 WHERE code=$2`, status, code)
	if err != nil {
		return false, fmt.Errorf("update reservation status: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGReservationRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE code=$1`, code); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

func (r *PGReservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT created_at, code, name, email, phone, flight, service_type, origin, destination, travel_date, passengers, vehicle, total, status, notes, language
		FROM reservations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var records []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		records = append(records, *res)
	}
	return records, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var code *string
	if err := row.Scan(&res.CreatedAt, &code, &res.Name, &res.Email, &res.Phone,
		&res.Flight, &res.ServiceType, &res.Origin, &res.Destination, &res.TravelDate,
		&res.Passengers, &res.Vehicle, &res.Total, &res.Status, &res.Notes, &res.Language); err != nil {
		return nil, err
	}
	if code != nil {
		res.Code = *code
	}
	return &res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
