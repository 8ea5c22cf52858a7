package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type FlightRepository interface {
	Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetAvailableByID(ctx context.Context, id int64) (*domain.Flight, error)
	SetSeats(ctx context.Context, id int64, seats int) (bool, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, origin, destination, departure_time, seats_available, price_cents, created_at, updated_at`

// Search returns flights with open seats on the given calendar day,
// earliest departure first.
func (r *PGFlightRepository) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_time::date = $3::date AND seats_available > 0
		ORDER BY departure_time ASC`, origin, destination, date)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.Origin, &f.Destination, &f.DepartureTime, &f.SeatsAvailable, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// GetByID returns the flight regardless of remaining seats, so sold-out
// flights can still be displayed.
func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getByID(ctx, id, false)
}

// GetAvailableByID returns the flight only while it has open seats. A
// sold-out flight looks the same as a missing one to the purchase path.
func (r *PGFlightRepository) GetAvailableByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return r.getByID(ctx, id, true)
}

func (r *PGFlightRepository) getByID(ctx context.Context, id int64, onlyAvailable bool) (*domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id=$1`
	if onlyAvailable {
		query += ` AND seats_available > 0`
	}

	var f domain.Flight
	err := r.db.QueryRow(ctx, query, id).
		Scan(&f.ID, &f.Origin, &f.Destination, &f.DepartureTime, &f.SeatsAvailable, &f.PriceCents, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return &f, nil
}

// SetSeats overwrites the seat counter. Schedule tooling only; the
// purchase transaction uses its own conditional decrement.
func (r *PGFlightRepository) SetSeats(ctx context.Context, id int64, seats int) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE flights SET seats_available=$1, updated_at=now() WHERE id=$2`, seats, id)
	if err != nil {
		return false, fmt.Errorf("set seats: %w", err)
	}
	return res.RowsAffected() > 0, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
