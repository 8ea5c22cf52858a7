package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSeats is returned when the conditional seat decrement matches no
// row, either because the flight is sold out or because it no longer
// exists.
var ErrNoSeats = errors.New("no available seats")

// ErrDuplicateCode is returned when a ticket code collides with an
// existing purchase. The caller regenerates the code and retries.
var ErrDuplicateCode = errors.New("duplicate ticket code")

// ErrFlightMissing is returned when the purchase references a flight the
// store does not know about.
var ErrFlightMissing = errors.New("flight does not exist")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type PurchaseRepository interface {
	Create(ctx context.Context, flightID int64, buyerEmail, ticketCode string) (*domain.Purchase, int, error)
	GetByCode(ctx context.Context, ticketCode string) (*domain.PurchaseWithFlight, error)
	ListByEmail(ctx context.Context, buyerEmail string) ([]domain.PurchaseWithFlight, error)
	Cancel(ctx context.Context, ticketCode string) (bool, error)
	Stats(ctx context.Context) (*domain.PurchaseStats, error)
}

type PGPurchaseRepository struct {
	db *pgxpool.Pool
}

func NewPurchaseRepository(db *pgxpool.Pool) PurchaseRepository {
	return &PGPurchaseRepository{db: db}
}

// Create sells one seat: the conditional decrement and the purchase
// insert run in a single transaction, so a sold ticket can never exist
// against unadjusted inventory. Returns the purchase and the seats left
// on the flight after the sale.
func (r *PGPurchaseRepository) Create(ctx context.Context, flightID int64, buyerEmail, ticketCode string) (*domain.Purchase, int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var seatsLeft int
	err = tx.QueryRow(ctx, `UPDATE flights SET seats_available = seats_available - 1, updated_at = now()
		WHERE id=$1 AND seats_available > 0
		RETURNING seats_available`, flightID).Scan(&seatsLeft)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrNoSeats
		}
		return nil, 0, fmt.Errorf("reserve seat: %w", err)
	}

	purchase := &domain.Purchase{
		FlightID:   flightID,
		BuyerEmail: buyerEmail,
		TicketCode: ticketCode,
	}
	err = tx.QueryRow(ctx, `INSERT INTO purchases (flight_id, buyer_email, ticket_code, purchased_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, purchased_at`, flightID, buyerEmail, ticketCode).
		Scan(&purchase.ID, &purchase.PurchasedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, 0, ErrDuplicateCode
			case pgForeignKeyViolation:
				return nil, 0, ErrFlightMissing
			}
		}
		return nil, 0, fmt.Errorf("insert purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit purchase tx: %w", err)
	}
	return purchase, seatsLeft, nil
}

const purchaseJoin = `SELECT p.id, p.flight_id, p.buyer_email, p.ticket_code, p.purchased_at,
		f.id, f.origin, f.destination, f.departure_time, f.seats_available, f.price_cents, f.created_at, f.updated_at
	FROM purchases p
	JOIN flights f ON f.id = p.flight_id`

func (r *PGPurchaseRepository) GetByCode(ctx context.Context, ticketCode string) (*domain.PurchaseWithFlight, error) {
	row := r.db.QueryRow(ctx, purchaseJoin+` WHERE p.ticket_code=$1`, ticketCode)

	var pw domain.PurchaseWithFlight
	if err := scanPurchaseWithFlight(row, &pw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return &pw, nil
}

func (r *PGPurchaseRepository) ListByEmail(ctx context.Context, buyerEmail string) ([]domain.PurchaseWithFlight, error) {
	rows, err := r.db.Query(ctx, purchaseJoin+` WHERE p.buyer_email=$1 ORDER BY p.purchased_at DESC`, buyerEmail)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]domain.PurchaseWithFlight, 0)
	for rows.Next() {
		var pw domain.PurchaseWithFlight
		if err := scanPurchaseWithFlight(rows, &pw); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, pw)
	}
	return purchases, rows.Err()
}

// Cancel deletes the purchase and restores its seat in one transaction.
// Both must affect exactly one row, otherwise everything rolls back.
// An unknown ticket code is a no-op reporting false.
func (r *PGPurchaseRepository) Cancel(ctx context.Context, ticketCode string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var flightID int64
	err = tx.QueryRow(ctx, `DELETE FROM purchases WHERE ticket_code=$1 RETURNING flight_id`, ticketCode).Scan(&flightID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("delete purchase: %w", err)
	}

	res, err := tx.Exec(ctx, `UPDATE flights SET seats_available = seats_available + 1, updated_at = now() WHERE id=$1`, flightID)
	if err != nil {
		return false, fmt.Errorf("restore seat: %w", err)
	}
	if res.RowsAffected() == 0 {
		return false, fmt.Errorf("restore seat for flight %d: %w", flightID, ErrFlightMissing)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit cancel tx: %w", err)
	}
	return true, nil
}

func (r *PGPurchaseRepository) Stats(ctx context.Context) (*domain.PurchaseStats, error) {
	var s domain.PurchaseStats
	err := r.db.QueryRow(ctx, `SELECT COUNT(*), COUNT(DISTINCT p.buyer_email),
			COALESCE(SUM(f.price_cents), 0), COALESCE(AVG(f.price_cents), 0)::bigint,
			MIN(p.purchased_at), MAX(p.purchased_at)
		FROM purchases p
		JOIN flights f ON f.id = p.flight_id`).
		Scan(&s.TotalPurchases, &s.UniqueBuyers, &s.RevenueCents, &s.AvgPriceCents, &s.FirstPurchase, &s.LastPurchase)
	if err != nil {
		return nil, fmt.Errorf("purchase stats: %w", err)
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchaseWithFlight(row rowScanner, pw *domain.PurchaseWithFlight) error {
	return row.Scan(
		&pw.ID, &pw.FlightID, &pw.BuyerEmail, &pw.TicketCode, &pw.PurchasedAt,
		&pw.Flight.ID, &pw.Flight.Origin, &pw.Flight.Destination, &pw.Flight.DepartureTime,
		&pw.Flight.SeatsAvailable, &pw.Flight.PriceCents, &pw.Flight.CreatedAt, &pw.Flight.UpdatedAt,
	)
}

var _ PurchaseRepository = (*PGPurchaseRepository)(nil)
