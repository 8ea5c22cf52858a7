// Package purchase implements the ticket purchase orchestration: seat
// availability, code allocation, the atomic sale transaction and the
// post-commit notification hand-off.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/aeroregional/ticketing/internal/kafka"
	"github.com/aeroregional/ticketing/internal/logger"
	"github.com/aeroregional/ticketing/internal/repository"
	"github.com/aeroregional/ticketing/internal/ticket"
	"github.com/google/uuid"
)

// Stable error kinds surfaced to the HTTP boundary. Raw store errors
// never leave this package untranslated.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrFlightUnavailable = errors.New("flight unavailable")
	ErrCodeExhausted     = errors.New("ticket code attempts exhausted")
	ErrInventoryUpdate   = errors.New("inventory update failed")
	ErrTransaction       = errors.New("purchase transaction failed")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Ticket codes look like BOL-2025-K3M9QA. Anything that does not match
// the full shape is rejected before the store is touched.
var codePattern = regexp.MustCompile(`^BOL-\d{4}-[A-Z0-9]{6}$`)

const minCodeLength = 10

func validateCode(ticketCode string) error {
	if len(ticketCode) < minCodeLength {
		return fmt.Errorf("%w: ticket code must be at least %d characters", ErrInvalidInput, minCodeLength)
	}
	if !codePattern.MatchString(ticketCode) {
		return fmt.Errorf("%w: ticket code must match BOL-YYYY-XXXXXX", ErrInvalidInput)
	}
	return nil
}

type PurchaseUseCase interface {
	Purchase(ctx context.Context, input PurchaseInput) (*Result, error)
	Lookup(ctx context.Context, ticketCode string) (*domain.PurchaseWithFlight, error)
	ListByEmail(ctx context.Context, buyerEmail string) ([]domain.PurchaseWithFlight, error)
	Cancel(ctx context.Context, ticketCode string) (bool, error)
	Stats(ctx context.Context) (*domain.PurchaseStats, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PurchaseInput struct {
	FlightID   int64  `json:"flight_id"`
	BuyerEmail string `json:"buyer_email"`
}

// Result echoes everything the buyer needs after a committed sale.
// EmailQueued is false when the notification hand-off failed; the sale
// itself still stands.
type Result struct {
	PurchaseID     int64
	TicketCode     string
	Flight         domain.Flight
	BuyerEmail     string
	PurchasedAt    time.Time
	SeatsRemaining int
	EmailQueued    bool
}

type PurchaseService struct {
	purchases          repository.PurchaseRepository
	flights            repository.FlightRepository
	codes              ticket.Generator
	producer           Producer
	notificationsTopic string
	codeAttempts       int
	log                *logger.Logger
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	flights repository.FlightRepository,
	codes ticket.Generator,
	producer Producer,
	notificationsTopic string,
	codeAttempts int,
	log *logger.Logger,
) *PurchaseService {
	if codeAttempts <= 0 {
		codeAttempts = 5
	}
	return &PurchaseService{
		purchases:          purchases,
		flights:            flights,
		codes:              codes,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		codeAttempts:       codeAttempts,
		log:                log,
	}
}

// Purchase sells one seat on the flight. The insert and the seat
// decrement commit together in the repository; a code collision is
// retried with a fresh code up to codeAttempts times.
func (s *PurchaseService) Purchase(ctx context.Context, input PurchaseInput) (*Result, error) {
	if input.FlightID <= 0 {
		return nil, fmt.Errorf("%w: flight id must be positive", ErrInvalidInput)
	}
	if !emailPattern.MatchString(input.BuyerEmail) {
		return nil, fmt.Errorf("%w: malformed buyer email", ErrInvalidInput)
	}

	flight, err := s.flights.GetAvailableByID(ctx, input.FlightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: flight %d not found or sold out", ErrFlightUnavailable, input.FlightID)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	var (
		purchase  *domain.Purchase
		seatsLeft int
	)
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code := s.codes.Generate()

		purchase, seatsLeft, err = s.purchases.Create(ctx, input.FlightID, input.BuyerEmail, code)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, repository.ErrDuplicateCode):
			s.log.Warn("purchase", "ticket code %s collided, regenerating (attempt %d)", code, attempt+1)
			purchase = nil
			continue
		case errors.Is(err, repository.ErrNoSeats), errors.Is(err, repository.ErrFlightMissing):
			return nil, fmt.Errorf("%w: flight %d not found or sold out", ErrFlightUnavailable, input.FlightID)
		default:
			s.log.Error("purchase", "purchase transaction for flight %d: %v", input.FlightID, err)
			return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
		}
	}
	if purchase == nil {
		s.log.Error("purchase", "exhausted %d code attempts for flight %d", s.codeAttempts, input.FlightID)
		return nil, fmt.Errorf("%w after %d attempts", ErrCodeExhausted, s.codeAttempts)
	}

	result := &Result{
		PurchaseID:     purchase.ID,
		TicketCode:     purchase.TicketCode,
		Flight:         *flight,
		BuyerEmail:     purchase.BuyerEmail,
		PurchasedAt:    purchase.PurchasedAt,
		SeatsRemaining: seatsLeft,
		EmailQueued:    true,
	}
	result.Flight.SeatsAvailable = seatsLeft

	// The sale is durable at this point. A failed hand-off only means
	// the confirmation email may not arrive.
	if err := s.publish(ctx, kafka.EventTicketSold, purchase, flight); err != nil {
		s.log.Warn("purchase", "failed to queue notification for ticket %s: %v", purchase.TicketCode, err)
		result.EmailQueued = false
	}
	return result, nil
}

// Lookup finds a purchase by ticket code. Not-found is reported as
// repository.ErrNotFound, which the boundary renders as a 404.
func (s *PurchaseService) Lookup(ctx context.Context, ticketCode string) (*domain.PurchaseWithFlight, error) {
	if err := validateCode(ticketCode); err != nil {
		return nil, err
	}
	return s.purchases.GetByCode(ctx, ticketCode)
}

func (s *PurchaseService) ListByEmail(ctx context.Context, buyerEmail string) ([]domain.PurchaseWithFlight, error) {
	if !emailPattern.MatchString(buyerEmail) {
		return nil, fmt.Errorf("%w: malformed buyer email", ErrInvalidInput)
	}
	return s.purchases.ListByEmail(ctx, buyerEmail)
}

// Cancel deletes the purchase and restores its seat atomically.
// Cancelling an unknown code reports false without touching inventory.
func (s *PurchaseService) Cancel(ctx context.Context, ticketCode string) (bool, error) {
	if err := validateCode(ticketCode); err != nil {
		return false, err
	}

	existing, err := s.purchases.GetByCode(ctx, ticketCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	cancelled, err := s.purchases.Cancel(ctx, ticketCode)
	if err != nil {
		if errors.Is(err, repository.ErrFlightMissing) {
			s.log.Error("purchase", "cancel %s: seat restore failed: %v", ticketCode, err)
			return false, fmt.Errorf("%w: %v", ErrInventoryUpdate, err)
		}
		return false, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	if !cancelled {
		return false, nil
	}

	if err := s.publish(ctx, kafka.EventTicketCancelled, &existing.Purchase, &existing.Flight); err != nil {
		s.log.Warn("purchase", "failed to queue cancellation notice for %s: %v", ticketCode, err)
	}
	return true, nil
}

func (s *PurchaseService) Stats(ctx context.Context) (*domain.PurchaseStats, error) {
	stats, err := s.purchases.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	return stats, nil
}

func (s *PurchaseService) publish(ctx context.Context, eventType string, p *domain.Purchase, f *domain.Flight) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	event := kafka.TicketEvent{
		Type:          eventType,
		EventID:       uuid.NewString(),
		TicketCode:    p.TicketCode,
		FlightID:      f.ID,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		PriceCents:    f.PriceCents,
		Email:         p.BuyerEmail,
		PurchasedAt:   p.PurchasedAt,
	}
	return s.producer.Publish(ctx, s.notificationsTopic, p.TicketCode, event)
}

var _ PurchaseUseCase = (*PurchaseService)(nil)
