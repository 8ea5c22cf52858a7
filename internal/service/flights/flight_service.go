package flights

import (
	"context"
	"time"

	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/aeroregional/ticketing/internal/repository"
)

type FlightUseCase interface {
	Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SetSeats(ctx context.Context, id int64, seats int) (bool, error)
}

// SearchCache holds search results per (origin, destination, date).
type SearchCache interface {
	GetSearch(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	SetSearch(ctx context.Context, origin, destination string, date time.Time, flights []domain.Flight) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache SearchCache
}

func NewFlightService(repo repository.FlightRepository, cache SearchCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

// Search returns bookable flights for the route and day, earliest first.
// Cache errors fall through to the store.
func (s *FlightService) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, origin, destination, date); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.Search(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, origin, destination, date, flights)
	}
	return flights, nil
}

// GetByID returns the flight even when sold out, for display purposes.
func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// SetSeats overwrites the seat counter. Used by schedule tooling only.
func (s *FlightService) SetSeats(ctx context.Context, id int64, seats int) (bool, error) {
	return s.repo.SetSeats(ctx, id, seats)
}

var _ FlightUseCase = (*FlightService)(nil)
