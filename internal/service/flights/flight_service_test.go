package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Search(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, date)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetAvailableByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SetSeats(ctx context.Context, id int64, seats int) (bool, error) {
	args := m.Called(ctx, id, seats)
	return args.Bool(0), args.Error(1)
}

type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) GetSearch(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockSearchCache) SetSearch(ctx context.Context, origin, destination string, date time.Time, flights []domain.Flight) error {
	args := m.Called(ctx, origin, destination, date, flights)
	return args.Error(0)
}

var searchDate = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

func sampleFlights() []domain.Flight {
	return []domain.Flight{
		{ID: 1, Origin: "SCL", Destination: "ANF", DepartureTime: searchDate.Add(8 * time.Hour), SeatsAvailable: 12, PriceCents: 4500000},
		{ID: 2, Origin: "SCL", Destination: "ANF", DepartureTime: searchDate.Add(14 * time.Hour), SeatsAvailable: 3, PriceCents: 3900000},
	}
}

func TestFlightService_Search_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockSearchCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := sampleFlights()

	mockCache.On("GetSearch", ctx, "SCL", "ANF", searchDate).Return(nil, nil)
	mockRepo.On("Search", ctx, "SCL", "ANF", searchDate).Return(flights, nil)
	mockCache.On("SetSearch", ctx, "SCL", "ANF", searchDate, flights).Return(nil)

	got, err := service.Search(ctx, "SCL", "ANF", searchDate)

	assert.NoError(t, err)
	assert.Equal(t, flights, got)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockSearchCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := sampleFlights()

	mockCache.On("GetSearch", ctx, "SCL", "ANF", searchDate).Return(flights, nil)

	got, err := service.Search(ctx, "SCL", "ANF", searchDate)

	assert.NoError(t, err)
	assert.Equal(t, flights, got)
	mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Search_CacheErrorFallsThrough(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockSearchCache{}
	service := NewFlightService(mockRepo, mockCache)

	ctx := context.Background()
	flights := sampleFlights()

	mockCache.On("GetSearch", ctx, "SCL", "ANF", searchDate).Return(nil, errors.New("redis down"))
	mockRepo.On("Search", ctx, "SCL", "ANF", searchDate).Return(flights, nil)
	mockCache.On("SetSearch", ctx, "SCL", "ANF", searchDate, flights).Return(errors.New("redis down"))

	got, err := service.Search(ctx, "SCL", "ANF", searchDate)

	assert.NoError(t, err)
	assert.Equal(t, flights, got)
}

func TestFlightService_Search_NoCache(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("Search", ctx, "SCL", "ANF", searchDate).Return([]domain.Flight{}, nil)

	got, err := service.Search(ctx, "SCL", "ANF", searchDate)

	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	ctx := context.Background()
	soldOut := &domain.Flight{ID: 1, Origin: "SCL", Destination: "ANF", SeatsAvailable: 0}
	mockRepo.On("GetByID", ctx, int64(1)).Return(soldOut, nil)

	got, err := service.GetByID(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, 0, got.SeatsAvailable)
}

func TestFlightService_SetSeats(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("SetSeats", ctx, int64(1), 25).Return(true, nil)

	ok, err := service.SetSeats(ctx, 1, 25)

	assert.NoError(t, err)
	assert.True(t, ok)
	mockRepo.AssertExpectations(t)
}
