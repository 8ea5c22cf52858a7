package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aeroregional/ticketing/config"
	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds flight search results per search criteria. Entries
// expire on a short TTL rather than being invalidated on purchase, so a
// cached result may briefly overstate availability.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetSearch(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchKey(origin, destination, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, origin, destination string, date time.Time, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(origin, destination, date), payload, c.searchTTL).Err()
}

func searchKey(origin, destination string, date time.Time) string {
	return fmt.Sprintf("cache:search:%s:%s:%s", origin, destination, date.Format("2006-01-02"))
}
