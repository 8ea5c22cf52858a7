package domain

import "time"

type Flight struct {
	ID             int64     `json:"id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	SeatsAvailable int       `json:"seats_available"`
	PriceCents     int64     `json:"price_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
