package domain

import "time"

type Purchase struct {
	ID          int64     `json:"id"`
	FlightID    int64     `json:"flight_id"`
	BuyerEmail  string    `json:"buyer_email"`
	TicketCode  string    `json:"ticket_code"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PurchaseWithFlight is the ledger view joined with the flight the
// ticket was sold against. The flight snapshot ignores the seats filter,
// so sold-out flights stay visible to historical lookups.
type PurchaseWithFlight struct {
	Purchase
	Flight Flight `json:"flight"`
}

type PurchaseStats struct {
	TotalPurchases int64      `json:"total_purchases"`
	UniqueBuyers   int64      `json:"unique_buyers"`
	RevenueCents   int64      `json:"revenue_cents"`
	AvgPriceCents  int64      `json:"avg_price_cents"`
	FirstPurchase  *time.Time `json:"first_purchase,omitempty"`
	LastPurchase   *time.Time `json:"last_purchase,omitempty"`
}
