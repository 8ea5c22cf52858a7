package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/aeroregional/ticketing/internal/domain"
	"github.com/aeroregional/ticketing/internal/repository"
	"github.com/aeroregional/ticketing/internal/service/purchase"
	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

type PurchaseHandler struct {
	service purchase.PurchaseUseCase
}

type purchaseRequest struct {
	FlightID   int64  `json:"flight_id"`
	BuyerEmail string `json:"buyer_email"`
}

type flightSummary struct {
	ID            int64  `json:"id"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	PriceCents    int64  `json:"price_cents"`
}

type purchaseResponse struct {
	PurchaseID     int64         `json:"purchase_id"`
	TicketCode     string        `json:"ticket_code"`
	Flight         flightSummary `json:"flight"`
	BuyerEmail     string        `json:"buyer_email"`
	PurchasedAt    string        `json:"purchased_at"`
	SeatsRemaining int           `json:"seats_remaining"`
	EmailQueued    bool          `json:"email_queued"`
}

type lookupResponse struct {
	TicketCode  string        `json:"ticket_code"`
	Status      string        `json:"status"`
	Flight      flightSummary `json:"flight"`
	BuyerEmail  string        `json:"buyer_email"`
	PurchasedAt string        `json:"purchased_at"`
}

type cancelResponse struct {
	Cancelled  bool   `json:"cancelled"`
	TicketCode string `json:"ticket_code"`
}

func NewPurchaseHandler(service purchase.PurchaseUseCase) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listByEmail)
	router.GET("/:code", h.lookup)
	router.GET("/:code/qr", h.qr)
	router.DELETE("/:code", h.cancel)
}

func (h *PurchaseHandler) create(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "request body must be JSON with flight_id and buyer_email"))
		return
	}

	result, err := h.service.Purchase(c.Request.Context(), purchase.PurchaseInput{
		FlightID:   req.FlightID,
		BuyerEmail: req.BuyerEmail,
	})
	if err != nil {
		writePurchaseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchaseResponse{
		PurchaseID:     result.PurchaseID,
		TicketCode:     result.TicketCode,
		Flight:         toFlightSummary(result.Flight),
		BuyerEmail:     result.BuyerEmail,
		PurchasedAt:    result.PurchasedAt.Format(time.RFC3339),
		SeatsRemaining: result.SeatsRemaining,
		EmailQueued:    result.EmailQueued,
	})
}

func (h *PurchaseHandler) lookup(c *gin.Context) {
	found, err := h.service.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		writePurchaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, lookupResponse{
		TicketCode:  found.TicketCode,
		Status:      "Confirmed",
		Flight:      toFlightSummary(found.Flight),
		BuyerEmail:  found.BuyerEmail,
		PurchasedAt: found.PurchasedAt.Format(time.RFC3339),
	})
}

func (h *PurchaseHandler) qr(c *gin.Context) {
	found, err := h.service.Lookup(c.Request.Context(), c.Param("code"))
	if err != nil {
		writePurchaseError(c, err)
		return
	}

	png, err := qrcode.Encode(found.TicketCode, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("internal", "failed to render QR code"))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *PurchaseHandler) listByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "email query parameter is required"))
		return
	}

	purchases, err := h.service.ListByEmail(c.Request.Context(), email)
	if err != nil {
		writePurchaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *PurchaseHandler) cancel(c *gin.Context) {
	code := c.Param("code")
	cancelled, err := h.service.Cancel(c.Request.Context(), code)
	if err != nil {
		writePurchaseError(c, err)
		return
	}
	if !cancelled {
		c.JSON(http.StatusNotFound, errorBody("not_found", "no purchase exists with that ticket code"))
		return
	}
	c.JSON(http.StatusOK, cancelResponse{Cancelled: true, TicketCode: code})
}

// RegisterStats mounts the operator statistics endpoint separately from
// the buyer-facing routes.
func (h *PurchaseHandler) RegisterStats(router *gin.RouterGroup) {
	router.GET("", h.stats)
}

func (h *PurchaseHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writePurchaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func toFlightSummary(f domain.Flight) flightSummary {
	return flightSummary{
		ID:            f.ID,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime.Format(time.RFC3339),
		PriceCents:    f.PriceCents,
	}
}

func errorBody(kind, message string) gin.H {
	return gin.H{"error": kind, "message": message}
}

func writePurchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, purchase.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", err.Error()))
	case errors.Is(err, purchase.ErrFlightUnavailable):
		c.JSON(http.StatusConflict, errorBody("flight_unavailable", err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not_found", "no purchase exists with that ticket code"))
	case errors.Is(err, purchase.ErrCodeExhausted):
		c.JSON(http.StatusInternalServerError, errorBody("code_exhausted", "could not allocate a unique ticket code"))
	case errors.Is(err, purchase.ErrInventoryUpdate):
		c.JSON(http.StatusInternalServerError, errorBody("inventory_update", "seat inventory could not be updated"))
	default:
		c.JSON(http.StatusInternalServerError, errorBody("transaction", "the operation could not be completed"))
	}
}
