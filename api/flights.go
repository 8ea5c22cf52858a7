package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aeroregional/ticketing/internal/repository"
	"github.com/aeroregional/ticketing/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type setSeatsRequest struct {
	SeatsAvailable *int `json:"seats_available"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.PATCH("/:id/seats", h.setSeats)
}

func (h *FlightHandler) search(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	rawDate := c.Query("date")
	if origin == "" || destination == "" || rawDate == "" {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "origin, destination and date are required"))
		return
	}

	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "date must be formatted YYYY-MM-DD"))
		return
	}

	results, err := h.service.Search(c.Request.Context(), origin, destination, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("transaction", "flight search failed"))
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "flight id must be a positive integer"))
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("not_found", "flight does not exist"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody("transaction", "flight fetch failed"))
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) setSeats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "flight id must be a positive integer"))
		return
	}

	var req setSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SeatsAvailable == nil || *req.SeatsAvailable < 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid_input", "seats_available must be a non-negative integer"))
		return
	}

	updated, err := h.service.SetSeats(c.Request.Context(), id, *req.SeatsAvailable)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("transaction", "seat update failed"))
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, errorBody("not_found", "flight does not exist"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight_id": id, "seats_available": *req.SeatsAvailable})
}
