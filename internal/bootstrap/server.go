package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aeroregional/ticketing/api"
	"github.com/aeroregional/ticketing/config"
	"github.com/aeroregional/ticketing/internal/logger"
	"github.com/aeroregional/ticketing/internal/service/flights"
	"github.com/aeroregional/ticketing/internal/service/purchase"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, purchaseSvc purchase.PurchaseUseCase, log *logger.Logger) error {
	router := NewRouter(flightSvc, purchaseSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	log.Info("http", "listening on %s", cfg.HTTP.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires handlers onto a gin engine. Split out of Run so tests
// can drive the full routing table in-process.
func NewRouter(flightSvc flights.FlightUseCase, purchaseSvc purchase.PurchaseUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "flight ticket reservations",
		})
	})

	flightHandler := api.NewFlightHandler(flightSvc)
	purchaseHandler := api.NewPurchaseHandler(purchaseSvc)

	flightHandler.Register(router.Group("/api/flights"))
	purchaseHandler.Register(router.Group("/api/purchases"))
	purchaseHandler.RegisterStats(router.Group("/api/stats"))

	return router
}
