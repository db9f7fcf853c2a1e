package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dukaramakaro/opa2-preview/api"
	"github.com/dukaramakaro/opa2-preview/config"
	"github.com/dukaramakaro/opa2-preview/internal/payment"
	"github.com/dukaramakaro/opa2-preview/internal/service/reservation"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc reservation.ReservationUseCase, provider payment.Provider, log logger.Logger) error {
	router := NewRouter(cfg, svc, provider, log)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

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

// NewRouter wires every handler onto a gin engine. Split out of Run so tests
// can exercise the full routing table in-process.
func NewRouter(cfg *config.Config, svc reservation.ReservationUseCase, provider payment.Provider, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api.NewReservationHandler(svc, provider, log).Register(router)
	api.NewAdminHandler(svc, cfg.Admin.Password, log).Register(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return router
}
