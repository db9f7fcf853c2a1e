package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/payment"
	"github.com/dukaramakaro/opa2-preview/internal/repository"
	"github.com/dukaramakaro/opa2-preview/internal/service/reservation"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service  reservation.ReservationUseCase
	provider payment.Provider
	log      logger.Logger
}

type codeRequest struct {
	Code string `json:"codigo"`
}

type reservationResponse struct {
	Code        string `json:"codigo"`
	Status      string `json:"estado"`
	CreatedAt   string `json:"fecha"`
	ServiceType string `json:"servicio"`
	Origin      string `json:"origen"`
	Destination string `json:"destino"`
	TravelDate  string `json:"fecha_viaje"`
	Passengers  string `json:"pasajeros"`
	Vehicle     string `json:"vehiculo"`
	Total       string `json:"total"`
}

func NewReservationHandler(service reservation.ReservationUseCase, provider payment.Provider, log logger.Logger) *ReservationHandler {
	return &ReservationHandler{service: service, provider: provider, log: log}
}

func (h *ReservationHandler) Register(router gin.IRouter) {
	router.POST("/guardar-reserva", h.create)
	router.POST("/crear-pago", h.createPayment)
	router.POST("/confirmar-pago", h.confirmPayment)
	router.POST("/webhook/:provider", h.webhook)
	router.GET("/consultar-reserva/:code", h.consult)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var input reservation.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"codigo": r.Code,
		"estado": string(r.Status),
		"fecha":  r.CreatedAt.Format(time.RFC3339),
	})
}

func (h *ReservationHandler) createPayment(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.BeginPayment(c.Request.Context(), req.Code)
	if err != nil {
		h.fail(c, err, "create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}

func (h *ReservationHandler) confirmPayment(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.ConfirmPayment(c.Request.Context(), req.Code)
	if err != nil {
		h.fail(c, err, "confirm payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"codigo": r.Code, "estado": string(r.Status)})
}

// webhook receives the provider-initiated confirmation. Unknown provider names
// and events that are not payment completions are acknowledged without effect
// so the provider stops retrying.
func (h *ReservationHandler) webhook(c *gin.Context) {
	if h.provider == nil || c.Param("provider") != h.provider.Name() {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, paid, err := h.provider.ParseWebhook(body)
	if err != nil {
		h.log.Warn("malformed webhook payload", "provider", h.provider.Name(), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !paid {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, err := h.service.ConfirmPayment(c.Request.Context(), code); err != nil {
		h.fail(c, err, "confirm payment from webhook")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// consult is the public read: only non-sensitive fields go out.
func (h *ReservationHandler) consult(c *gin.Context) {
	r, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err, "consult reservation")
		return
	}

	c.JSON(http.StatusOK, reservationResponse{
		Code:        r.Code,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		ServiceType: r.ServiceType,
		Origin:      r.Origin,
		Destination: r.Destination,
		TravelDate:  r.TravelDate,
		Passengers:  r.Passengers,
		Vehicle:     r.Vehicle,
		Total:       r.Total,
	})
}

func (h *ReservationHandler) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, reservation.ErrCodeRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
