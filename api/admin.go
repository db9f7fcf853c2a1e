package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/repository"
	"github.com/dukaramakaro/opa2-preview/internal/service/reservation"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the panel endpoints behind the shared-password token.
// The token is the base64 of the password checked by equality; the contract is
// deliberately this weak and is documented as such.
type AdminHandler struct {
	service  reservation.ReservationUseCase
	password string
	log      logger.Logger
}

func NewAdminHandler(service reservation.ReservationUseCase, password string, log logger.Logger) *AdminHandler {
	return &AdminHandler{service: service, password: password, log: log}
}

func (h *AdminHandler) Register(router gin.IRouter) {
	admin := router.Group("/admin")
	admin.POST("/login", h.login)

	guarded := admin.Group("", h.authorize())
	guarded.POST("/validate", h.validate)
	guarded.GET("/reservas", h.list)
	guarded.GET("/descargar", h.download)
	guarded.POST("/actualizar-estado", h.updateStatus)
	guarded.POST("/nueva-reserva", h.create)
	guarded.DELETE("/eliminar-reserva/:code", h.delete)
}

func (h *AdminHandler) token() string {
	return base64.StdEncoding.EncodeToString([]byte(h.password))
}

func (h *AdminHandler) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if h.password == "" || token != h.token() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (h *AdminHandler) login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.password == "" || req.Password != h.password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": h.token()})
}

func (h *AdminHandler) validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *AdminHandler) list(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		h.log.Error("list reservations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"fecha":       r.CreatedAt.Format(time.RFC3339),
			"codigo":      r.Code,
			"nombre":      r.Name,
			"email":       r.Email,
			"telefono":    r.Phone,
			"vuelo":       r.Flight,
			"servicio":    r.ServiceType,
			"origen":      r.Origin,
			"destino":     r.Destination,
			"fecha_viaje": r.TravelDate,
			"pasajeros":   r.Passengers,
			"vehiculo":    r.Vehicle,
			"total":       r.Total,
			"estado":      string(r.Status),
			"notas":       r.Notes,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) download(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context())
	if err != nil {
		h.log.Error("export reservations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="reservas.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *AdminHandler) updateStatus(c *gin.Context) {
	var req struct {
		Code   string `json:"codigo"`
		Status string `json:"estado"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.OverrideStatus(c.Request.Context(), req.Code, req.Status)
	if err != nil {
		if errors.Is(err, reservation.ErrCodeRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("status override failed", "code", req.Code, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"updated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// create is the admin-authored variant: the server always assigns the code.
func (h *AdminHandler) create(c *gin.Context) {
	var input reservation.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Code = ""

	r, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"codigo": r.Code, "estado": string(r.Status)})
}

func (h *AdminHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code")); err != nil {
		if errors.Is(err, reservation.ErrCodeRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"deleted": true})
			return
		}
		h.log.Error("delete reservation failed", "code", c.Param("code"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
