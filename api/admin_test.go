package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukaramakaro/opa2-preview/internal/codec"
	"github.com/dukaramakaro/opa2-preview/internal/domain"
	"github.com/dukaramakaro/opa2-preview/internal/service/reservation"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testPassword = "secreto-opa2"

func inputCode(v interface{}) string {
	if input, ok := v.(reservation.CreateReservationInput); ok {
		return input.Code
	}
	return "?"
}

func newAdminRouter(service *MockReservationUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAdminHandler(service, testPassword, logger.NewNop()).Register(router)
	return router
}

func adminToken() string {
	return base64.StdEncoding.EncodeToString([]byte(testPassword))
}

func TestAdminLogin(t *testing.T) {
	router := newAdminRouter(&MockReservationUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/login", bytes.NewReader([]byte(`{"password":"secreto-opa2"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, adminToken(), response["token"])
}

func TestAdminLoginWrongPassword(t *testing.T) {
	router := newAdminRouter(&MockReservationUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/login", bytes.NewReader([]byte(`{"password":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminValidateToken(t *testing.T) {
	router := newAdminRouter(&MockReservationUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/validate", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRejectsMissingToken(t *testing.T) {
	router := newAdminRouter(&MockReservationUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/reservas", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminListReservations(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newAdminRouter(mockService)

	mockService.On("List", mock.Anything).Return([]domain.Reservation{*storedReservation("OPA2-2025-123456")}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/reservas", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OPA2-2025-123456")
	assert.Contains(t, w.Body.String(), "maria@example.com")
}

func TestAdminDownload(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newAdminRouter(mockService)

	data := codec.EncodeAll([]domain.Reservation{*storedReservation("OPA2-2025-123456")})
	mockService.On("Export", mock.Anything).Return(data, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin/descargar", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "reservas.csv")
	assert.Contains(t, w.Body.String(), `"Fecha"`)
	assert.Contains(t, w.Body.String(), `"OPA2-2025-123456"`)
}

func TestAdminUpdateStatus(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newAdminRouter(mockService)

	mockService.On("OverrideStatus", mock.Anything, "OPA2-2025-123456", "Pagado").Return(true, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/actualizar-estado",
		bytes.NewReader([]byte(`{"codigo":"OPA2-2025-123456","estado":"Pagado"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":true`)
}

func TestAdminUpdateStatusNotFound(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newAdminRouter(mockService)

	mockService.On("OverrideStatus", mock.Anything, "OPA2-2025-999999", "Pagado").Return(false, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/actualizar-estado",
		bytes.NewReader([]byte(`{"codigo":"OPA2-2025-999999","estado":"Pagado"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":false`)
}

func TestAdminCreateAssignsServerCode(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newAdminRouter(mockService)

	mockService.On("Create", mock.Anything, mock.MatchedBy(func(input interface{}) bool {
		return true
	})).Return(storedReservation("OPA2-2025-654321"), nil)

	// A client-supplied code must be discarded before the service call.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/nueva-reserva",
		bytes.NewReader([]byte(`{"codigo":"HACKED-1","nombre":"Maria Lopez","email":"maria@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "OPA2-2025-654321")

	calls := mockService.Calls
	if assert.Len(t, calls, 1) {
		input := calls[0].Arguments[1]
		assert.Empty(t, inputCode(input), "handler must blank the client-supplied code")
	}
}

func TestAdminDelete(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newAdminRouter(mockService)

	mockService.On("Delete", mock.Anything, "OPA2-2025-123456").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/admin/eliminar-reserva/OPA2-2025-123456", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
