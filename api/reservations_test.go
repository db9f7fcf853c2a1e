package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/domain"
	"github.com/dukaramakaro/opa2-preview/internal/payment"
	"github.com/dukaramakaro/opa2-preview/internal/repository"
	"github.com/dukaramakaro/opa2-preview/internal/service/reservation"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReservationUseCase is a mock implementation of reservation.ReservationUseCase
type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Create(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) BeginPayment(ctx context.Context, code string) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

func (m *MockReservationUseCase) ConfirmPayment(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) OverrideStatus(ctx context.Context, code, status string) (bool, error) {
	args := m.Called(ctx, code, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationUseCase) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockReservationUseCase) List(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Export(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type stubProvider struct {
	code string
	paid bool
	err  error
}

func (p *stubProvider) Name() string { return "stripe" }

func (p *stubProvider) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com"}, nil
}

func (p *stubProvider) ParseWebhook(body []byte) (string, bool, error) {
	return p.code, p.paid, p.err
}

func storedReservation(code string) *domain.Reservation {
	return &domain.Reservation{
		CreatedAt:   time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC),
		Code:        code,
		Name:        "Maria Lopez",
		Email:       "maria@example.com",
		Phone:       "+52 999 123 4567",
		ServiceType: "Aeropuerto-Hotel",
		Origin:      "Aeropuerto MID",
		Destination: "Hotel Centro",
		TravelDate:  "2025-07-01",
		Passengers:  "3",
		Vehicle:     "Van",
		Total:       "950",
		Status:      domain.StatusPending,
		Notes:       "sin notas",
		Language:    "es",
	}
}

func newPublicRouter(service reservation.ReservationUseCase, provider payment.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewReservationHandler(service, provider, logger.NewNop()).Register(router)
	return router
}

func TestReservationHandler_create(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newPublicRouter(mockService, nil)

	input := reservation.CreateReservationInput{
		Name:  "Maria Lopez",
		Email: "maria@example.com",
		Total: "950",
	}
	mockService.On("Create", mock.Anything, input).Return(storedReservation("OPA2-2025-123456"), nil)

	body, _ := json.Marshal(input)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/guardar-reserva", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "OPA2-2025-123456", response["codigo"])
	assert.Equal(t, string(domain.StatusPending), response["estado"])

	mockService.AssertExpectations(t)
}

func TestReservationHandler_createPayment(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newPublicRouter(mockService, nil)

	mockService.On("BeginPayment", mock.Anything, "OPA2-2025-123456").
		Return(&payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com"}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/crear-pago", bytes.NewReader([]byte(`{"codigo":"OPA2-2025-123456"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://checkout.example.com")
}

func TestReservationHandler_confirmPayment(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newPublicRouter(mockService, nil)

	paid := storedReservation("OPA2-2025-123456")
	paid.Status = domain.StatusPaid
	mockService.On("ConfirmPayment", mock.Anything, "OPA2-2025-123456").Return(paid, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/confirmar-pago", bytes.NewReader([]byte(`{"codigo":"OPA2-2025-123456"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.StatusPaid))
}

func TestReservationHandler_confirmPaymentNotFound(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newPublicRouter(mockService, nil)

	mockService.On("ConfirmPayment", mock.Anything, "OPA2-2025-999999").Return(nil, repository.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/confirmar-pago", bytes.NewReader([]byte(`{"codigo":"OPA2-2025-999999"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationHandler_webhookConfirms(t *testing.T) {
	mockService := &MockReservationUseCase{}
	provider := &stubProvider{code: "OPA2-2025-123456", paid: true}
	router := newPublicRouter(mockService, provider)

	paid := storedReservation("OPA2-2025-123456")
	paid.Status = domain.StatusPaid
	mockService.On("ConfirmPayment", mock.Anything, "OPA2-2025-123456").Return(paid, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestReservationHandler_webhookIgnoresUnpaidEvents(t *testing.T) {
	mockService := &MockReservationUseCase{}
	provider := &stubProvider{paid: false}
	router := newPublicRouter(mockService, provider)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}

func TestReservationHandler_consultHidesContactFields(t *testing.T) {
	mockService := &MockReservationUseCase{}
	router := newPublicRouter(mockService, nil)

	mockService.On("GetByCode", mock.Anything, "OPA2-2025-123456").Return(storedReservation("OPA2-2025-123456"), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/consultar-reserva/OPA2-2025-123456", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OPA2-2025-123456")
	assert.NotContains(t, w.Body.String(), "maria@example.com")
	assert.NotContains(t, w.Body.String(), "+52 999 123 4567")
	assert.NotContains(t, w.Body.String(), "sin notas")
}
