package reservation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/codec"
	"github.com/dukaramakaro/opa2-preview/internal/domain"
	"github.com/dukaramakaro/opa2-preview/internal/kafka"
	"github.com/dukaramakaro/opa2-preview/internal/payment"
	"github.com/dukaramakaro/opa2-preview/internal/repository"
	"github.com/dukaramakaro/opa2-preview/pkg/logger"
	"github.com/dukaramakaro/opa2-preview/pkg/metrics"
	"github.com/google/uuid"
)

// ErrCodeRequired is returned when a transition is requested without a
// reservation code. Missing codes are an input problem, not a state problem.
var ErrCodeRequired = errors.New("reservation code is required")

type ReservationUseCase interface {
	Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	GetByCode(ctx context.Context, code string) (*domain.Reservation, error)
	BeginPayment(ctx context.Context, code string) (*payment.CheckoutSession, error)
	ConfirmPayment(ctx context.Context, code string) (*domain.Reservation, error)
	OverrideStatus(ctx context.Context, code, status string) (bool, error)
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]domain.Reservation, error)
	Export(ctx context.Context) ([]byte, error)
}

type Cache interface {
	GetReservation(ctx context.Context, code string) (*domain.Reservation, error)
	SetReservation(ctx context.Context, r *domain.Reservation) error
	Invalidate(ctx context.Context, code string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateReservationInput struct {
	Code        string `json:"codigo"`
	Name        string `json:"nombre"`
	Email       string `json:"email"`
	Phone       string `json:"telefono"`
	Flight      string `json:"vuelo"`
	ServiceType string `json:"servicio"`
	Origin      string `json:"origen"`
	Destination string `json:"destino"`
	TravelDate  string `json:"fecha_viaje"`
	Passengers  string `json:"pasajeros"`
	Vehicle     string `json:"vehiculo"`
	Total       string `json:"total"`
	Notes       string `json:"notas"`
	Language    string `json:"idioma"`
}

type ReservationService struct {
	repo               repository.ReservationRepository
	cache              Cache
	producer           Producer
	provider           payment.Provider
	reservationsTopic  string
	notificationsTopic string
	baseURL            string
	metrics            *metrics.Metrics
	log                logger.Logger
}

type Option func(*ReservationService)

func WithCache(cache Cache) Option {
	return func(s *ReservationService) { s.cache = cache }
}

func WithProducer(producer Producer, reservationsTopic, notificationsTopic string) Option {
	return func(s *ReservationService) {
		s.producer = producer
		s.reservationsTopic = reservationsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithPaymentProvider(provider payment.Provider, baseURL string) Option {
	return func(s *ReservationService) {
		s.provider = provider
		s.baseURL = baseURL
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ReservationService) { s.metrics = m }
}

func NewReservationService(repo repository.ReservationRepository, log logger.Logger, opts ...Option) *ReservationService {
	service := &ReservationService{repo: repo, log: log}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if input.Name == "" {
		return nil, errors.New("name is required")
	}
	if input.Email == "" {
		return nil, errors.New("email is required")
	}

	code := input.Code
	if code == "" {
		code = newCode()
	}
	language := input.Language
	if language == "" {
		language = "es"
	}

	r := &domain.Reservation{
		Code:        code,
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Flight:      input.Flight,
		ServiceType: input.ServiceType,
		Origin:      input.Origin,
		Destination: input.Destination,
		TravelDate:  input.TravelDate,
		Passengers:  input.Passengers,
		Vehicle:     input.Vehicle,
		Total:       input.Total,
		Status:      domain.StatusPending,
		Notes:       input.Notes,
		Language:    language,
	}

	if err := s.repo.Append(ctx, r); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ReservationsCreated.Inc()
	}
	s.publish(ctx, "reservation_created", r)
	return r, nil
}

func (s *ReservationService) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}

	if s.cache != nil {
		if cached, err := s.cache.GetReservation(ctx, code); err == nil && cached != nil {
			return cached, nil
		}
	}

	r, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetReservation(ctx, r)
	}
	return r, nil
}

// BeginPayment opens a hosted checkout for the reservation and moves it to
// "Pago en proceso". The provider call is a hard dependency: its failure
// fails the request.
func (s *ReservationService) BeginPayment(ctx context.Context, code string) (*payment.CheckoutSession, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}
	if s.provider == nil {
		return nil, errors.New("no payment provider configured")
	}

	r, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseFloat(r.Total, 64)
	if err != nil {
		return nil, fmt.Errorf("reservation total %q is not numeric: %w", r.Total, err)
	}

	session, err := s.provider.CreateCheckout(ctx, payment.CheckoutRequest{
		Code:        r.Code,
		Description: fmt.Sprintf("%s: %s - %s (%s)", r.ServiceType, r.Origin, r.Destination, r.TravelDate),
		Email:       r.Email,
		Amount:      int64(amount * 100),
		SuccessURL:  fmt.Sprintf("%s/confirmacion.html?codigo=%s", s.baseURL, r.Code),
		CancelURL:   s.baseURL,
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CheckoutSessions.WithLabelValues(s.provider.Name()).Inc()
	}

	if _, err := s.repo.UpdateStatus(ctx, code, domain.StatusPaymentInProgress); err != nil {
		s.log.Warn("failed to mark payment in progress", "code", code, "error", err)
	}
	s.invalidate(ctx, code)

	return session, nil
}

// ConfirmPayment transitions the reservation to "Pagado". Confirming an
// already paid reservation succeeds and leaves it paid; the store update
// still runs.
func (s *ReservationService) ConfirmPayment(ctx context.Context, code string) (*domain.Reservation, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}

	updated, err := s.repo.UpdateStatus(ctx, code, domain.StatusPaid)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, repository.ErrNotFound
	}
	s.invalidate(ctx, code)

	r, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentsConfirmed.Inc()
	}
	s.publish(ctx, "payment_confirmed", r)
	return r, nil
}

// OverrideStatus is the manual admin escape hatch: any status string is
// accepted, no transition rules apply. Reports false when no record matched.
func (s *ReservationService) OverrideStatus(ctx context.Context, code, status string) (bool, error) {
	if code == "" {
		return false, ErrCodeRequired
	}

	updated, err := s.repo.UpdateStatus(ctx, code, domain.ReservationStatus(status))
	if err != nil {
		return false, err
	}
	if !updated {
		return false, nil
	}
	s.invalidate(ctx, code)

	if r, err := s.repo.GetByCode(ctx, code); err == nil {
		s.publish(ctx, "status_overridden", r)
	}
	return true, nil
}

func (s *ReservationService) Delete(ctx context.Context, code string) error {
	if code == "" {
		return ErrCodeRequired
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	return nil
}

// List returns reservations newest first. The store keeps insertion order, so
// the slice is reversed here.
func (s *ReservationService) List(ctx context.Context) ([]domain.Reservation, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Export serializes all reservations in the file wire format, header row
// first, records in insertion order.
func (s *ReservationService) Export(ctx context.Context) ([]byte, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return codec.EncodeAll(records), nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, r *domain.Reservation) {
	if s.producer == nil {
		return
	}
	event := kafka.ReservationEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Code:       r.Code,
		Name:       r.Name,
		Phone:      r.Phone,
		Status:     string(r.Status),
		Total:      r.Total,
		Language:   r.Language,
		OccurredAt: time.Now(),
	}
	for _, topic := range []string{s.reservationsTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, r.Code, event); err != nil {
			s.log.Warn("failed to publish reservation event", "type", eventType, "code", r.Code, "error", err)
		}
	}
}

func (s *ReservationService) invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, code); err != nil {
		s.log.Warn("failed to invalidate cached reservation", "code", code, "error", err)
	}
}

func newCode() string {
	return fmt.Sprintf("OPA2-%d-%06d", time.Now().Year(), rand.IntN(1000000))
}

var _ ReservationUseCase = (*ReservationService)(nil)
