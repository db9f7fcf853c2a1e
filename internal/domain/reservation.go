package domain

import "time"

type ReservationStatus string

const (
	StatusPending           ReservationStatus = "Pendiente de pago"
	StatusPaymentInProgress ReservationStatus = "Pago en proceso"
	StatusPaid              ReservationStatus = "Pagado"
)

// Reservation is one shuttle-transfer booking. Code is the external lookup
// key; every update and delete matches on it.
type Reservation struct {
	CreatedAt   time.Time
	Code        string
	Name        string
	Email       string
	Phone       string
	Flight      string
	ServiceType string
	Origin      string
	Destination string
	TravelDate  string
	Passengers  string
	Vehicle     string
	Total       string
	Status      ReservationStatus
	Notes       string
	Language    string
}
