package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReservation() domain.Reservation {
	return domain.Reservation{
		CreatedAt:   time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC),
		Code:        "OPA2-2025-123456",
		Name:        "Maria Lopez",
		Email:       "maria@example.com",
		Phone:       "+52 999 123 4567",
		Flight:      "AM512",
		ServiceType: "Aeropuerto-Hotel",
		Origin:      "Aeropuerto MID",
		Destination: "Hotel Centro",
		TravelDate:  "2025-07-01",
		Passengers:  "3",
		Vehicle:     "Van",
		Total:       "950",
		Status:      domain.StatusPending,
		Notes:       "llegar temprano",
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := sampleReservation()

	decoded, err := DecodeAll(EncodeAll([]domain.Reservation{r}))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, r, decoded[0])
}

func TestEncodeQuotesEveryField(t *testing.T) {
	row := EncodeRow(sampleReservation())

	fields := strings.Split(row, ",")
	assert.Len(t, fields, len(Headers))
	for _, f := range fields {
		assert.True(t, strings.HasPrefix(f, `"`), "field %q is not quoted", f)
		assert.True(t, strings.HasSuffix(f, `"`), "field %q is not quoted", f)
	}
}

func TestEncodeSanitizesNotesCommas(t *testing.T) {
	r := sampleReservation()
	r.Notes = "leave at 8, call first"

	row := EncodeRow(r)
	assert.Contains(t, row, `"leave at 8; call first"`)
	assert.NotContains(t, row, "leave at 8,")

	decoded, err := DecodeAll(EncodeAll([]domain.Reservation{r}))
	require.NoError(t, err)
	assert.Equal(t, "leave at 8; call first", decoded[0].Notes)
}

func TestEmbeddedQuotesSurviveRoundTrip(t *testing.T) {
	r := sampleReservation()
	r.Name = `Juan "El Rapido" Perez`

	decoded, err := DecodeAll(EncodeAll([]domain.Reservation{r}))
	require.NoError(t, err)
	assert.Equal(t, r.Name, decoded[0].Name)
}

func TestDecodeHeaderOnlyFile(t *testing.T) {
	decoded, err := DecodeAll([]byte(HeaderRow() + "\n"))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestDecodeRejectsShortRow(t *testing.T) {
	data := HeaderRow() + "\n" + `"2025-06-14 09:30:00","OPA2-2025-000001"` + "\n"
	_, err := DecodeAll([]byte(data))
	assert.Error(t, err)
}

func TestHeaderRowMatchesContract(t *testing.T) {
	assert.Equal(t,
		`"Fecha","Codigo","Nombre","Email","Telefono","Vuelo","Servicio","Origen","Destino","FechaViaje","Pasajeros","Vehiculo","Total","Estado","Notas"`,
		HeaderRow())
	assert.Equal(t, "Estado", Headers[StatusColumn])
}
