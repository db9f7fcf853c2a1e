package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/dukaramakaro/opa2-preview/internal/domain"
)

// Headers is the fixed column contract of the reservation file. Order matters:
// decoding zips values against these names positionally.
var Headers = []string{
	"Fecha", "Codigo", "Nombre", "Email", "Telefono", "Vuelo", "Servicio",
	"Origen", "Destino", "FechaViaje", "Pasajeros", "Vehiculo", "Total",
	"Estado", "Notas",
}

// StatusColumn is the index of the Estado field within Headers.
const StatusColumn = 13

const timeLayout = "2006-01-02 15:04:05"

// SanitizeNotes replaces literal commas with semicolons. Notes are free text
// typed by customers; the stored contract keeps them comma-free so that rows
// stay positionally stable for older readers of the file.
func SanitizeNotes(notes string) string {
	return strings.ReplaceAll(notes, ",", ";")
}

// Fields flattens a reservation into the Headers order. Notes are sanitized
// here, nowhere else.
func Fields(r domain.Reservation) []string {
	return []string{
		r.CreatedAt.Format(timeLayout),
		r.Code,
		r.Name,
		r.Email,
		r.Phone,
		r.Flight,
		r.ServiceType,
		r.Origin,
		r.Destination,
		r.TravelDate,
		r.Passengers,
		r.Vehicle,
		r.Total,
		string(r.Status),
		SanitizeNotes(r.Notes),
	}
}

// EncodeRow renders one record as a single line with every field quoted.
// Embedded double quotes are escaped by doubling, which a standard CSV
// reader undoes on the way back in.
func EncodeRow(r domain.Reservation) string {
	return encodeFields(Fields(r))
}

// HeaderRow renders the header line in the same always-quoted form.
func HeaderRow() string {
	return encodeFields(Headers)
}

func encodeFields(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// EncodeAll renders the header row plus all records, newline-terminated.
func EncodeAll(records []domain.Reservation) []byte {
	var buf bytes.Buffer
	buf.WriteString(HeaderRow())
	buf.WriteByte('\n')
	for _, r := range records {
		buf.WriteString(EncodeRow(r))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeAll parses the full file content back into records. The first row is
// the header and is validated only for column count; a header-only file yields
// an empty slice. Short rows are rejected rather than padded.
func DecodeAll(data []byte) ([]domain.Reservation, error) {
	rows, err := ReadRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	records := make([]domain.Reservation, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r, err := fromFields(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// ReadRows parses raw file content into rows of fields, header included.
// Used by the file store when it needs to rewrite a single column without
// reinterpreting the rest of the row.
func ReadRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = len(Headers)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse reservation rows: %w", err)
	}
	return rows, nil
}

// WriteRows is the inverse of ReadRows: every field quoted, rows joined with
// newlines, trailing newline included.
func WriteRows(rows [][]string) []byte {
	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(encodeFields(row))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func fromFields(fields []string) (domain.Reservation, error) {
	if len(fields) != len(Headers) {
		return domain.Reservation{}, fmt.Errorf("expected %d fields, got %d", len(Headers), len(fields))
	}
	createdAt, err := time.Parse(timeLayout, fields[0])
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("parse Fecha %q: %w", fields[0], err)
	}
	return domain.Reservation{
		CreatedAt:   createdAt,
		Code:        fields[1],
		Name:        fields[2],
		Email:       fields[3],
		Phone:       fields[4],
		Flight:      fields[5],
		ServiceType: fields[6],
		Origin:      fields[7],
		Destination: fields[8],
		TravelDate:  fields[9],
		Passengers:  fields[10],
		Vehicle:     fields[11],
		Total:       fields[12],
		Status:      domain.ReservationStatus(fields[13]),
		Notes:       fields[14],
	}, nil
}
