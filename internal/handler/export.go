// Package handler — export.go implements GET /export.
// Returns the participant manifest as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "itinerary", "state", "departure_date", "return_date",
	"booking_id", "traveler_name", "traveler_email", "departure_airport",
	"insurance", "first_name", "last_name", "date_of_birth",
}

// ManifestRowResponse is the JSON shape of one manifest row. Booking and
// participant fields are omitted for trips with no bookings.
type ManifestRowResponse struct {
	TripID        string `json:"trip_id"`
	Itinerary     string `json:"itinerary"`
	State         string `json:"state"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`

	BookingID        string `json:"booking_id,omitempty"`
	TravelerName     string `json:"traveler_name,omitempty"`
	TravelerEmail    string `json:"traveler_email,omitempty"`
	DepartureAirport string `json:"departure_airport,omitempty"`
	Insurance        string `json:"insurance,omitempty"`

	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// GetExport handles GET /export.
// It returns one row per booked participant across all trips.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Manifest(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}

	out := make([]ManifestRowResponse, len(rows))
	for i, row := range rows {
		out[i] = ManifestRowResponse(row)
	}
	respondJSON(w, http.StatusOK, out)
}

// writeCSV encodes manifest rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ManifestRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write([]string{
			r.TripID, r.Itinerary, r.State, r.DepartureDate, r.ReturnDate,
			r.BookingID, r.TravelerName, r.TravelerEmail, r.DepartureAirport,
			r.Insurance, r.FirstName, r.LastName, r.DateOfBirth,
		})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}
