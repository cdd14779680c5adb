package handler_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/handler"
)

func manifestFixture() []domain.ManifestRow {
	return []domain.ManifestRow{
		{
			TripID:           "11111111-1111-1111-1111-111111111111",
			Itinerary:        "Dolomites Traverse",
			State:            "confirmed_open",
			DepartureDate:    "2025-07-10",
			ReturnDate:       "2025-07-16",
			BookingID:        "22222222-2222-2222-2222-222222222222",
			TravelerName:     "Mara Jensen",
			TravelerEmail:    "mara@example.com",
			DepartureAirport: "AMS",
			Insurance:        "luggage",
			FirstName:        "Mara",
			LastName:         "Jensen",
			DateOfBirth:      "1990-03-14",
		},
		{
			TripID:        "33333333-3333-3333-3333-333333333333",
			Itinerary:     "Sardinia Sea Kayak",
			State:         "pending_confirmation",
			DepartureDate: "2025-09-01",
			ReturnDate:    "2025-09-05",
		},
	}
}

func TestGetExport_returnsJSONManifest(t *testing.T) {
	export := &mockExportServicer{
		manifest: func(_ context.Context) ([]domain.ManifestRow, error) {
			return manifestFixture(), nil
		},
	}
	h := newTestServer(serverDeps{export: export})

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	var got []handler.ManifestRowResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, got, 2)
	require.Equal(t, "Mara Jensen", got[0].TravelerName)
	// unbooked trips still appear, with booking fields empty
	require.Equal(t, "Sardinia Sea Kayak", got[1].Itinerary)
	require.Empty(t, got[1].BookingID)
}

func TestGetExport_csvFormatWritesHeaderAndRows(t *testing.T) {
	export := &mockExportServicer{
		manifest: func(_ context.Context) ([]domain.ManifestRow, error) {
			return manifestFixture(), nil
		},
	}
	h := newTestServer(serverDeps{export: export})

	req := httptest.NewRequest(http.MethodGet, "/export?format=csv", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + two rows
	require.Equal(t, "trip_id", records[0][0])
	require.Equal(t, "date_of_birth", records[0][12])
	require.Equal(t, "Dolomites Traverse", records[1][1])
	require.Equal(t, "luggage", records[1][9])
	// placeholder row has empty booking columns
	require.Equal(t, "", records[2][5])
}

func TestGetExport_returns500OnServiceFailure(t *testing.T) {
	export := &mockExportServicer{
		manifest: func(_ context.Context) ([]domain.ManifestRow, error) {
			return nil, context.DeadlineExceeded
		},
	}
	h := newTestServer(serverDeps{export: export})

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	var got handler.ErrorResponse
	rec := doJSON(t, h, req, &got)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal server error", got.Error.Message)
}
