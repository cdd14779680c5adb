package service

import (
	"context"
	"fmt"

	"github.com/lucamoretti/adventure-together/internal/domain"
	"github.com/lucamoretti/adventure-together/internal/repo"
)

// manifestDate is the date layout used in manifest exports.
const manifestDate = "2006-01-02"

// ExportService assembles the flat passenger manifest planners hand to
// operators and insurers.
type ExportService struct {
	trips    repo.TripRepo
	bookings repo.BookingRepo
}

func NewExportService(trips repo.TripRepo, bookings repo.BookingRepo) *ExportService {
	return &ExportService{trips: trips, bookings: bookings}
}

// Manifest returns one row per booked participant across all trips. A trip
// with no bookings still contributes a single row so the manifest shows it.
func (s *ExportService) Manifest(ctx context.Context) ([]domain.ManifestRow, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Manifest: %w", err)
	}

	var rows []domain.ManifestRow
	for _, trip := range trips {
		base := domain.ManifestRow{
			TripID:        trip.ID.String(),
			Itinerary:     trip.Itinerary.Title,
			State:         string(trip.State),
			DepartureDate: trip.DepartureDate.Format(manifestDate),
			ReturnDate:    trip.ReturnDate.Format(manifestDate),
		}

		bookings, err := s.bookings.ListByTrip(ctx, trip.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Manifest: trip %s: %w", trip.ID, err)
		}
		if len(bookings) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, booking := range bookings {
			for _, p := range booking.Participants {
				row := base
				row.BookingID = booking.ID.String()
				row.TravelerName = booking.TravelerName
				row.TravelerEmail = booking.TravelerEmail
				row.DepartureAirport = booking.DepartureAirport
				row.Insurance = string(booking.Insurance)
				row.FirstName = p.FirstName
				row.LastName = p.LastName
				row.DateOfBirth = p.DateOfBirth.Format(manifestDate)
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}
