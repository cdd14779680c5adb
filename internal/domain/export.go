package domain

// ManifestRow is a single row in the participant manifest export.
// It is a flat, denormalized view: one row per participant, with trip and
// booking fields repeated. Trips without bookings yield one row with empty
// booking and participant fields so planners still see the trip.
type ManifestRow struct {
	// Trip fields — repeated for every participant on the trip.
	TripID        string
	Itinerary     string
	State         string
	DepartureDate string // "2006-01-02" formatted date
	ReturnDate    string

	// Booking fields — empty when the trip has no bookings.
	BookingID        string
	TravelerName     string
	TravelerEmail    string
	DepartureAirport string
	Insurance        string

	// Participant fields — empty when the trip has no bookings.
	FirstName   string
	LastName    string
	DateOfBirth string // "2006-01-02" formatted date
}
