package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// stateTrip returns an opened trip with a 4–8 participant itinerary and a
// booking window closing on June 30.
func stateTrip(state domain.TripState, participants int) domain.Trip {
	return domain.Trip{
		State:           state,
		Participants:    participants,
		BookingsOpenOn:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		BookingsCloseOn: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Itinerary: domain.Itinerary{
			MinParticipants: 4,
			MaxParticipants: 8,
		},
	}
}

var (
	insideWindow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	afterWindow  = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
)

func TestEvaluate_PendingStaysPendingBelowMinimum(t *testing.T) {
	got, err := stateTrip(domain.StatePendingConfirmation, 3).Evaluate(insideWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingConfirmation, got)
}

func TestEvaluate_PendingConfirmsOpenAtMinimum(t *testing.T) {
	got, err := stateTrip(domain.StatePendingConfirmation, 4).Evaluate(insideWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedOpen, got)
}

// A pending trip that fills to the maximum closes directly, skipping the
// confirmed-open intermediate state.
func TestEvaluate_PendingClosesDirectlyAtMaximum(t *testing.T) {
	got, err := stateTrip(domain.StatePendingConfirmation, 8).Evaluate(insideWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedClosed, got)
}

func TestEvaluate_PendingExpiresWhenWindowElapses(t *testing.T) {
	got, err := stateTrip(domain.StatePendingConfirmation, 3).Evaluate(afterWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateExpiredClosed, got)
}

// Participant checks win over expiry: a trip that reached its minimum in the
// same pass in which its window elapsed still confirms.
func TestEvaluate_MinimumReachedWinsOverExpiry(t *testing.T) {
	got, err := stateTrip(domain.StatePendingConfirmation, 4).Evaluate(afterWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedOpen, got)
}

// The close date itself is still inside the window; only the day after
// counts as elapsed.
func TestEvaluate_CloseDateIsStillOpen(t *testing.T) {
	closeOn := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	got, err := stateTrip(domain.StatePendingConfirmation, 3).Evaluate(closeOn)

	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingConfirmation, got)
}

// A real clock carries a time of day; any moment on the closing day must
// still count as inside the window, not just its midnight instant.
func TestEvaluate_CloseDateMidDayIsStillOpen(t *testing.T) {
	midday := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	got, err := stateTrip(domain.StatePendingConfirmation, 3).Evaluate(midday)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingConfirmation, got)

	got, err = stateTrip(domain.StateConfirmedOpen, 5).Evaluate(midday)
	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedOpen, got)
}

func TestEvaluate_ConfirmedOpenClosesAtMaximum(t *testing.T) {
	got, err := stateTrip(domain.StateConfirmedOpen, 8).Evaluate(insideWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedClosed, got)
}

func TestEvaluate_ConfirmedOpenClosesWhenWindowElapses(t *testing.T) {
	got, err := stateTrip(domain.StateConfirmedOpen, 5).Evaluate(afterWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedClosed, got)
}

func TestEvaluate_ConfirmedOpenStaysOpenInsideWindow(t *testing.T) {
	got, err := stateTrip(domain.StateConfirmedOpen, 5).Evaluate(insideWindow)

	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmedOpen, got)
}

// Closed, expired, and cancelled states never transition automatically, even
// when the participant count or window would otherwise trigger one.
func TestEvaluate_TerminalStatesAreAbsorbing(t *testing.T) {
	for _, state := range []domain.TripState{
		domain.StateConfirmedClosed,
		domain.StateExpiredClosed,
		domain.StateCancelled,
	} {
		got, err := stateTrip(state, 8).Evaluate(afterWindow)

		require.NoError(t, err)
		assert.Equal(t, state, got, "state %s should be absorbing", state)
	}
}

// Evaluate is pure: calling it twice on the same trip yields the same result.
func TestEvaluate_Idempotent(t *testing.T) {
	trip := stateTrip(domain.StatePendingConfirmation, 4)

	first, err := trip.Evaluate(insideWindow)
	require.NoError(t, err)
	second, err := trip.Evaluate(insideWindow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_RejectsUnopenedTrip(t *testing.T) {
	trip := stateTrip("", 0)
	trip.State = ""

	_, err := trip.Evaluate(insideWindow)

	assert.ErrorIs(t, err, domain.ErrTripNotOpen)
}

func TestEvaluate_RejectsMissingBounds(t *testing.T) {
	trip := stateTrip(domain.StatePendingConfirmation, 0)
	trip.Itinerary.MaxParticipants = 0

	_, err := trip.Evaluate(insideWindow)

	assert.ErrorIs(t, err, domain.ErrTripNotOpen)
}

func TestNextOnCancel_FromPending(t *testing.T) {
	got, err := stateTrip(domain.StatePendingConfirmation, 2).NextOnCancel()

	require.NoError(t, err)
	assert.Equal(t, domain.StateCancelled, got)
}

func TestNextOnCancel_FromExpired(t *testing.T) {
	got, err := stateTrip(domain.StateExpiredClosed, 2).NextOnCancel()

	require.NoError(t, err)
	assert.Equal(t, domain.StateCancelled, got)
}

// Cancelling an already-cancelled trip is an idempotent no-op.
func TestNextOnCancel_CancelledIsIdempotent(t *testing.T) {
	got, err := stateTrip(domain.StateCancelled, 2).NextOnCancel()

	require.NoError(t, err)
	assert.Equal(t, domain.StateCancelled, got)
}

// Confirmed trips are financially committed and cannot be cancelled.
func TestNextOnCancel_ConfirmedIsIllegal(t *testing.T) {
	for _, state := range []domain.TripState{
		domain.StateConfirmedOpen,
		domain.StateConfirmedClosed,
	} {
		_, err := stateTrip(state, 5).NextOnCancel()

		assert.ErrorIs(t, err, domain.ErrIllegalTransition, "state %s", state)
	}
}

func TestParseTripState(t *testing.T) {
	for _, valid := range []string{
		"pending_confirmation", "confirmed_open", "confirmed_closed",
		"expired_closed", "cancelled",
	} {
		got, err := domain.ParseTripState(valid)
		require.NoError(t, err)
		assert.Equal(t, domain.TripState(valid), got)
	}

	_, err := domain.ParseTripState("departed")
	assert.Error(t, err)
}

func TestTripState_AcceptsBookings(t *testing.T) {
	assert.True(t, domain.StatePendingConfirmation.AcceptsBookings())
	assert.True(t, domain.StateConfirmedOpen.AcceptsBookings())
	assert.False(t, domain.StateConfirmedClosed.AcceptsBookings())
	assert.False(t, domain.StateExpiredClosed.AcceptsBookings())
	assert.False(t, domain.StateCancelled.AcceptsBookings())
}
