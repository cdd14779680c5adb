package domain

import "fmt"

// Insurance pricing constants. The base policy is always included in a
// booking; the optional add-ons stack on top of it via decorators.
const (
	// baseInsuranceRate is the always-included policy: 10% of the trip cost.
	baseInsuranceRate = 0.10

	// cancellationRate is the cancellation add-on: 5% of the trip cost.
	cancellationRate = 0.05

	// luggageFeePerPerson is the luggage add-on: a flat fee per participant.
	luggageFeePerPerson = 20.0
)

// CostModel is the composable cost-computation capability for a booking.
// The base implementation computes trip cost and the included insurance;
// decorators wrap any CostModel and add their own delta to the insurance
// cost while delegating the trip cost unchanged. All implementations are
// pure computations over values captured at construction, safe to share
// across goroutines.
type CostModel interface {
	// TripCost is the per-person price times the participant count.
	TripCost() float64
	// InsuranceCost is the insurance portion of the total, including any
	// deltas added by decorators stacked above the base.
	InsuranceCost() float64
	// TotalCost is TripCost + InsuranceCost evaluated at this layer.
	TotalCost() float64
	// ParticipantCount is the number of people covered by the booking.
	ParticipantCount() int
}

// baseCost is the undecorated booking cost: trip cost plus the included
// 10% insurance policy.
type baseCost struct {
	perPerson    float64
	participants int
}

// NewBaseCost returns the base CostModel for a booking of the given party
// size at the given per-person price. A party smaller than one is costed as
// one: a booking always covers at least the traveler themselves.
func NewBaseCost(perPerson float64, participants int) CostModel {
	return baseCost{perPerson: perPerson, participants: participants}
}

func (b baseCost) TripCost() float64 {
	n := b.participants
	if n < 1 {
		n = 1
	}
	return b.perPerson * float64(n)
}

func (b baseCost) InsuranceCost() float64 { return b.TripCost() * baseInsuranceRate }
func (b baseCost) TotalCost() float64     { return b.TripCost() + b.InsuranceCost() }
func (b baseCost) ParticipantCount() int  { return b.participants }

// CancellationInsurance decorates a CostModel with the cancellation add-on:
// an extra 5% of the inner trip cost added to the insurance cost.
type CancellationInsurance struct {
	Inner CostModel
}

func (c CancellationInsurance) TripCost() float64 { return c.Inner.TripCost() }
func (c CancellationInsurance) InsuranceCost() float64 {
	return c.Inner.InsuranceCost() + c.Inner.TripCost()*cancellationRate
}
func (c CancellationInsurance) TotalCost() float64    { return c.TripCost() + c.InsuranceCost() }
func (c CancellationInsurance) ParticipantCount() int { return c.Inner.ParticipantCount() }

// LuggageInsurance decorates a CostModel with the luggage add-on: a flat
// per-participant fee added to the insurance cost.
type LuggageInsurance struct {
	Inner CostModel
}

func (l LuggageInsurance) TripCost() float64 { return l.Inner.TripCost() }
func (l LuggageInsurance) InsuranceCost() float64 {
	n := l.Inner.ParticipantCount()
	if n < 1 {
		n = 1
	}
	return l.Inner.InsuranceCost() + luggageFeePerPerson*float64(n)
}
func (l LuggageInsurance) TotalCost() float64    { return l.TripCost() + l.InsuranceCost() }
func (l LuggageInsurance) ParticipantCount() int { return l.Inner.ParticipantCount() }

// InsuranceOption is the traveler-facing insurance selection. Travelers pick
// from this fixed set rather than stacking decorators arbitrarily; Full is
// the composite of both add-ons.
type InsuranceOption string

const (
	InsuranceNone         InsuranceOption = "none"
	InsuranceCancellation InsuranceOption = "cancellation"
	InsuranceLuggage      InsuranceOption = "luggage"
	InsuranceFull         InsuranceOption = "full"
)

// ParseInsuranceOption converts user input to an InsuranceOption.
// The empty string means no add-on.
func ParseInsuranceOption(s string) (InsuranceOption, error) {
	switch o := InsuranceOption(s); o {
	case InsuranceNone, InsuranceCancellation, InsuranceLuggage, InsuranceFull:
		return o, nil
	case "":
		return InsuranceNone, nil
	default:
		return "", fmt.Errorf("%w: unknown insurance option %q", ErrValidation, s)
	}
}

// Apply wraps the given CostModel with the decorators this option selects.
// The add-ons are additive on the insurance cost, so the wrapping order does
// not affect the total.
func (o InsuranceOption) Apply(m CostModel) CostModel {
	switch o {
	case InsuranceCancellation:
		return CancellationInsurance{Inner: m}
	case InsuranceLuggage:
		return LuggageInsurance{Inner: m}
	case InsuranceFull:
		return CancellationInsurance{Inner: LuggageInsurance{Inner: m}}
	default:
		return m
	}
}

// RoundMoney rounds an amount to two decimals. Costs are computed unrounded
// and rounded only when persisted or displayed.
func RoundMoney(amount float64) float64 {
	if amount < 0 {
		return -RoundMoney(-amount)
	}
	return float64(int64(amount*100+0.5)) / 100
}
