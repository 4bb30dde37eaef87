package simulation

import (
	"fmt"
)

// HoursPerDay is the size of a coefficient table
const HoursPerDay = 24

// CoefficientTable maps hour of day (0 = midnight) to the fraction of the
// day's high temperature reached at that hour.
type CoefficientTable [HoursPerDay]float64

// DefaultCoefficients is a typical clear-sky curve: coolest just before
// dawn, peaking mid afternoon.
var DefaultCoefficients = CoefficientTable{
	0.70, 0.68, 0.66, 0.65, 0.64, 0.63, // 12am - 5am
	0.65, 0.69, 0.74, 0.79, 0.84, 0.89, // 6am - 11am
	0.93, 0.97, 0.99, 1.00, 0.99, 0.96, // 12pm - 5pm
	0.91, 0.86, 0.81, 0.77, 0.74, 0.72, // 6pm - 11pm
}

// NewCoefficientTable validates a configured table. An empty slice yields the defaults.
func NewCoefficientTable(values []float64) (CoefficientTable, error) {
	if len(values) == 0 {
		return DefaultCoefficients, nil
	}
	if len(values) != HoursPerDay {
		return CoefficientTable{}, fmt.Errorf("coefficient table needs %d entries, got %d", HoursPerDay, len(values))
	}

	var table CoefficientTable
	for hour, v := range values {
		if v < 0 {
			return CoefficientTable{}, fmt.Errorf("coefficient for hour %d is negative: %v", hour, v)
		}
		table[hour] = v
	}
	return table, nil
}

// At returns the multiplier for an hour of day
func (t CoefficientTable) At(hour int) float64 {
	return t[((hour%HoursPerDay)+HoursPerDay)%HoursPerDay]
}
