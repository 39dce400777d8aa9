package service

import (
	"math"
	"time"
)

// Billing is pure arithmetic from time and rate to cost. Values are kept at
// full precision; rounding happens only at the presentation boundary.

// EstimatedCost is the up-front quote for a reservation.
func EstimatedCost(hourlyRate, reservedHours float64) float64 {
	return hourlyRate * reservedHours
}

// BillableHours applies the minimum-charge policy: a user pays for at least
// the duration they reserved, and for actual elapsed time beyond it.
func BillableHours(reservedHours, elapsedHours float64) float64 {
	return math.Max(reservedHours, elapsedHours)
}

// FinalCost is the charge at release, computed from the rate snapshotted at
// reservation time.
func FinalCost(hourlyRate, billableHours float64) float64 {
	return hourlyRate * billableHours
}

// HoursBetween converts a time span to fractional hours.
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Seconds() / 3600
}
