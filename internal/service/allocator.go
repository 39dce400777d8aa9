package service

import (
	"context"
	"database/sql"

	"parkhub/internal/apperrors"
	"parkhub/internal/db"
)

// Allocator validates the business preconditions of a reservation and picks
// the candidate spot: the lowest-id free, unreserved spot in the lot. It
// never mutates occupancy; a fresh reservation holds its spot purely through
// the active ledger row.
type Allocator struct {
	Lots   LotStore
	Ledger ReservationStore
}

func NewAllocator(lots LotStore, ledger ReservationStore) *Allocator {
	return &Allocator{Lots: lots, Ledger: ledger}
}

// Allocate runs inside the caller's transaction so the chosen spot stays
// locked until the reservation row commits with it.
func (a *Allocator) Allocate(ctx context.Context, tx *sql.Tx, userID, lotID int, durationHours float64, vehicleNumber string) (*db.ParkingLot, *db.ParkingSpot, error) {
	lot, err := a.Lots.GetLotForUpdate(ctx, tx, lotID)
	if err != nil {
		return nil, nil, err
	}

	if durationHours <= 0 {
		return nil, nil, apperrors.Validation("duration must be positive")
	}
	if vehicleNumber == "" {
		return nil, nil, apperrors.Validation("vehicle number is required")
	}

	spot, err := a.Ledger.FirstAvailableSpot(ctx, tx, lotID)
	if err != nil {
		return nil, nil, err
	}

	exists, err := a.Ledger.HasActiveReservationInLot(ctx, tx, userID, lotID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, apperrors.Conflict("you already have an active reservation in this parking lot")
	}

	return lot, spot, nil
}
