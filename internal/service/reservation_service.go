package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"parkhub/internal/apperrors"
	"parkhub/internal/cache"
	"parkhub/internal/db"
	"parkhub/internal/entities"
	"parkhub/internal/utils"
)

// ReservationService is the orchestrator for the reservation state machine:
// active -> occupied (still active) -> completed, or active -> cancelled.
// Every mutating operation reads its preconditions and writes its new state
// inside one transaction, so two concurrent callers racing on the same spot
// or reservation cannot both succeed.
type ReservationService struct {
	Tx        TxRunner
	Lots      LotStore
	Ledger    ReservationStore
	Allocator *Allocator
	Cache     *cache.Cache

	// Now is the clock used for all billing anchors; injectable for tests.
	Now func() time.Time
}

func NewReservationService(tx TxRunner, lots LotStore, ledger ReservationStore, c *cache.Cache) *ReservationService {
	return &ReservationService{
		Tx:        tx,
		Lots:      lots,
		Ledger:    ledger,
		Allocator: NewAllocator(lots, ledger),
		Cache:     c,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func hoursDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// Reserve allocates the first available spot in the lot and creates an
// active reservation holding it. The lot's current rate is snapshotted onto
// the reservation.
func (s *ReservationService) Reserve(ctx context.Context, userID, lotID int, durationHours float64, vehicleNumber string) (*entities.ReservationResponse, error) {
	var (
		res  db.Reservation
		lot  *db.ParkingLot
		spot *db.ParkingSpot
	)
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		lot, spot, err = s.Allocator.Allocate(ctx, tx, userID, lotID, durationHours, vehicleNumber)
		if err != nil {
			return err
		}

		now := s.Now()
		res = db.Reservation{
			Code:                  uuid.NewString(),
			UserID:                userID,
			SpotID:                spot.ID,
			StartTime:             now,
			EndTime:               now.Add(hoursDuration(durationHours)),
			Status:                db.StatusActive,
			ReservedDurationHours: durationHours,
			EstimatedCost:         EstimatedCost(lot.PricePerHour, durationHours),
			HourlyRate:            lot.PricePerHour,
			VehicleNumber:         vehicleNumber,
		}
		return s.Ledger.Create(ctx, tx, &res)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return entities.NewReservationResponse(res, lot.Name, spot.SpotNumber), nil
}

// Occupy marks arrival: the spot becomes physically occupied and occupied_at
// is stamped. start_time is deliberately left untouched so billing stays
// anchored to the original reservation start.
func (s *ReservationService) Occupy(ctx context.Context, userID, reservationID int) (*entities.ReservationResponse, error) {
	var (
		res  *db.Reservation
		spot *db.ParkingSpot
	)
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = s.Ledger.GetActiveForUpdate(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}
		spot, err = s.Ledger.SpotForUpdate(ctx, tx, res.SpotID)
		if err != nil {
			return err
		}
		if spot.IsOccupied {
			return apperrors.Conflict("spot is already occupied")
		}

		now := s.Now()
		if err := s.Lots.SetOccupied(ctx, tx, spot.ID, true); err != nil {
			return err
		}
		if err := s.Ledger.MarkOccupied(ctx, tx, res.ID, now); err != nil {
			return err
		}
		res.OccupiedAt = &now
		spot.IsOccupied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities.NewReservationResponse(*res, "", spot.SpotNumber), nil
}

// Release completes the reservation and fixes the final charge:
// rate * max(reserved hours, elapsed hours since start). A no-show is charged
// the reserved minimum with an actual duration of zero.
func (s *ReservationService) Release(ctx context.Context, userID, reservationID int) (*entities.ReservationResponse, error) {
	var (
		res  *db.Reservation
		spot *db.ParkingSpot
	)
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = s.Ledger.GetActiveForUpdate(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}
		spot, err = s.Ledger.SpotForUpdate(ctx, tx, res.SpotID)
		if err != nil {
			return err
		}

		now := s.Now()
		actualHours := 0.0
		if res.OccupiedAt != nil {
			actualHours = HoursBetween(*res.OccupiedAt, now)
		}
		elapsedHours := HoursBetween(res.StartTime, now)
		finalCost := FinalCost(res.HourlyRate, BillableHours(res.ReservedDurationHours, elapsedHours))

		if err := s.Ledger.Complete(ctx, tx, res.ID, now, actualHours, finalCost); err != nil {
			return err
		}
		if err := s.Lots.SetOccupied(ctx, tx, res.SpotID, false); err != nil {
			return err
		}

		res.Status = db.StatusCompleted
		res.EndTime = now
		res.ReleasedAt = &now
		res.ActualDurationHours = &actualHours
		res.FinalCost = &finalCost
		spot.IsOccupied = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return entities.NewReservationResponse(*res, "", spot.SpotNumber), nil
}

// Extend pushes end_time out by additionalHours and revises the reserved
// duration and estimated cost at the snapshotted rate, keeping the release
// billing law consistent with what the user agreed to pay.
func (s *ReservationService) Extend(ctx context.Context, userID, reservationID int, additionalHours float64) (*entities.ExtendResponse, error) {
	if additionalHours <= 0 {
		return nil, apperrors.Validation("additional hours must be positive")
	}

	var out entities.ExtendResponse
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := s.Ledger.GetActiveForUpdate(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}

		newEnd := res.EndTime.Add(hoursDuration(additionalHours))
		newReserved := res.ReservedDurationHours + additionalHours
		additionalCost := res.HourlyRate * additionalHours
		newEstimated := res.EstimatedCost + additionalCost

		if err := s.Ledger.Extend(ctx, tx, res.ID, newEnd, newReserved, newEstimated); err != nil {
			return err
		}
		out = entities.ExtendResponse{
			ID:                    res.ID,
			NewEndTime:            newEnd,
			AdditionalCost:        utils.Round2(additionalCost),
			ReservedDurationHours: newReserved,
			EstimatedCost:         utils.Round2(newEstimated),
			Status:                res.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel voids an active reservation. Permitted any time before the spot is
// physically occupied, never after; the occupancy reset is defensive, the
// flag should already be false.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID int) (*entities.CancelResponse, error) {
	var out entities.CancelResponse
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := s.Ledger.GetActiveForUpdate(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}
		spot, err := s.Ledger.SpotForUpdate(ctx, tx, res.SpotID)
		if err != nil {
			return err
		}
		if spot.IsOccupied {
			return apperrors.Conflict("occupied reservations cannot be cancelled")
		}

		if err := s.Ledger.Cancel(ctx, tx, res.ID); err != nil {
			return err
		}
		if err := s.Lots.SetOccupied(ctx, tx, res.SpotID, false); err != nil {
			return err
		}
		out = entities.CancelResponse{ID: res.ID, Status: db.StatusCancelled}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return &out, nil
}

// ListReservations returns the caller's reservations, newest first.
func (s *ReservationService) ListReservations(ctx context.Context, userID int) ([]entities.HistoryItem, error) {
	return s.Ledger.ListByUser(ctx, userID)
}

// History returns a filtered page of the caller's reservations with their
// lifetime spending summary. The summary is served through the advisory
// cache and invalidated whenever a reservation changes state.
func (s *ReservationService) History(ctx context.Context, userID int, status string, limit, offset int) (*entities.HistoryResponse, error) {
	items, total, err := s.Ledger.HistoryByUser(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, err
	}

	summaryKey := fmt.Sprintf("%s:%d", cache.UserSpendingKey, userID)
	var summary entities.SpendingSummary
	if !s.Cache.GetJSON(ctx, summaryKey, &summary) {
		fresh, err := s.Ledger.SpendingSummary(ctx, userID)
		if err != nil {
			return nil, err
		}
		summary = *fresh
		s.Cache.SetJSON(ctx, summaryKey, summary, cache.UserSpendingTTL)
	}
	summary.TotalSpent = utils.Round2(summary.TotalSpent)
	summary.TotalHoursParked = utils.Round2(summary.TotalHoursParked)
	summary.AverageCostPerHour = utils.Round2(summary.AverageCostPerHour)

	return &entities.HistoryResponse{
		History:    items,
		Summary:    summary,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	}, nil
}

func (s *ReservationService) invalidateCaches(ctx context.Context) {
	s.Cache.InvalidatePattern(ctx, cache.ParkingLotsKey+"*")
	s.Cache.InvalidatePattern(ctx, cache.UserSpendingKey+"*")
	s.Cache.InvalidatePattern(ctx, cache.AdminAnalyticsKey+"*")
}
