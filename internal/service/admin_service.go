package service

import (
	"context"
	"database/sql"

	"parkhub/internal/apperrors"
	"parkhub/internal/cache"
	"parkhub/internal/db"
	"parkhub/internal/entities"
)

// AdminLotStore is the registry surface the lot admin interface needs,
// including the capacity-resize primitives.
type AdminLotStore interface {
	CreateLot(ctx context.Context, lot *db.ParkingLot) error
	GetLotForUpdate(ctx context.Context, tx *sql.Tx, id int) (*db.ParkingLot, error)
	ListLotsWithAvailability(ctx context.Context) ([]entities.LotResponse, error)
	LotNameExists(ctx context.Context, name string, excludeID int) (bool, error)
	UpdateLot(ctx context.Context, tx *sql.Tx, lot *db.ParkingLot) error
	DeleteLot(ctx context.Context, tx *sql.Tx, id int) error
	AddSpots(ctx context.Context, tx *sql.Tx, lotID, from, to int) error
	RemoveUnoccupiedSpots(ctx context.Context, tx *sql.Tx, lotID, count int) error
	CountOccupied(ctx context.Context, tx *sql.Tx, lotID int) (int, error)
	DashboardCounts(ctx context.Context) (*entities.DashboardSummary, error)
}

type AdminReservationStore interface {
	ListAll(ctx context.Context, status string, limit, offset int) ([]entities.AdminReservationItem, int, error)
}

// AdminService implements the lot pricing/capacity admin interface and the
// admin reporting views.
type AdminService struct {
	Tx     TxRunner
	Lots   AdminLotStore
	Ledger AdminReservationStore
	Cache  *cache.Cache
}

func NewAdminService(tx TxRunner, lots AdminLotStore, ledger AdminReservationStore, c *cache.Cache) *AdminService {
	return &AdminService{Tx: tx, Lots: lots, Ledger: ledger, Cache: c}
}

func (s *AdminService) CreateLot(ctx context.Context, name, location string, capacity int, pricePerHour float64) (*db.ParkingLot, error) {
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if location == "" {
		return nil, apperrors.Validation("location is required")
	}
	if capacity <= 0 {
		return nil, apperrors.Validation("capacity must be greater than 0")
	}
	if pricePerHour <= 0 {
		return nil, apperrors.Validation("price per hour must be greater than 0")
	}

	lot := &db.ParkingLot{
		Name:         name,
		Location:     location,
		Capacity:     capacity,
		PricePerHour: pricePerHour,
	}
	if err := s.Lots.CreateLot(ctx, lot); err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return lot, nil
}

// UpdateLotParams carries the optional fields of a lot update; nil means
// leave unchanged.
type UpdateLotParams struct {
	Name         *string
	Location     *string
	Capacity     *int
	PricePerHour *float64
}

// UpdateLot applies field changes and resizes the spot set when capacity
// moves. The whole update is one transaction: a capacity decrease blocked by
// occupied or reserved spots fails the entire operation.
func (s *AdminService) UpdateLot(ctx context.Context, lotID int, params UpdateLotParams) (*db.ParkingLot, error) {
	if params.Name != nil && *params.Name == "" {
		return nil, apperrors.Validation("name cannot be empty")
	}
	if params.Location != nil && *params.Location == "" {
		return nil, apperrors.Validation("location cannot be empty")
	}
	if params.Capacity != nil && *params.Capacity <= 0 {
		return nil, apperrors.Validation("capacity must be greater than 0")
	}
	if params.PricePerHour != nil && *params.PricePerHour <= 0 {
		return nil, apperrors.Validation("price per hour must be greater than 0")
	}

	var lot *db.ParkingLot
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		lot, err = s.Lots.GetLotForUpdate(ctx, tx, lotID)
		if err != nil {
			return err
		}

		if params.Name != nil && *params.Name != lot.Name {
			taken, err := s.Lots.LotNameExists(ctx, *params.Name, lotID)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.Conflict("parking lot with this name already exists")
			}
			lot.Name = *params.Name
		}
		if params.Location != nil {
			lot.Location = *params.Location
		}
		if params.PricePerHour != nil {
			// Only future reservations see the new rate; existing ones
			// billed against their snapshot.
			lot.PricePerHour = *params.PricePerHour
		}
		if params.Capacity != nil && *params.Capacity != lot.Capacity {
			newCapacity := *params.Capacity
			switch {
			case newCapacity > lot.Capacity:
				if err := s.Lots.AddSpots(ctx, tx, lot.ID, lot.Capacity+1, newCapacity); err != nil {
					return err
				}
			case newCapacity < lot.Capacity:
				if err := s.Lots.RemoveUnoccupiedSpots(ctx, tx, lot.ID, lot.Capacity-newCapacity); err != nil {
					return err
				}
			}
			lot.Capacity = newCapacity
		}

		return s.Lots.UpdateLot(ctx, tx, lot)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx)
	return lot, nil
}

// DeleteLot removes a lot and its spots; refused while any spot is occupied.
func (s *AdminService) DeleteLot(ctx context.Context, lotID int) error {
	err := s.Tx.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.Lots.GetLotForUpdate(ctx, tx, lotID); err != nil {
			return err
		}
		occupied, err := s.Lots.CountOccupied(ctx, tx, lotID)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return apperrors.Conflict("cannot delete parking lot: some spots are occupied")
		}
		return s.Lots.DeleteLot(ctx, tx, lotID)
	})
	if err != nil {
		return err
	}

	s.invalidateCaches(ctx)
	return nil
}

// Dashboard aggregates system-wide occupancy and reservation counts, served
// through the advisory cache.
func (s *AdminService) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	var dash entities.Dashboard
	if s.Cache.GetJSON(ctx, cache.AdminAnalyticsKey, &dash) {
		return &dash, nil
	}

	summary, err := s.Lots.DashboardCounts(ctx)
	if err != nil {
		return nil, err
	}
	lots, err := s.Lots.ListLotsWithAvailability(ctx)
	if err != nil {
		return nil, err
	}

	dash = entities.Dashboard{Summary: *summary, ParkingLots: lots}
	s.Cache.SetJSON(ctx, cache.AdminAnalyticsKey, dash, cache.AdminAnalyticsTTL)
	return &dash, nil
}

func (s *AdminService) ListReservations(ctx context.Context, status string, limit, offset int) (*entities.AdminReservationList, error) {
	items, total, err := s.Ledger.ListAll(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	return &entities.AdminReservationList{
		Reservations: items,
		TotalCount:   total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func (s *AdminService) invalidateCaches(ctx context.Context) {
	s.Cache.InvalidatePattern(ctx, cache.ParkingLotsKey+"*")
	s.Cache.InvalidatePattern(ctx, cache.AdminAnalyticsKey+"*")
}
