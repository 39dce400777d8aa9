package service

import (
	"context"

	"parkhub/internal/cache"
	"parkhub/internal/db"
	"parkhub/internal/entities"
)

// CatalogStore is the read side of the spot registry the public endpoints
// use.
type CatalogStore interface {
	ListLotsWithAvailability(ctx context.Context) ([]entities.LotResponse, error)
	GetLot(ctx context.Context, id int) (*db.ParkingLot, error)
	SpotStatuses(ctx context.Context, lotID int) ([]entities.SpotStatus, error)
}

// ParkingService serves the public lot catalog. Listings go through the
// advisory cache; reservation operations invalidate it.
type ParkingService struct {
	Lots  CatalogStore
	Cache *cache.Cache
}

func NewParkingService(lots CatalogStore, c *cache.Cache) *ParkingService {
	return &ParkingService{Lots: lots, Cache: c}
}

func (s *ParkingService) ListLots(ctx context.Context) ([]entities.LotResponse, error) {
	var lots []entities.LotResponse
	if s.Cache.GetJSON(ctx, cache.ParkingLotsKey, &lots) {
		return lots, nil
	}

	lots, err := s.Lots.ListLotsWithAvailability(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.SetJSON(ctx, cache.ParkingLotsKey, lots, cache.ParkingLotsTTL)
	return lots, nil
}

func (s *ParkingService) LotDetails(ctx context.Context, lotID int) (*entities.LotDetails, error) {
	lot, err := s.Lots.GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	spots, err := s.Lots.SpotStatuses(ctx, lotID)
	if err != nil {
		return nil, err
	}

	available := 0
	for _, spot := range spots {
		if !spot.IsOccupied && !spot.IsReserved {
			available++
		}
	}

	return &entities.LotDetails{
		ParkingLot: entities.LotResponse{
			ID:             lot.ID,
			Name:           lot.Name,
			Location:       lot.Location,
			Capacity:       lot.Capacity,
			PricePerHour:   lot.PricePerHour,
			AvailableSpots: available,
		},
		Spots: spots,
	}, nil
}
