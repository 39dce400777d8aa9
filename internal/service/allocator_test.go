package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parkhub/internal/apperrors"
	"parkhub/internal/db"
)

func TestAllocateReturnsFirstAvailableSpot(t *testing.T) {
	lots := new(mockLotStore)
	ledger := new(mockReservationStore)
	alloc := NewAllocator(lots, ledger)

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", PricePerHour: 50}, nil)
	ledger.On("FirstAvailableSpot", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingSpot{ID: 3, LotID: 1, SpotNumber: "A003"}, nil)
	ledger.On("HasActiveReservationInLot", mock.Anything, mock.Anything, 7, 1).Return(false, nil)

	lot, spot, err := alloc.Allocate(context.Background(), nil, 7, 1, 2, "KA-01-1234")
	require.NoError(t, err)
	assert.Equal(t, "Central", lot.Name)
	assert.Equal(t, "A003", spot.SpotNumber)
}

func TestAllocateUnknownLot(t *testing.T) {
	lots := new(mockLotStore)
	ledger := new(mockReservationStore)
	alloc := NewAllocator(lots, ledger)

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 99).
		Return(nil, apperrors.NotFound("parking lot 99 not found"))

	_, _, err := alloc.Allocate(context.Background(), nil, 7, 99, 2, "KA-01-1234")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestAllocateValidation(t *testing.T) {
	lots := new(mockLotStore)
	ledger := new(mockReservationStore)
	alloc := NewAllocator(lots, ledger)

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, PricePerHour: 50}, nil)

	t.Run("non-positive duration", func(t *testing.T) {
		_, _, err := alloc.Allocate(context.Background(), nil, 7, 1, 0, "KA-01-1234")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
	t.Run("missing vehicle number", func(t *testing.T) {
		_, _, err := alloc.Allocate(context.Background(), nil, 7, 1, 2, "")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})
	ledger.AssertNotCalled(t, "FirstAvailableSpot", mock.Anything, mock.Anything, mock.Anything)
}

func TestAllocateDuplicateActiveReservation(t *testing.T) {
	lots := new(mockLotStore)
	ledger := new(mockReservationStore)
	alloc := NewAllocator(lots, ledger)

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, PricePerHour: 50}, nil)
	ledger.On("FirstAvailableSpot", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingSpot{ID: 3}, nil)
	ledger.On("HasActiveReservationInLot", mock.Anything, mock.Anything, 7, 1).Return(true, nil)

	_, _, err := alloc.Allocate(context.Background(), nil, 7, 1, 2, "KA-01-1234")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}
