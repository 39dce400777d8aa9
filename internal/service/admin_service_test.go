package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parkhub/internal/apperrors"
	"parkhub/internal/cache"
	"parkhub/internal/db"
	"parkhub/internal/entities"
)

type mockAdminLotStore struct{ mock.Mock }

func (m *mockAdminLotStore) CreateLot(ctx context.Context, lot *db.ParkingLot) error {
	return m.Called(ctx, lot).Error(0)
}

func (m *mockAdminLotStore) GetLotForUpdate(ctx context.Context, tx *sql.Tx, id int) (*db.ParkingLot, error) {
	args := m.Called(ctx, tx, id)
	if lot := args.Get(0); lot != nil {
		return lot.(*db.ParkingLot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminLotStore) ListLotsWithAvailability(ctx context.Context) ([]entities.LotResponse, error) {
	args := m.Called(ctx)
	if lots := args.Get(0); lots != nil {
		return lots.([]entities.LotResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminLotStore) LotNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAdminLotStore) UpdateLot(ctx context.Context, tx *sql.Tx, lot *db.ParkingLot) error {
	return m.Called(ctx, tx, lot).Error(0)
}

func (m *mockAdminLotStore) DeleteLot(ctx context.Context, tx *sql.Tx, id int) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *mockAdminLotStore) AddSpots(ctx context.Context, tx *sql.Tx, lotID, from, to int) error {
	return m.Called(ctx, tx, lotID, from, to).Error(0)
}

func (m *mockAdminLotStore) RemoveUnoccupiedSpots(ctx context.Context, tx *sql.Tx, lotID, count int) error {
	return m.Called(ctx, tx, lotID, count).Error(0)
}

func (m *mockAdminLotStore) CountOccupied(ctx context.Context, tx *sql.Tx, lotID int) (int, error) {
	args := m.Called(ctx, tx, lotID)
	return args.Int(0), args.Error(1)
}

func (m *mockAdminLotStore) DashboardCounts(ctx context.Context) (*entities.DashboardSummary, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*entities.DashboardSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdminReservationStore struct{ mock.Mock }

func (m *mockAdminReservationStore) ListAll(ctx context.Context, status string, limit, offset int) ([]entities.AdminReservationItem, int, error) {
	args := m.Called(ctx, status, limit, offset)
	if items := args.Get(0); items != nil {
		return items.([]entities.AdminReservationItem), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func newAdminService(lots *mockAdminLotStore, ledger *mockAdminReservationStore) *AdminService {
	return NewAdminService(stubTxRunner{}, lots, ledger, cache.New(nil))
}

func TestCreateLotValidation(t *testing.T) {
	svc := newAdminService(new(mockAdminLotStore), new(mockAdminReservationStore))

	cases := []struct {
		name                 string
		lotName, location    string
		capacity             int
		price                float64
	}{
		{"missing name", "", "Downtown", 10, 50},
		{"missing location", "Central", "", 10, 50},
		{"zero capacity", "Central", "Downtown", 0, 50},
		{"zero price", "Central", "Downtown", 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateLot(context.Background(), tc.lotName, tc.location, tc.capacity, tc.price)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestUpdateLotCapacityIncreaseAddsSpots(t *testing.T) {
	lots := new(mockAdminLotStore)
	svc := newAdminService(lots, new(mockAdminReservationStore))

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", Location: "Downtown", Capacity: 5, PricePerHour: 50}, nil)
	lots.On("AddSpots", mock.Anything, mock.Anything, 1, 6, 8).Return(nil)
	lots.On("UpdateLot", mock.Anything, mock.Anything, mock.AnythingOfType("*db.ParkingLot")).Return(nil)

	capacity := 8
	lot, err := svc.UpdateLot(context.Background(), 1, UpdateLotParams{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 8, lot.Capacity)
	lots.AssertExpectations(t)
}

func TestUpdateLotCapacityDecreaseRemovesSpots(t *testing.T) {
	lots := new(mockAdminLotStore)
	svc := newAdminService(lots, new(mockAdminReservationStore))

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", Location: "Downtown", Capacity: 5, PricePerHour: 50}, nil)
	lots.On("RemoveUnoccupiedSpots", mock.Anything, mock.Anything, 1, 3).Return(nil)
	lots.On("UpdateLot", mock.Anything, mock.Anything, mock.AnythingOfType("*db.ParkingLot")).Return(nil)

	capacity := 2
	lot, err := svc.UpdateLot(context.Background(), 1, UpdateLotParams{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 2, lot.Capacity)
	lots.AssertExpectations(t)
}

func TestUpdateLotCapacityDecreaseBlockedByOccupiedSpots(t *testing.T) {
	lots := new(mockAdminLotStore)
	svc := newAdminService(lots, new(mockAdminReservationStore))

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", Location: "Downtown", Capacity: 5, PricePerHour: 50}, nil)
	lots.On("RemoveUnoccupiedSpots", mock.Anything, mock.Anything, 1, 4).
		Return(apperrors.Conflict("cannot reduce capacity: only 3 removable spots, need 4"))

	capacity := 1
	_, err := svc.UpdateLot(context.Background(), 1, UpdateLotParams{Capacity: &capacity})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	lots.AssertNotCalled(t, "UpdateLot", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLotDuplicateName(t *testing.T) {
	lots := new(mockAdminLotStore)
	svc := newAdminService(lots, new(mockAdminReservationStore))

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", Location: "Downtown", Capacity: 5, PricePerHour: 50}, nil)
	lots.On("LotNameExists", mock.Anything, "Harbor", 1).Return(true, nil)

	name := "Harbor"
	_, err := svc.UpdateLot(context.Background(), 1, UpdateLotParams{Name: &name})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestDeleteLotWithOccupiedSpots(t *testing.T) {
	lots := new(mockAdminLotStore)
	svc := newAdminService(lots, new(mockAdminReservationStore))

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", Capacity: 5}, nil)
	lots.On("CountOccupied", mock.Anything, mock.Anything, 1).Return(2, nil)

	err := svc.DeleteLot(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	lots.AssertNotCalled(t, "DeleteLot", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteLotEmpty(t *testing.T) {
	lots := new(mockAdminLotStore)
	svc := newAdminService(lots, new(mockAdminReservationStore))

	lots.On("GetLotForUpdate", mock.Anything, mock.Anything, 1).
		Return(&db.ParkingLot{ID: 1, Name: "Central", Capacity: 5}, nil)
	lots.On("CountOccupied", mock.Anything, mock.Anything, 1).Return(0, nil)
	lots.On("DeleteLot", mock.Anything, mock.Anything, 1).Return(nil)

	require.NoError(t, svc.DeleteLot(context.Background(), 1))
	lots.AssertExpectations(t)
}
