package service

import (
	"context"
	"database/sql"
	"time"

	"parkhub/internal/db"
	"parkhub/internal/entities"
)

// TxRunner executes fn inside one database transaction; the concrete
// implementation lives in the repository package.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// LotStore is the slice of the spot registry the reservation state machine
// needs.
type LotStore interface {
	GetLotForUpdate(ctx context.Context, tx *sql.Tx, id int) (*db.ParkingLot, error)
	SetOccupied(ctx context.Context, tx *sql.Tx, spotID int, occupied bool) error
}

// ReservationStore is the reservation ledger.
type ReservationStore interface {
	FirstAvailableSpot(ctx context.Context, tx *sql.Tx, lotID int) (*db.ParkingSpot, error)
	HasActiveReservationInLot(ctx context.Context, tx *sql.Tx, userID, lotID int) (bool, error)
	Create(ctx context.Context, tx *sql.Tx, res *db.Reservation) error
	GetActiveForUpdate(ctx context.Context, tx *sql.Tx, id, userID int) (*db.Reservation, error)
	SpotForUpdate(ctx context.Context, tx *sql.Tx, spotID int) (*db.ParkingSpot, error)
	MarkOccupied(ctx context.Context, tx *sql.Tx, id int, at time.Time) error
	Complete(ctx context.Context, tx *sql.Tx, id int, releasedAt time.Time, actualHours, finalCost float64) error
	Cancel(ctx context.Context, tx *sql.Tx, id int) error
	Extend(ctx context.Context, tx *sql.Tx, id int, newEnd time.Time, reservedHours, estimatedCost float64) error
	ListByUser(ctx context.Context, userID int) ([]entities.HistoryItem, error)
	HistoryByUser(ctx context.Context, userID int, status string, limit, offset int) ([]entities.HistoryItem, int, error)
	SpendingSummary(ctx context.Context, userID int) (*entities.SpendingSummary, error)
}
