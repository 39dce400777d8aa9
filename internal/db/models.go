package db

import "time"

// Reservation lifecycle states. Completed and cancelled are terminal.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type ParkingLot struct {
	ID           int
	Name         string
	Location     string
	Capacity     int
	PricePerHour float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ParkingSpot struct {
	ID         int
	LotID      int
	SpotNumber string
	IsOccupied bool
	CreatedAt  time.Time
}

// Reservation is the ledger row. HourlyRate is snapshotted at creation and
// never re-read from the lot, so later price changes do not affect billing.
// ActualDurationHours and FinalCost stay nil until release and are written
// exactly once.
type Reservation struct {
	ID                    int
	Code                  string
	UserID                int
	SpotID                int
	StartTime             time.Time
	EndTime               time.Time
	Status                string
	ReservedDurationHours float64
	ActualDurationHours   *float64
	EstimatedCost         float64
	FinalCost             *float64
	HourlyRate            float64
	OccupiedAt            *time.Time
	ReleasedAt            *time.Time
	VehicleNumber         string
	CreatedAt             time.Time
}

type User struct {
	ID           int
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
