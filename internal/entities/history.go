package entities

import "time"

type HistoryItem struct {
	ID            int        `json:"id"`
	ParkingLot    string     `json:"parking_lot"`
	Location      string     `json:"location"`
	SpotNumber    string     `json:"spot_number"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	OccupiedAt    *time.Time `json:"occupied_at,omitempty"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	ReservedHours float64    `json:"reserved_hours"`
	ActualHours   *float64   `json:"actual_hours,omitempty"`
	HourlyRate    float64    `json:"hourly_rate"`
	EstimatedCost float64    `json:"estimated_cost"`
	FinalCost     *float64   `json:"final_cost,omitempty"`
	Status        string     `json:"status"`
	VehicleNumber string     `json:"vehicle_number"`
	CreatedAt     time.Time  `json:"created_at"`
}

type SpendingSummary struct {
	TotalReservations     int     `json:"total_reservations"`
	CompletedReservations int     `json:"completed_reservations"`
	TotalSpent            float64 `json:"total_spent"`
	TotalHoursParked      float64 `json:"total_hours_parked"`
	AverageCostPerHour    float64 `json:"average_cost_per_hour"`
}

type HistoryResponse struct {
	History    []HistoryItem   `json:"history"`
	Summary    SpendingSummary `json:"summary"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
	TotalCount int             `json:"total_count"`
}
