package entities

import (
	"time"

	"parkhub/internal/db"
	"parkhub/internal/utils"
)

type ReservationResponse struct {
	ID                    int        `json:"id"`
	Code                  string     `json:"code"`
	ParkingLot            string     `json:"parking_lot,omitempty"`
	SpotNumber            string     `json:"spot_number"`
	StartTime             time.Time  `json:"start_time"`
	EndTime               time.Time  `json:"end_time"`
	Status                string     `json:"status"`
	ReservedDurationHours float64    `json:"reserved_duration_hours"`
	ActualDurationHours   *float64   `json:"actual_duration_hours,omitempty"`
	EstimatedCost         float64    `json:"estimated_cost"`
	FinalCost             *float64   `json:"final_cost,omitempty"`
	HourlyRate            float64    `json:"hourly_rate"`
	OccupiedAt            *time.Time `json:"occupied_at,omitempty"`
	ReleasedAt            *time.Time `json:"released_at,omitempty"`
	VehicleNumber         string     `json:"vehicle_number"`
	CreatedAt             time.Time  `json:"created_at"`
}

// NewReservationResponse builds the outward view of a reservation. Costs and
// durations are rounded here, at the presentation boundary only.
func NewReservationResponse(res db.Reservation, lotName, spotNumber string) *ReservationResponse {
	out := &ReservationResponse{
		ID:                    res.ID,
		Code:                  res.Code,
		ParkingLot:            lotName,
		SpotNumber:            spotNumber,
		StartTime:             res.StartTime,
		EndTime:               res.EndTime,
		Status:                res.Status,
		ReservedDurationHours: res.ReservedDurationHours,
		EstimatedCost:         utils.Round2(res.EstimatedCost),
		HourlyRate:            res.HourlyRate,
		OccupiedAt:            res.OccupiedAt,
		ReleasedAt:            res.ReleasedAt,
		VehicleNumber:         res.VehicleNumber,
		CreatedAt:             res.CreatedAt,
	}
	if res.ActualDurationHours != nil {
		v := utils.Round2(*res.ActualDurationHours)
		out.ActualDurationHours = &v
	}
	if res.FinalCost != nil {
		v := utils.Round2(*res.FinalCost)
		out.FinalCost = &v
	}
	return out
}

type ExtendResponse struct {
	ID                    int       `json:"id"`
	NewEndTime            time.Time `json:"new_end_time"`
	AdditionalCost        float64   `json:"additional_cost"`
	ReservedDurationHours float64   `json:"reserved_duration_hours"`
	EstimatedCost         float64   `json:"estimated_cost"`
	Status                string    `json:"status"`
}

type CancelResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}
