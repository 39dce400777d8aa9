package entities

type DashboardSummary struct {
	TotalParkingLots      int     `json:"total_parking_lots"`
	TotalSpots            int     `json:"total_spots"`
	OccupiedSpots         int     `json:"occupied_spots"`
	ReservedSpots         int     `json:"reserved_spots"`
	AvailableSpots        int     `json:"available_spots"`
	OccupancyRate         float64 `json:"occupancy_rate"`
	TotalReservations     int     `json:"total_reservations"`
	ActiveReservations    int     `json:"active_reservations"`
	CompletedReservations int     `json:"completed_reservations"`
}

type Dashboard struct {
	Summary     DashboardSummary `json:"summary"`
	ParkingLots []LotResponse    `json:"parking_lots"`
}

type AdminReservationItem struct {
	ID         int     `json:"id"`
	UserID     int     `json:"user_id"`
	UserName   string  `json:"user_name"`
	UserEmail  string  `json:"user_email"`
	ParkingLot string  `json:"parking_lot"`
	SpotNumber string  `json:"spot_number"`
	Status     string  `json:"status"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	FinalCost  float64 `json:"final_cost"`
}

type AdminReservationList struct {
	Reservations []AdminReservationItem `json:"reservations"`
	TotalCount   int                    `json:"total_count"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}
