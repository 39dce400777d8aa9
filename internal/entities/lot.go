package entities

type LotResponse struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Capacity       int     `json:"capacity"`
	PricePerHour   float64 `json:"price_per_hour"`
	AvailableSpots int     `json:"available_spots"`
}

// SpotStatus distinguishes physical occupancy from being held by an active
// reservation; a spot can be reserved while still physically free.
type SpotStatus struct {
	ID         int    `json:"id"`
	SpotNumber string `json:"spot_number"`
	IsOccupied bool   `json:"is_occupied"`
	IsReserved bool   `json:"is_reserved"`
}

type LotDetails struct {
	ParkingLot LotResponse  `json:"parking_lot"`
	Spots      []SpotStatus `json:"spots"`
}
