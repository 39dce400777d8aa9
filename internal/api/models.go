package api

// Auth
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type LoginResponse struct {
	Token string `json:"token"`
}

// Reservations
type CreateReservationRequest struct {
	LotID         int     `json:"lot_id"`
	DurationHours float64 `json:"duration_hours"`
	VehicleNumber string  `json:"vehicle_number"`
}
type ExtendReservationRequest struct {
	AdditionalHours float64 `json:"additional_hours"`
}

// Admin lots
type CreateLotRequest struct {
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Capacity     int     `json:"capacity"`
	PricePerHour float64 `json:"price_per_hour"`
}
type UpdateLotRequest struct {
	Name         *string  `json:"name"`
	Location     *string  `json:"location"`
	Capacity     *int     `json:"capacity"`
	PricePerHour *float64 `json:"price_per_hour"`
}
