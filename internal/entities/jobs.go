package entities

import "time"

// ExpiryNotice is the projection the reminder job needs to warn a user that
// an active reservation ends soon.
type ExpiryNotice struct {
	ReservationID int
	Code          string
	UserName      string
	UserEmail     string
	UserPhone     string
	LotName       string
	SpotNumber    string
	EndTime       time.Time
}

// MonthlyReport aggregates one user's activity over the reporting window.
type MonthlyReport struct {
	UserID       int
	UserName     string
	UserEmail    string
	Reservations int
	TotalSpent   float64
	TotalHours   float64
}
