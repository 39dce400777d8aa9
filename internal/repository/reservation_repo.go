package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parkhub/internal/apperrors"
	"parkhub/internal/db"
	"parkhub/internal/entities"
)

// ReservationRepository is the reservation ledger. The tx-scoped methods are
// the precondition reads and state writes the orchestrator composes into one
// atomic operation; a concurrent caller blocked on the same row lock observes
// the committed state and fails its precondition instead of double-applying.
type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

const reservationColumns = `
	id, code, user_id, spot_id, start_time, end_time, status,
	reserved_duration_hours, actual_duration_hours, estimated_cost, final_cost,
	hourly_rate, occupied_at, released_at, vehicle_number, created_at`

// FirstAvailableSpot picks the allocation candidate: the lowest-id spot in
// the lot that is neither occupied nor held by an active reservation. The row
// is locked so a concurrent Reserve cannot pick the same spot.
func (r *ReservationRepository) FirstAvailableSpot(ctx context.Context, tx *sql.Tx, lotID int) (*db.ParkingSpot, error) {
	var s db.ParkingSpot
	err := tx.QueryRowContext(ctx, `
		SELECT s.id, s.lot_id, s.spot_number, s.is_occupied, s.created_at
		FROM parking_spots s
		WHERE s.lot_id = $1 AND `+availableSpotCondition+`
		ORDER BY s.id
		LIMIT 1
		FOR UPDATE OF s`, lotID).
		Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.IsOccupied, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NoAvailability("no available spots in this parking lot")
		}
		return nil, fmt.Errorf("ReservationRepository.FirstAvailableSpot: %w", err)
	}
	return &s, nil
}

// HasActiveReservationInLot reports whether the user already holds an active
// reservation on any spot of the lot.
func (r *ReservationRepository) HasActiveReservationInLot(ctx context.Context, tx *sql.Tx, userID, lotID int) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations res
			JOIN parking_spots s ON res.spot_id = s.id
			WHERE res.user_id = $1 AND s.lot_id = $2 AND res.status = 'active')`,
		userID, lotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.HasActiveReservationInLot: %w", err)
	}
	return exists, nil
}

func (r *ReservationRepository) Create(ctx context.Context, tx *sql.Tx, res *db.Reservation) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO reservations
			(code, user_id, spot_id, start_time, end_time, status,
			 reserved_duration_hours, estimated_cost, hourly_rate, vehicle_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		res.Code, res.UserID, res.SpotID, res.StartTime, res.EndTime, res.Status,
		res.ReservedDurationHours, res.EstimatedCost, res.HourlyRate, res.VehicleNumber).
		Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Create: %w", err)
	}
	return nil
}

// GetActiveForUpdate loads an active reservation owned by userID and locks
// its row. A reservation that is completed, cancelled, or owned by someone
// else is indistinguishable from a missing one.
func (r *ReservationRepository) GetActiveForUpdate(ctx context.Context, tx *sql.Tx, id, userID int) (*db.Reservation, error) {
	var res db.Reservation
	err := tx.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		FOR UPDATE`, id, userID).
		Scan(&res.ID, &res.Code, &res.UserID, &res.SpotID, &res.StartTime, &res.EndTime,
			&res.Status, &res.ReservedDurationHours, &res.ActualDurationHours,
			&res.EstimatedCost, &res.FinalCost, &res.HourlyRate,
			&res.OccupiedAt, &res.ReleasedAt, &res.VehicleNumber, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("reservation not found or not accessible")
		}
		return nil, fmt.Errorf("ReservationRepository.GetActiveForUpdate: %w", err)
	}
	return &res, nil
}

// SpotForUpdate locks the reservation's spot row within the same transaction.
func (r *ReservationRepository) SpotForUpdate(ctx context.Context, tx *sql.Tx, spotID int) (*db.ParkingSpot, error) {
	var s db.ParkingSpot
	err := tx.QueryRowContext(ctx, `
		SELECT id, lot_id, spot_number, is_occupied, created_at
		FROM parking_spots WHERE id = $1 FOR UPDATE`, spotID).
		Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.IsOccupied, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("parking spot %d not found", spotID)
		}
		return nil, fmt.Errorf("ReservationRepository.SpotForUpdate: %w", err)
	}
	return &s, nil
}

func (r *ReservationRepository) MarkOccupied(ctx context.Context, tx *sql.Tx, id int, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE reservations SET occupied_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("ReservationRepository.MarkOccupied: %w", err)
	}
	return nil
}

// Complete finalizes a reservation. final_cost and actual_duration_hours are
// written here exactly once; the status guard keeps a racing second release
// from revising them.
func (r *ReservationRepository) Complete(ctx context.Context, tx *sql.Tx, id int, releasedAt time.Time, actualHours, finalCost float64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE reservations
		SET status = 'completed', end_time = $1, released_at = $1,
			actual_duration_hours = $2, final_cost = $3
		WHERE id = $4 AND status = 'active'`,
		releasedAt, actualHours, finalCost, id)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Complete: %w", err)
	}
	return requireOneRow(res, id)
}

func (r *ReservationRepository) Cancel(ctx context.Context, tx *sql.Tx, id int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE reservations SET status = 'cancelled'
		WHERE id = $1 AND status = 'active'`, id)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Cancel: %w", err)
	}
	return requireOneRow(res, id)
}

// Extend pushes end_time out and revises reserved duration and estimated
// cost so the release-time billing law keeps holding.
func (r *ReservationRepository) Extend(ctx context.Context, tx *sql.Tx, id int, newEnd time.Time, reservedHours, estimatedCost float64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE reservations
		SET end_time = $1, reserved_duration_hours = $2, estimated_cost = $3
		WHERE id = $4 AND status = 'active'`,
		newEnd, reservedHours, estimatedCost, id)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Extend: %w", err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id int) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for reservation %d: %w", id, err)
	}
	if affected == 0 {
		return apperrors.NotFound("reservation not found or not accessible")
	}
	return nil
}

const historyItemQuery = `
	SELECT res.id, l.name, l.location, s.spot_number,
		res.start_time, res.end_time, res.occupied_at, res.released_at,
		res.reserved_duration_hours, res.actual_duration_hours,
		res.hourly_rate, res.estimated_cost, res.final_cost,
		res.status, res.vehicle_number, res.created_at
	FROM reservations res
	JOIN parking_spots s ON res.spot_id = s.id
	JOIN parking_lots l ON s.lot_id = l.id`

func scanHistoryItems(rows *sql.Rows) ([]entities.HistoryItem, error) {
	items := []entities.HistoryItem{}
	for rows.Next() {
		var it entities.HistoryItem
		if err := rows.Scan(&it.ID, &it.ParkingLot, &it.Location, &it.SpotNumber,
			&it.StartTime, &it.EndTime, &it.OccupiedAt, &it.ReleasedAt,
			&it.ReservedHours, &it.ActualHours, &it.HourlyRate,
			&it.EstimatedCost, &it.FinalCost, &it.Status, &it.VehicleNumber,
			&it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reservation history: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByUser returns all of a user's reservations, newest first.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int) ([]entities.HistoryItem, error) {
	rows, err := r.DB.QueryContext(ctx, historyItemQuery+`
		WHERE res.user_id = $1
		ORDER BY res.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.ListByUser: %w", err)
	}
	defer rows.Close()
	return scanHistoryItems(rows)
}

// HistoryByUser returns a status-filtered, paginated slice of a user's
// reservations plus the unpaginated match count.
func (r *ReservationRepository) HistoryByUser(ctx context.Context, userID int, status string, limit, offset int) ([]entities.HistoryItem, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE user_id = $1 AND ($2 = '' OR status = $2)`, userID, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ReservationRepository.HistoryByUser: count: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, historyItemQuery+`
		WHERE res.user_id = $1 AND ($2 = '' OR res.status = $2)
		ORDER BY res.created_at DESC
		LIMIT $3 OFFSET $4`, userID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ReservationRepository.HistoryByUser: %w", err)
	}
	defer rows.Close()

	items, err := scanHistoryItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SpendingSummary aggregates a user's lifetime spending; completed
// reservations contribute final figures, the rest their estimates.
func (r *ReservationRepository) SpendingSummary(ctx context.Context, userID int) (*entities.SpendingSummary, error) {
	var s entities.SpendingSummary
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COALESCE(SUM(COALESCE(final_cost, estimated_cost)), 0),
			COALESCE(SUM(COALESCE(actual_duration_hours, reserved_duration_hours)), 0)
		FROM reservations WHERE user_id = $1`, userID).
		Scan(&s.TotalReservations, &s.CompletedReservations, &s.TotalSpent, &s.TotalHoursParked)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.SpendingSummary: %w", err)
	}
	if s.TotalHoursParked > 0 {
		s.AverageCostPerHour = s.TotalSpent / s.TotalHoursParked
	}
	return &s, nil
}

// ListAll returns reservations across all users for admin views.
func (r *ReservationRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]entities.AdminReservationItem, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE ($1 = '' OR status = $1)`, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ReservationRepository.ListAll: count: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT res.id, u.id, u.name, u.email, l.name, s.spot_number, res.status,
			res.start_time, res.end_time, COALESCE(res.final_cost, res.estimated_cost)
		FROM reservations res
		JOIN users u ON res.user_id = u.id
		JOIN parking_spots s ON res.spot_id = s.id
		JOIN parking_lots l ON s.lot_id = l.id
		WHERE ($1 = '' OR res.status = $1)
		ORDER BY res.created_at DESC
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ReservationRepository.ListAll: %w", err)
	}
	defer rows.Close()

	items := []entities.AdminReservationItem{}
	for rows.Next() {
		var it entities.AdminReservationItem
		var start, end time.Time
		if err := rows.Scan(&it.ID, &it.UserID, &it.UserName, &it.UserEmail,
			&it.ParkingLot, &it.SpotNumber, &it.Status, &start, &end, &it.FinalCost); err != nil {
			return nil, 0, fmt.Errorf("ReservationRepository.ListAll: scan: %w", err)
		}
		it.StartTime = start.Format(time.RFC3339)
		it.EndTime = end.Format(time.RFC3339)
		items = append(items, it)
	}
	return items, total, rows.Err()
}
