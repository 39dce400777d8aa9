package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"parkhub/internal/apperrors"
	"parkhub/internal/db"
	"parkhub/internal/entities"
	"parkhub/internal/utils"
)

// LotRepository is the spot registry: source of truth for lots, spot
// existence and physical occupancy.
type LotRepository struct {
	DB *sql.DB
}

func NewLotRepository(database *sql.DB) *LotRepository {
	return &LotRepository{DB: database}
}

// availableSpotCondition matches spots that are neither physically occupied
// nor held by an active reservation.
const availableSpotCondition = `
	s.is_occupied = FALSE
	AND NOT EXISTS (
		SELECT 1 FROM reservations r
		WHERE r.spot_id = s.id AND r.status = 'active'
	)`

// CreateLot inserts the lot and seeds capacity spots numbered A001..A{n} in
// one transaction.
func (r *LotRepository) CreateLot(ctx context.Context, lot *db.ParkingLot) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("LotRepository.CreateLot: begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO parking_lots (name, location, capacity, price_per_hour)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, lot.Name, lot.Location, lot.Capacity, lot.PricePerHour).
		Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("parking lot with this name already exists")
		}
		return fmt.Errorf("LotRepository.CreateLot: %w", err)
	}

	if err := insertSpots(ctx, tx, lot.ID, 1, lot.Capacity); err != nil {
		return fmt.Errorf("LotRepository.CreateLot: seed spots: %w", err)
	}
	return tx.Commit()
}

func (r *LotRepository) GetLot(ctx context.Context, id int) (*db.ParkingLot, error) {
	return scanLot(r.DB.QueryRowContext(ctx, `
		SELECT id, name, location, capacity, price_per_hour, created_at, updated_at
		FROM parking_lots WHERE id = $1`, id), id)
}

// GetLotForUpdate locks the lot row for the rest of the transaction. Reserve
// and capacity changes take this lock first so concurrent allocations against
// the same lot serialize.
func (r *LotRepository) GetLotForUpdate(ctx context.Context, tx *sql.Tx, id int) (*db.ParkingLot, error) {
	return scanLot(tx.QueryRowContext(ctx, `
		SELECT id, name, location, capacity, price_per_hour, created_at, updated_at
		FROM parking_lots WHERE id = $1 FOR UPDATE`, id), id)
}

func scanLot(row *sql.Row, id int) (*db.ParkingLot, error) {
	var lot db.ParkingLot
	err := row.Scan(&lot.ID, &lot.Name, &lot.Location, &lot.Capacity, &lot.PricePerHour,
		&lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("parking lot %d not found", id)
		}
		return nil, fmt.Errorf("scanning parking lot %d: %w", id, err)
	}
	return &lot, nil
}

// ListLotsWithAvailability returns the public lot catalog with the count of
// spots that are free and unreserved.
func (r *LotRepository) ListLotsWithAvailability(ctx context.Context) ([]entities.LotResponse, error) {
	query := `
		SELECT l.id, l.name, l.location, l.capacity, l.price_per_hour,
			(SELECT COUNT(*) FROM parking_spots s
			 WHERE s.lot_id = l.id AND ` + availableSpotCondition + `) AS available_spots
		FROM parking_lots l
		ORDER BY l.id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("LotRepository.ListLotsWithAvailability: %w", err)
	}
	defer rows.Close()

	lots := []entities.LotResponse{}
	for rows.Next() {
		var lr entities.LotResponse
		if err := rows.Scan(&lr.ID, &lr.Name, &lr.Location, &lr.Capacity,
			&lr.PricePerHour, &lr.AvailableSpots); err != nil {
			return nil, fmt.Errorf("LotRepository.ListLotsWithAvailability: scan: %w", err)
		}
		lots = append(lots, lr)
	}
	return lots, rows.Err()
}

func (r *LotRepository) LotNameExists(ctx context.Context, name string, excludeID int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM parking_lots WHERE name = $1 AND id <> $2)`,
		name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("LotRepository.LotNameExists: %w", err)
	}
	return exists, nil
}

func (r *LotRepository) UpdateLot(ctx context.Context, tx *sql.Tx, lot *db.ParkingLot) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE parking_lots
		SET name = $1, location = $2, capacity = $3, price_per_hour = $4, updated_at = NOW()
		WHERE id = $5`,
		lot.Name, lot.Location, lot.Capacity, lot.PricePerHour, lot.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("parking lot with this name already exists")
		}
		return fmt.Errorf("LotRepository.UpdateLot: %w", err)
	}
	return nil
}

// DeleteLot removes the lot; spots cascade. Callers verify no spot is
// occupied within the same transaction.
func (r *LotRepository) DeleteLot(ctx context.Context, tx *sql.Tx, id int) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("LotRepository.DeleteLot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("LotRepository.DeleteLot: rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("parking lot %d not found", id)
	}
	return nil
}

// SpotStatuses returns occupancy plus whether an active reservation holds
// each spot, for lot detail and dashboard views.
func (r *LotRepository) SpotStatuses(ctx context.Context, lotID int) ([]entities.SpotStatus, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.spot_number, s.is_occupied,
			EXISTS (SELECT 1 FROM reservations r
				WHERE r.spot_id = s.id AND r.status = 'active') AS is_reserved
		FROM parking_spots s
		WHERE s.lot_id = $1
		ORDER BY s.id`, lotID)
	if err != nil {
		return nil, fmt.Errorf("LotRepository.SpotStatuses: %w", err)
	}
	defer rows.Close()

	statuses := []entities.SpotStatus{}
	for rows.Next() {
		var st entities.SpotStatus
		if err := rows.Scan(&st.ID, &st.SpotNumber, &st.IsOccupied, &st.IsReserved); err != nil {
			return nil, fmt.Errorf("LotRepository.SpotStatuses: scan: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// AddSpots appends spots numbered from..to to the lot as part of a capacity
// increase.
func (r *LotRepository) AddSpots(ctx context.Context, tx *sql.Tx, lotID, from, to int) error {
	if err := insertSpots(ctx, tx, lotID, from, to); err != nil {
		return fmt.Errorf("LotRepository.AddSpots: %w", err)
	}
	return nil
}

func insertSpots(ctx context.Context, tx *sql.Tx, lotID, from, to int) error {
	for i := from; i <= to; i++ {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO parking_spots (lot_id, spot_number) VALUES ($1, $2)`,
			lotID, utils.SpotNumber(i))
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveUnoccupiedSpots deletes exactly count spots that are neither occupied
// nor reserved, newest first. All-or-nothing: if fewer than count qualify it
// returns a conflict and deletes nothing, which rolls the enclosing capacity
// change back.
func (r *LotRepository) RemoveUnoccupiedSpots(ctx context.Context, tx *sql.Tx, lotID, count int) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT s.id FROM parking_spots s
		WHERE s.lot_id = $1 AND `+availableSpotCondition+`
		ORDER BY s.id DESC
		LIMIT $2
		FOR UPDATE OF s`, lotID, count)
	if err != nil {
		return fmt.Errorf("LotRepository.RemoveUnoccupiedSpots: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("LotRepository.RemoveUnoccupiedSpots: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("LotRepository.RemoveUnoccupiedSpots: %w", err)
	}

	if len(ids) < count {
		return apperrors.Conflict("cannot reduce capacity: only %d removable spots, need %d", len(ids), count)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("LotRepository.RemoveUnoccupiedSpots: delete: %w", err)
	}
	return nil
}

// SetOccupied flips the physical occupancy flag. Callers hold the
// transactional guarantee that the flip is legal.
func (r *LotRepository) SetOccupied(ctx context.Context, tx *sql.Tx, spotID int, occupied bool) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE parking_spots SET is_occupied = $1 WHERE id = $2`, occupied, spotID)
	if err != nil {
		return fmt.Errorf("LotRepository.SetOccupied: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("LotRepository.SetOccupied: rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("parking spot %d not found", spotID)
	}
	return nil
}

func (r *LotRepository) CountOccupied(ctx context.Context, tx *sql.Tx, lotID int) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM parking_spots WHERE lot_id = $1 AND is_occupied = TRUE`, lotID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("LotRepository.CountOccupied: %w", err)
	}
	return n, nil
}

// DashboardCounts aggregates system-wide spot and reservation totals.
func (r *LotRepository) DashboardCounts(ctx context.Context) (*entities.DashboardSummary, error) {
	var s entities.DashboardSummary
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM parking_lots),
			(SELECT COUNT(*) FROM parking_spots),
			(SELECT COUNT(*) FROM parking_spots WHERE is_occupied = TRUE),
			(SELECT COUNT(*) FROM parking_spots s
				WHERE s.is_occupied = FALSE AND EXISTS (
					SELECT 1 FROM reservations r
					WHERE r.spot_id = s.id AND r.status = 'active')),
			(SELECT COUNT(*) FROM reservations),
			(SELECT COUNT(*) FROM reservations WHERE status = 'completed'),
			(SELECT COUNT(*) FROM reservations WHERE status = 'active')`).
		Scan(&s.TotalParkingLots, &s.TotalSpots, &s.OccupiedSpots, &s.ReservedSpots,
			&s.TotalReservations, &s.CompletedReservations, &s.ActiveReservations)
	if err != nil {
		return nil, fmt.Errorf("LotRepository.DashboardCounts: %w", err)
	}
	s.AvailableSpots = s.TotalSpots - s.OccupiedSpots - s.ReservedSpots
	if s.TotalSpots > 0 {
		s.OccupancyRate = float64(s.OccupiedSpots) / float64(s.TotalSpots) * 100
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}
