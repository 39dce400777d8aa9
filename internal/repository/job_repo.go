package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"parkhub/internal/entities"
)

// JobRepository backs the scheduled housekeeping jobs: expiry reminders and
// monthly activity reports.
type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// ExpiringWithin returns active reservations ending inside the window that
// have not been reminded yet.
func (r *JobRepository) ExpiringWithin(ctx context.Context, window time.Duration) ([]entities.ExpiryNotice, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT res.id, res.code, u.name, u.email, u.phone, l.name, s.spot_number, res.end_time
		FROM reservations res
		JOIN users u ON res.user_id = u.id
		JOIN parking_spots s ON res.spot_id = s.id
		JOIN parking_lots l ON s.lot_id = l.id
		WHERE res.status = 'active'
			AND res.reminder_sent_at IS NULL
			AND res.end_time > NOW()
			AND res.end_time <= NOW() + $1::interval
		ORDER BY res.end_time`, fmt.Sprintf("%d seconds", int(window.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("JobRepository.ExpiringWithin: %w", err)
	}
	defer rows.Close()

	var notices []entities.ExpiryNotice
	for rows.Next() {
		var n entities.ExpiryNotice
		if err := rows.Scan(&n.ReservationID, &n.Code, &n.UserName, &n.UserEmail,
			&n.UserPhone, &n.LotName, &n.SpotNumber, &n.EndTime); err != nil {
			return nil, fmt.Errorf("JobRepository.ExpiringWithin: scan: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// MarkReminded records that reminders went out so the next run skips them.
func (r *JobRepository) MarkReminded(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE reservations SET reminder_sent_at = NOW() WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("JobRepository.MarkReminded: %w", err)
	}
	return nil
}

// MonthlyActivity aggregates per-user reservation activity since the given
// time, for users with any activity in the window.
func (r *JobRepository) MonthlyActivity(ctx context.Context, since time.Time) ([]entities.MonthlyReport, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, COUNT(res.id),
			COALESCE(SUM(COALESCE(res.final_cost, res.estimated_cost)), 0),
			COALESCE(SUM(COALESCE(res.actual_duration_hours, res.reserved_duration_hours)), 0)
		FROM users u
		JOIN reservations res ON res.user_id = u.id
		WHERE res.created_at >= $1
		GROUP BY u.id, u.name, u.email
		ORDER BY u.id`, since)
	if err != nil {
		return nil, fmt.Errorf("JobRepository.MonthlyActivity: %w", err)
	}
	defer rows.Close()

	var reports []entities.MonthlyReport
	for rows.Next() {
		var rep entities.MonthlyReport
		if err := rows.Scan(&rep.UserID, &rep.UserName, &rep.UserEmail,
			&rep.Reservations, &rep.TotalSpent, &rep.TotalHours); err != nil {
			return nil, fmt.Errorf("JobRepository.MonthlyActivity: scan: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
