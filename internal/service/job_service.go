package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"parkhub/internal/entities"
)

// expiryWindow is how far ahead the reminder job looks for reservations
// about to run out.
const expiryWindow = 15 * time.Minute

type JobStore interface {
	ExpiringWithin(ctx context.Context, window time.Duration) ([]entities.ExpiryNotice, error)
	MarkReminded(ctx context.Context, ids []int) error
	MonthlyActivity(ctx context.Context, since time.Time) ([]entities.MonthlyReport, error)
}

type Notifier interface {
	SendExpiryReminder(notice entities.ExpiryNotice)
	SendMonthlyReport(report entities.MonthlyReport)
}

type JobService struct {
	Repo   JobStore
	Sender Notifier
}

func NewJobService(repo JobStore, sender Notifier) *JobService {
	return &JobService{Repo: repo, Sender: sender}
}

// SendExpiryReminders notifies holders of active reservations ending within
// the next 15 minutes. Each reservation is reminded at most once.
func (s *JobService) SendExpiryReminders(ctx context.Context) error {
	log.Println("Cron Job: Checking for reservations about to expire...")

	notices, err := s.Repo.ExpiringWithin(ctx, expiryWindow)
	if err != nil {
		return fmt.Errorf("cron job: failed to get expiring reservations: %w", err)
	}
	if len(notices) == 0 {
		log.Println("Cron Job: No reservations expiring within the window.")
		return nil
	}

	ids := make([]int, 0, len(notices))
	for _, notice := range notices {
		s.Sender.SendExpiryReminder(notice)
		ids = append(ids, notice.ReservationID)
	}

	if err := s.Repo.MarkReminded(ctx, ids); err != nil {
		return fmt.Errorf("cron job: failed to mark reservations as reminded: %w", err)
	}

	log.Printf("Cron Job: Sent %d expiry reminders. IDs: %v", len(ids), ids)
	return nil
}

// SendMonthlyReports mails every user with activity in the last 30 days a
// summary of their reservations and spending.
func (s *JobService) SendMonthlyReports(ctx context.Context) error {
	log.Println("Cron Job: Building monthly activity reports...")

	since := time.Now().UTC().AddDate(0, 0, -30)
	reports, err := s.Repo.MonthlyActivity(ctx, since)
	if err != nil {
		return fmt.Errorf("cron job: failed to aggregate monthly activity: %w", err)
	}
	if len(reports) == 0 {
		log.Println("Cron Job: No user activity in the last month.")
		return nil
	}

	for _, report := range reports {
		s.Sender.SendMonthlyReport(report)
	}

	log.Printf("Cron Job: Dispatched %d monthly reports.", len(reports))
	return nil
}
