package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parkhub/internal/entities"
)

type mockJobStore struct{ mock.Mock }

func (m *mockJobStore) ExpiringWithin(ctx context.Context, window time.Duration) ([]entities.ExpiryNotice, error) {
	args := m.Called(ctx, window)
	if notices := args.Get(0); notices != nil {
		return notices.([]entities.ExpiryNotice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJobStore) MarkReminded(ctx context.Context, ids []int) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockJobStore) MonthlyActivity(ctx context.Context, since time.Time) ([]entities.MonthlyReport, error) {
	args := m.Called(ctx, since)
	if reports := args.Get(0); reports != nil {
		return reports.([]entities.MonthlyReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendExpiryReminder(notice entities.ExpiryNotice) {
	m.Called(notice)
}

func (m *mockNotifier) SendMonthlyReport(report entities.MonthlyReport) {
	m.Called(report)
}

func TestSendExpiryRemindersNotifiesAndMarks(t *testing.T) {
	store := new(mockJobStore)
	notifier := new(mockNotifier)
	svc := NewJobService(store, notifier)

	notices := []entities.ExpiryNotice{
		{ReservationID: 11, Code: "abc", UserName: "Ana", LotName: "Central"},
		{ReservationID: 12, Code: "def", UserName: "Ben", LotName: "Harbor"},
	}
	store.On("ExpiringWithin", mock.Anything, 15*time.Minute).Return(notices, nil)
	notifier.On("SendExpiryReminder", notices[0]).Once()
	notifier.On("SendExpiryReminder", notices[1]).Once()
	store.On("MarkReminded", mock.Anything, []int{11, 12}).Return(nil)

	require.NoError(t, svc.SendExpiryReminders(context.Background()))
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSendExpiryRemindersNothingDue(t *testing.T) {
	store := new(mockJobStore)
	notifier := new(mockNotifier)
	svc := NewJobService(store, notifier)

	store.On("ExpiringWithin", mock.Anything, 15*time.Minute).Return(nil, nil)

	require.NoError(t, svc.SendExpiryReminders(context.Background()))
	store.AssertNotCalled(t, "MarkReminded", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "SendExpiryReminder", mock.Anything)
}

func TestSendMonthlyReports(t *testing.T) {
	store := new(mockJobStore)
	notifier := new(mockNotifier)
	svc := NewJobService(store, notifier)

	reports := []entities.MonthlyReport{
		{UserID: 7, UserName: "Ana", Reservations: 3, TotalSpent: 450, TotalHours: 9},
	}
	store.On("MonthlyActivity", mock.Anything, mock.AnythingOfType("time.Time")).Return(reports, nil)
	notifier.On("SendMonthlyReport", reports[0]).Once()

	require.NoError(t, svc.SendMonthlyReports(context.Background()))

	since := store.Calls[0].Arguments.Get(1).(time.Time)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -30), since, time.Minute)
	notifier.AssertExpectations(t)
}
