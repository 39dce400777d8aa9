package service

import (
	"fmt"
	"log"
	"time"

	"parkhub/internal/entities"
)

// SenderService formats and dispatches user-facing notifications. Emails go
// out on a goroutine so a slow provider never blocks the caller; SMS delivery
// failures are logged and swallowed.
type SenderService struct{}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) SendExpiryReminder(notice entities.ExpiryNotice) {
	endLocal := notice.EndTime.UTC().Format("02 Jan 2006 15:04 MST")

	subject := fmt.Sprintf("Your ParkHub reservation %s expires soon", notice.Code)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at %s (spot %s) expires at %s.\n\n"+
			"Extend it from the app if you need more time; staying past the "+
			"reserved window is billed at your reservation's hourly rate.\n\n"+
			"Thank you for choosing ParkHub.",
		notice.UserName, notice.LotName, notice.SpotNumber, endLocal,
	)

	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body, ""); err != nil {
			log.Printf("ALERT (async): failed to send expiry reminder email for reservation %s: %v", notice.Code, err)
		}
	}(notice.UserEmail, notice.UserName, subject, plainBody)

	if notice.UserPhone == "" {
		return
	}
	smsBody := fmt.Sprintf("ParkHub: reservation %s at %s expires at %s. Extend from the app to avoid overstay charges.",
		notice.Code, notice.LotName, notice.EndTime.UTC().Format("15:04 MST"))
	if err := SendSMS(notice.UserPhone, smsBody); err != nil {
		log.Printf("ALERT: failed to send expiry reminder SMS for reservation %s to %s: %v", notice.Code, notice.UserPhone, err)
	}
}

func (s *SenderService) SendMonthlyReport(report entities.MonthlyReport) {
	subject := fmt.Sprintf("Your ParkHub activity report - %s", time.Now().UTC().Format("January 2006"))
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nHere is your ParkHub activity for the last month:\n\n"+
			"Reservations: %d\n"+
			"Hours parked: %.2f\n"+
			"Total spent: %.2f\n\n"+
			"Thank you for choosing ParkHub.",
		report.UserName, report.Reservations, report.TotalHours, report.TotalSpent,
	)

	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body, ""); err != nil {
			log.Printf("ALERT (async): failed to send monthly report email to %s: %v", toEmail, err)
		}
	}(report.UserEmail, report.UserName, subject, plainBody)
}
