// Package email delivers agent notification email over SMTP. Senders render
// embedded HTML templates; a NoopSender stands in when SMTP is not
// configured so callers never need to nil-check.
package email

import "context"

type Sender interface {
	SendHandoffAlertEmail(ctx context.Context, toEmail, leadName, phone, reasoning string) error
	SendLeadQualifiedEmail(ctx context.Context, toEmail, leadName string, readinessScore int, nextAction string) error
	SendAppointmentNoticeEmail(ctx context.Context, toEmail, leadName, date, timeSlot, address string) error
	SendFollowUpDueEmail(ctx context.Context, toEmail, leadName, note string) error
}

type NoopSender struct{}

func (NoopSender) SendHandoffAlertEmail(ctx context.Context, toEmail, leadName, phone, reasoning string) error {
	return nil
}

func (NoopSender) SendLeadQualifiedEmail(ctx context.Context, toEmail, leadName string, readinessScore int, nextAction string) error {
	return nil
}

func (NoopSender) SendAppointmentNoticeEmail(ctx context.Context, toEmail, leadName, date, timeSlot, address string) error {
	return nil
}

func (NoopSender) SendFollowUpDueEmail(ctx context.Context, toEmail, leadName, note string) error {
	return nil
}

var _ Sender = NoopSender{}
