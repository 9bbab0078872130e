package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendHandoffAlertEmail(ctx context.Context, toEmail, leadName, phone, reasoning string) error {
	content, err := renderEmailTemplate("handoff_alert.html", handoffAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "Handoff requested",
			Heading: "A caller needs a human agent",
		},
		LeadName:  leadName,
		Phone:     phone,
		Reasoning: reasoning,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectHandoffAlertFmt, leadName), content)
}

func (s *SMTPSender) SendLeadQualifiedEmail(ctx context.Context, toEmail, leadName string, readinessScore int, nextAction string) error {
	content, err := renderEmailTemplate("lead_qualified.html", leadQualifiedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Lead qualified",
			Heading: "A lead is ready to move forward",
		},
		LeadName:       leadName,
		ReadinessScore: readinessScore,
		NextAction:     nextAction,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectLeadQualifiedFmt, leadName), content)
}

func (s *SMTPSender) SendAppointmentNoticeEmail(ctx context.Context, toEmail, leadName, date, timeSlot, address string) error {
	content, err := renderEmailTemplate("appointment_notice.html", appointmentNoticeEmailData{
		baseEmailData: baseEmailData{
			Title:   "Showing proposed",
			Heading: "New showing on the calendar",
		},
		LeadName: leadName,
		Date:     date,
		TimeSlot: timeSlot,
		Address:  address,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAppointmentNoticeFmt, leadName), content)
}

func (s *SMTPSender) SendFollowUpDueEmail(ctx context.Context, toEmail, leadName, note string) error {
	content, err := renderEmailTemplate("follow_up.html", followUpDueEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow-up due",
			Heading: "Time to reconnect with a lead",
		},
		LeadName: leadName,
		Note:     note,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectFollowUpDueFmt, leadName), content)
}

var _ Sender = (*SMTPSender)(nil)
