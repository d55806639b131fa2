package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"strings"

	"innovation-portal/internal/domain/notification"
	"innovation-portal/internal/domain/user"

	mail "github.com/go-mail/mail/v2"
)

// Sender is satisfied by *mail.Dialer.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// NewSMTPDialer enforces STARTTLS.
func NewSMTPDialer(c SMTPConfig) *mail.Dialer {
	port := c.Port
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(c.Host, port, c.User, c.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: c.Host}
	return d
}

// EmailSink mails the idea owner. Events for owners without an address are skipped.
type EmailSink struct {
	sender Sender
	users  user.Repository
	from   string
}

func NewEmailSink(sender Sender, users user.Repository, from string) *EmailSink {
	return &EmailSink{sender: sender, users: users, from: from}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, e notification.Event) error {
	owner, err := s.users.GetByUserID(ctx, e.OwnerID)
	if err != nil {
		return fmt.Errorf("resolve owner %s: %w", e.OwnerID, err)
	}
	if owner.Email == "" {
		return nil
	}

	subject, body := render(e)
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", owner.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	// go-mail has no context support; abandon the wait if ctx ends first
	errc := make(chan error, 1)
	go func() { errc <- s.sender.DialAndSend(m) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func render(e notification.Event) (string, string) {
	title := html.EscapeString(e.IdeaTitle)
	var subject, line string
	switch e.Type {
	case notification.TypeIdeaSubmitted:
		subject = "Idea submitted: " + e.IdeaTitle
		line = fmt.Sprintf("Your idea <b>%s</b> was submitted for review.", title)
	case notification.TypeReviewAdded:
		subject = "New review on: " + e.IdeaTitle
		line = fmt.Sprintf("A %s review (%s) was added to <b>%s</b>.",
			html.EscapeString(e.Stage), html.EscapeString(strings.ToLower(e.ReviewStatus)), title)
	case notification.TypeIdeaStatusChange:
		subject = "Status changed: " + e.IdeaTitle
		line = fmt.Sprintf("<b>%s</b> moved from %s to %s.",
			title, html.EscapeString(e.OldStatus), html.EscapeString(e.NewStatus))
	default:
		subject = "Update on: " + e.IdeaTitle
		line = fmt.Sprintf("There is an update on <b>%s</b>.", title)
	}
	body := "<p>" + line + "</p>"
	if e.Message != "" {
		body += "<p>" + html.EscapeString(e.Message) + "</p>"
	}
	return subject, body
}
