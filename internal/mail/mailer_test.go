package mail

import (
	"strings"
	"testing"

	"github.com/promptpress/promptpress/internal/config"

	"gopkg.in/gomail.v2"
)

type captureSender struct {
	messages []*gomail.Message
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return nil
}

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "mailer",
		Password:    "secret",
		From:        "no-reply@example.com",
		FrontendURL: "http://localhost:3000",
	}
}

func TestMailer_SendVerificationEmail(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailerWithSender(testSMTPConfig(), sender)
	if !mailer.Ready() {
		t.Fatalf("expected mailer to be ready")
	}

	if err := mailer.SendVerificationEmail("alice@example.com", "alice", "tok-123"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sender.messages))
	}

	msg := sender.messages[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "alice@example.com" {
		t.Fatalf("unexpected recipient %v", got)
	}
	if got := msg.GetHeader("From"); len(got) != 1 || !strings.Contains(got[0], "no-reply@example.com") {
		t.Fatalf("unexpected sender %v", got)
	}
}

func TestMailer_UnconfiguredIsNoop(t *testing.T) {
	mailer := NewMailer(config.SMTPConfig{FrontendURL: "http://localhost:3000"})
	if mailer.Ready() {
		t.Fatalf("expected mailer without smtp host to be disabled")
	}
	if err := mailer.SendVerificationEmail("bob@example.com", "bob", "tok"); err != nil {
		t.Fatalf("unconfigured send should be a no-op, got %v", err)
	}
}

func TestMailer_VerificationLink(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.FrontendURL = "https://blog.example.com/"
	mailer := NewMailerWithSender(cfg, &captureSender{})

	want := "https://blog.example.com/verify-email?token=abc"
	if got := mailer.VerificationLink("abc"); got != want {
		t.Fatalf("link = %q, want %q", got, want)
	}
}
