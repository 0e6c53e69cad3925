package mail

import (
	"fmt"
	"strings"

	"github.com/promptpress/promptpress/internal/config"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers composed messages over SMTP.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends transactional email for account verification.
type Mailer struct {
	cfg    config.SMTPConfig
	sender Sender
}

// NewMailer constructs a Mailer. When the SMTP config is incomplete the
// mailer stays disabled and sends become no-ops.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.Configured() {
		m.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// NewMailerWithSender constructs a Mailer with an injected sender.
func NewMailerWithSender(cfg config.SMTPConfig, sender Sender) *Mailer {
	return &Mailer{cfg: cfg, sender: sender}
}

// Ready reports whether the mailer can deliver mail.
func (m *Mailer) Ready() bool {
	return m != nil && m.sender != nil && m.cfg.Configured()
}

// VerificationLink builds the frontend URL that completes email verification.
func (m *Mailer) VerificationLink(token string) string {
	base := strings.TrimRight(m.cfg.FrontendURL, "/")
	return fmt.Sprintf("%s/verify-email?token=%s", base, token)
}

// SendVerificationEmail sends the account verification message. Delivery
// failures are logged and returned so callers can decide whether to surface them.
func (m *Mailer) SendVerificationEmail(email, username, token string) error {
	if !m.Ready() {
		log.WithField("email", email).Debug("mail: smtp not configured, skipping verification email")
		return nil
	}

	link := m.VerificationLink(token)
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Verify your email address")
	msg.SetBody("text/html", verificationBody(username, link))

	if errSend := m.sender.DialAndSend(msg); errSend != nil {
		log.WithError(errSend).WithField("email", email).Warn("mail: failed to send verification email")
		return errSend
	}
	log.WithField("email", email).Info("mail: verification email sent")
	return nil
}

func verificationBody(username, link string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Thanks for signing up. Please confirm your email address by clicking the link below:</p>
<p><a href="%s">Verify my email</a></p>
<p>If you did not create this account, you can safely ignore this message.</p>`, username, link)
}
