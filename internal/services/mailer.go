package services

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/example/storelane/internal/config"
	"github.com/example/storelane/internal/models"
)

// Notifier delivers account lifecycle notifications. Handlers depend on this
// interface; tests substitute a recording fake.
type Notifier interface {
	ActivationRequested(user *models.User, token string) error
	Activated(user *models.User) error
	PasswordResetRequested(user *models.User, token, redirectURL string) error
	PasswordResetSucceeded(user *models.User) error
}

// Mailer sends notifications over SMTP. When no SMTP host is configured it
// logs the would-be delivery and reports success, so local setups work
// without a mail server.
type Mailer struct {
	host        string
	port        string
	from        string
	frontendURL string
	log         *zap.Logger
}

// NewMailer constructs a Mailer from config.
func NewMailer(cfg *config.Config, log *zap.Logger) *Mailer {
	return &Mailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		from:        cfg.SMTPFrom,
		frontendURL: cfg.FrontendURL,
		log:         log,
	}
}

// ActivationRequested mails the account activation link.
func (m *Mailer) ActivationRequested(user *models.User, token string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nPlease confirm your email address by visiting:\r\n%s/signup/activate/%s\r\n",
		user.FirstName, m.frontendURL, token,
	)
	return m.send(user.Email, "Activate your account", body)
}

// Activated mails the post-activation welcome note.
func (m *Mailer) Activated(user *models.User) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account is now active. Welcome!\r\n", user.FirstName)
	return m.send(user.Email, "Account activated", body)
}

// PasswordResetRequested mails the reset link containing the token.
func (m *Mailer) PasswordResetRequested(user *models.User, token, redirectURL string) error {
	if redirectURL == "" {
		redirectURL = m.frontendURL
	}
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYou requested a password reset. Use the link below within 12 hours:\r\n%s?token=%s\r\n\r\nIf you did not request this, no action is needed.\r\n",
		user.FirstName, redirectURL, token,
	)
	return m.send(user.Email, "Reset your password", body)
}

// PasswordResetSucceeded confirms the password change.
func (m *Mailer) PasswordResetSucceeded(user *models.User) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour password was changed successfully.\r\n", user.FirstName)
	return m.send(user.Email, "Password changed", body)
}

func (m *Mailer) send(to, subject, body string) error {
	if m.host == "" {
		m.log.Info("smtp not configured, skipping mail",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := "From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		m.log.Error("mail delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}

	return nil
}
