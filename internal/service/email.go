package service

import (
	"fmt"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/model"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	fromName     string
	frontendURL  string
	send         sendFunc
}

func NewEmailService(cfg *config.Config) *EmailService {
	s := &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		fromName:     cfg.EmailFromName,
		frontendURL:  strings.TrimSuffix(cfg.FrontendURL, "/"),
		send:         smtp.SendMail,
	}
	logrus.WithField("smtp_host", s.smtpHost).Debug("Email service initialized")
	return s
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	// If SMTP is not configured, log the email instead
	if s.smtpHost == "" || s.smtpPort == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, logging email:\n" + body)
		return nil
	}

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) SendPasswordResetEmail(user *model.User, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	body := fmt.Sprintf("Hello %s,\n\n"+
		"Someone asked to reset the password of your Recetario account.\n"+
		"Open this link within 30 minutes to choose a new one:\n\n%s\n\n"+
		"If it was not you, ignore this message.\n", displayName(user), link)
	return s.SendEmail(user.Email, "Reset your Recetario password", body)
}

func (s *EmailService) SendWelcomeEmail(user *model.User) error {
	var what string
	if user.Role == model.RoleChef {
		what = "You can now publish your recipes."
	} else {
		what = "You can now browse and like recipes."
	}
	body := fmt.Sprintf("Welcome to Recetario, %s!\n\n%s\n", displayName(user), what)
	return s.SendEmail(user.Email, "Welcome to Recetario", body)
}

func displayName(user *model.User) string {
	return cases.Title(language.Und).String(user.Name)
}
