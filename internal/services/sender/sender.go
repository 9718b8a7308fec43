// Package sender delivers password-reset emails consumed from the broker.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/muhammad-anas65/TaskCash/internal/lib/sl"
	"github.com/muhammad-anas65/TaskCash/internal/lib/smtp"
	"github.com/muhammad-anas65/TaskCash/internal/models"
)

// SenderService turns queued reset messages into outgoing mail.
type SenderService struct {
	transport smtp.TransportInterface
	resetURL  string
	log       *slog.Logger
}

// NewSenderService creates the sender.
func NewSenderService(transport smtp.TransportInterface, resetURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		resetURL:  resetURL,
		log:       log,
	}
}

// SendPasswordReset unmarshals one queued message and emails the reset link.
func (s *SenderService) SendPasswordReset(body []byte) error {
	var message models.ResetEmail
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	link := fmt.Sprintf("%s?token=%s&email=%s", s.resetURL, message.Token, message.Email)
	subject := "TaskCash password reset"
	bodyText := fmt.Sprintf("Hello,\n\nA password reset was requested for your TaskCash account.\n"+
		"Open the link below to choose a new password. The link expires in 15 minutes.\n\n%s\n\n"+
		"If you did not request this, you can ignore this email.", link)

	return s.sendEmail([]string{message.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("reset email sent", slog.Any("to", to))
	return nil
}
