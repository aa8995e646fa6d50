package mail

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gomail "gopkg.in/mail.v2"

	"instapaperkobo/internal/config"
	"instapaperkobo/internal/logger"
)

// Sender delivers exported files by mail.
type Sender interface {
	Send(files []string, timeout time.Duration) error
}

// dialer is the part of gomail.Dialer the sender needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender implements Sender over SMTP.
type SMTPSender struct {
	cfg    config.ConfigMail
	log    *logger.Logger
	dialer func(timeout time.Duration) dialer
}

// NewSMTPSender creates a sender for the configured mail account.
func NewSMTPSender(cfg config.ConfigMail, log *logger.Logger) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
		log: log,
		dialer: func(timeout time.Duration) dialer {
			d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Sender, cfg.Password)
			d.Timeout = timeout
			return d
		},
	}
}

// buildMessage attaches every file that exists and reports which ones made
// it in.
func (s *SMTPSender) buildMessage(files []string) (*gomail.Message, []string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.Sender)
	msg.SetHeader("To", s.cfg.Receiver)
	msg.SetHeader("Subject", "Instapaper export")
	msg.SetBody("text/plain", "")

	attached := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			s.log.Warnf("Skipping attachment %s: %v", file, err)
			continue
		}
		msg.Attach(file, gomail.Rename(filepath.Base(file)))
		attached = append(attached, file)
	}
	return msg, attached
}

func (s *SMTPSender) Send(files []string, timeout time.Duration) error {
	msg, attached := s.buildMessage(files)
	if len(attached) == 0 {
		return errors.New("no valid files to send")
	}

	s.log.Infof("Mailing %d files to %s (timeout %s)", len(attached), s.cfg.Receiver, timeout)
	if err := s.dialer(timeout).DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
