package mailer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
)

// LogSender only logs the envelope. Used when sending is disabled and no
// archive bucket is configured.
type LogSender struct {
	Logger logrus.FieldLogger
}

func (l LogSender) Send(_ context.Context, to, subject, _, _ string) error {
	l.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email not sent (sending disabled)")
	return nil
}

// NewSender picks the delivery backend from cfg: Mailgun when sending is
// enabled, otherwise the GCS archive or LogSender. The returned func releases
// any client it opened.
func NewSender(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (Sender, func(), error) {
	noop := func() {}
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			return nil, noop, errors.New("mailgun not configured")
		}
		return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), noop, nil
	}
	if cfg.EmailArchiveBucket == "" {
		return LogSender{Logger: logger}, noop, nil
	}
	client, err := NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		return nil, noop, err
	}
	return NewGCSArchive(client, cfg.EmailArchiveBucket), func() { _ = client.Close() }, nil
}
