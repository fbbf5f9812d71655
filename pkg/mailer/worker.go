package mailer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

// Worker turns queued jobs into sent (or archived) emails.
type Worker struct {
	Sender      Sender
	Resolver    mailtpl.GeoResolver
	Logger      logrus.FieldLogger
	SendTimeout time.Duration
}

// Handle processes one message body. Malformed or unrenderable jobs are
// dropped; delivery failures are requeued.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job")
		return Drop
	}
	if job.To == "" {
		w.Logger.Warn("email job without recipient")
		return Drop
	}
	subject, text, html, err := Prepare(ctx, &job, w.Resolver)
	if err != nil {
		w.Logger.WithError(err).WithField("template", job.Template).Error("render email failed")
		return Drop
	}

	timeout := w.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		w.Logger.WithError(err).WithField("to", job.To).Error("send email failed")
		return Requeue
	}
	w.Logger.WithFields(logrus.Fields{"to": job.To, "type": job.Data["Type"]}).Info("email sent")
	return Ack
}
