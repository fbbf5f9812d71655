package mailer

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AttemptsHeader counts failed sends of a queued job.
const AttemptsHeader = "x-attempts"

const maxBackoff = time.Minute

// Republisher puts a job back on the queue with new headers.
type Republisher interface {
	Publish(ctx context.Context, body []byte, headers amqp.Table) error
}

// Retrier settles deliveries. A failed send is republished with an
// incremented AttemptsHeader after an exponential backoff, and dropped once
// MaxAttempts sends have failed.
type Retrier struct {
	Publisher   Republisher
	Logger      logrus.FieldLogger
	MaxAttempts int
	Backoff     time.Duration
}

// Delay reports the wait before the next try after failed sends, or false
// when the job should be given up.
func (r *Retrier) Delay(failed int) (time.Duration, bool) {
	limit := r.MaxAttempts
	if limit <= 0 {
		limit = 5
	}
	if failed >= limit {
		return 0, false
	}
	d := r.Backoff
	if d <= 0 {
		d = 2 * time.Second
	}
	for i := 1; i < failed && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d, true
}

func (r *Retrier) Settle(ctx context.Context, d amqp.Delivery, out Outcome) {
	switch out {
	case Ack:
		_ = d.Ack(false)
		return
	case Drop:
		_ = d.Nack(false, false)
		return
	}

	failed := Attempts(d.Headers) + 1
	delay, ok := r.Delay(failed)
	if !ok {
		r.Logger.WithField("attempts", failed).Warn("giving up on email job")
		_ = d.Nack(false, false)
		return
	}

	t := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		t.Stop()
		// shutting down; the broker redelivers it to the next consumer
		_ = d.Nack(false, true)
		return
	case <-t.C:
	}

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[AttemptsHeader] = int32(failed)
	if err := r.Publisher.Publish(ctx, d.Body, headers); err != nil {
		r.Logger.WithError(err).Error("republish email job failed")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Attempts reads AttemptsHeader, treating a missing or odd value as zero.
func Attempts(h amqp.Table) int {
	switch v := h[AttemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	}
	return 0
}
