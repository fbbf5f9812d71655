package mailer

import (
	"context"
	"errors"
	"time"
)

// ErrEnqueueTimeout is returned when an in-process send outlives its budget.
var ErrEnqueueTimeout = errors.New("mailer: enqueue timed out")

// Publisher puts a JSON payload on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueDispatcher hands email jobs to the queue with a bounded timeout so a
// slow broker never stalls an auth flow.
type QueueDispatcher struct {
	pub     Publisher
	timeout time.Duration
}

func NewQueueDispatcher(pub Publisher, timeout time.Duration) *QueueDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &QueueDispatcher{pub: pub, timeout: timeout}
}

func (d *QueueDispatcher) Enqueue(ctx context.Context, job EmailJob) error {
	c, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.pub.PublishJSON(c, job)
}

// DirectDispatcher renders and sends in-process. Used when no broker is
// configured. Enqueue returns once timeout elapses even if the sender ignores
// its context; the send keeps running in the background.
type DirectDispatcher struct {
	worker  *Worker
	timeout time.Duration
}

func NewDirectDispatcher(w *Worker, timeout time.Duration) *DirectDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DirectDispatcher{worker: w, timeout: timeout}
}

func (d *DirectDispatcher) Enqueue(ctx context.Context, job EmailJob) error {
	c, cancel := context.WithTimeout(ctx, d.timeout)
	done := make(chan error, 1)
	go func() {
		defer cancel()
		subject, text, html, err := Prepare(c, &job, d.worker.Resolver)
		if err != nil {
			done <- err
			return
		}
		done <- d.worker.Sender.Send(c, job.To, subject, text, html)
	}()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrEnqueueTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
