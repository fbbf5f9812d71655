package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, text, html})
	return nil
}

type fakeResolver struct {
	geo mailtpl.Geo
	err error
}

func (f fakeResolver) Lookup(context.Context, string) (mailtpl.Geo, error) { return f.geo, f.err }

type fakePublisher struct {
	bodies   []any
	deadline bool
	err      error
}

func (f *fakePublisher) PublishJSON(ctx context.Context, body any) error {
	_, f.deadline = ctx.Deadline()
	f.bodies = append(f.bodies, body)
	return f.err
}

func jobBody(t *testing.T, job EmailJob) []byte {
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestWorker_RendersAndSends(t *testing.T) {
	s := &fakeSender{}
	w := &Worker{Sender: s, Logger: helpers.NewNopLogger(), Resolver: fakeResolver{
		geo: mailtpl.Geo{City: "Jakarta", Country: "Indonesia", Timezone: "Asia/Jakarta"},
	}}
	cfg := &config.Config{CompanyName: "E-Garage"}
	data := mailtpl.NewLoginNotificationData(cfg, "Ann", "ann@example.com",
		mailtpl.WithIP("203.0.113.9"), mailtpl.WithTime(time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)))

	out := w.Handle(context.Background(), jobBody(t, EmailJob{To: "ann@example.com", Template: mailtpl.Universal, Data: data}))

	assert.Equal(t, Ack, out)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "New login to your E-Garage account", s.sent[0].subject)
	assert.Contains(t, s.sent[0].text, "Jakarta, Indonesia")
	assert.Contains(t, s.sent[0].text, "01 March 2026, 08:00 WIB")
}

func TestWorker_Outcomes(t *testing.T) {
	w := &Worker{Sender: &fakeSender{}, Logger: helpers.NewNopLogger()}

	assert.Equal(t, Drop, w.Handle(context.Background(), []byte("{not json")))
	assert.Equal(t, Drop, w.Handle(context.Background(), jobBody(t, EmailJob{Template: mailtpl.Universal})))
	assert.Equal(t, Drop, w.Handle(context.Background(), jobBody(t, EmailJob{To: "a@b.test", Template: "missing"})))
	assert.Equal(t, Drop, w.Handle(context.Background(), jobBody(t, EmailJob{To: "a@b.test"})))

	w.Sender = &fakeSender{err: errors.New("mailgun down")}
	assert.Equal(t, Requeue, w.Handle(context.Background(), jobBody(t, EmailJob{To: "a@b.test", Subject: "hi", Text: "body"})))
}

func TestPrepare_PlainJobAndRecipientDefaults(t *testing.T) {
	subject, text, _, err := Prepare(context.Background(), &EmailJob{To: "a@b.test", Subject: "hi", Text: "body"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", subject)
	assert.Equal(t, "body", text)

	job := &EmailJob{To: "c@d.test", Template: mailtpl.Universal, Data: map[string]any{"Type": mailtpl.PasswordChanged}}
	_, text, _, err = Prepare(context.Background(), job, fakeResolver{err: errors.New("offline")})
	require.NoError(t, err)
	assert.Equal(t, "c@d.test", job.Data["RecipientEmail"])
	assert.Contains(t, text, "The password for c@d.test was changed")
}

func TestQueueDispatcher_BoundsPublish(t *testing.T) {
	pub := &fakePublisher{}
	d := NewQueueDispatcher(pub, time.Second)

	require.NoError(t, d.Enqueue(context.Background(), EmailJob{To: "a@b.test"}))
	assert.True(t, pub.deadline)
	require.Len(t, pub.bodies, 1)
	assert.Equal(t, EmailJob{To: "a@b.test"}, pub.bodies[0])

	pub.err = context.DeadlineExceeded
	assert.ErrorIs(t, d.Enqueue(context.Background(), EmailJob{To: "a@b.test"}), context.DeadlineExceeded)
}

func TestDirectDispatcher_Sends(t *testing.T) {
	s := &fakeSender{}
	d := NewDirectDispatcher(&Worker{Sender: s, Logger: helpers.NewNopLogger()}, time.Second)

	require.NoError(t, d.Enqueue(context.Background(), EmailJob{To: "a@b.test", Subject: "s", HTML: "<p>x</p>"}))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "<p>x</p>", s.sent[0].html)
}

// stuckSender blocks until released, ignoring the context it is given.
type stuckSender struct{ release chan struct{} }

func (s stuckSender) Send(context.Context, string, string, string, string) error {
	<-s.release
	return nil
}

func TestDirectDispatcher_ReturnsWithinTimeout(t *testing.T) {
	s := stuckSender{release: make(chan struct{})}
	defer close(s.release)
	d := NewDirectDispatcher(&Worker{Sender: s, Logger: helpers.NewNopLogger()}, 50*time.Millisecond)

	start := time.Now()
	err := d.Enqueue(context.Background(), EmailJob{To: "a@b.test", Subject: "s", Text: "t"})

	assert.ErrorIs(t, err, ErrEnqueueTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDirectDispatcher_PropagatesSendError(t *testing.T) {
	d := NewDirectDispatcher(&Worker{Sender: &fakeSender{err: errors.New("mailgun down")}, Logger: helpers.NewNopLogger()}, time.Second)
	assert.EqualError(t, d.Enqueue(context.Background(), EmailJob{To: "a@b.test", Subject: "s", Text: "t"}), "mailgun down")
}

func TestArchive_StoresHTMLObject(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	a := NewArchive(func(_ context.Context, objectPath, contentType string, body []byte) (string, error) {
		gotPath, gotType, gotBody = objectPath, contentType, body
		return "gs://bucket/" + objectPath, nil
	})
	a.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }

	require.NoError(t, a.Send(context.Background(), "Ann.Lee@example.com", "Reset your password", "plain", ""))

	assert.True(t, strings.HasPrefix(gotPath, "emails/2026/05/06/Ann.Lee_example.com-"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ".html"))
	assert.Equal(t, "text/html; charset=utf-8", gotType)
	assert.Contains(t, string(gotBody), "<!-- subject: Reset your password -->")
	assert.Contains(t, string(gotBody), "<pre>plain</pre>")
}

func TestArchive_UploadError(t *testing.T) {
	a := NewArchive(func(context.Context, string, string, []byte) (string, error) {
		return "", errors.New("403")
	})
	assert.Error(t, a.Send(context.Background(), "a@b.test", "s", "t", "h"))
}

func TestNewSender_Selection(t *testing.T) {
	ctx := context.Background()
	logger := helpers.NewNopLogger()

	s, closeFn, err := NewSender(ctx, &config.Config{MailSendEnabled: true, MailgunDomain: "mg.example.com", MailgunAPIKey: "key", MailgunSender: "E-Garage <no-reply@example.com>"}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &Mailgun{}, s)

	_, _, err = NewSender(ctx, &config.Config{MailSendEnabled: true}, logger)
	assert.Error(t, err)

	s, _, err = NewSender(ctx, &config.Config{MailSendEnabled: false}, logger)
	require.NoError(t, err)
	assert.IsType(t, LogSender{}, s)
	assert.NoError(t, s.Send(ctx, "ann@example.com", "hi", "", ""))
}
