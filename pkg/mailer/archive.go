package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Uploader stores an object and returns its URI.
type Uploader func(ctx context.Context, objectPath, contentType string, body []byte) (string, error)

// Archive is a Sender that stores rendered emails as HTML objects instead of
// delivering them. Used when MAIL_SEND_ENABLED=false.
type Archive struct {
	upload Uploader
	now    func() time.Time
}

func NewArchive(upload Uploader) *Archive {
	return &Archive{upload: upload, now: time.Now}
}

// NewGCSClient opens a Cloud Storage client; an empty credsPath falls back to
// application default credentials.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// NewGCSArchive archives into a Cloud Storage bucket. Objects are single-shot
// uploads and are never overwritten.
func NewGCSArchive(client *storage.Client, bucket string) *Archive {
	return NewArchive(func(ctx context.Context, objectPath, contentType string, body []byte) (string, error) {
		obj := client.Bucket(bucket).Object(objectPath).If(storage.Conditions{DoesNotExist: true})
		wc := obj.NewWriter(ctx)
		wc.ContentType = contentType
		wc.ChunkSize = 0
		if _, err := wc.Write(body); err != nil {
			_ = wc.Close()
			return "", err
		}
		if err := wc.Close(); err != nil {
			return "", err
		}
		return "gs://" + bucket + "/" + objectPath, nil
	})
}

func (a *Archive) Send(ctx context.Context, to, subject, text, html string) error {
	at := a.now().UTC()
	path := fmt.Sprintf("emails/%s/%s-%s.html", at.Format("2006/01/02"), sanitizeRecipient(to), uuid.NewString())
	if _, err := a.upload(ctx, path, "text/html; charset=utf-8", []byte(archiveDocument(to, subject, text, html, at))); err != nil {
		return fmt.Errorf("archive email: %w", err)
	}
	return nil
}

func archiveDocument(to, subject, text, html string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- to: %s -->\n<!-- subject: %s -->\n<!-- archived: %s -->\n", to, subject, at.Format(time.RFC3339))
	if html != "" {
		b.WriteString(html)
	} else {
		b.WriteString("<pre>")
		b.WriteString(text)
		b.WriteString("</pre>")
	}
	return b.String()
}

func sanitizeRecipient(to string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == '@':
			return '_'
		default:
			return -1
		}
	}, to)
}
