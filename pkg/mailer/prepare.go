package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

const localTimeLayout = "02 January 2006, 15:04 MST"

// Prepare renders a job into subject, text and html. Jobs without a
// template are returned as-is.
func Prepare(ctx context.Context, job *EmailJob, resolver mailtpl.GeoResolver) (subject, text, html string, err error) {
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", fmt.Errorf("job for %s has neither template nor body", job.To)
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	ensureRecipient(job)
	if resolver != nil {
		enrichFromGeo(ctx, resolver, job.Data)
	}
	return mailtpl.Render(job.Template, job.Data)
}

func ensureRecipient(job *EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, ok := job.Data[k]; !ok || fmt.Sprintf("%v", v) == "" {
			job.Data[k] = job.To
		}
	}
	if _, ok := job.Data["Type"]; !ok {
		job.Data["Type"] = ""
	}
}

// enrichFromGeo fills Location and renders times in the client's timezone
// when the IP resolves.
func enrichFromGeo(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	ipVal, ok := data["IP"]
	if !ok || fmt.Sprintf("%v", ipVal) == "" {
		return
	}
	g, err := resolver.Lookup(ctx, fmt.Sprintf("%v", ipVal))
	if err != nil {
		return
	}
	if loc, ok := data["Location"]; !ok || fmt.Sprintf("%v", loc) == "" {
		data["Location"] = mailtpl.FormatGeo(g)
	}
	if strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	if t, ok := parseTimeAny(data["ExpiresAt"]); ok {
		data["ExpiresAtText"] = t.In(loc).Format(localTimeLayout)
	}
	if t, ok := parseTimeAny(data["TimeAt"]); ok {
		data["Time"] = t.In(loc).Format(localTimeLayout)
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	s := fmt.Sprintf("%v", v)
	for _, l := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05 -0700 MST"} {
		if t, err := time.Parse(l, s); err == nil && !t.IsZero() && t.Year() > 1 {
			return t, true
		}
	}
	return time.Time{}, false
}
