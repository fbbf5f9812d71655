package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

// Universal is the single layout every auth email is rendered with; Type
// selects the copy.
const Universal = "universal"

// Email types rendered by the universal layout.
const (
	LoginNotification = "login_notification"
	VerifyEmail       = "verify_email"
	VerifyCode        = "verify_code"
	ForgotPassword    = "forgot_password"
	PasswordChanged   = "password_changed"
)

// ErrUnknownTemplate is returned by Render for a layout with no embedded files.
var ErrUnknownTemplate = errors.New("unknown email template")

// ToMap flattens d into the JSON-shaped map carried by an EmailJob, so queued
// and in-process jobs render from the same input.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// fallback backs {{ .Value | default "x" }}. Blank strings, nil and zero
// values all take the fallback; job data decoded from JSON has no typed zeros
// beyond those.
func fallback(def any, v any) any {
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return def
		}
		return s
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.IsZero() {
		return def
	}
	return v
}

var funcs = map[string]any{
	"upper":   strings.ToUpper,
	"default": fallback,
}

// parsed holds every embedded layout, keyed by file name. Text parts
// (subject, text) and HTML parts are parsed into separate sets so the HTML
// body gets contextual escaping.
var parsed struct {
	once sync.Once
	text *texttpl.Template
	html *htmpl.Template
	err  error
}

func load() (*texttpl.Template, *htmpl.Template, error) {
	parsed.once.Do(func() {
		parsed.text, parsed.err = texttpl.New("").Funcs(funcs).Option("missingkey=zero").
			ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if parsed.err != nil {
			parsed.err = fmt.Errorf("parse text templates: %w", parsed.err)
			return
		}
		parsed.html, parsed.err = htmpl.New("").Funcs(funcs).Option("missingkey=zero").
			ParseFS(FS, "*.html.tmpl")
		if parsed.err != nil {
			parsed.err = fmt.Errorf("parse html templates: %w", parsed.err)
		}
	})
	return parsed.text, parsed.html, parsed.err
}

// Render executes <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl
// against data. The subject is trimmed to a single line.
func Render(name string, data any) (subject, text, html string, err error) {
	textSet, htmlSet, err := load()
	if err != nil {
		return "", "", "", err
	}
	if textSet.Lookup(name+".subject.tmpl") == nil || htmlSet.Lookup(name+".html.tmpl") == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	exec := func(part string, run func() error) (string, error) {
		buf.Reset()
		if err := run(); err != nil {
			return "", fmt.Errorf("exec %s.%s: %w", name, part, err)
		}
		return buf.String(), nil
	}
	if subject, err = exec("subject", func() error { return textSet.ExecuteTemplate(&buf, name+".subject.tmpl", data) }); err != nil {
		return "", "", "", err
	}
	if text, err = exec("text", func() error { return textSet.ExecuteTemplate(&buf, name+".text.tmpl", data) }); err != nil {
		return "", "", "", err
	}
	if html, err = exec("html", func() error { return htmlSet.ExecuteTemplate(&buf, name+".html.tmpl", data) }); err != nil {
		return "", "", "", err
	}
	return strings.Join(strings.Fields(subject), " "), text, html, nil
}
