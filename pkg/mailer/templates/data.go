package templates

import (
	"strings"
	"time"

	"github.com/oksasatya/egarage-auth/config"
)

const displayTimeLayout = "02 January 2006, 15:04 MST"

// EmailData is the input of the universal layout. Fields left empty are
// skipped by the templates.
type EmailData struct {
	Type           string `json:"Type"`
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`

	// branding, from config
	AppName        string `json:"AppName"`
	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`
	PrivacyURL     string `json:"PrivacyURL"`
	UnsubscribeURL string `json:"UnsubscribeURL"`

	// per message
	ResetURL      string    `json:"ResetURL"`
	VerifyURL     string    `json:"VerifyURL"`
	Code          string    `json:"Code"`
	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`

	// sign-in context
	IP        string    `json:"IP"`
	UserAgent string    `json:"UserAgent"`
	Location  string    `json:"Location"`
	TimeAt    time.Time `json:"TimeAt"`
	Time      string    `json:"Time"`
}

// Option customizes one message.
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = strings.TrimSpace(ip) } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }

// WithTime stamps the event the email reports on, e.g. a sign-in.
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.TimeAt, d.Time = displayTime(t) }
}

func WithLocation(loc string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(loc); s != "" {
			d.Location = s
		}
	}
}

// WithExpiresAt tells the reader until when a link or code works.
func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) { d.ExpiresAt, d.ExpiresAtText = displayTime(t) }
}

func displayTime(t time.Time) (time.Time, string) {
	utc := t.UTC()
	return utc, utc.Format(displayTimeLayout)
}

// NewBaseEmailData fills branding from cfg, addresses the message to email and
// applies opts in order.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Type:           typ,
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// build applies the message-specific fields after the caller's options so a
// stray option cannot replace the link or code.
func build(cfg *config.Config, typ, name, email string, opts []Option, set func(*EmailData)) map[string]any {
	d := NewBaseEmailData(cfg, typ, name, email, opts...)
	if set != nil {
		set(&d)
	}
	return ToMap(d)
}

func NewLoginNotificationData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return build(cfg, LoginNotification, name, email, opts, nil)
}

func NewVerifyEmailData(cfg *config.Config, name, email, verifyURL string, opts ...Option) map[string]any {
	return build(cfg, VerifyEmail, name, email, opts, func(d *EmailData) { d.VerifyURL = verifyURL })
}

func NewVerifyCodeData(cfg *config.Config, name, email, code string, opts ...Option) map[string]any {
	return build(cfg, VerifyCode, name, email, opts, func(d *EmailData) { d.Code = code })
}

func NewForgotPasswordData(cfg *config.Config, name, email, resetURL string, opts ...Option) map[string]any {
	return build(cfg, ForgotPassword, name, email, opts, func(d *EmailData) { d.ResetURL = resetURL })
}

func NewPasswordChangedData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return build(cfg, PasswordChanged, name, email, opts, nil)
}
