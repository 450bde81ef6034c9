package templates

import (
	"strings"
	"time"
)

// Brand is the sender identity filled in by the email worker.
type Brand struct {
	AppName        string
	CompanyName    string
	CompanyAddress string
	LogoURL        string
	SupportURL     string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithProfileURL(url string) Option { return func(d *EmailData) { d.ProfileURL = url } }

// WithBrand fills brand fields that are still empty.
func WithBrand(b Brand) Option {
	return func(d *EmailData) {
		setIfEmpty(&d.AppName, b.AppName)
		setIfEmpty(&d.CompanyName, b.CompanyName)
		setIfEmpty(&d.CompanyAddress, b.CompanyAddress)
		setIfEmpty(&d.LogoURL, b.LogoURL)
		setIfEmpty(&d.SupportURL, b.SupportURL)
	}
}

func setIfEmpty(dst *string, v string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = v
	}
}

func newData(typ, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, RecipientEmail: email, Type: typ}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(name, email, profileURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithProfileURL(profileURL)}, opts...)
	return ToMap(newData(Welcome, name, email, opts...))
}

func NewAccountDeletedData(name, email string, opts ...Option) map[string]any {
	return ToMap(newData(AccountDeleted, name, email, opts...))
}

// Apply re-hydrates job data, applies opts, and returns the updated map.
func Apply(data map[string]any, opts ...Option) map[string]any {
	d := FromMap(data)
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
