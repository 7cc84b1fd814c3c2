package templates

import (
	"strings"
	"time"
)

// Branding is the company block rendered in every footer.
type Branding struct {
	CompanyName    string
	CompanyAddress string
	AppName        string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
	LoginURL       string
}

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 MST")
	}
}

func WithOrganization(name string) Option {
	return func(d *EmailData) { d.OrganizationName = strings.TrimSpace(name) }
}

func WithRole(role string) Option { return func(d *EmailData) { d.Role = role } }

func WithTemporaryPassword(pwd string) Option {
	return func(d *EmailData) { d.TemporaryPassword = pwd }
}

func WithActor(email string) Option { return func(d *EmailData) { d.ActorEmail = email } }

// NewEmailData fills the branding block, then applies opts.
func NewEmailData(b Branding, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  strings.TrimSpace(name),
		Email: email,

		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		AppName:        b.AppName,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		PrivacyURL:     b.PrivacyURL,
		LoginURL:       b.LoginURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
