package entity

import (
	"regexp"
	"strings"

	"github.com/oksasatya/tenant-identity/pkg/apperr"
)

// local@domain.tld; every domain label starts and ends with an alphanumeric.
var emailPattern = regexp.MustCompile(`^[\w.%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)

// Email is a validated, normalized (lowercase) address.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Email{}, apperr.Validation("email is required")
	}
	if !emailPattern.MatchString(v) {
		return Email{}, apperr.Validation("invalid email format: " + raw)
	}
	return Email{value: v}, nil
}

// MustEmail panics on an invalid address. Intended for constants and tests.
func MustEmail(raw string) Email {
	e, err := NewEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) String() string { return e.value }

func (e Email) IsZero() bool { return e.value == "" }

func (e Email) Equals(other Email) bool { return e.value == other.value }
