package internet

import (
	"net/mail"
	"strings"

	"github.com/openclerk/casedesk/pkg/serrors"
)

var ErrInvalidEmail = serrors.NewError("INTERNET_INVALID_EMAIL", "invalid email address", "Internet.InvalidEmail")

// Email is a validated, canonicalized (lowercased, trimmed) email address.
// Equality on the stored value is safe for case-insensitive lookups.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: normalized}, nil
}

// MustEmail panics on invalid input. For tests and seed data only.
func MustEmail(raw string) Email {
	e, err := NewEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) Value() string {
	return e.value
}

func (e Email) IsZero() bool {
	return e.value == ""
}
