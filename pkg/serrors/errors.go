package serrors

import "errors"

// BaseError is a structured error carrying a stable machine-readable code
// alongside the human-readable message. Sentinel instances are compared by
// code, so a sentinel decorated with WithTemplateData still matches the
// original in errors.Is chains.
type BaseError struct {
	Code         string
	Message      string
	LocaleKey    string
	TemplateData map[string]string
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

// WithTemplateData returns a copy of the error enriched with rendering data.
// The receiver is not mutated, so package-level sentinels stay immutable.
func (e *BaseError) WithTemplateData(data map[string]string) *BaseError {
	clone := *e
	clone.TemplateData = data
	return &clone
}

func (e *BaseError) Is(target error) bool {
	var base *BaseError
	if !errors.As(target, &base) {
		return false
	}
	return e.Code == base.Code
}

// Code extracts the structured code from err, or "" when err carries none.
func Code(err error) string {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Code
	}
	return ""
}
