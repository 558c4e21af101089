package validator

import "errors"

type Code string

const (
	CodeRequired          Code = "required"
	CodeInvalidFormat     Code = "invalid_format"
	CodeInvalidScheme     Code = "invalid_scheme"
	CodeBlockedDomain     Code = "blocked_domain"
	CodeSuspiciousPattern Code = "suspicious_pattern"
	CodeIPNotAllowed      Code = "ip_not_allowed"
	CodeTooManyFiles      Code = "too_many_files"
	CodeFileTooLarge      Code = "file_too_large"
	CodeUnsupportedType   Code = "unsupported_type"
	CodeContentMismatch   Code = "content_mismatch"
)

// Error is a client-fixable validation failure. Message is safe to show to
// the submitter.
type Error struct {
	Code    Code
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newError(code Code, field, message string) *Error {
	return &Error{Code: code, Field: field, Message: message}
}

// CodeOf returns the validation code carried by err, or "" when err is not a
// validation failure.
func CodeOf(err error) Code {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ""
}
