package services

import "errors"

var (
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDelivery wraps a mail provider failure. The wrapped detail is for
	// logs only.
	ErrDelivery = errors.New("email delivery failed")
	ErrStorage  = errors.New("visit storage failed")
	// ErrNoVisits means the requested day has nothing to report.
	ErrNoVisits = errors.New("no visits recorded")
)
