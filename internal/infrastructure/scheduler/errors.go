package scheduler

import "errors"

var (
	// ErrSchedulerDisabled is returned by Start when no refresh interval is configured
	ErrSchedulerDisabled = errors.New("scheduler is disabled")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
