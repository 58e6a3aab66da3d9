package planner

import "errors"

var (
	// ErrUnknownEnum reports a sex, activity level or goal outside the
	// supported values.
	ErrUnknownEnum = errors.New("unknown enum value")

	// ErrInvalidSession reports a training session whose times cannot work.
	ErrInvalidSession = errors.New("invalid training session")
)
