package scheme

import "errors"

var (
	// ErrInvalidConfig indicates a scheme configuration that failed
	// validation at registration time.
	ErrInvalidConfig = errors.New("invalid scheme configuration")

	// ErrMissingConfig indicates a scheme that requires configuration was
	// registered without any.
	ErrMissingConfig = errors.New("scheme configuration is required")

	// ErrDuplicateStrategy indicates a strategy name was registered twice.
	ErrDuplicateStrategy = errors.New("strategy already registered")

	// ErrUnknownStrategy indicates a lookup for a strategy that was never
	// registered.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
