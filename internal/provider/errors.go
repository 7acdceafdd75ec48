package provider

import "errors"

var (
	// ErrConnection indicates the identity provider could not be reached at
	// the transport level. It is distinct from a non-success HTTP status,
	// which is a normal verification outcome for the caller to interpret.
	ErrConnection = errors.New("failed to connect to identity provider")

	// ErrInvalidResponse indicates the provider replied with a success
	// status but a body that could not be parsed.
	ErrInvalidResponse = errors.New("invalid response from identity provider")
)
