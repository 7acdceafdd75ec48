package client

import (
	"fmt"
	"time"

	httpclient "github.com/appleboy/go-httpclient"

	"github.com/go-badge/badge/internal/retry"
)

// CreateRetryClient builds the HTTP transport used for calls to the identity
// provider: a base client with optional service-level authentication, wrapped
// with retry support so transient provider faults do not fail verification
// outright.
func CreateRetryClient(
	authMode, authSecret string,
	timeout time.Duration,
	insecureSkipVerify bool,
	maxRetries int,
	retryDelay, maxRetryDelay time.Duration,
	authHeader string,
) (*retry.Client, error) {
	base, err := httpclient.NewAuthClient(
		authMode,
		authSecret,
		httpclient.WithTimeout(timeout),
		httpclient.WithHeaderName(authHeader),
		httpclient.WithInsecureSkipVerify(insecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	retryClient := retry.NewClient(
		retry.WithHTTPClient(base),
		retry.WithMaxRetries(maxRetries),
		retry.WithInitialRetryDelay(retryDelay),
		retry.WithMaxRetryDelay(maxRetryDelay),
	)

	return retryClient, nil
}
