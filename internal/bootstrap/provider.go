package bootstrap

import (
	"fmt"
	"log"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/client"
	"github.com/go-badge/badge/internal/config"
	"github.com/go-badge/badge/internal/metrics"
	"github.com/go-badge/badge/internal/provider"
	"github.com/go-badge/badge/internal/scheme"
)

// createProviderClient builds the identity provider client on top of the
// retrying transport.
func createProviderClient(cfg *config.Config) (*provider.Client, error) {
	transport, err := client.CreateRetryClient(
		cfg.ProviderAuthMode,
		cfg.ProviderAuthSecret,
		cfg.ProviderTimeout,
		cfg.ProviderInsecureSkipVerify,
		cfg.ProviderMaxRetries,
		cfg.ProviderRetryDelay,
		cfg.ProviderMaxRetryDelay,
		cfg.ProviderAuthHeader,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider transport: %w", err)
	}

	log.Printf("Identity provider: %s (timeout=%s, max_retries=%d)",
		cfg.ProviderAPIURL, cfg.ProviderTimeout, cfg.ProviderMaxRetries)
	return provider.NewClient(cfg.ProviderAPIURL, transport), nil
}

// registerSchemes builds both strategies, registers them, and selects the
// one the configuration activates for guarded routes.
func registerSchemes(
	cfg *config.Config,
	api scheme.ProviderAPI,
	outcomes cache.Cache[scheme.Outcome],
	recorder metrics.Recorder,
) (*scheme.Registry, scheme.Scheme, error) {
	registry := scheme.NewRegistry()

	basic, err := scheme.NewBasic(cfg.BasicSchemeConfig(), api, outcomes, recorder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build basic scheme: %w", err)
	}
	basic.SetCacheTTL(cfg.CacheTTL)
	if err := registry.Register(basic.Name(), basic); err != nil {
		return nil, nil, err
	}

	var active scheme.Scheme = basic

	// The token scheme needs client credentials; without them only the
	// basic scheme is available.
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		token, err := scheme.NewToken(cfg.TokenSchemeConfig(), api, outcomes, recorder)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build token scheme: %w", err)
		}
		token.SetCacheTTL(cfg.CacheTTL)
		if err := registry.Register(token.Name(), token); err != nil {
			return nil, nil, err
		}

		if cfg.AuthScheme == config.SchemeToken {
			active = token
		}
	}

	log.Printf("Registered strategies: %v (active: %s)", registry.Names(), active.Name())
	return registry, active, nil
}
