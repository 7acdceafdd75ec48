package scheme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ApplicationConfig describes the registered OAuth application used to
// provision an access token after a successful basic login. When an
// application block is present, every field in it is required.
type ApplicationConfig struct {
	ClientID     string   `json:"clientId"`
	ClientSecret string   `json:"clientSecret"`
	Note         string   `json:"note"`
	Scopes       []string `json:"scopes"`
	URL          string   `json:"url"`
}

// BasicConfig configures the basic-credential scheme. The zero value is
// valid: no organization check and no token exchange, pure login
// verification.
type BasicConfig struct {
	Application  *ApplicationConfig `json:"application,omitempty"`
	Organization string             `json:"organization,omitempty"`
	Realm        string             `json:"realm,omitempty"`
}

// Validate checks the configuration and reports every field violation at
// once rather than stopping at the first.
func (c *BasicConfig) Validate() error {
	var violations []string

	if app := c.Application; app != nil {
		if app.ClientID == "" {
			violations = append(violations, "application.clientId is required")
		}
		if app.ClientSecret == "" {
			violations = append(violations, "application.clientSecret is required")
		}
		if app.Note == "" {
			violations = append(violations, "application.note is required")
		}
		if app.Scopes == nil {
			violations = append(violations, "application.scopes is required")
		}
		if app.URL == "" {
			violations = append(violations, "application.url is required")
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(violations, "; "))
	}
	return nil
}

// TokenConfig configures the token-credential scheme. Unlike the basic
// scheme, configuration is mandatory because the client credentials are
// needed to resolve tokens.
type TokenConfig struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Organization string `json:"organization,omitempty"`
	Realm        string `json:"realm,omitempty"`
}

// Validate checks the configuration and reports every field violation at
// once rather than stopping at the first.
func (c *TokenConfig) Validate() error {
	var violations []string

	if c.ClientID == "" {
		violations = append(violations, "clientId is required")
	}
	if c.ClientSecret == "" {
		violations = append(violations, "clientSecret is required")
	}

	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(violations, "; "))
	}
	return nil
}

// ParseBasicConfig decodes a raw configuration blob for the basic scheme.
// Unknown keys are a registration-time error. An empty blob is valid and
// yields the zero configuration.
func ParseBasicConfig(raw []byte) (*BasicConfig, error) {
	cfg := &BasicConfig{}
	if len(raw) == 0 {
		return cfg, nil
	}

	if err := decodeStrict(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseTokenConfig decodes a raw configuration blob for the token scheme.
// The blob itself is mandatory.
func ParseTokenConfig(raw []byte) (*TokenConfig, error) {
	if len(raw) == 0 {
		return nil, ErrMissingConfig
	}

	cfg := &TokenConfig{}
	if err := decodeStrict(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeStrict(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
