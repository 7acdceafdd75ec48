package scheme

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/credential"
	"github.com/go-badge/badge/internal/metrics"
)

// tokenOrgPassword is the placeholder password used when a bearer token is
// recast as a basic credential for the membership endpoint.
const tokenOrgPassword = "x-oauth-basic"

// Token authenticates bearer tokens by resolving them to their owning
// identity through the registered client's token-lookup endpoint, optionally
// checking organization membership.
type Token struct {
	cfg      TokenConfig
	api      ProviderAPI
	cache    cache.Cache[Outcome]
	cacheTTL time.Duration
	metrics  metrics.Recorder

	// clientAuthorization is computed once at registration time and reused
	// for every token lookup; it authenticates the client, not the end user.
	clientAuthorization string
}

// NewToken validates the configuration and builds the scheme.
func NewToken(
	cfg TokenConfig,
	api ProviderAPI,
	outcomes cache.Cache[Outcome],
	recorder metrics.Recorder,
) (*Token, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}

	return &Token{
		cfg:                 cfg,
		api:                 api,
		cache:               outcomes,
		cacheTTL:            CacheTTL,
		metrics:             recorder,
		clientAuthorization: credential.BasicAuthorization(cfg.ClientID, cfg.ClientSecret),
	}, nil
}

// SetCacheTTL overrides the default lifetime of cached outcomes.
func (s *Token) SetCacheTTL(d time.Duration) {
	if d > 0 {
		s.cacheTTL = d
	}
}

// Name reports the scheme name strategies register under.
func (s *Token) Name() string {
	return "github-token"
}

// Authenticate drives the verification pipeline for one request.
func (s *Token) Authenticate(ctx context.Context, authorization string) Outcome {
	start := time.Now()
	outcome, settled := s.authenticate(ctx, authorization)
	if settled {
		if err := s.cache.Set(ctx, authorization, outcome, s.cacheTTL); err != nil {
			log.Printf("failed to cache auth outcome: %v", err)
		}
	}

	s.metrics.RecordAuthAttempt(s.Name(), outcome.Authenticated(), time.Since(start))
	return outcome
}

func (s *Token) authenticate(ctx context.Context, authorization string) (Outcome, bool) {
	cred := credential.Parse(authorization)
	if cred.Kind != credential.KindToken || cred.Token == "" {
		log.Printf("no token supplied with the request")
		return s.fail(Outcome{}, reasonForbidden), false
	}

	if cached, err := s.cache.Get(ctx, authorization); err == nil {
		s.metrics.RecordCacheLookup(s.Name(), true)
		return cached, false
	}
	s.metrics.RecordCacheLookup(s.Name(), false)

	outcome := Outcome{}

	callStart := time.Now()
	status, owner, err := s.api.FetchTokenOwner(
		ctx,
		s.cfg.ClientID,
		cred.Token,
		s.clientAuthorization,
	)
	if err != nil {
		s.metrics.RecordTransportFailure(opFetchTokenOwner)
		log.Printf("unexpected error resolving token: %v", err)
		return internalFailure(outcome), false
	}
	s.metrics.RecordProviderCall(opFetchTokenOwner, status, time.Since(callStart))

	if status != http.StatusOK {
		log.Printf("invalid token")
		return s.fail(outcome, reasonInvalidToken), true
	}

	outcome.Credentials.Username = owner.User.Login
	log.Printf("successfully authenticated '%s'", outcome.Credentials.Username)

	if s.cfg.Organization != "" {
		// The membership endpoint does not accept the token scheme, so the
		// token is reused as a synthetic basic credential.
		var transportErr error
		outcome, transportErr = checkOrganization(ctx, s.api, s.metrics, orgCheck{
			organization:    s.cfg.Organization,
			authorization:   credential.BasicAuthorization(cred.Token, tokenOrgPassword),
			challengeScheme: credential.TokenScheme,
			realm:           s.cfg.Realm,
		}, outcome)
		if transportErr != nil {
			log.Printf(
				"unexpected error checking membership for '%s': %v",
				outcome.Credentials.Username,
				transportErr,
			)
			return internalFailure(outcome), false
		}
		if !outcome.Authenticated() {
			return outcome, true
		}
	}

	return outcome, true
}

func (s *Token) fail(outcome Outcome, message string) Outcome {
	outcome.Failure = &Failure{
		Message: message,
		Scheme:  credential.TokenScheme,
		Realm:   s.cfg.Realm,
	}
	return outcome
}
