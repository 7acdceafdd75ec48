package scheme

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/credential"
	"github.com/go-badge/badge/internal/metrics"
	"github.com/go-badge/badge/internal/provider"
)

// ProviderAPI is the slice of the provider client the schemes drive. It is
// an interface so tests can substitute a fake without standing up a server.
type ProviderAPI interface {
	FetchIdentity(ctx context.Context, authorization string) (int, *provider.Identity, error)
	FetchTokenOwner(
		ctx context.Context,
		clientID, token, clientAuthorization string,
	) (int, *provider.TokenOwner, error)
	CheckMembership(ctx context.Context, organization, username, authorization string) (int, error)
	IssueToken(
		ctx context.Context,
		clientID string,
		request provider.TokenRequest,
		authorization string,
	) (int, *provider.IssuedToken, error)
}

// Basic authenticates username/password credentials by logging into the
// identity provider as the presented user, optionally checking organization
// membership and provisioning an application access token.
type Basic struct {
	cfg      BasicConfig
	api      ProviderAPI
	cache    cache.Cache[Outcome]
	cacheTTL time.Duration
	metrics  metrics.Recorder
}

// NewBasic validates the configuration and builds the scheme. Configuration
// errors are fatal at registration time, never at request time.
func NewBasic(
	cfg BasicConfig,
	api ProviderAPI,
	outcomes cache.Cache[Outcome],
	recorder metrics.Recorder,
) (*Basic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.NewNoopMetrics()
	}

	return &Basic{
		cfg:      cfg,
		api:      api,
		cache:    outcomes,
		cacheTTL: CacheTTL,
		metrics:  recorder,
	}, nil
}

// SetCacheTTL overrides the default lifetime of cached outcomes.
func (s *Basic) SetCacheTTL(d time.Duration) {
	if d > 0 {
		s.cacheTTL = d
	}
}

// Name reports the scheme name strategies register under.
func (s *Basic) Name() string {
	return "github-basic"
}

// Authenticate drives the verification pipeline for one request.
func (s *Basic) Authenticate(ctx context.Context, authorization string) Outcome {
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

// authenticate returns the outcome and whether it settled through the full
// pipeline. Cache hits, missing credentials and transport faults do not
// settle and are never written back to the cache.
func (s *Basic) authenticate(ctx context.Context, authorization string) (Outcome, bool) {
	cred := credential.Parse(authorization)
	if cred.Kind != credential.KindBasic || cred.Username == "" {
		log.Printf("no credentials supplied with the request")
		return s.fail(Outcome{}, reasonForbidden), false
	}

	log.Printf("attempting to authenticate '%s'", cred.Username)

	if cached, err := s.cache.Get(ctx, authorization); err == nil {
		s.metrics.RecordCacheLookup(s.Name(), true)
		log.Printf("returning cached auth data for '%s'", cred.Username)
		return cached, false
	}
	s.metrics.RecordCacheLookup(s.Name(), false)

	outcome := Outcome{Credentials: Credentials{Username: cred.Username}}

	// Login. The provider's canonical login name is authoritative over
	// whatever the header claimed.
	callStart := time.Now()
	status, identity, err := s.api.FetchIdentity(ctx, authorization)
	if err != nil {
		s.metrics.RecordTransportFailure(opFetchIdentity)
		log.Printf("unexpected error authenticating '%s': %v", cred.Username, err)
		return internalFailure(outcome), false
	}
	s.metrics.RecordProviderCall(opFetchIdentity, status, time.Since(callStart))

	if status != http.StatusOK {
		log.Printf("failed to authenticate '%s': %s (%d)", cred.Username, identity.Message, status)
		return s.fail(outcome, reasonLoginFailed), true
	}

	log.Printf("successfully authenticated '%s'", cred.Username)
	outcome.Credentials.Username = identity.Login

	if s.cfg.Organization != "" {
		var transportErr error
		outcome, transportErr = checkOrganization(ctx, s.api, s.metrics, orgCheck{
			organization:    s.cfg.Organization,
			authorization:   authorization,
			challengeScheme: credential.BasicScheme,
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

	if s.cfg.Application != nil {
		var transportErr error
		outcome, transportErr = s.issueToken(ctx, authorization, outcome)
		if transportErr != nil {
			log.Printf(
				"unexpected error requesting token for '%s': %v",
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

// issueToken exchanges the verified login for a provisioned application
// token. A failed exchange challenges with the token scheme because that is
// the credential the client should have presented instead.
func (s *Basic) issueToken(
	ctx context.Context,
	authorization string,
	outcome Outcome,
) (Outcome, error) {
	app := s.cfg.Application

	callStart := time.Now()
	status, issued, err := s.api.IssueToken(ctx, app.ClientID, provider.TokenRequest{
		ClientSecret: app.ClientSecret,
		Note:         app.Note,
		NoteURL:      app.URL,
		Scopes:       app.Scopes,
	}, authorization)
	if err != nil {
		s.metrics.RecordTransportFailure(opIssueToken)
		return outcome, err
	}
	s.metrics.RecordProviderCall(opIssueToken, status, time.Since(callStart))

	if status != http.StatusOK && status != http.StatusCreated {
		log.Printf("failed to get token for '%s'", outcome.Credentials.Username)
		outcome.Failure = &Failure{
			Message: reasonTokenFailed,
			Scheme:  credential.TokenScheme,
			Realm:   s.cfg.Realm,
		}
		return outcome, nil
	}

	log.Printf("successfully retrieved token for '%s'", outcome.Credentials.Username)
	outcome.Artifacts.Token = issued.Token
	return outcome, nil
}

func (s *Basic) fail(outcome Outcome, message string) Outcome {
	outcome.Failure = &Failure{
		Message: message,
		Scheme:  credential.BasicScheme,
		Realm:   s.cfg.Realm,
	}
	return outcome
}
