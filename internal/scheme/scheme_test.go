package scheme

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/provider"
)

// fakeProvider implements ProviderAPI with pluggable behavior and call
// counters, so pipeline tests can assert ordering and short-circuiting
// without a live server.
type fakeProvider struct {
	identityStatus int
	identity       provider.Identity
	identityErr    error
	identityCalls  int
	identityAuth   string

	ownerStatus int
	owner       provider.TokenOwner
	ownerErr    error
	ownerCalls  int
	ownerAuth   string
	ownerToken  string

	membershipStatus int
	membershipErr    error
	membershipCalls  int
	membershipAuth   string
	membershipOrg    string
	membershipUser   string

	issueStatus  int
	issued       provider.IssuedToken
	issueErr     error
	issueCalls   int
	issueAuth    string
	issueRequest provider.TokenRequest
}

func (f *fakeProvider) FetchIdentity(
	ctx context.Context,
	authorization string,
) (int, *provider.Identity, error) {
	f.identityCalls++
	f.identityAuth = authorization
	if f.identityErr != nil {
		return 0, nil, f.identityErr
	}
	identity := f.identity
	return f.identityStatus, &identity, nil
}

func (f *fakeProvider) FetchTokenOwner(
	ctx context.Context,
	clientID, token, clientAuthorization string,
) (int, *provider.TokenOwner, error) {
	f.ownerCalls++
	f.ownerAuth = clientAuthorization
	f.ownerToken = token
	if f.ownerErr != nil {
		return 0, nil, f.ownerErr
	}
	owner := f.owner
	return f.ownerStatus, &owner, nil
}

func (f *fakeProvider) CheckMembership(
	ctx context.Context,
	organization, username, authorization string,
) (int, error) {
	f.membershipCalls++
	f.membershipOrg = organization
	f.membershipUser = username
	f.membershipAuth = authorization
	if f.membershipErr != nil {
		return 0, f.membershipErr
	}
	return f.membershipStatus, nil
}

func (f *fakeProvider) IssueToken(
	ctx context.Context,
	clientID string,
	request provider.TokenRequest,
	authorization string,
) (int, *provider.IssuedToken, error) {
	f.issueCalls++
	f.issueAuth = authorization
	f.issueRequest = request
	if f.issueErr != nil {
		return 0, nil, f.issueErr
	}
	issued := f.issued
	return f.issueStatus, &issued, nil
}

func newOutcomeCache(t *testing.T) cache.Cache[Outcome] {
	t.Helper()
	outcomes, err := cache.NewMemoryCache[Outcome](CacheSize)
	if err != nil {
		t.Fatalf("failed to create outcome cache: %v", err)
	}
	return outcomes
}

func okIdentityProvider(login string) *fakeProvider {
	return &fakeProvider{
		identityStatus: http.StatusOK,
		identity:       provider.Identity{Login: login},
	}
}
