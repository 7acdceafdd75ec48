// Package scheme implements the credential-verification pipelines. Each
// scheme parses the Authorization header, consults the outcome cache, drives
// the provider calls in order (login, membership check, token issuance) and
// settles into an Outcome that the host middleware turns into a reply.
package scheme

import (
	"context"
	"fmt"
	"time"
)

// Outcome cache bounds. The cache keeps repeated requests from flooding the
// provider with verification calls; entries are short-lived on purpose so
// revoked credentials stop working quickly.
const (
	CacheSize = 500
	CacheTTL  = time.Minute
)

// Credentials identifies who was authenticated.
type Credentials struct {
	Username     string `json:"username,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Artifacts carries secondary credentials produced during authentication,
// distinct from identity attributes.
type Artifacts struct {
	Token string `json:"token,omitempty"`
}

// Failure describes why an outcome was not authenticated and which scheme
// the client should retry with. Internal marks transport-level faults that
// must surface as a server error rather than an authentication challenge.
type Failure struct {
	Message  string `json:"message"`
	Scheme   string `json:"scheme,omitempty"`
	Realm    string `json:"realm,omitempty"`
	Internal bool   `json:"-"`
}

// Outcome is the settled result of a verification attempt. It is built up
// stage by stage as a value and never shared until it is settled, so
// concurrent pipelines cannot alias each other's state.
type Outcome struct {
	Credentials Credentials `json:"credentials"`
	Artifacts   Artifacts   `json:"artifacts"`
	Failure     *Failure    `json:"error,omitempty"`
}

// Authenticated reports whether the request may proceed.
func (o Outcome) Authenticated() bool {
	return o.Failure == nil
}

// Challenge renders the WWW-Authenticate header value instructing the client
// which credential scheme to retry with. Internal failures carry no
// challenge; the client's credentials were never judged.
func (o Outcome) Challenge() string {
	if o.Failure == nil || o.Failure.Internal {
		return ""
	}
	if o.Failure.Realm != "" {
		return fmt.Sprintf("%s realm=%q", o.Failure.Scheme, o.Failure.Realm)
	}
	return o.Failure.Scheme
}

// Scheme authenticates a raw Authorization header value into a settled
// Outcome. Implementations never return errors; every fault is folded into
// the outcome so the host always has a reply to deliver.
type Scheme interface {
	Name() string
	Authenticate(ctx context.Context, authorization string) Outcome
}

// failure reasons surfaced to clients
const (
	reasonForbidden     = "forbidden"
	reasonLoginFailed   = "login failed"
	reasonNotAuthorized = "not authorized"
	reasonInvalidToken  = "invalid token"
	reasonTokenFailed   = "token request failed"
	reasonInternal      = "failed to authenticate"
)

// provider operations, used as metric labels
const (
	opFetchIdentity   = "fetch_identity"
	opFetchTokenOwner = "fetch_token_owner"
	opCheckMembership = "check_membership"
	opIssueToken      = "issue_token"
)

func internalFailure(outcome Outcome) Outcome {
	outcome.Failure = &Failure{Message: reasonInternal, Internal: true}
	return outcome
}
