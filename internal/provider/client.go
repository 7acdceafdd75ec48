// Package provider is a thin request-shaping layer over the identity
// provider's REST API. It builds outbound requests, issues them through an
// injected transport, and returns status codes and parsed bodies. Policy
// (caching, retries, timeouts, outcome interpretation) lives with callers.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAPIURL is the public GitHub API endpoint.
const DefaultAPIURL = "https://api.github.com"

// userAgent identifies this client on every outbound request. The provider
// rejects requests without one.
const userAgent = "badge"

// Doer issues a single HTTP request. *http.Client satisfies it, as does the
// retry client; transport policy such as timeouts belongs to the injected
// implementation.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client shapes and issues requests against the identity provider.
type Client struct {
	baseURL string
	http    Doer
}

// NewClient creates a provider client. An empty baseURL selects the public
// API endpoint; a nil doer selects http.DefaultClient.
func NewClient(baseURL string, doer Doer) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if doer == nil {
		doer = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    doer,
	}
}

// Identity is the provider's representation of an authenticated user.
type Identity struct {
	Login   string `json:"login"`
	Message string `json:"message,omitempty"`
}

// TokenOwner resolves a bearer token to the identity that owns it.
type TokenOwner struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// TokenRequest is the payload for provisioning an access token on behalf of
// a registered application.
type TokenRequest struct {
	ClientSecret string   `json:"client_secret"`
	Note         string   `json:"note"`
	NoteURL      string   `json:"note_url"`
	Scopes       []string `json:"scopes"`
}

// IssuedToken is the provider's reply to a successful token request.
type IssuedToken struct {
	Token string `json:"token"`
}

// FetchIdentity looks up the identity behind the presented credential via
// GET /user. A non-success status is returned with a nil error; callers
// decide what it means.
func (c *Client) FetchIdentity(ctx context.Context, authorization string) (int, *Identity, error) {
	var identity Identity
	status, err := c.do(ctx, http.MethodGet, "/user", authorization, nil, &identity)
	if err != nil {
		return 0, nil, err
	}
	return status, &identity, nil
}

// FetchTokenOwner resolves a bearer token to its owning identity via
// GET /applications/{clientID}/tokens/{token}, authenticated as the
// registered client rather than the end user.
func (c *Client) FetchTokenOwner(
	ctx context.Context,
	clientID, token, clientAuthorization string,
) (int, *TokenOwner, error) {
	endpoint := fmt.Sprintf(
		"/applications/%s/tokens/%s",
		url.PathEscape(clientID),
		url.PathEscape(token),
	)

	var owner TokenOwner
	status, err := c.do(ctx, http.MethodGet, endpoint, clientAuthorization, nil, &owner)
	if err != nil {
		return 0, nil, err
	}
	return status, &owner, nil
}

// CheckMembership verifies that username belongs to organization via
// GET /orgs/{organization}/members/{username}. The provider answers 204 for
// members; any other status means not a member.
func (c *Client) CheckMembership(
	ctx context.Context,
	organization, username, authorization string,
) (int, error) {
	endpoint := fmt.Sprintf(
		"/orgs/%s/members/%s",
		url.PathEscape(organization),
		url.PathEscape(username),
	)

	return c.do(ctx, http.MethodGet, endpoint, authorization, nil, nil)
}

// IssueToken provisions an access token for the authenticated user via
// PUT /authorizations/clients/{clientID}. Success is 200 or 201.
func (c *Client) IssueToken(
	ctx context.Context,
	clientID string,
	request TokenRequest,
	authorization string,
) (int, *IssuedToken, error) {
	endpoint := "/authorizations/clients/" + url.PathEscape(clientID)

	payload, err := json.Marshal(request)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal token request: %w", err)
	}

	var issued IssuedToken
	status, err := c.do(ctx, http.MethodPut, endpoint, authorization, payload, &issued)
	if err != nil {
		return 0, nil, err
	}
	return status, &issued, nil
}

// do issues a single request and decodes the JSON reply into out when out is
// non-nil. Transport faults wrap ErrConnection; HTTP statuses are returned
// as-is. Bodies on non-success statuses are decoded best-effort so callers
// can log the provider's message, but parse failures there are ignored.
func (c *Client) do(
	ctx context.Context,
	method, endpoint, authorization string,
	payload []byte,
	out any,
) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response", ErrInvalidResponse)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
			}
			// Non-success replies are verification outcomes; an unparseable
			// error body is not worth failing over.
		}
	}

	return resp.StatusCode, nil
}
