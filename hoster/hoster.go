package hoster

import (
	"context"

	"mapnav-server/shared"
)

// Descriptor identifies a configured hoster. RequiredScopes is what the
// workflow needs to create pull requests — which scopes those are is
// provider-specific configuration, not something the controller decides.
type Descriptor struct {
	Name           string
	Title          string
	BaseUrl        string
	RequiredScopes []string
}

func (d *Descriptor) ToApi() *shared.HosterDescriptor {
	return &shared.HosterDescriptor{
		Name:    d.Name,
		Title:   d.Title,
		BaseUrl: d.BaseUrl,
	}
}

// AuthStatus is the result of the authentication-status check.
type AuthStatus string

const (
	AuthStatusFullScope       AuthStatus = "authenticated-with-full-scope"
	AuthStatusMissingScope    AuthStatus = "authenticated-missing-scope"
	AuthStatusUnauthenticated AuthStatus = "unauthenticated"
)

// Client is the integration surface with a code-hosting provider. All
// failures come back as *Error so callers can render the error taxonomy
// without unwrapping provider specifics.
type Client interface {
	Descriptor() Descriptor

	// AuthCodeURL returns the provider's authorization endpoint for the
	// given correlation state. The browser navigates there; the provider
	// redirects back to the OAuth callback.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (string, error)

	// AuthStatus reports whether accessToken is valid and whether it carries
	// the required scopes. An empty accessToken is reported as
	// unauthenticated without a provider round trip.
	AuthStatus(ctx context.Context, accessToken string) (AuthStatus, error)

	// CreatePullRequest submits the proposal as a reviewable change. It is
	// called at most once per user action — the caller never retries
	// automatically, since a retry risks duplicate pull requests.
	CreatePullRequest(ctx context.Context, accessToken string, req shared.ProposalRequest, commitMessage string) (*shared.PullRequestResult, error)
}
