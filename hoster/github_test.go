package hoster

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapnav-server/shared"
)

func newTestGitHub(server *httptest.Server) *GitHub {
	return NewGitHub(GitHubConfig{
		BaseUrl:      server.URL,
		ApiUrl:       server.URL,
		ClientId:     "client-id",
		ClientSecret: "client-secret",
		RedirectUrl:  "http://localhost:8088/oauth/callback",
		HTTPClient:   server.Client(),
	})
}

func TestNewGitHubDefaults(t *testing.T) {
	g := NewGitHub(GitHubConfig{ClientId: "id", ClientSecret: "secret"})

	desc := g.Descriptor()
	assert.Equal(t, "github", desc.Name)
	assert.Equal(t, "GitHub", desc.Title)
	assert.Equal(t, "https://github.com", desc.BaseUrl)
	assert.Equal(t, []string{"public_repo"}, desc.RequiredScopes)

	url := g.AuthCodeURL("state-1")
	assert.Contains(t, url, "https://github.com/login/oauth/authorize")
	assert.Contains(t, url, "state=state-1")
	assert.Contains(t, url, "scope=public_repo")
}

func TestExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/oauth/access_token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "the-access-token",
			"token_type":   "bearer",
		})
	}))
	defer server.Close()

	g := newTestGitHub(server)

	token, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "the-access-token", token)

	_, err = g.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Equal(t, ErrorKindAuth, AsError(err).Kind)
}

func TestAuthStatus(t *testing.T) {
	cases := []struct {
		name     string
		scopes   string
		status   int
		expected AuthStatus
	}{
		{"full scope", "public_repo", http.StatusOK, AuthStatusFullScope},
		{"repo implies public_repo", "repo, gist", http.StatusOK, AuthStatusFullScope},
		{"missing scope", "gist", http.StatusOK, AuthStatusMissingScope},
		{"no scopes", "", http.StatusOK, AuthStatusMissingScope},
		{"revoked token", "", http.StatusUnauthorized, AuthStatusUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/user", r.URL.Path)
				require.Equal(t, "token the-token", r.Header.Get("Authorization"))
				w.Header().Set("X-OAuth-Scopes", tc.scopes)
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			status, err := newTestGitHub(server).AuthStatus(context.Background(), "the-token")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)
		})
	}
}

func TestAuthStatusWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made without a token")
	}))
	defer server.Close()

	status, err := newTestGitHub(server).AuthStatus(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, AuthStatusUnauthenticated, status)
}

func TestAuthStatusTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	g := newTestGitHub(server)
	server.Close()

	_, err := g.AuthStatus(context.Background(), "the-token")
	require.Error(t, err)
	assert.Equal(t, ErrorKindTransport, AsError(err).Kind)
}

func testProposal() shared.ProposalRequest {
	return shared.ProposalRequest{
		PackageName:    "c3nav/mappackage",
		FilePath:       "locations/room-a.yaml",
		Action:         shared.ProposalActionEdit,
		ParentCommitId: "abc123",
		FileContents:   "name: room-a\n",
	}
}

// fakeGitHubAPI implements just enough of the GitHub REST API for the pull
// request flow: repo lookup, branch head, fork, ref creation, contents and
// the pulls endpoint.
type fakeGitHubAPI struct {
	t       *testing.T
	headSha string

	forkCalls int
	putBody   map[string]any
	prBody    map[string]any
}

func (f *fakeGitHubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	route := r.Method + " " + r.URL.Path

	switch {
	case route == "GET /repos/c3nav/mappackage":
		json.NewEncoder(w).Encode(map[string]any{
			"full_name":      "c3nav/mappackage",
			"default_branch": "main",
		})
	case route == "GET /repos/c3nav/mappackage/branches/main":
		json.NewEncoder(w).Encode(map[string]any{
			"commit": map[string]any{"sha": f.headSha},
		})
	case route == "POST /repos/c3nav/mappackage/forks":
		f.forkCalls++
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{
			"full_name": "alice/mappackage",
			"owner":     map[string]any{"login": "alice"},
		})
	case route == "POST /repos/alice/mappackage/git/refs":
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/repos/alice/mappackage/contents/"):
		json.NewEncoder(w).Encode(map[string]any{"sha": "file-sha"})
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/repos/alice/mappackage/contents/"):
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.putBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{})
	case route == "POST /repos/c3nav/mappackage/pulls":
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.prBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"html_url": "https://github.test/c3nav/mappackage/pull/7",
		})
	default:
		f.t.Errorf("unexpected request: %s", route)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
	}
}

func TestCreatePullRequest(t *testing.T) {
	api := &fakeGitHubAPI{t: t, headSha: "abc123"}
	server := httptest.NewServer(api)
	defer server.Close()

	result, err := newTestGitHub(server).CreatePullRequest(
		context.Background(), "the-token", testProposal(), "Fix the room name")
	require.NoError(t, err)

	assert.Equal(t, "https://github.test/c3nav/mappackage/pull/7", result.Url)
	assert.Equal(t, 1, api.forkCalls)

	// the edit commits the new contents on top of the existing file
	assert.Equal(t, "Fix the room name", api.putBody["message"])
	assert.Equal(t, "file-sha", api.putBody["sha"])
	contents, err := base64.StdEncoding.DecodeString(api.putBody["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, "name: room-a\n", string(contents))

	// the pull request targets the upstream default branch from the fork
	assert.Equal(t, "Fix the room name", api.prBody["title"])
	assert.Equal(t, "main", api.prBody["base"])
	head, _ := api.prBody["head"].(string)
	assert.True(t, strings.HasPrefix(head, "alice:proposal-"), "head %q", head)
}

func TestCreatePullRequestStaleParent(t *testing.T) {
	api := &fakeGitHubAPI{t: t, headSha: "someone-else-pushed"}
	server := httptest.NewServer(api)
	defer server.Close()

	_, err := newTestGitHub(server).CreatePullRequest(
		context.Background(), "the-token", testProposal(), "Fix the room name")
	require.Error(t, err)

	assert.Equal(t, ErrorKindConflict, AsError(err).Kind)

	// the flow stops before touching the fork
	assert.Equal(t, 0, api.forkCalls)
}

func TestClassifyResponse(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		expected ErrorKind
	}{
		{http.StatusUnauthorized, `{"message": "Bad credentials"}`, ErrorKindAuth},
		{http.StatusForbidden, `{"message": "Resource not accessible"}`, ErrorKindMissingScope},
		{http.StatusConflict, `{"message": "Merge conflict"}`, ErrorKindConflict},
		{http.StatusUnprocessableEntity, `{"message": "Validation Failed"}`, ErrorKindValidation},
		{http.StatusUnprocessableEntity, `{"message": "Reference already exists"}`, ErrorKindConflict},
		{http.StatusInternalServerError, ``, ErrorKindUnknown},
	}

	for _, tc := range cases {
		err := classifyResponse(tc.status, []byte(tc.body))
		assert.Equal(t, tc.expected, err.Kind, "status %d body %s", tc.status, tc.body)
	}
}
