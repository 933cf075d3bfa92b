package hoster

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"mapnav-server/shared"
)

// GitHubConfig configures the GitHub hoster. BaseUrl and ApiUrl default to
// github.com; pointing them elsewhere covers GitHub Enterprise and the test
// server.
type GitHubConfig struct {
	Title        string
	BaseUrl      string
	ApiUrl       string
	ClientId     string
	ClientSecret string
	RedirectUrl  string

	// RequiredScopes defaults to public_repo, which is what forking and
	// opening pull requests against public map packages needs.
	RequiredScopes []string

	HTTPClient *http.Client
}

type GitHub struct {
	desc       Descriptor
	apiUrl     string
	oauth      *oauth2.Config
	httpClient *http.Client
}

func NewGitHub(cfg GitHubConfig) *GitHub {
	baseUrl := cfg.BaseUrl
	if baseUrl == "" {
		baseUrl = "https://github.com"
	}
	apiUrl := cfg.ApiUrl
	if apiUrl == "" {
		apiUrl = "https://api.github.com"
	}
	scopes := cfg.RequiredScopes
	if len(scopes) == 0 {
		scopes = []string{"public_repo"}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	title := cfg.Title
	if title == "" {
		title = "GitHub"
	}

	return &GitHub{
		desc: Descriptor{
			Name:           "github",
			Title:          title,
			BaseUrl:        baseUrl,
			RequiredScopes: scopes,
		},
		apiUrl: strings.TrimSuffix(apiUrl, "/"),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientId,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectUrl,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  baseUrl + "/login/oauth/authorize",
				TokenURL: baseUrl + "/login/oauth/access_token",
			},
		},
		httpClient: httpClient,
	}
}

func (g *GitHub) Descriptor() Descriptor {
	return g.desc
}

func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

func (g *GitHub) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		if rErr, ok := err.(*oauth2.RetrieveError); ok && rErr.Response != nil {
			return "", WrapError(ErrorKindAuth, "authorization code rejected", err)
		}
		return "", WrapError(ErrorKindTransport, "token exchange failed", err)
	}
	return token.AccessToken, nil
}

func (g *GitHub) AuthStatus(ctx context.Context, accessToken string) (AuthStatus, error) {
	if accessToken == "" {
		return AuthStatusUnauthenticated, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiUrl+"/user", nil)
	if err != nil {
		return "", WrapError(ErrorKindTransport, "building auth status request", err)
	}
	req.Header.Set("Authorization", "token "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", WrapError(ErrorKindTransport, "auth status check failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return AuthStatusUnauthenticated, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		granted := parseScopes(resp.Header.Get("X-OAuth-Scopes"))
		for _, required := range g.desc.RequiredScopes {
			if !granted[required] {
				return AuthStatusMissingScope, nil
			}
		}
		return AuthStatusFullScope, nil
	default:
		return "", NewError(ErrorKindUnknown, fmt.Sprintf("unexpected auth status response: %d", resp.StatusCode))
	}
}

func parseScopes(header string) map[string]bool {
	granted := map[string]bool{}
	for _, scope := range strings.Split(header, ",") {
		scope = strings.TrimSpace(scope)
		if scope != "" {
			granted[scope] = true
		}
	}
	// repo implies public_repo
	if granted["repo"] {
		granted["public_repo"] = true
	}
	return granted
}

// CreatePullRequest forks the package repository, commits the single file
// change to a fresh branch based on the proposal's parent commit, and opens
// a pull request against the package's default branch. The parent commit is
// compared against the current head first — a stale parent is a conflict,
// not something to silently rebase over.
func (g *GitHub) CreatePullRequest(ctx context.Context, accessToken string, proposal shared.ProposalRequest, commitMessage string) (*shared.PullRequestResult, error) {
	var repo struct {
		FullName      string `json:"full_name"`
		DefaultBranch string `json:"default_branch"`
	}
	if err := g.doJSON(ctx, accessToken, http.MethodGet, "/repos/"+proposal.PackageName, nil, &repo); err != nil {
		return nil, err
	}

	var head struct {
		Commit struct {
			Sha string `json:"sha"`
		} `json:"commit"`
	}
	if err := g.doJSON(ctx, accessToken, http.MethodGet,
		"/repos/"+proposal.PackageName+"/branches/"+repo.DefaultBranch, nil, &head); err != nil {
		return nil, err
	}
	if head.Commit.Sha != proposal.ParentCommitId {
		return nil, NewError(ErrorKindConflict, "the map package changed since this edit was started")
	}

	var fork struct {
		FullName string `json:"full_name"`
		Owner    struct {
			Login string `json:"login"`
		} `json:"owner"`
	}
	if err := g.doJSON(ctx, accessToken, http.MethodPost, "/repos/"+proposal.PackageName+"/forks", map[string]any{}, &fork); err != nil {
		return nil, err
	}

	branch := "proposal-" + uuid.New().String()[:8]
	createRef := map[string]any{
		"ref": "refs/heads/" + branch,
		"sha": proposal.ParentCommitId,
	}
	if err := g.doJSON(ctx, accessToken, http.MethodPost, "/repos/"+fork.FullName+"/git/refs", createRef, nil); err != nil {
		return nil, err
	}

	contentsUrl := "/repos/" + fork.FullName + "/contents/" + strings.TrimPrefix(proposal.FilePath, "/")

	if proposal.Action == shared.ProposalActionDelete {
		var existing struct {
			Sha string `json:"sha"`
		}
		if err := g.doJSON(ctx, accessToken, http.MethodGet, contentsUrl+"?ref="+branch, nil, &existing); err != nil {
			return nil, err
		}
		deleteReq := map[string]any{
			"message": commitMessage,
			"sha":     existing.Sha,
			"branch":  branch,
		}
		if err := g.doJSON(ctx, accessToken, http.MethodDelete, contentsUrl, deleteReq, nil); err != nil {
			return nil, err
		}
	} else {
		putReq := map[string]any{
			"message": commitMessage,
			"content": base64.StdEncoding.EncodeToString([]byte(proposal.FileContents)),
			"branch":  branch,
		}
		if proposal.Action == shared.ProposalActionEdit {
			var existing struct {
				Sha string `json:"sha"`
			}
			if err := g.doJSON(ctx, accessToken, http.MethodGet, contentsUrl+"?ref="+branch, nil, &existing); err != nil {
				return nil, err
			}
			putReq["sha"] = existing.Sha
		}
		if err := g.doJSON(ctx, accessToken, http.MethodPut, contentsUrl, putReq, nil); err != nil {
			return nil, err
		}
	}

	var pr struct {
		HtmlUrl string `json:"html_url"`
	}
	prReq := map[string]any{
		"title": commitMessage,
		"head":  fork.Owner.Login + ":" + branch,
		"base":  repo.DefaultBranch,
	}
	if err := g.doJSON(ctx, accessToken, http.MethodPost, "/repos/"+proposal.PackageName+"/pulls", prReq, &pr); err != nil {
		return nil, err
	}

	return &shared.PullRequestResult{Url: pr.HtmlUrl}, nil
}

func (g *GitHub) doJSON(ctx context.Context, accessToken, method, path string, body, out any) *Error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return WrapError(ErrorKindUnknown, "encoding request", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.apiUrl+path, reqBody)
	if err != nil {
		return WrapError(ErrorKindTransport, "building request", err)
	}
	req.Header.Set("Authorization", "token "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return WrapError(ErrorKindTransport, "request to hoster failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return WrapError(ErrorKindTransport, "reading hoster response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return WrapError(ErrorKindUnknown, "decoding hoster response", err)
		}
	}
	return nil
}

func classifyResponse(status int, body []byte) *Error {
	var gh struct {
		Message string `json:"message"`
	}
	json.Unmarshal(body, &gh)
	msg := gh.Message
	if msg == "" {
		msg = fmt.Sprintf("hoster returned status %d", status)
	}

	switch status {
	case http.StatusUnauthorized:
		return NewError(ErrorKindAuth, msg)
	case http.StatusForbidden:
		return NewError(ErrorKindMissingScope, msg)
	case http.StatusConflict:
		return NewError(ErrorKindConflict, msg)
	case http.StatusUnprocessableEntity:
		if strings.Contains(gh.Message, "Reference already exists") {
			return NewError(ErrorKindConflict, msg)
		}
		return NewError(ErrorKindValidation, msg)
	default:
		return NewError(ErrorKindUnknown, msg)
	}
}
