package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapnav-server/hoster"
	"mapnav-server/shared"
)

type fakeStore struct {
	saves   int
	failErr error
}

func (s *fakeStore) SaveInstance(ctx context.Context, inst *Instance, from shared.WorkflowState) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.saves++
	return nil
}

// casStore keeps one authoritative state per proposal, like the database
// does, and only applies a write whose from-state still matches.
type casStore struct {
	state shared.WorkflowState
}

func (s *casStore) SaveInstance(ctx context.Context, inst *Instance, from shared.WorkflowState) error {
	if s.state != from {
		return fmt.Errorf("%w: proposal %s is no longer in %s", ErrInvalidTransition, inst.Id, from)
	}
	s.state = inst.State
	return nil
}

type fakeClient struct {
	desc hoster.Descriptor

	authStatus hoster.AuthStatus
	authErr    error

	exchangeToken string
	exchangeErr   error

	prResult *shared.PullRequestResult
	prErr    error
	prCalls  int
}

func (c *fakeClient) Descriptor() hoster.Descriptor {
	return c.desc
}

func (c *fakeClient) AuthCodeURL(state string) string {
	return "https://git.example.com/login/oauth/authorize?state=" + state
}

func (c *fakeClient) Exchange(ctx context.Context, code string) (string, error) {
	if c.exchangeErr != nil {
		return "", c.exchangeErr
	}
	return c.exchangeToken, nil
}

func (c *fakeClient) AuthStatus(ctx context.Context, accessToken string) (hoster.AuthStatus, error) {
	if c.authErr != nil {
		return "", c.authErr
	}
	return c.authStatus, nil
}

func (c *fakeClient) CreatePullRequest(ctx context.Context, accessToken string, req shared.ProposalRequest, commitMessage string) (*shared.PullRequestResult, error) {
	c.prCalls++
	if c.prErr != nil {
		return nil, c.prErr
	}
	return c.prResult, nil
}

func testDescriptor() hoster.Descriptor {
	return hoster.Descriptor{
		Name:    "github",
		Title:   "GitHub",
		BaseUrl: "https://git.example.com",
	}
}

func newTestInstance(state shared.WorkflowState) *Instance {
	return &Instance{
		Id: "prop-1",
		Request: shared.ProposalRequest{
			PackageName:    "c3nav/mappackage",
			FilePath:       "locations/room-a.yaml",
			Action:         shared.ProposalActionEdit,
			ParentCommitId: "abc123",
			FileContents:   "name: room-a\n",
		},
		CommitMessage: "Edit locations/room-a.yaml",
		State:         state,
	}
}

func newTestController(client *fakeClient, store Store) *Controller {
	return NewController(client, store, 0)
}

func TestCheckResolvesAuthStatus(t *testing.T) {
	cases := []struct {
		name     string
		status   hoster.AuthStatus
		expected shared.WorkflowState
	}{
		{"unauthenticated", hoster.AuthStatusUnauthenticated, shared.WorkflowStateLoggedOut},
		{"missing scope", hoster.AuthStatusMissingScope, shared.WorkflowStateMissingPermissions},
		{"full scope", hoster.AuthStatusFullScope, shared.WorkflowStateLoggedIn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{desc: testDescriptor(), authStatus: tc.status}
			store := &fakeStore{}
			c := newTestController(client, store)
			inst := newTestInstance(shared.WorkflowStateChecking)

			err := c.Check(context.Background(), inst, "token")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, inst.State)
			assert.Equal(t, 1, store.saves)
		})
	}
}

func TestCheckUnauthenticatedRendersSignIn(t *testing.T) {
	client := &fakeClient{desc: testDescriptor(), authStatus: hoster.AuthStatusUnauthenticated}
	c := newTestController(client, &fakeStore{})
	inst := newTestInstance(shared.WorkflowStateChecking)

	require.NoError(t, c.Check(context.Background(), inst, ""))

	desc := testDescriptor()
	view := Render(inst, &desc, nil)
	assert.Equal(t, shared.WorkflowStateLoggedOut, view.State)
	assert.True(t, view.CanSignIn)
	require.NotNil(t, view.Hoster)
	assert.Equal(t, "GitHub", view.Hoster.Title)
}

func TestCheckTransportFailureStaysInChecking(t *testing.T) {
	client := &fakeClient{
		desc:    testDescriptor(),
		authErr: hoster.NewError(hoster.ErrorKindTransport, "connection refused"),
	}
	store := &fakeStore{}
	c := newTestController(client, store)
	inst := newTestInstance(shared.WorkflowStateChecking)

	err := c.Check(context.Background(), inst, "token")
	require.Error(t, err)
	assert.Equal(t, shared.WorkflowStateChecking, inst.State)
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, hoster.ErrorKindTransport, hoster.AsError(err).Kind)
}

func TestCheckOnlyValidInChecking(t *testing.T) {
	for _, state := range []shared.WorkflowState{
		shared.WorkflowStateLoggedOut,
		shared.WorkflowStateLoggedIn,
		shared.WorkflowStateOAuth,
		shared.WorkflowStateProgress,
		shared.WorkflowStateDone,
	} {
		client := &fakeClient{desc: testDescriptor(), authStatus: hoster.AuthStatusFullScope}
		c := newTestController(client, &fakeStore{})
		inst := newTestInstance(state)

		err := c.Check(context.Background(), inst, "token")
		assert.ErrorIs(t, err, ErrInvalidTransition, "state %s", state)
		assert.Equal(t, state, inst.State)
	}
}

func TestSignIn(t *testing.T) {
	for _, state := range []shared.WorkflowState{
		shared.WorkflowStateLoggedOut,
		shared.WorkflowStateMissingPermissions,
	} {
		client := &fakeClient{desc: testDescriptor()}
		store := &fakeStore{}
		c := newTestController(client, store)
		inst := newTestInstance(state)

		url, err := c.SignIn(context.Background(), inst, "state-42")
		require.NoError(t, err)
		assert.Equal(t, shared.WorkflowStateOAuth, inst.State)
		assert.True(t, strings.HasSuffix(url, "state=state-42"))
		assert.Equal(t, 1, store.saves)
	}
}

func TestSignInRejectedOutsideActionableStates(t *testing.T) {
	for _, state := range []shared.WorkflowState{
		shared.WorkflowStateChecking,
		shared.WorkflowStateOAuth,
		shared.WorkflowStateLoggedIn,
		shared.WorkflowStateProgress,
		shared.WorkflowStateDone,
	} {
		client := &fakeClient{desc: testDescriptor()}
		c := newTestController(client, &fakeStore{})
		inst := newTestInstance(state)

		_, err := c.SignIn(context.Background(), inst, "state-42")
		assert.ErrorIs(t, err, ErrInvalidTransition, "state %s", state)
		assert.Equal(t, state, inst.State)
	}
}

func TestResumeOAuth(t *testing.T) {
	client := &fakeClient{desc: testDescriptor(), exchangeToken: "access-token"}
	c := newTestController(client, &fakeStore{})
	inst := newTestInstance(shared.WorkflowStateOAuth)

	token, err := c.ResumeOAuth(context.Background(), inst, "code")
	require.NoError(t, err)
	assert.Equal(t, "access-token", token)
	assert.Equal(t, shared.WorkflowStateChecking, inst.State)
}

func TestResumeOAuthExchangeFailureStillReturnsToChecking(t *testing.T) {
	client := &fakeClient{
		desc:        testDescriptor(),
		exchangeErr: hoster.NewError(hoster.ErrorKindAuth, "bad code"),
	}
	c := newTestController(client, &fakeStore{})
	inst := newTestInstance(shared.WorkflowStateOAuth)

	_, err := c.ResumeOAuth(context.Background(), inst, "code")
	require.Error(t, err)
	assert.Equal(t, shared.WorkflowStateChecking, inst.State)
}

func TestSubmitRejectsInvalidCommitMessage(t *testing.T) {
	for name, message := range map[string]string{
		"empty":    "",
		"too long": strings.Repeat("x", shared.MaxCommitMessageLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			client := &fakeClient{desc: testDescriptor()}
			c := newTestController(client, &fakeStore{})
			inst := newTestInstance(shared.WorkflowStateLoggedIn)

			_, err := c.Submit(context.Background(), inst, message, "token")
			require.Error(t, err)
			assert.Equal(t, shared.WorkflowStateLoggedIn, inst.State)
			assert.Equal(t, hoster.ErrorKindValidation, hoster.AsError(err).Kind)
			assert.Equal(t, 0, client.prCalls)
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	client := &fakeClient{
		desc:     testDescriptor(),
		prResult: &shared.PullRequestResult{Url: "https://example.com/pr/42"},
	}
	store := &fakeStore{}
	c := newTestController(client, store)
	inst := newTestInstance(shared.WorkflowStateLoggedIn)

	result, err := c.Submit(context.Background(), inst, "Fix room name", "token")
	require.NoError(t, err)
	assert.Equal(t, shared.WorkflowStateDone, inst.State)
	assert.Equal(t, "https://example.com/pr/42", result.Url)
	assert.Equal(t, 1, client.prCalls)

	desc := testDescriptor()
	view := Render(inst, &desc, nil)
	assert.Equal(t, "https://example.com/pr/42", view.PullRequestUrl)
	assert.Nil(t, view.Error)
}

func TestSubmitConflictReturnsToLoggedIn(t *testing.T) {
	client := &fakeClient{
		desc:  testDescriptor(),
		prErr: hoster.NewError(hoster.ErrorKindConflict, "the map package changed since this edit was started"),
	}
	c := newTestController(client, &fakeStore{})
	inst := newTestInstance(shared.WorkflowStateLoggedIn)

	_, err := c.Submit(context.Background(), inst, "My careful edit", "token")
	require.Error(t, err)
	assert.Equal(t, shared.WorkflowStateLoggedIn, inst.State)

	// the commit message the user typed is preserved, not reset
	assert.Equal(t, "My careful edit", inst.CommitMessage)

	// exactly one submission attempt, no automatic retry
	assert.Equal(t, 1, client.prCalls)

	desc := testDescriptor()
	view := Render(inst, &desc, err)
	require.NotNil(t, view.Error)
	assert.NotEmpty(t, view.Error.Msg)
	assert.Equal(t, shared.ApiErrorTypeConflict, view.Error.Type)
	assert.Equal(t, "My careful edit", view.CommitMessage)
}

func TestSubmitOnlyValidInLoggedIn(t *testing.T) {
	for _, state := range []shared.WorkflowState{
		shared.WorkflowStateChecking,
		shared.WorkflowStateLoggedOut,
		shared.WorkflowStateMissingPermissions,
		shared.WorkflowStateOAuth,
		shared.WorkflowStateProgress,
		shared.WorkflowStateDone,
	} {
		client := &fakeClient{desc: testDescriptor()}
		c := newTestController(client, &fakeStore{})
		inst := newTestInstance(state)

		_, err := c.Submit(context.Background(), inst, "A fine message", "token")
		assert.ErrorIs(t, err, ErrInvalidTransition, "state %s", state)
		assert.Equal(t, 0, client.prCalls)
	}
}

// Two requests may both load the proposal in logged_in before either
// submits. The store's compare-and-swap lets only one enter progress; the
// loser must not reach the hoster, or the user ends up with duplicate pull
// requests.
func TestSubmitRaceSubmitsAtMostOnce(t *testing.T) {
	client := &fakeClient{
		desc:     testDescriptor(),
		prResult: &shared.PullRequestResult{Url: "https://example.com/pr/42"},
	}
	store := &casStore{state: shared.WorkflowStateLoggedIn}
	c := newTestController(client, store)

	first := newTestInstance(shared.WorkflowStateLoggedIn)
	second := newTestInstance(shared.WorkflowStateLoggedIn)

	_, err := c.Submit(context.Background(), first, "A fine message", "token")
	require.NoError(t, err)
	assert.Equal(t, shared.WorkflowStateDone, first.State)

	_, err = c.Submit(context.Background(), second, "A fine message", "token")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, shared.WorkflowStateLoggedIn, second.State)
	assert.Equal(t, shared.WorkflowStateDone, store.state)

	assert.Equal(t, 1, client.prCalls)
}

// The same guard covers a double-clicked sign-in: the second request finds
// the row already in oauth and is rejected before another authorize URL is
// handed out.
func TestSignInRaceOnlyTransitionsOnce(t *testing.T) {
	client := &fakeClient{desc: testDescriptor()}
	store := &casStore{state: shared.WorkflowStateLoggedOut}
	c := newTestController(client, store)

	first := newTestInstance(shared.WorkflowStateLoggedOut)
	second := newTestInstance(shared.WorkflowStateLoggedOut)

	_, err := c.SignIn(context.Background(), first, "state-1")
	require.NoError(t, err)
	assert.Equal(t, shared.WorkflowStateOAuth, store.state)

	_, err = c.SignIn(context.Background(), second, "state-2")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, shared.WorkflowStateLoggedOut, second.State)
}

func TestSubmitStoreFailureRollsBackState(t *testing.T) {
	client := &fakeClient{desc: testDescriptor()}
	store := &fakeStore{failErr: errors.New("db down")}
	c := newTestController(client, store)
	inst := newTestInstance(shared.WorkflowStateLoggedIn)

	_, err := c.Submit(context.Background(), inst, "A fine message", "token")
	require.Error(t, err)
	assert.Equal(t, shared.WorkflowStateLoggedIn, inst.State)
	assert.Equal(t, 0, client.prCalls)
}
