package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"mapnav-server/hoster"
	"mapnav-server/shared"
)

// DefaultHosterTimeout bounds the two suspendable operations (the auth
// status check and the submission call). There is no retry or backoff — a
// failed call is surfaced and the user re-triggers it.
const DefaultHosterTimeout = 10 * time.Second

// ErrInvalidTransition is returned when an operation is invoked in a state
// that doesn't accept it, e.g. submitting while the workflow is still
// checking.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// Instance is one edit-proposal workflow. Exactly one exists per proposal;
// its state is loaded before and persisted after every operation, so the
// OAuth redirect round trip is just two controller runs over the same row.
type Instance struct {
	Id             string
	Request        shared.ProposalRequest
	CommitMessage  string
	State          shared.WorkflowState
	PullRequestUrl string
}

// Store persists instances between controller runs. SaveInstance must only
// apply the write if the stored state still equals from, and return an error
// wrapping ErrInvalidTransition otherwise — that compare-and-swap is what
// keeps two concurrent requests from both driving the same transition.
type Store interface {
	SaveInstance(ctx context.Context, inst *Instance, from shared.WorkflowState) error
}

// Controller drives a workflow instance through the state machine. All
// hoster failures are returned to the caller as values — the controller
// keeps no error slot of its own.
type Controller struct {
	client  hoster.Client
	store   Store
	timeout time.Duration
}

func NewController(client hoster.Client, store Store, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultHosterTimeout
	}
	return &Controller{
		client:  client,
		store:   store,
		timeout: timeout,
	}
}

func (c *Controller) transition(ctx context.Context, inst *Instance, to shared.WorkflowState) error {
	if !IsValidTransition(inst.State, to) {
		return errors.WithStack(fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inst.State, to))
	}

	from := inst.State
	inst.State = to

	if err := c.store.SaveInstance(ctx, inst, from); err != nil {
		inst.State = from
		if errors.Is(err, ErrInvalidTransition) {
			// another request won the transition; this run is stale
			return err
		}
		return errors.Wrap(err, "persisting workflow state")
	}
	return nil
}

// Check runs the authentication-status query against the hoster. On a
// transport failure the instance stays in checking and the error is returned
// for display; the user retries, the controller doesn't.
func (c *Controller) Check(ctx context.Context, inst *Instance, accessToken string) error {
	if inst.State != shared.WorkflowStateChecking {
		return errors.WithStack(fmt.Errorf("%w: check is only valid in checking, not %s", ErrInvalidTransition, inst.State))
	}

	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, err := c.client.AuthStatus(hctx, accessToken)
	if err != nil {
		return err
	}

	var next shared.WorkflowState
	switch status {
	case hoster.AuthStatusFullScope:
		next = shared.WorkflowStateLoggedIn
	case hoster.AuthStatusMissingScope:
		next = shared.WorkflowStateMissingPermissions
	default:
		next = shared.WorkflowStateLoggedOut
	}

	return c.transition(ctx, inst, next)
}

// SignIn moves the workflow into oauth and returns the provider's authorize
// URL. oauthState is the correlation value the callback will come back with.
func (c *Controller) SignIn(ctx context.Context, inst *Instance, oauthState string) (string, error) {
	if inst.State != shared.WorkflowStateLoggedOut && inst.State != shared.WorkflowStateMissingPermissions {
		return "", errors.WithStack(fmt.Errorf("%w: sign in is not available in %s", ErrInvalidTransition, inst.State))
	}

	if err := c.transition(ctx, inst, shared.WorkflowStateOAuth); err != nil {
		return "", err
	}
	return c.client.AuthCodeURL(oauthState), nil
}

// ResumeOAuth is the second controller run of the OAuth flow: the browser
// came back with an authorization code. Control always returns to checking,
// whether or not the exchange succeeds — a failed exchange just means the
// next check finds the user logged out.
func (c *Controller) ResumeOAuth(ctx context.Context, inst *Instance, code string) (string, error) {
	if inst.State != shared.WorkflowStateOAuth {
		return "", errors.WithStack(fmt.Errorf("%w: no authorization in flight in %s", ErrInvalidTransition, inst.State))
	}

	if err := c.transition(ctx, inst, shared.WorkflowStateChecking); err != nil {
		return "", err
	}

	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	accessToken, err := c.client.Exchange(hctx, code)
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

// Submit validates the commit message, enters progress and submits the
// proposal. The submission call runs at most once per Submit — a failure
// drops back to logged_in with the user's commit message preserved, and
// nothing retries behind the user's back.
func (c *Controller) Submit(ctx context.Context, inst *Instance, commitMessage, accessToken string) (*shared.PullRequestResult, error) {
	if inst.State != shared.WorkflowStateLoggedIn {
		return nil, errors.WithStack(fmt.Errorf("%w: submit is only valid in logged_in, not %s", ErrInvalidTransition, inst.State))
	}

	inst.CommitMessage = commitMessage

	if err := shared.ValidateCommitMessage(commitMessage); err != nil {
		// field-level error; stays in logged_in
		return nil, hoster.NewError(hoster.ErrorKindValidation, err.Error())
	}

	if err := c.transition(ctx, inst, shared.WorkflowStateProgress); err != nil {
		return nil, err
	}

	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, submitErr := c.client.CreatePullRequest(hctx, accessToken, inst.Request, commitMessage)
	if submitErr != nil {
		if err := c.transition(ctx, inst, shared.WorkflowStateLoggedIn); err != nil {
			return nil, err
		}
		return nil, submitErr
	}

	inst.PullRequestUrl = result.Url
	if err := c.transition(ctx, inst, shared.WorkflowStateDone); err != nil {
		return nil, err
	}
	return result, nil
}
