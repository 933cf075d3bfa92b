package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mapnav-server/shared"
)

func TestValidTransitions(t *testing.T) {
	valid := []struct {
		from, to shared.WorkflowState
	}{
		{shared.WorkflowStateChecking, shared.WorkflowStateLoggedIn},
		{shared.WorkflowStateChecking, shared.WorkflowStateMissingPermissions},
		{shared.WorkflowStateChecking, shared.WorkflowStateLoggedOut},
		{shared.WorkflowStateLoggedOut, shared.WorkflowStateOAuth},
		{shared.WorkflowStateMissingPermissions, shared.WorkflowStateOAuth},
		{shared.WorkflowStateOAuth, shared.WorkflowStateChecking},
		{shared.WorkflowStateLoggedIn, shared.WorkflowStateProgress},
		{shared.WorkflowStateProgress, shared.WorkflowStateDone},
		{shared.WorkflowStateProgress, shared.WorkflowStateLoggedIn},
	}
	for _, tc := range valid {
		assert.True(t, IsValidTransition(tc.from, tc.to), "%s -> %s should be valid", tc.from, tc.to)
	}

	invalid := []struct {
		from, to shared.WorkflowState
	}{
		{shared.WorkflowStateChecking, shared.WorkflowStateProgress},
		{shared.WorkflowStateChecking, shared.WorkflowStateOAuth},
		{shared.WorkflowStateLoggedOut, shared.WorkflowStateLoggedIn},
		{shared.WorkflowStateLoggedIn, shared.WorkflowStateOAuth},
		{shared.WorkflowStateProgress, shared.WorkflowStateChecking},
		{shared.WorkflowStateDone, shared.WorkflowStateLoggedIn},
		{shared.WorkflowStateDone, shared.WorkflowStateProgress},
		{shared.WorkflowStateDone, shared.WorkflowStateChecking},
	}
	for _, tc := range invalid {
		assert.False(t, IsValidTransition(tc.from, tc.to), "%s -> %s should be invalid", tc.from, tc.to)
	}
}

// Controls that trigger user-initiated transitions must only be actionable
// in logged_out, missing_permissions and logged_in — never while an
// asynchronous call owns the state.
func TestRenderActionability(t *testing.T) {
	expectations := map[shared.WorkflowState]struct {
		canSignIn bool
		canSubmit bool
	}{
		shared.WorkflowStateChecking:           {false, false},
		shared.WorkflowStateLoggedOut:          {true, false},
		shared.WorkflowStateMissingPermissions: {true, false},
		shared.WorkflowStateOAuth:              {false, false},
		shared.WorkflowStateLoggedIn:           {false, true},
		shared.WorkflowStateProgress:           {false, false},
		shared.WorkflowStateDone:               {false, false},
	}

	desc := testDescriptor()
	for state, expected := range expectations {
		inst := newTestInstance(state)
		view := Render(inst, &desc, nil)
		assert.Equal(t, expected.canSignIn, view.CanSignIn, "CanSignIn in %s", state)
		assert.Equal(t, expected.canSubmit, view.CanSubmit, "CanSubmit in %s", state)
		assert.Equal(t, ActionableStates[state], view.CanSignIn || view.CanSubmit, "actionability in %s", state)
	}
}

func TestRenderOmitsContentsForDelete(t *testing.T) {
	inst := newTestInstance(shared.WorkflowStateLoggedIn)
	inst.Request.Action = shared.ProposalActionDelete

	desc := testDescriptor()
	view := Render(inst, &desc, nil)
	assert.Empty(t, view.FileContents)

	inst.Request.Action = shared.ProposalActionEdit
	view = Render(inst, &desc, nil)
	assert.Equal(t, "name: room-a\n", view.FileContents)
}

func TestRenderManualFallback(t *testing.T) {
	inst := newTestInstance("")
	view := RenderManualFallback(inst.Id, inst.Request)

	assert.True(t, view.ManualFallback)
	assert.Empty(t, view.State)
	assert.False(t, view.CanSignIn)
	assert.False(t, view.CanSubmit)
	assert.Nil(t, view.Hoster)
	assert.Equal(t, "name: room-a\n", view.FileContents)
}
