package workflow

import "mapnav-server/shared"

// ValidTransitions is the workflow transition table. A transition not listed
// here is rejected — there is no way to, say, re-enter progress from done or
// jump from logged_out straight to logged_in.
var ValidTransitions = map[shared.WorkflowState][]shared.WorkflowState{
	shared.WorkflowStateChecking: {
		shared.WorkflowStateLoggedIn,
		shared.WorkflowStateMissingPermissions,
		shared.WorkflowStateLoggedOut,
	},
	shared.WorkflowStateLoggedOut: {
		shared.WorkflowStateOAuth,
	},
	shared.WorkflowStateMissingPermissions: {
		shared.WorkflowStateOAuth,
	},
	shared.WorkflowStateOAuth: {
		shared.WorkflowStateChecking,
	},
	shared.WorkflowStateLoggedIn: {
		shared.WorkflowStateProgress,
	},
	shared.WorkflowStateProgress: {
		shared.WorkflowStateDone,
		shared.WorkflowStateLoggedIn,
	},
	// done is terminal
	shared.WorkflowStateDone: {},
}

func IsValidTransition(from, to shared.WorkflowState) bool {
	for _, allowed := range ValidTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ActionableStates are the states in which user-initiated transition
// controls are enabled. checking, oauth and progress are owned by an
// in-flight asynchronous call; done is terminal.
var ActionableStates = map[shared.WorkflowState]bool{
	shared.WorkflowStateLoggedOut:          true,
	shared.WorkflowStateMissingPermissions: true,
	shared.WorkflowStateLoggedIn:           true,
}
