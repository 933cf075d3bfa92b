package workflow

import (
	"mapnav-server/hoster"
	"mapnav-server/shared"
)

// Render is the single place view state comes from: a pure function of the
// instance, the configured hoster and the result of the last operation.
// Passing opErr == nil clears the error region — which is exactly what every
// successful transition does.
func Render(inst *Instance, desc *hoster.Descriptor, opErr error) shared.ProposalView {
	view := shared.ProposalView{
		Id:               inst.Id,
		State:            inst.State,
		CommitMessage:    inst.CommitMessage,
		MaxCommitMessage: shared.MaxCommitMessageLength,
		PackageName:      inst.Request.PackageName,
		FilePath:         inst.Request.FilePath,
		Action:           inst.Request.Action,
		CanSignIn: inst.State == shared.WorkflowStateLoggedOut ||
			inst.State == shared.WorkflowStateMissingPermissions,
		CanSubmit: inst.State == shared.WorkflowStateLoggedIn,
	}

	if desc != nil {
		view.Hoster = desc.ToApi()
	}

	// nothing to preview for a delete
	if inst.Request.Action != shared.ProposalActionDelete {
		view.FileContents = inst.Request.FileContents
	}

	if inst.State == shared.WorkflowStateDone {
		view.PullRequestUrl = inst.PullRequestUrl
	}

	if opErr != nil {
		view.Error = hoster.AsError(opErr).ToApi()
	}

	return view
}

// RenderManualFallback is the no-hoster mode: static copy-your-edit
// instructions. No workflow state exists and none is shown.
func RenderManualFallback(id string, req shared.ProposalRequest) shared.ProposalView {
	view := shared.ProposalView{
		Id:             id,
		PackageName:    req.PackageName,
		FilePath:       req.FilePath,
		Action:         req.Action,
		ManualFallback: true,
	}
	if req.Action != shared.ProposalActionDelete {
		view.FileContents = req.FileContents
	}
	return view
}
