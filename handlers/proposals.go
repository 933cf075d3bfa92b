package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"mapnav-server/db"
	"mapnav-server/metrics"
	"mapnav-server/shared"
	"mapnav-server/workflow"
)

func CreateProposalHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "CreateProposalHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	var requestBody shared.CreateProposalRequest
	if !readJSON(w, r, &requestBody) {
		return
	}

	proposalReq := requestBody.Proposal
	if proposalReq.PackageName == "" || proposalReq.FilePath == "" || proposalReq.ParentCommitId == "" {
		http.Error(w, "packageName, filePath and parentCommitId are required", http.StatusBadRequest)
		return
	}
	switch proposalReq.Action {
	case shared.ProposalActionCreate, shared.ProposalActionEdit:
		if proposalReq.FileContents == "" {
			http.Error(w, "fileContents is required", http.StatusBadRequest)
			return
		}
	case shared.ProposalActionDelete:
		proposalReq.FileContents = ""
	default:
		http.Error(w, "action must be create, edit or delete", http.StatusBadRequest)
		return
	}

	commitMessage := shared.DefaultCommitMessage(proposalReq)

	// With no hoster configured the workflow never activates: the proposal
	// is stored without a state and rendered as manual instructions.
	initialState := shared.WorkflowState("")
	if hosterClient != nil {
		initialState = shared.WorkflowStateChecking
	}

	proposal, err := db.CreateProposal(session.Id, proposalReq, commitMessage, initialState)
	if err != nil {
		slog.Error("error creating proposal", "error", err)
		http.Error(w, "error creating proposal", http.StatusInternalServerError)
		return
	}

	var view shared.ProposalView
	if hosterClient == nil {
		view = workflow.RenderManualFallback(proposal.Id, proposalReq)
	} else {
		view = workflow.Render(proposal.ToInstance(), hosterDescriptor(), nil)
	}

	writeJSON(w, shared.CreateProposalResponse{Id: proposal.Id, View: view})

	slog.Info("created proposal", "proposal", proposal.Id, "action", proposalReq.Action)
}

func GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "GetProposalHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	proposal := getProposal(w, r, session)
	if proposal == nil {
		return
	}

	inst := proposal.ToInstance()
	if inst.State == "" {
		writeJSON(w, workflow.RenderManualFallback(inst.Id, inst.Request))
		return
	}

	writeJSON(w, workflow.Render(inst, hosterDescriptor(), nil))
}

// CheckProposalHandler runs the authentication-status check that resolves
// the checking state. On a transport failure the workflow stays in checking
// and the error is rendered into the view for the user to retry.
func CheckProposalHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "CheckProposalHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	proposal := getProposal(w, r, session)
	if proposal == nil {
		return
	}

	inst := proposal.ToInstance()
	if inst.State == "" {
		// manual fallback mode: no state machine, no auth call
		writeJSON(w, workflow.RenderManualFallback(inst.Id, inst.Request))
		return
	}

	if err := controller.Check(r.Context(), inst, session.HosterToken()); err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			writeInvalidTransition(w, err)
			return
		}
		slog.Warn("auth status check failed", "proposal", inst.Id, "error", err)
		writeJSON(w, workflow.Render(inst, hosterDescriptor(), err))
		return
	}

	metrics.CountTransition(string(inst.State))
	writeJSON(w, workflow.Render(inst, hosterDescriptor(), nil))
}

func SignInProposalHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "SignInProposalHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	proposal := getProposal(w, r, session)
	if proposal == nil {
		return
	}

	inst := proposal.ToInstance()
	if inst.State == "" {
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeInvalidState,
			Status: http.StatusConflict,
			Msg:    "No hoster is configured",
		})
		return
	}

	oauthState, err := db.CreateOAuthState(proposal.Id, session.Id)
	if err != nil {
		slog.Error("error creating oauth state", "error", err)
		http.Error(w, "error creating oauth state", http.StatusInternalServerError)
		return
	}

	authorizeUrl, err := controller.SignIn(r.Context(), inst, oauthState)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			writeInvalidTransition(w, err)
			return
		}
		slog.Error("error starting sign in", "proposal", inst.Id, "error", err)
		http.Error(w, "error starting sign in", http.StatusInternalServerError)
		return
	}

	metrics.CountTransition(string(inst.State))
	writeJSON(w, shared.SignInProposalResponse{
		AuthorizeUrl: authorizeUrl,
		View:         workflow.Render(inst, hosterDescriptor(), nil),
	})
}

// OAuthCallbackHandler is the second run of the OAuth flow: the provider
// redirected the browser back here. The state parameter — not a session
// header — identifies the workflow run that started the flow; a browser
// navigation carries no Authorization header.
func OAuthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "OAuthCallbackHandler")

	code := r.URL.Query().Get("code")
	stateParam := r.URL.Query().Get("state")
	if code == "" || stateParam == "" {
		http.Error(w, "code and state are required", http.StatusBadRequest)
		return
	}

	oauthState, err := db.ConsumeOAuthState(stateParam)
	if err != nil {
		slog.Error("error consuming oauth state", "error", err)
		http.Error(w, "error consuming oauth state", http.StatusInternalServerError)
		return
	}
	if oauthState == nil {
		http.Error(w, "unknown or expired oauth state", http.StatusBadRequest)
		return
	}

	proposal, err := db.GetProposal(oauthState.ProposalId, oauthState.SessionId)
	if err != nil || proposal == nil {
		slog.Error("error loading proposal for oauth callback", "error", err)
		http.Error(w, "error loading proposal", http.StatusInternalServerError)
		return
	}

	inst := proposal.ToInstance()

	accessToken, err := controller.ResumeOAuth(r.Context(), inst, code)
	if err != nil {
		// back in checking either way; the next check finds the user
		// logged out
		slog.Warn("oauth exchange failed", "proposal", inst.Id, "error", err)
	} else {
		err = db.SetSessionHosterToken(oauthState.SessionId, hosterClient.Descriptor().Name, accessToken)
		if err != nil {
			slog.Error("error storing hoster token", "error", err)
		}
	}

	metrics.CountTransition(string(inst.State))
	http.Redirect(w, r, proposalPageUrl(proposal.Id), http.StatusFound)
}

// SubmitProposalHandler validates the commit message and submits the
// proposal as a pull request. A failed submission drops back to logged_in
// with the error rendered into the view; nothing is retried automatically.
func SubmitProposalHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("received request", "handler", "SubmitProposalHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	proposal := getProposal(w, r, session)
	if proposal == nil {
		return
	}

	var requestBody shared.SubmitProposalRequest
	if !readJSON(w, r, &requestBody) {
		return
	}

	inst := proposal.ToInstance()
	if inst.State == "" {
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeInvalidState,
			Status: http.StatusConflict,
			Msg:    "No hoster is configured",
		})
		return
	}

	result, err := controller.Submit(r.Context(), inst, requestBody.CommitMessage, session.HosterToken())
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			writeInvalidTransition(w, err)
			return
		}
		slog.Warn("submission failed", "proposal", inst.Id, "error", err)
		writeJSON(w, workflow.Render(inst, hosterDescriptor(), err))
		return
	}

	metrics.CountTransition(string(inst.State))
	slog.Info("created pull request", "proposal", inst.Id, "url", result.Url)
	writeJSON(w, workflow.Render(inst, hosterDescriptor(), nil))
}

func getProposal(w http.ResponseWriter, r *http.Request, session *db.Session) *db.Proposal {
	vars := mux.Vars(r)
	proposalId := vars["proposalId"]

	proposal, err := db.GetProposal(proposalId, session.Id)
	if err != nil {
		slog.Error("error getting proposal", "error", err)
		http.Error(w, "error getting proposal", http.StatusInternalServerError)
		return nil
	}
	if proposal == nil {
		writeApiError(w, shared.ApiError{
			Type:   shared.ApiErrorTypeNotFound,
			Status: http.StatusNotFound,
			Msg:    "Proposal not found",
		})
		return nil
	}
	return proposal
}

func writeInvalidTransition(w http.ResponseWriter, err error) {
	writeApiError(w, shared.ApiError{
		Type:   shared.ApiErrorTypeInvalidState,
		Status: http.StatusConflict,
		Msg:    err.Error(),
	})
}
