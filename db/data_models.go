package db

import (
	"time"

	"mapnav-server/shared"
	"mapnav-server/workflow"
)

// Models below are server-side only. Rows that cross the API boundary have a
// conversion method to the corresponding shared type, so server-only columns
// (token hashes, session ids) never leak to the client.

// Session is a browser session. The hoster access token obtained via OAuth
// attaches here — it is the only thing that survives a page reload.
type Session struct {
	Id          string     `db:"id"`
	TokenHash   string     `db:"token_hash"`
	HosterName  *string    `db:"hoster_name"`
	AccessToken *string    `db:"access_token"`
	CreatedAt   time.Time  `db:"created_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func (session *Session) HosterToken() string {
	if session.AccessToken == nil {
		return ""
	}
	return *session.AccessToken
}

// Proposal is one edit-proposal workflow instance. The request columns are
// written once at creation; state, commit_message and pr_url change as the
// workflow runs.
type Proposal struct {
	Id             string    `db:"id"`
	SessionId      string    `db:"session_id"`
	PackageName    string    `db:"package_name"`
	FilePath       string    `db:"file_path"`
	Action         string    `db:"action"`
	ParentCommitId string    `db:"parent_commit_id"`
	FileContents   *string   `db:"file_contents"`
	CommitMessage  string    `db:"commit_message"`
	State          string    `db:"state"`
	PrUrl          *string   `db:"pr_url"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (proposal *Proposal) ToInstance() *workflow.Instance {
	inst := &workflow.Instance{
		Id: proposal.Id,
		Request: shared.ProposalRequest{
			PackageName:    proposal.PackageName,
			FilePath:       proposal.FilePath,
			Action:         shared.ProposalAction(proposal.Action),
			ParentCommitId: proposal.ParentCommitId,
		},
		CommitMessage: proposal.CommitMessage,
		State:         shared.WorkflowState(proposal.State),
	}
	if proposal.FileContents != nil {
		inst.Request.FileContents = *proposal.FileContents
	}
	if proposal.PrUrl != nil {
		inst.PullRequestUrl = *proposal.PrUrl
	}
	return inst
}

// OAuthState correlates the provider's redirect back to the workflow run
// that initiated it. Single use.
type OAuthState struct {
	State      string     `db:"state"`
	ProposalId string     `db:"proposal_id"`
	SessionId  string     `db:"session_id"`
	CreatedAt  time.Time  `db:"created_at"`
	UsedAt     *time.Time `db:"used_at"`
}
