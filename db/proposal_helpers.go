package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mapnav-server/shared"
	"mapnav-server/workflow"
)

func CreateProposal(sessionId string, req shared.ProposalRequest, commitMessage string, initialState shared.WorkflowState) (*Proposal, error) {
	proposal := &Proposal{
		Id:             uuid.New().String(),
		SessionId:      sessionId,
		PackageName:    req.PackageName,
		FilePath:       req.FilePath,
		Action:         string(req.Action),
		ParentCommitId: req.ParentCommitId,
		CommitMessage:  commitMessage,
		State:          string(initialState),
	}
	if req.Action != shared.ProposalActionDelete {
		proposal.FileContents = &req.FileContents
	}

	err := Conn.QueryRow(
		`INSERT INTO proposals (id, session_id, package_name, file_path, action, parent_commit_id, file_contents, commit_message, state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		proposal.Id, proposal.SessionId, proposal.PackageName, proposal.FilePath,
		proposal.Action, proposal.ParentCommitId, proposal.FileContents,
		proposal.CommitMessage, proposal.State,
	).Scan(&proposal.CreatedAt, &proposal.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error creating proposal: %v", err)
	}

	return proposal, nil
}

func GetProposal(proposalId, sessionId string) (*Proposal, error) {
	var proposal Proposal
	err := Conn.Get(&proposal,
		"SELECT * FROM proposals WHERE id = $1 AND session_id = $2",
		proposalId, sessionId)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting proposal: %v", err)
	}

	return &proposal, nil
}

// ProposalStore implements workflow.Store on the proposals table. The update
// is a compare-and-swap on the from-state: when two requests race the same
// transition, only one matches the row and the other gets
// workflow.ErrInvalidTransition back.
type ProposalStore struct{}

func (ProposalStore) SaveInstance(ctx context.Context, inst *workflow.Instance, from shared.WorkflowState) error {
	var prUrl *string
	if inst.PullRequestUrl != "" {
		prUrl = &inst.PullRequestUrl
	}

	result, err := Conn.ExecContext(ctx,
		`UPDATE proposals SET state = $2, commit_message = $3, pr_url = $4, updated_at = now()
		 WHERE id = $1 AND state = $5`,
		inst.Id, string(inst.State), inst.CommitMessage, prUrl, string(from))

	if err != nil {
		return fmt.Errorf("error saving proposal state: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error saving proposal state: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: proposal %s is no longer in %s", workflow.ErrInvalidTransition, inst.Id, from)
	}

	return nil
}
