package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// CreateOAuthState records a correlation value for an authorization
// redirect. The provider sends it back on the callback; ConsumeOAuthState
// resolves it to the workflow run that started the flow.
func CreateOAuthState(proposalId, sessionId string) (string, error) {
	state := uuid.New().String()

	_, err := Conn.Exec(
		"INSERT INTO oauth_states (state, proposal_id, session_id) VALUES ($1, $2, $3)",
		state, proposalId, sessionId)

	if err != nil {
		return "", fmt.Errorf("error creating oauth state: %v", err)
	}

	return state, nil
}

// ConsumeOAuthState resolves and invalidates a state value. States are
// single use and expire after an hour.
func ConsumeOAuthState(state string) (*OAuthState, error) {
	var row OAuthState
	err := Conn.Get(&row,
		`UPDATE oauth_states SET used_at = now()
		 WHERE state = $1 AND used_at IS NULL AND created_at > now() - interval '1 hour'
		 RETURNING *`,
		state)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error consuming oauth state: %v", err)
	}

	return &row, nil
}
