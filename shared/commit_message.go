package shared

import (
	"fmt"
	"unicode/utf8"
)

// MaxCommitMessageLength bounds the user-editable commit message, in
// characters — the proposals column counts characters, not bytes.
const MaxCommitMessageLength = 100

// ValidateCommitMessage enforces the length bound before a submission is
// accepted.
func ValidateCommitMessage(msg string) error {
	if len(msg) == 0 {
		return fmt.Errorf("commit message is required")
	}
	if utf8.RuneCountInString(msg) > MaxCommitMessageLength {
		return fmt.Errorf("commit message must be at most %d characters", MaxCommitMessageLength)
	}
	return nil
}

// DefaultCommitMessage pre-fills the commit message field for a proposal.
func DefaultCommitMessage(req ProposalRequest) string {
	var verb string
	switch req.Action {
	case ProposalActionCreate:
		verb = "Create"
	case ProposalActionDelete:
		verb = "Delete"
	default:
		verb = "Edit"
	}

	msg := fmt.Sprintf("%s %s", verb, req.FilePath)
	if utf8.RuneCountInString(msg) > MaxCommitMessageLength {
		// truncate on a rune boundary, never mid-character
		msg = string([]rune(msg)[:MaxCommitMessageLength])
	}
	return msg
}
