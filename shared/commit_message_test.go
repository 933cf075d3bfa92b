package shared

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestValidateCommitMessage(t *testing.T) {
	assert.Error(t, ValidateCommitMessage(""))
	assert.NoError(t, ValidateCommitMessage("x"))
	assert.NoError(t, ValidateCommitMessage(strings.Repeat("x", MaxCommitMessageLength)))
	assert.Error(t, ValidateCommitMessage(strings.Repeat("x", MaxCommitMessageLength+1)))

	// the bound counts characters, not bytes
	assert.NoError(t, ValidateCommitMessage(strings.Repeat("ä", MaxCommitMessageLength)))
	assert.Error(t, ValidateCommitMessage(strings.Repeat("ä", MaxCommitMessageLength+1)))
}

func TestDefaultCommitMessage(t *testing.T) {
	req := ProposalRequest{FilePath: "locations/room-a.yaml"}

	req.Action = ProposalActionCreate
	assert.Equal(t, "Create locations/room-a.yaml", DefaultCommitMessage(req))

	req.Action = ProposalActionEdit
	assert.Equal(t, "Edit locations/room-a.yaml", DefaultCommitMessage(req))

	req.Action = ProposalActionDelete
	assert.Equal(t, "Delete locations/room-a.yaml", DefaultCommitMessage(req))

	// long paths are truncated to stay submittable
	req.FilePath = strings.Repeat("d/", 100) + "x.yaml"
	assert.Len(t, DefaultCommitMessage(req), MaxCommitMessageLength)

	// truncation never splits a multi-byte character
	req.FilePath = strings.Repeat("ä", 200) + ".yaml"
	msg := DefaultCommitMessage(req)
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, MaxCommitMessageLength, utf8.RuneCountInString(msg))
	assert.NoError(t, ValidateCommitMessage(msg))
}
