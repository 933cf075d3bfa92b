package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The OAuth callback redirects a bare browser navigation, which carries no
// Authorization header — so the target must be the editor page, never the
// bearer-authenticated /proposals/{id} API route.
func TestProposalPageUrl(t *testing.T) {
	Setup(nil, nil, 0, "/editor/proposals/")
	assert.Equal(t, "/editor/proposals/prop-1", proposalPageUrl("prop-1"))

	Setup(nil, nil, 0, "https://nav.example.com/editor/proposals")
	assert.Equal(t, "https://nav.example.com/editor/proposals/prop-1", proposalPageUrl("prop-1"))
}
