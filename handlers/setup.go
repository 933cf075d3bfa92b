package handlers

import (
	"strings"
	"time"

	"mapnav-server/db"
	"mapnav-server/hoster"
	"mapnav-server/mapdata"
	"mapnav-server/workflow"
)

var (
	// hosterClient is nil when no hoster is configured; the edit workflow
	// then degrades to manual instructions.
	hosterClient     hoster.Client
	controller       *workflow.Controller
	mapIndex         *mapdata.Index
	proposalPageBase string
)

func Setup(client hoster.Client, idx *mapdata.Index, hosterTimeout time.Duration, proposalPageUrl string) {
	hosterClient = client
	mapIndex = idx
	proposalPageBase = proposalPageUrl
	if client != nil {
		controller = workflow.NewController(client, db.ProposalStore{}, hosterTimeout)
	}
}

// proposalPageUrl is the editor page for a proposal. A browser navigation
// carries no Authorization header, so redirects must never target the API
// routes.
func proposalPageUrl(proposalId string) string {
	return strings.TrimSuffix(proposalPageBase, "/") + "/" + proposalId
}

func hosterDescriptor() *hoster.Descriptor {
	if hosterClient == nil {
		return nil
	}
	desc := hosterClient.Descriptor()
	return &desc
}
