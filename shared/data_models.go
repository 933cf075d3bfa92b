package shared

// ProposalAction is the kind of file change a proposal applies to a map
// data package.
type ProposalAction string

const (
	ProposalActionCreate ProposalAction = "create"
	ProposalActionEdit   ProposalAction = "edit"
	ProposalActionDelete ProposalAction = "delete"
)

// ProposalRequest is the single file change a user wants applied against a
// map data package. It is immutable once the workflow begins — the page that
// rendered the editor supplies it and the controller never rewrites it.
type ProposalRequest struct {
	PackageName    string         `json:"packageName"`
	FilePath       string         `json:"filePath"`
	Action         ProposalAction `json:"action"`
	ParentCommitId string         `json:"parentCommitId"`

	// FileContents is absent when Action is delete.
	FileContents string `json:"fileContents,omitempty"`
}

// WorkflowState is the current state of an edit-proposal workflow. Exactly
// one state is active at a time.
type WorkflowState string

const (
	WorkflowStateChecking           WorkflowState = "checking"
	WorkflowStateLoggedOut          WorkflowState = "logged_out"
	WorkflowStateMissingPermissions WorkflowState = "missing_permissions"
	WorkflowStateOAuth              WorkflowState = "oauth"
	WorkflowStateLoggedIn           WorkflowState = "logged_in"
	WorkflowStateProgress           WorkflowState = "progress"
	WorkflowStateDone               WorkflowState = "done"
)

// HosterDescriptor identifies the external code-hosting provider proposals
// are submitted to. When the server has no hoster configured, proposal views
// degrade to manual copy-paste instructions instead of the workflow.
type HosterDescriptor struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	BaseUrl string `json:"baseUrl"`
}

type PullRequestResult struct {
	Url string `json:"url"`
}

// ProposalView is the full render of a proposal's workflow state. The client
// re-renders from this after every call — it never derives view state on its
// own.
type ProposalView struct {
	Id     string            `json:"id"`
	State  WorkflowState     `json:"state,omitempty"`
	Hoster *HosterDescriptor `json:"hoster,omitempty"`

	CommitMessage    string `json:"commitMessage,omitempty"`
	MaxCommitMessage int    `json:"maxCommitMessage,omitempty"`

	PackageName string         `json:"packageName"`
	FilePath    string         `json:"filePath"`
	Action      ProposalAction `json:"action"`

	// FileContents is omitted when Action is delete — there is nothing to
	// preview.
	FileContents string `json:"fileContents,omitempty"`

	// CanSignIn and CanSubmit tell the client which controls are actionable
	// in the current state.
	CanSignIn bool `json:"canSignIn"`
	CanSubmit bool `json:"canSubmit"`

	PullRequestUrl string `json:"pullRequestUrl,omitempty"`

	// ManualFallback is set when no hoster is configured. No workflow state
	// exists in that mode.
	ManualFallback bool `json:"manualFallback,omitempty"`

	Error *ApiError `json:"error,omitempty"`
}

// LocationResult is one entry of a location search or lookup: what gets
// rendered into the result list.
type LocationResult struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Url      string `json:"url"`
}

type RouteLeg struct {
	Level    string  `json:"level"`
	CType    string  `json:"ctype,omitempty"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
}

type Route struct {
	Origin      LocationResult `json:"origin"`
	Destination LocationResult `json:"destination"`
	Legs        []RouteLeg     `json:"legs"`
	Distance    float64        `json:"distance"`
}
