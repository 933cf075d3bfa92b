package shared

type CreateSessionResponse struct {
	Token string `json:"token"`
}

type CreateProposalRequest struct {
	Proposal ProposalRequest `json:"proposal"`
}

type CreateProposalResponse struct {
	Id   string       `json:"id"`
	View ProposalView `json:"view"`
}

type SignInProposalResponse struct {
	// AuthorizeUrl is the hoster's authorization endpoint. The client
	// navigates the browsing context there; control returns via the OAuth
	// callback.
	AuthorizeUrl string `json:"authorizeUrl"`

	View ProposalView `json:"view"`
}

type SubmitProposalRequest struct {
	CommitMessage string `json:"commitMessage"`
}

type SearchLocationsResponse struct {
	Query   string           `json:"query"`
	Results []LocationResult `json:"results"`
}

// RouteError values match the error conditions the route form can surface.
type RouteError string

const (
	RouteErrorNoRouteFound   RouteError = "noroutefound"
	RouteErrorAlreadyThere   RouteError = "alreadythere"
	RouteErrorNotYetRoutable RouteError = "notyetroutable"
)

// RouteRequest is the route form: origin/destination plus accessibility
// filters. Stairs, Escalators and Elevators are tri-states: yes, up, down
// or no.
type RouteRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`

	Stairs     string `json:"stairs,omitempty"`
	Escalators string `json:"escalators,omitempty"`
	Elevators  string `json:"elevators,omitempty"`

	Include []string `json:"include,omitempty"`
	Avoid   []string `json:"avoid,omitempty"`

	SaveSettings bool `json:"saveSettings,omitempty"`
}

type RouteResponse struct {
	Route *Route     `json:"route,omitempty"`
	Error RouteError `json:"error,omitempty"`

	Stairs     string `json:"stairs"`
	Escalators string `json:"escalators"`
	Elevators  string `json:"elevators"`

	Include []string `json:"include,omitempty"`
	Avoid   []string `json:"avoid,omitempty"`
}
