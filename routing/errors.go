package routing

import "errors"

var (
	// ErrNoRouteFound means origin and destination are both routable but no
	// path between them satisfies the current settings.
	ErrNoRouteFound = errors.New("no route found")

	// ErrAlreadyThere means origin and destination resolve to the same
	// place.
	ErrAlreadyThere = errors.New("already there")

	// ErrNotYetRoutable means one of the endpoints is not connected to the
	// routing graph.
	ErrNotYetRoutable = errors.New("not yet routable")
)
