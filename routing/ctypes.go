package routing

// Connection-type handling for the accessibility tri-states. Each of
// stairs/escalators/elevators is one of yes, up, down or no; the allowed
// connection types are the per-direction expansion of those settings.

var ctypeDirections = map[string][]string{
	"yes":  {"up", "down"},
	"up":   {"up"},
	"down": {"down"},
	"no":   {},
}

// CTypes expands one tri-state into concrete connection types, e.g.
// ("stairs", "up") -> ["stairs_up"]. Unknown values allow both directions.
func CTypes(prefix, value string) []string {
	directions, ok := ctypeDirections[value]
	if !ok {
		directions = []string{"up", "down"}
	}
	ctypes := make([]string, 0, len(directions))
	for _, direction := range directions {
		ctypes = append(ctypes, prefix+"_"+direction)
	}
	return ctypes
}

// ReverseCTypes recovers the tri-state from an allowed set, so the settings
// echoed back to the form are always normalized.
func ReverseCTypes(allowed map[string]bool, prefix string) string {
	up := allowed[prefix+"_up"]
	down := allowed[prefix+"_down"]
	switch {
	case up && down:
		return "yes"
	case up:
		return "up"
	case down:
		return "down"
	default:
		return "no"
	}
}

// AllowedCTypes builds the allowed set from the three form tri-states. The
// empty ctype (plain walking) is always allowed.
func AllowedCTypes(stairs, escalators, elevators string) map[string]bool {
	allowed := map[string]bool{"": true}
	for _, ctype := range CTypes("stairs", stairs) {
		allowed[ctype] = true
	}
	for _, ctype := range CTypes("escalator", escalators) {
		allowed[ctype] = true
	}
	for _, ctype := range CTypes("elevator", elevators) {
		allowed[ctype] = true
	}
	return allowed
}
