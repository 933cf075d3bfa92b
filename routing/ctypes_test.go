package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCTypes(t *testing.T) {
	assert.Equal(t, []string{"stairs_up", "stairs_down"}, CTypes("stairs", "yes"))
	assert.Equal(t, []string{"stairs_up"}, CTypes("stairs", "up"))
	assert.Equal(t, []string{"stairs_down"}, CTypes("stairs", "down"))
	assert.Empty(t, CTypes("stairs", "no"))

	// unknown values fall back to both directions
	assert.Equal(t, []string{"elevator_up", "elevator_down"}, CTypes("elevator", "sideways"))
}

func TestReverseCTypesRoundTrip(t *testing.T) {
	for _, value := range []string{"yes", "up", "down", "no"} {
		allowed := AllowedCTypes(value, "no", "no")
		assert.Equal(t, value, ReverseCTypes(allowed, "stairs"), "stairs=%s", value)
	}
}

func TestAllowedCTypes(t *testing.T) {
	allowed := AllowedCTypes("up", "no", "yes")

	assert.True(t, allowed[""], "plain walking is always allowed")
	assert.True(t, allowed["stairs_up"])
	assert.False(t, allowed["stairs_down"])
	assert.False(t, allowed["escalator_up"])
	assert.False(t, allowed["escalator_down"])
	assert.True(t, allowed["elevator_up"])
	assert.True(t, allowed["elevator_down"])
}
