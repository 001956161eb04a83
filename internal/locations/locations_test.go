package locations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("Maryland", "Montgomery"))
	assert.True(t, IsValid("Delaware", "Sussex"))
	assert.True(t, IsValid("West Virginia", "Kanawha"))

	assert.False(t, IsValid("Maryland", "Sussex"))
	assert.False(t, IsValid("", ""))
	assert.False(t, IsValid("Atlantis", "Montgomery"))
	assert.False(t, IsValid("Maryland", "montgomery"), "county match is case sensitive")
}

func TestStates(t *testing.T) {
	states := States()
	assert.Equal(t, []string{"Delaware", "Maryland", "West Virginia"}, states)
}

func TestCountiesForState(t *testing.T) {
	md := CountiesForState("Maryland")
	assert.Len(t, md, 24)
	assert.Contains(t, md, "Baltimore City")

	assert.Empty(t, CountiesForState("Atlantis"))
}
