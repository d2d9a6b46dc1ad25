package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("Patchy Light Snow", "snow"))
	assert.True(t, HasAny("Overcast", "cloud", "OVERCAST"))
	assert.False(t, HasAny("Sunny"))
	assert.False(t, HasAny("Sunny", "rain"))
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "Light rain", CapitalizeFirst("light rain"))
	assert.Equal(t, "Éclaircies", CapitalizeFirst("éclaircies"))
	assert.Equal(t, "", CapitalizeFirst(""))
}
