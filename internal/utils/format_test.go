package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.35, Round2(12.345))
	assert.Equal(t, 100.0, Round2(99.999))
	assert.Equal(t, 0.0, Round2(0))
}

func TestSpotNumber(t *testing.T) {
	assert.Equal(t, "A001", SpotNumber(1))
	assert.Equal(t, "A050", SpotNumber(50))
	assert.Equal(t, "A150", SpotNumber(150))
}
