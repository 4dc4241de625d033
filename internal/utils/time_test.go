package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDayInUTC(t *testing.T) {
	in := time.Date(2026, time.August, 28, 17, 45, 12, 999, time.FixedZone("CEST", 2*3600))
	out := StartOfDayInUTC(in)

	assert.Equal(t, time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC), out)
	assert.Equal(t, time.UTC, out.Location())
}
