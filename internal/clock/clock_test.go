package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	start := time.Date(2026, 5, 9, 18, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	m := NewManual(start)
	assert.True(t, m.Now().Equal(start))
	assert.Equal(t, time.UTC, m.Now().Location())

	m.Advance(90 * time.Second)
	assert.True(t, m.Now().Equal(start.Add(90*time.Second)))

	later := start.Add(time.Hour)
	m.Set(later)
	assert.True(t, m.Now().Equal(later))
}

func TestSystem(t *testing.T) {
	before := time.Now()
	now := NewSystem().Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.False(t, now.Before(before.Truncate(time.Second)))
}
