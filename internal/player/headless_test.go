package player

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedMedia(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewSimulatedMedia(clock, 30)

	assert.Equal(t, 30.0, m.Duration())
	clock.Advance(5 * time.Second)
	assert.Zero(t, m.CurrentTime(), "paused media does not advance")

	require.NoError(t, m.Play())
	clock.Advance(5 * time.Second)
	assert.InDelta(t, 5, m.CurrentTime(), 0.001)

	m.SetSpeed(2)
	clock.Advance(5 * time.Second)
	assert.InDelta(t, 15, m.CurrentTime(), 0.001)

	m.Pause()
	clock.Advance(5 * time.Second)
	assert.InDelta(t, 15, m.CurrentTime(), 0.001)

	m.Seek(-4)
	assert.Zero(t, m.CurrentTime())
	m.Seek(99)
	assert.Equal(t, 30.0, m.CurrentTime())
	assert.True(t, m.Ended())

	require.NoError(t, m.Play())
	assert.Zero(t, m.CurrentTime(), "playing from the end restarts")
	assert.False(t, m.Ended())

	m.SetMuted(true)
	assert.True(t, m.Muted())
}

func TestSimulatedMedia_StopsAtEnd(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewSimulatedMedia(clock, 10)

	require.NoError(t, m.Play())
	clock.Advance(time.Minute)
	assert.Equal(t, 10.0, m.CurrentTime())
	assert.True(t, m.Ended())
}

func TestSimulatedMedia_EndingPauses(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewSimulatedMedia(clock, 30)

	require.NoError(t, m.Play())
	clock.Advance(40 * time.Second)
	assert.False(t, m.Playing(), "reaching the end pauses the element")

	m.Seek(5)
	clock.Advance(10 * time.Second)
	assert.Equal(t, 5.0, m.CurrentTime())
	assert.False(t, m.Ended())

	require.NoError(t, m.Play())
	assert.True(t, m.Playing())
	clock.Advance(2 * time.Second)
	assert.InDelta(t, 7, m.CurrentTime(), 0.001)
}
