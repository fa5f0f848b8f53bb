package businessflow

import (
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallsPerHour(t *testing.T) {
	tests := []struct {
		name      string
		calls     int
		elapsedMs int64
		want      int
	}{
		{"zero elapsed", 5, 0, 0},
		{"three calls in one hour", 3, 60 * 60 * 1000, 3},
		{"half hour", 3, 30 * 60 * 1000, 6},
		{"rounds", 1, 40 * 60 * 1000, 2},
		{"no calls", 0, 60 * 60 * 1000, 0},
		{"short block", 1, 1000, 3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CallsPerHour(tt.calls, tt.elapsedMs))
		})
	}
}

func TestCallBlockSession(t *testing.T) {
	clock := utils.NewFixedClock(testNow)
	s := NewCallBlockSession(clock)

	t.Run("IdleIgnoresCalls", func(t *testing.T) {
		n, active := s.LogCall()
		assert.False(t, active)
		assert.Zero(t, n)
		st := s.Status()
		assert.False(t, st.Running)
		assert.Equal(t, "00:00:00", st.Elapsed)
	})

	t.Run("EndWhileIdle", func(t *testing.T) {
		_, err := s.End()
		assert.ErrorIs(t, err, ErrBlockNotRunning)
	})

	t.Run("RunningCounts", func(t *testing.T) {
		st := s.Start()
		assert.True(t, st.Running)
		require.NotNil(t, st.StartedAt)

		for i := 0; i < 3; i++ {
			s.LogCall()
		}
		clock.Advance(30 * time.Minute)

		st = s.Status()
		assert.Equal(t, 3, st.CallsLogged)
		assert.Equal(t, int64(30*60*1000), st.ElapsedMs)
		assert.Equal(t, "00:30:00", st.Elapsed)
		assert.Equal(t, 6, st.CallsPerHour)
	})

	t.Run("RestartResetsCounter", func(t *testing.T) {
		s.Start()
		st := s.Status()
		assert.Zero(t, st.CallsLogged)
		assert.Zero(t, st.ElapsedMs)
	})

	t.Run("EndReportsAndReturnsToIdle", func(t *testing.T) {
		s.LogCall()
		s.LogCall()
		clock.Advance(time.Hour)

		summary, err := s.End()
		require.NoError(t, err)
		assert.Equal(t, 2, summary.CallsLogged)
		assert.Equal(t, "01:00:00", summary.Elapsed)
		assert.Equal(t, 2, summary.CallsPerHour)
		assert.False(t, s.Status().Running)

		_, err = s.End()
		assert.ErrorIs(t, err, ErrBlockNotRunning)
	})

	t.Run("EndImmediately", func(t *testing.T) {
		s.Start()
		s.LogCall()
		summary, err := s.End()
		require.NoError(t, err)
		assert.Zero(t, summary.CallsPerHour)
	})
}

func TestCallBlockRegistry(t *testing.T) {
	clock := utils.NewFixedClock(testNow)
	r := NewCallBlockRegistry(clock)

	r.Session("op-1").Start()
	r.Session("op-2")

	assert.Same(t, r.Session("op-1"), r.Session("op-1"))
	running := r.Running()
	require.Len(t, running, 1)
	assert.True(t, running["op-1"].Running)
}

func TestCallBlockThreeCallsInOneHour(t *testing.T) {
	clock := utils.NewFixedClock(testNow)
	s := NewCallBlockSession(clock)

	s.Start()
	for i := 0; i < 3; i++ {
		s.LogCall()
	}
	clock.Advance(time.Hour)

	summary, err := s.End()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.CallsLogged)
	assert.Equal(t, "01:00:00", summary.Elapsed)
	assert.Equal(t, 3, summary.CallsPerHour)
}
