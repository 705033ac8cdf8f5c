package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierPoolReusesReleasedSlots(t *testing.T) {
	p := NewIdentifierPool(4)
	a, b, c := "a", "b", "c"

	assert.Equal(t, uint32(0), p.Acquire(&a))
	assert.Equal(t, uint32(1), p.Acquire(&b))
	require.NoError(t, p.Release(0))
	assert.Equal(t, uint32(0), p.Acquire(&c))

	owner, ok := p.Owner(0)
	require.True(t, ok)
	assert.Same(t, &c, owner)

	assert.Error(t, p.Release(7))
	require.NoError(t, p.Release(1))
	assert.Error(t, p.Release(1))
	_, ok = p.Owner(1)
	assert.False(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{" INFO ", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockElapsed(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock()
	c.now = func() time.Time { return now }

	c.Update()
	assert.Zero(t, c.Elapsed(), "non-started clock must not advance")

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 1.5, c.Elapsed(), 1e-9)
}

func TestMetricsFrameAverageAndFPS(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.010)
	}
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)

	// 30 frames at 10ms is 300ms; push past one second.
	for i := 0; i < 71; i++ {
		m.Update(0.010)
	}
	fps, _ := m.Frame()
	assert.Equal(t, float64(100), fps)
}

func TestMetricsRecordGeneration(t *testing.T) {
	m := NewMetrics()
	m.RecordGeneration(0.25, 84)
	m.RecordGeneration(0.5, 420)

	ms, instances, passes := m.Generation()
	assert.InDelta(t, 500.0, ms, 1e-9)
	assert.Equal(t, 420, instances)
	assert.Equal(t, 2, passes)
}
