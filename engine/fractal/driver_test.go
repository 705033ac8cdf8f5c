package fractal

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/math"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type recordingSink struct {
	mu          sync.Mutex
	generations []uuid.UUID
	committed   []uuid.UUID
	discarded   []uuid.UUID
	instances   []metadata.Instance
	limit       int
}

func (s *recordingSink) BeginGeneration(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations = append(s.generations, id)
}

func (s *recordingSink) Emit(instance metadata.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.instances) >= s.limit {
		return errors.New("sink full")
	}
	s.instances = append(s.instances, instance)
	return nil
}

func (s *recordingSink) EndGeneration(id uuid.UUID, commit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if commit {
		s.committed = append(s.committed, id)
	} else {
		s.discarded = append(s.discarded, id)
	}
}

func placeholder(geometry, material uint32) *metadata.Shape {
	return &metadata.Shape{
		Geometry:  geometry,
		Material:  material,
		Transform: math.NewTransformUniform(math.NewVec3(5, 5, 5), 3),
	}
}

func newTestDriver(t *testing.T, g Generator, sink InstanceSink) *Driver {
	t.Helper()
	d, err := NewDriver(&DriverConfig{Generator: g, Sink: sink})
	require.NoError(t, err)
	return d
}

func TestNewDriverRequiresCollaborators(t *testing.T) {
	_, err := NewDriver(&DriverConfig{Sink: &recordingSink{}})
	assert.Error(t, err)
	_, err = NewDriver(&DriverConfig{Generator: NewMenger(4)})
	assert.Error(t, err)
}

func TestDriverRunsOnce(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDriver(t, NewMenger(DefaultMengerMaxDepth), sink)
	require.True(t, d.IsPending())

	shapes := []*metadata.Shape{placeholder(1, 2)}
	ran, n, err := d.Update(shapes)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 168420, n)
	assert.False(t, d.IsPending())

	ran, n, err = d.Update(shapes)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, n)
	assert.Len(t, sink.instances, 168420)
	assert.Len(t, sink.generations, 1)
	assert.Equal(t, sink.generations, sink.committed)
	assert.Equal(t, d.LastGenerationID(), sink.committed[0])
}

func TestDriverEmitsPlaceholderHandles(t *testing.T) {
	sink := &recordingSink{}
	d, err := NewDriver(&DriverConfig{
		Generator: NewSierpinski(DefaultSierpinskiMaxDepth),
		Sink:      sink,
		Request:   Request{Origin: math.NewVec3Zero(), Scale: 1, Depth: 2},
	})
	require.NoError(t, err)

	n, err := d.Run([]*metadata.Shape{placeholder(1, 2), nil, placeholder(3, 4)})
	require.NoError(t, err)
	require.Equal(t, 40, n)

	want, err := NewSierpinski(DefaultSierpinskiMaxDepth).Generate(math.NewVec3Zero(), 1, 2)
	require.NoError(t, err)
	for i, inst := range sink.instances {
		assert.Equal(t, d.LastGenerationID(), inst.GenerationID)
		// the placeholder transform never moves the fractal
		assert.True(t, want[i%20].Equal(inst.Transform, 0), "instance %d", i)
		if i < 20 {
			assert.Equal(t, uint32(1), inst.GeometryID)
			assert.Equal(t, uint32(2), inst.MaterialID)
		} else {
			assert.Equal(t, uint32(3), inst.GeometryID)
			assert.Equal(t, uint32(4), inst.MaterialID)
		}
	}
}

func TestDriverEmptyPlaceholders(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDriver(t, NewSierpinski(DefaultSierpinskiMaxDepth), sink)

	ran, n, err := d.Update(nil)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Zero(t, n)
	assert.Empty(t, sink.instances)
	assert.False(t, d.IsPending())
}

func TestDriverResetRegenerates(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDriver(t, NewSierpinski(DefaultSierpinskiMaxDepth), sink)
	shapes := []*metadata.Shape{placeholder(1, 1)}

	_, _, err := d.Update(shapes)
	require.NoError(t, err)
	first := d.LastGenerationID()

	d.Reset()
	assert.True(t, d.IsPending())
	ran, n, err := d.Update(shapes)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 340, n)
	assert.NotEqual(t, first, d.LastGenerationID())
	assert.Len(t, sink.generations, 2)
}

func TestDriverStaysPendingOnFailure(t *testing.T) {
	sink := &recordingSink{limit: 10}
	d := newTestDriver(t, NewSierpinski(DefaultSierpinskiMaxDepth), sink)

	ran, n, err := d.Update([]*metadata.Shape{placeholder(1, 1)})
	assert.Error(t, err)
	assert.True(t, ran)
	assert.Equal(t, 10, n)
	assert.True(t, d.IsPending())
	assert.Empty(t, sink.committed)
	assert.Equal(t, sink.generations, sink.discarded)
	assert.Equal(t, uuid.Nil, d.LastGenerationID())

	bad, err := NewDriver(&DriverConfig{
		Generator: NewSierpinski(2),
		Sink:      &recordingSink{},
	})
	require.NoError(t, err)
	_, _, err = bad.Update([]*metadata.Shape{placeholder(1, 1)})
	assert.ErrorIs(t, err, core.ErrDepthExceeded)
	assert.True(t, bad.IsPending())
	assert.Empty(t, bad.sink.(*recordingSink).generations)
}

func TestDriverConcurrentUpdateRunsOnce(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDriver(t, NewSierpinski(DefaultSierpinskiMaxDepth), sink)
	shapes := []*metadata.Shape{placeholder(1, 1)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	runs := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ran, _, err := d.Update(shapes)
			assert.NoError(t, err)
			if ran {
				mu.Lock()
				runs++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, runs)
	assert.Len(t, sink.instances, 340)
}
