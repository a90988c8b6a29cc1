package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
)

type beacon struct{}

// countingObserver tallies driver callbacks.
type countingObserver struct {
	activated, retired, dropped, ticks int
	lastPlans                          int
}

func (o *countingObserver) PlanActivated() { o.activated++ }
func (o *countingObserver) PlanRetired()   { o.retired++ }
func (o *countingObserver) PlanDropped()   { o.dropped++ }
func (o *countingObserver) TickObserved(plans int, _ time.Duration) {
	o.ticks++
	o.lastPlans = plans
}

func beaconSnapshot(builds *int) Builder[snap] {
	return func(w *ecs.World) snap {
		*builds++
		return snap{on: ecs.Store[beacon](w).Len() > 0}
	}
}

func TestSystemRetiresFinishedPlans(t *testing.T) {
	tr := &trace{}
	w := ecs.NewWorld()
	bus := event.NewBus()
	builds := 0
	sys := NewSystem(w, bus, beaconSnapshot(&builds), nil)
	obs := &countingObserver{}
	sys.SetObserver(obs)

	var retired []ecs.EntityID
	event.Subscribe(bus, func(ev event.PlanRetired) { retired = append(retired, ev.Target) })

	target := w.CreateEntity()
	Attach[snap](w, target, NewSequence[snap](newRecorder(tr, "A", false), newRecorder(tr, "B", false)))

	sys.Update(time.Millisecond)
	assert.True(t, w.Alive(target))
	sys.Update(time.Millisecond)
	assert.False(t, w.Alive(target), "finished plan despawns its target")
	assert.Equal(t, 0, ecs.Store[Plan[snap]](w).Len())

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []ecs.EntityID{target}, retired)

	sys.Update(time.Millisecond)
	assert.Equal(t, 3, builds, "one snapshot per tick")
	assert.Equal(t, 1, obs.activated)
	assert.Equal(t, 1, obs.retired)
	assert.Equal(t, 3, obs.ticks)
	assert.Equal(t, 0, obs.lastPlans)
}

func TestSystemIsolatesSiblingsWithinATick(t *testing.T) {
	tr := &trace{}
	w := ecs.NewWorld()
	builds := 0
	sys := NewSystem(w, nil, beaconSnapshot(&builds), nil)

	writer := w.CreateEntity()
	Attach[snap](w, writer, NewSetComponent[snap](beacon{}))
	reader := w.CreateEntity()
	Attach[snap](w, reader, NewIfElse[snap](
		func(s snap) bool { return s.on },
		newRecorder(tr, "seen"),
		newRecorder(tr, "unseen"),
	))

	sys.Update(time.Millisecond)
	assert.True(t, ecs.Has[beacon](w, writer), "writer's attach is applied after the tick")
	assert.Equal(t, []string{"activate(unseen)", "step(unseen)=true"}, tr.events)

	tr.reset()
	sys.Update(time.Millisecond)
	assert.Equal(t, []string{"deactivate(unseen)", "activate(seen)", "step(seen)=true"}, tr.events)
}

func TestSystemActivatesLateSpawnedPlansOnce(t *testing.T) {
	tr := &trace{}
	w := ecs.NewWorld()
	builds := 0
	sys := NewSystem(w, nil, beaconSnapshot(&builds), nil)

	parent := w.CreateEntity()
	Attach[snap](w, parent, NewNop[snap]())
	sys.Update(time.Millisecond)

	buf := sys.buf
	child := Spawn[snap](buf, newRecorder(tr, "child"))
	buf.Apply(w, nil)
	require.True(t, ecs.Has[Plan[snap]](w, child))

	for i := 0; i < 4; i++ {
		sys.Update(time.Millisecond)
	}
	p, ok := ecs.Get[Plan[snap]](w, child)
	require.True(t, ok)
	assert.Equal(t, Active, p.State())
	assert.Equal(t, "activate(child)", tr.events[0])
	assert.Len(t, tr.events, 5)
}

func TestSystemDropsPlanOfExternallyDestroyedTarget(t *testing.T) {
	tr := &trace{}
	w := ecs.NewWorld()
	builds := 0
	sys := NewSystem(w, nil, beaconSnapshot(&builds), nil)

	target := w.CreateEntity()
	Attach[snap](w, target, newRecorder(tr, "X"))
	sys.Update(time.Millisecond)

	w.Destroy(target)
	tr.reset()
	sys.Update(time.Millisecond)
	assert.Empty(t, tr.events, "destruction bypasses deactivate")
}

func TestSystemReportsDroppedPlans(t *testing.T) {
	tr := &trace{}
	w := ecs.NewWorld()
	builds := 0
	sys := NewSystem(w, nil, beaconSnapshot(&builds), nil)
	obs := &countingObserver{}
	sys.SetObserver(obs)

	destroyed := w.CreateEntity()
	Attach[snap](w, destroyed, newRecorder(tr, "X"))
	replaced := w.CreateEntity()
	Attach[snap](w, replaced, newRecorder(tr, "Y"))
	sys.Update(time.Millisecond)
	require.Equal(t, 2, obs.activated)
	require.Equal(t, 2, sys.Live())

	w.Destroy(destroyed)
	Attach[snap](w, replaced, newRecorder(tr, "Z"))
	sys.Update(time.Millisecond)

	assert.Equal(t, 3, obs.activated)
	assert.Equal(t, 2, obs.dropped)
	assert.Equal(t, 0, obs.retired)
	assert.Equal(t, 1, sys.Live(), "only the replacement is live")

	sys.Update(time.Millisecond)
	assert.Equal(t, 2, obs.dropped, "a drop is reported once")
}
