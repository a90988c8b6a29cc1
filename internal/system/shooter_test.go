package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
	"github.com/levelplan/levelplan/internal/scripting"
)

var testBounds = component.Bounds{Left: -100, Right: 100, Bottom: 0, Top: 1000}

// freshBounds returns a private copy of testBounds for systems that may move
// the floor.
func freshBounds() *component.Bounds {
	b := testBounds
	return &b
}

func spawnAt(w *ecs.World, x, y float64, hp int) ecs.EntityID {
	id := w.CreateEntity()
	ecs.Insert(w, id, component.Transform{X: x, Y: y})
	ecs.Insert(w, id, component.Size{W: 32, H: 32})
	ecs.Insert(w, id, component.Health{Points: hp})
	return id
}

func TestMovementClampsAndBounces(t *testing.T) {
	w := ecs.NewWorld()
	id := spawnAt(w, 0, 500, 3)
	ecs.Insert(w, id, component.Velocity{X: 1000, Bounces: true})

	NewMovementSystem(w, freshBounds()).Update(100 * time.Millisecond)

	tr, _ := ecs.Get[component.Transform](w, id)
	v, _ := ecs.Get[component.Velocity](w, id)
	h, _ := ecs.Get[component.Health](w, id)
	assert.Equal(t, 84.0, tr.X)
	assert.Equal(t, -1000.0, v.X)
	assert.Equal(t, 2, h.Points)
}

func TestMovementWithoutBounceOnlyClamps(t *testing.T) {
	w := ecs.NewWorld()
	id := spawnAt(w, 0, 990, 4)
	ecs.Insert(w, id, component.Velocity{Y: 500})

	NewMovementSystem(w, freshBounds()).Update(100 * time.Millisecond)

	tr, _ := ecs.Get[component.Transform](w, id)
	v, _ := ecs.Get[component.Velocity](w, id)
	h, _ := ecs.Get[component.Health](w, id)
	assert.Equal(t, 984.0, tr.Y)
	assert.Equal(t, 500.0, v.Y)
	assert.Equal(t, 4, h.Points)
}

func TestFlashBlocksRepeatedDamage(t *testing.T) {
	w := ecs.NewWorld()
	id := spawnAt(w, 0, 0, 4)
	ecs.Insert(w, id, component.HealthFlash{})

	assert.True(t, damage(w, id))
	assert.False(t, damage(w, id))

	flash := NewFlashSystem(w)
	for i := 0; i < FlashTicks; i++ {
		flash.Update(0)
	}
	assert.True(t, damage(w, id))
	h, _ := ecs.Get[component.Health](w, id)
	assert.Equal(t, 2, h.Points)
}

func TestSpawnerFiresOnPeriod(t *testing.T) {
	w := ecs.NewWorld()
	spawner := w.CreateEntity()
	ecs.Insert(w, spawner, component.NewDiverSpawner())
	s := NewSpawnerSystem(w, freshBounds(), rand.New(rand.NewSource(1)), nil)

	s.Update(250 * time.Millisecond)
	assert.Equal(t, 0, ecs.Store[component.Enemy](w).Len())

	s.Update(250 * time.Millisecond)
	require.Equal(t, 1, ecs.Store[component.Enemy](w).Len())

	id, _, _ := ecs.Store[component.Enemy](w).First()
	v, ok := ecs.Get[component.Velocity](w, id)
	require.True(t, ok)
	assert.Less(t, v.Y, 0.0)
	assert.True(t, v.Bounces)

	ecs.Remove[component.DiverSpawner](w, spawner)
	s.Update(time.Second)
	assert.Equal(t, 1, ecs.Store[component.Enemy](w).Len())
}

func TestSpawnerPeriodFromLua(t *testing.T) {
	lua, err := scripting.NewEngine("", zap.NewNop())
	require.NoError(t, err)
	defer lua.Close()
	require.NoError(t, lua.DoString(`function spawn_interval(kind, progress) return 0.1 end`))

	w := ecs.NewWorld()
	spawner := w.CreateEntity()
	ecs.Insert(w, spawner, component.NewSwooperSpawner())
	s := NewSpawnerSystem(w, freshBounds(), rand.New(rand.NewSource(1)), lua)

	s.Update(250 * time.Millisecond)
	sp, _ := ecs.Get[component.SwooperSpawner](w, spawner)
	assert.Equal(t, 100*time.Millisecond, sp.Timer.Period)

	s.Update(100 * time.Millisecond)
	assert.Equal(t, 2, ecs.Store[component.Enemy](w).Len())
}

func TestSpawnerFinishesBareBossAndPowerups(t *testing.T) {
	w := ecs.NewWorld()
	boss := w.CreateEntity()
	ecs.Insert(w, boss, component.Boss{})
	powerup := w.CreateEntity()
	ecs.Insert(w, powerup, component.Powerup{})

	NewSpawnerSystem(w, freshBounds(), rand.New(rand.NewSource(1)), nil).Update(0)

	h, ok := ecs.Get[component.Health](w, boss)
	require.True(t, ok)
	assert.Equal(t, bossHealth, h.Points)
	assert.True(t, ecs.Has[component.Enemy](w, boss))
	assert.True(t, ecs.Has[component.Transform](w, powerup))
	assert.True(t, ecs.Has[component.Size](w, powerup))
	assert.False(t, ecs.Has[component.Enemy](w, powerup))
}

func TestBossPlacementLocksArena(t *testing.T) {
	w := ecs.NewWorld()
	player := spawnAt(w, 0, 400, 4)
	ecs.Insert(w, player, component.Player{})
	straggler := spawnAt(w, 0, 200, 3)
	ecs.Insert(w, straggler, component.Velocity{Bounces: true})

	bounds := freshBounds()
	spawner := NewSpawnerSystem(w, bounds, rand.New(rand.NewSource(1)), nil)
	move := NewMovementSystem(w, bounds)

	spawner.Update(0)
	assert.Equal(t, testBounds.Bottom, bounds.Bottom, "no boss, no lock")

	boss := w.CreateEntity()
	ecs.Insert(w, boss, component.Boss{})
	spawner.Update(0)
	floor := 400 - ViewHalfHeight + arenaFloor
	assert.Equal(t, floor, bounds.Bottom)

	move.Update(0)
	tr, _ := ecs.Get[component.Transform](w, straggler)
	assert.Equal(t, floor+16, tr.Y, "movement clamps to the raised floor")
	h, _ := ecs.Get[component.Health](w, straggler)
	assert.Equal(t, 2, h.Points)
	tr, _ = ecs.Get[component.Transform](w, player)
	assert.Equal(t, 400.0, tr.Y)

	ecs.Insert(w, player, component.Transform{Y: 100})
	second := w.CreateEntity()
	ecs.Insert(w, second, component.Boss{})
	spawner.Update(0)
	assert.Equal(t, floor, bounds.Bottom, "the floor never drops")
}

func TestArenaFloorStaysBelowBoss(t *testing.T) {
	w := ecs.NewWorld()
	player := spawnAt(w, 0, testBounds.Top, 4)
	ecs.Insert(w, player, component.Player{})
	boss := w.CreateEntity()
	ecs.Insert(w, boss, component.Boss{})

	bounds := freshBounds()
	NewSpawnerSystem(w, bounds, rand.New(rand.NewSource(1)), nil).Update(0)

	tr, ok := ecs.Get[component.Transform](w, boss)
	require.True(t, ok)
	assert.Equal(t, testBounds.Top-2*bossSize, bounds.Bottom)
	assert.Less(t, bounds.Bottom+bossSize/2, tr.Y)
}

func TestCollisionHurtsBothAndHeals(t *testing.T) {
	w := ecs.NewWorld()
	player := spawnAt(w, 0, 0, 2)
	ecs.Insert(w, player, component.Player{})
	ecs.Insert(w, player, component.HealthFlash{})

	enemy := spawnAt(w, 10, 0, 1)
	ecs.Insert(w, enemy, component.Enemy{})
	far := spawnAt(w, 90, 0, 1)
	ecs.Insert(w, far, component.Enemy{})

	c := NewCollisionSystem(w)
	c.Update(0)

	h, _ := ecs.Get[component.Health](w, player)
	assert.Equal(t, 1, h.Points)
	eh, _ := ecs.Get[component.Health](w, enemy)
	assert.Equal(t, 0, eh.Points)
	fh, _ := ecs.Get[component.Health](w, far)
	assert.Equal(t, 1, fh.Points)

	powerup := w.CreateEntity()
	ecs.Insert(w, powerup, component.Powerup{})
	ecs.Insert(w, powerup, component.Transform{X: -5, Y: 5})
	ecs.Insert(w, powerup, component.Size{W: 32, H: 32})
	ecs.Remove[component.Enemy](w, enemy)

	c.Update(0)
	w.FlushDestroyQueue()
	assert.Equal(t, 2, h.Points)
	assert.False(t, w.Alive(powerup))
}

func TestDeathOfPlayerIsDefeat(t *testing.T) {
	w := ecs.NewWorld()
	bus := event.NewBus()
	var outcomes []event.LevelOutcome
	event.Subscribe(bus, func(o event.LevelOutcome) { outcomes = append(outcomes, o) })

	player := spawnAt(w, 0, 0, 0)
	ecs.Insert(w, player, component.Player{})
	enemy := spawnAt(w, 50, 0, 0)
	ecs.Insert(w, enemy, component.Enemy{})
	alive := spawnAt(w, 50, 50, 1)

	NewDeathSystem(w, bus, zap.NewNop()).Update(0)

	assert.False(t, w.Alive(player))
	assert.False(t, w.Alive(enemy))
	assert.True(t, w.Alive(alive))

	bus.SwapBuffers()
	bus.DispatchAll()
	require.Len(t, outcomes, 1)
	assert.Equal(t, event.Defeat, outcomes[0].Result)
	assert.Equal(t, player, outcomes[0].Source)
}
