package system

import (
	"math/rand"
	"time"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
	coresys "github.com/levelplan/levelplan/internal/core/system"
	"github.com/levelplan/levelplan/internal/scripting"
)

const (
	// ViewHalfHeight is half the visible band around the player.
	ViewHalfHeight = 300.0
	enemySize      = 32.0
	enemySpeed     = 500.0
	bossSize       = 128.0
	bossSpeed      = 300.0
	bossHealth     = 10
	// arenaFloor is how far above the bottom of the view the floor rises
	// once a boss is placed.
	arenaFloor = 232.0
)

// SpawnerSystem runs the spawner components the level plan attaches, and
// finishes bosses and powerups that plans spawn without a body.
// Phase 2 (Update).
//
// Placing a boss raises the level floor to just below the visible band, so the
// player cannot retreat out of the fight. The bounds are shared with
// MovementSystem, which clamps against the raised floor from then on.
//
// Spawner periods come from the component defaults unless the Lua hook
// spawn_interval(kind, progress) answers with a positive number of seconds.
type SpawnerSystem struct {
	world  *ecs.World
	bounds *component.Bounds
	rng    *rand.Rand
	lua    *scripting.Engine
	buf    *command.Buffer
}

// NewSpawnerSystem; lua may be nil.
func NewSpawnerSystem(world *ecs.World, bounds *component.Bounds, rng *rand.Rand, lua *scripting.Engine) *SpawnerSystem {
	return &SpawnerSystem{
		world:  world,
		bounds: bounds,
		rng:    rng,
		lua:    lua,
		buf:    command.NewBuffer(world),
	}
}

func (s *SpawnerSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnerSystem) Update(dt time.Duration) {
	py := s.playerY()
	progress := 0.0
	if span := s.bounds.Top - s.bounds.Bottom; span > 0 {
		progress = (py - s.bounds.Bottom) / span
	}

	for _, id := range ecs.Store[component.DiverSpawner](s.world).IDs() {
		sp, _ := ecs.Get[component.DiverSpawner](s.world, id)
		if s.fire(&sp.Timer, dt, "diver", component.NewDiverSpawner().Timer.Period, progress) {
			s.spawnDiver(py)
		}
	}
	for _, id := range ecs.Store[component.SwooperSpawner](s.world).IDs() {
		sp, _ := ecs.Get[component.SwooperSpawner](s.world, id)
		if s.fire(&sp.Timer, dt, "swooper", component.NewSwooperSpawner().Timer.Period, progress) {
			s.spawnSwooper(py)
		}
	}

	for _, id := range ecs.Without(ecs.Store[component.Boss](s.world), ecs.Store[component.Transform](s.world)) {
		command.Attach(s.buf, id, component.Transform{X: 0, Y: s.bounds.Top - bossSize})
		command.Attach(s.buf, id, component.Size{W: bossSize, H: bossSize})
		command.Attach(s.buf, id, component.Velocity{X: bossSpeed, Y: -bossSpeed, Bounces: true})
		command.Attach(s.buf, id, component.Health{Points: bossHealth})
		command.Attach(s.buf, id, component.HealthFlash{})
		command.Attach(s.buf, id, component.Enemy{})
		s.lockArena(py)
	}
	for _, id := range ecs.Without(ecs.Store[component.Powerup](s.world), ecs.Store[component.Transform](s.world)) {
		command.Attach(s.buf, id, component.Transform{
			X: s.between(s.bounds.Left+enemySize/2, s.bounds.Right-enemySize/2),
			Y: s.between(py-ViewHalfHeight, py+ViewHalfHeight),
		})
		command.Attach(s.buf, id, component.Size{W: enemySize, H: enemySize})
	}

	s.buf.Apply(s.world, nil)
}

// lockArena raises the floor under the player's view. It never lowers the floor
// and never lifts it past the boss.
func (s *SpawnerSystem) lockArena(py float64) {
	floor := py - ViewHalfHeight + arenaFloor
	if limit := s.bounds.Top - 2*bossSize; floor > limit {
		floor = limit
	}
	if floor > s.bounds.Bottom {
		s.bounds.Bottom = floor
	}
}

// fire advances t and reports whether it elapsed this tick.
func (s *SpawnerSystem) fire(t *component.Timer, dt time.Duration, kind string, base time.Duration, progress float64) bool {
	if t.Period <= 0 {
		return false
	}
	t.Elapsed += dt
	if t.Elapsed < t.Period {
		return false
	}
	t.Elapsed -= t.Period
	if s.lua != nil {
		t.Period = s.lua.SpawnInterval(kind, progress, base)
	}
	return true
}

func (s *SpawnerSystem) spawnDiver(py float64) {
	y := py + ViewHalfHeight + 50
	if limit := s.bounds.Top - enemySize/2; y > limit {
		y = limit
	}
	s.spawnEnemy(
		component.Transform{X: s.between(s.bounds.Left+enemySize/2, s.bounds.Right-enemySize/2), Y: y},
		component.Velocity{Y: -enemySpeed, Bounces: true},
	)
}

func (s *SpawnerSystem) spawnSwooper(py float64) {
	x, vx := s.bounds.Right-enemySize/2, -enemySpeed
	if s.rng.Intn(2) == 0 {
		x, vx = s.bounds.Left+enemySize/2, enemySpeed
	}
	y := s.between(py-ViewHalfHeight+enemySize/2, py+ViewHalfHeight-enemySize/2)
	s.spawnEnemy(component.Transform{X: x, Y: y}, component.Velocity{X: vx, Bounces: true})
}

func (s *SpawnerSystem) spawnEnemy(t component.Transform, v component.Velocity) {
	s.buf.Spawn(
		command.With(component.Enemy{}),
		command.With(t),
		command.With(v),
		command.With(component.Size{W: enemySize, H: enemySize}),
		command.With(component.Health{Points: 1}),
	)
}

func (s *SpawnerSystem) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *SpawnerSystem) playerY() float64 {
	if id, _, ok := ecs.Store[component.Player](s.world).First(); ok {
		if t, ok := ecs.Get[component.Transform](s.world, id); ok {
			return t.Y
		}
	}
	return s.bounds.Bottom
}
