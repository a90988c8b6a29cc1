// Package game assembles the shooter: world, event bus, phase runner, the
// plan driver and the systems that play the level out.
package game

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
	coresys "github.com/levelplan/levelplan/internal/core/system"
	"github.com/levelplan/levelplan/internal/level"
	"github.com/levelplan/levelplan/internal/plan"
	"github.com/levelplan/levelplan/internal/scripting"
	"github.com/levelplan/levelplan/internal/system"
)

type Options struct {
	Root   plan.Element[level.Context]
	Bounds component.Bounds
	Speed  float64
	Seed   int64
	Lua    *scripting.Engine // optional
	Plans  plan.Observer     // optional
	Log    *zap.Logger
}

// Game is one level being played.
type Game struct {
	world   *ecs.World
	bus     *event.Bus
	runner  *coresys.Runner
	log     *zap.Logger
	level   ecs.EntityID
	outcome *event.LevelOutcome
	retired bool
}

func New(opts Options) *Game {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		world:  ecs.NewWorld(),
		bus:    event.NewBus(),
		runner: coresys.NewRunner(),
		log:    log,
	}

	event.Subscribe(g.bus, func(o event.LevelOutcome) {
		if g.outcome == nil {
			g.outcome = &o
			g.log.Info("level outcome", zap.Stringer("result", o.Result), zap.Stringer("source", o.Source))
		}
	})
	event.Subscribe(g.bus, func(r event.PlanRetired) {
		if r.Target == g.level {
			g.retired = true
		}
	})

	drive := plan.NewSystem[level.Context](g.world, g.bus, level.Build, log)
	if opts.Plans != nil {
		drive.SetObserver(opts.Plans)
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	bounds := opts.Bounds

	g.runner.Register(system.NewDispatchSystem(g.bus))
	g.runner.Register(drive)
	g.runner.Register(system.NewMovementSystem(g.world, &bounds))
	g.runner.Register(system.NewSpawnerSystem(g.world, &bounds, rng, opts.Lua))
	g.runner.Register(system.NewCollisionSystem(g.world))
	g.runner.Register(system.NewDeathSystem(g.world, g.bus, log))
	g.runner.Register(system.NewFlashSystem(g.world))
	g.runner.Register(system.NewCleanupSystem(g.world))

	level.SpawnPlayer(g.world, opts.Bounds, opts.Speed)
	g.level = level.SpawnLevel(g.world, opts.Root)
	return g
}

func (g *Game) Tick(dt time.Duration) { g.runner.Tick(dt) }

func (g *Game) Ticks() uint64 { return g.runner.Ticks() }

// Outcome is the first level result seen, if any.
func (g *Game) Outcome() (event.Result, bool) {
	if g.outcome == nil {
		return 0, false
	}
	return g.outcome.Result, true
}

// Done reports whether the level has a result or its plan ran out.
func (g *Game) Done() bool { return g.outcome != nil || g.retired }

func (g *Game) World() *ecs.World { return g.world }
