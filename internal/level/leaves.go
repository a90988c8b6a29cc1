package level

import (
	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/core/event"
	"github.com/levelplan/levelplan/internal/plan"
)

// SpawnPowerups drops Count powerups when activated and finishes on its first step.
// They are spawned bare; the placement system gives them a position.
type SpawnPowerups struct {
	plan.Base[Context]
	Count int
}

func (s *SpawnPowerups) Activate(_ ecs.EntityID, buf *command.Buffer, _ Context) {
	for i := 0; i < s.Count; i++ {
		buf.Spawn(command.With(component.Powerup{}))
	}
}

func (s *SpawnPowerups) Step(ecs.EntityID, *command.Buffer, Context) bool { return false }

// SpawnBoss brings in the boss when activated and then holds. The level entity
// is marked engaged so the snapshot can tell a boss not yet placed from a
// defeated one.
type SpawnBoss struct {
	plan.Base[Context]
}

func (s *SpawnBoss) Activate(target ecs.EntityID, buf *command.Buffer, _ Context) {
	buf.Spawn(command.With(component.Boss{}))
	command.Attach(buf, target, component.BossEngaged{})
}

// YouWin signals victory for the level entity.
func YouWin() plan.Element[Context] {
	return plan.NewSignal[Context](func(target ecs.EntityID) event.LevelOutcome {
		return event.LevelOutcome{Source: target, Result: event.Victory}
	})
}
