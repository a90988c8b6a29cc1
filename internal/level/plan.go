package level

import (
	_ "embed"

	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/data"
	"github.com/levelplan/levelplan/internal/guard"
	"github.com/levelplan/levelplan/internal/plan"
	"github.com/levelplan/levelplan/internal/scripting"
)

// Stretch lengths, in world units of player travel.
const (
	SpawnerLeg = 500.0
	Breather   = 1000.0
	BossRunway = 1800.0
)

//go:embed levels/shooter.yaml
var defaultLevel []byte

// DefaultLevel is the embedded level file equivalent to MakePlan(5000).
func DefaultLevel() (*data.Level, error) {
	return data.ParseLevel(defaultLevel)
}

// MakePlan builds the shooter plan for a level of the given length:
// alternate diver and swooper waves until the boss runway, a breather, a
// powerup drop for a hurt player, the boss fight, then victory.
func MakePlan(length float64) plan.Element[Context] {
	return plan.NewSequence[Context](
		plan.NewFor[Context](Distance, length-BossRunway,
			plan.CycleOf[Context](
				plan.NewFor[Context](Distance, SpawnerLeg,
					plan.NewSetComponent[Context](component.NewDiverSpawner())),
				plan.NewFor[Context](Distance, SpawnerLeg,
					plan.NewSetComponent[Context](component.NewSwooperSpawner())),
			),
		),
		plan.NewFor[Context](Distance, Breather, plan.NewNop[Context]()),
		plan.NewConditional[Context](guard.MustExpr[Context]("player_health < 4"),
			&SpawnPowerups{Count: 3}),
		plan.NewWhile[Context](func(c Context) bool { return !c.BossDefeated },
			&SpawnBoss{}),
		YouWin(),
	)
}

// Catalog exposes the shooter's components, leaves and measures to level files.
// lua may be nil when no scripts are loaded.
func Catalog(lua *scripting.Engine, log *zap.Logger) data.Catalog[Context] {
	return data.Catalog[Context]{
		Components: map[string]func() plan.Element[Context]{
			"diver_spawner": func() plan.Element[Context] {
				return plan.NewSetComponent[Context](component.NewDiverSpawner())
			},
			"swooper_spawner": func() plan.Element[Context] {
				return plan.NewSetComponent[Context](component.NewSwooperSpawner())
			},
		},
		Leaves: map[string]func() plan.Element[Context]{
			"spawn_powerups": func() plan.Element[Context] { return &SpawnPowerups{Count: 3} },
			"spawn_boss":     func() plan.Element[Context] { return &SpawnBoss{} },
			"you_win":        YouWin,
		},
		Measures: map[string]plan.Measure[Context]{
			"distance": Distance,
		},
		Lua:     lua,
		Project: Context.Fields,
		Log:     log,
	}
}
