// Package level is the sample vertical-shooter level: the snapshot its plans
// read, the leaves they use and the plan itself.
package level

import (
	"github.com/levelplan/levelplan/internal/component"
	"github.com/levelplan/levelplan/internal/core/ecs"
)

// DefaultHealth is what the snapshot reports when no player exists.
const DefaultHealth = 4

// Context is the per-tick snapshot. Field tags name the variables visible to
// guard expressions; Fields names the ones passed to Lua.
type Context struct {
	PlayerX      float64 `expr:"player_x"`
	PlayerY      float64 `expr:"player_y"`
	PlayerHealth int     `expr:"player_health"`
	BossAlive    bool    `expr:"boss_alive"`
	BossDefeated bool    `expr:"boss_defeated"`
	Enemies      int     `expr:"enemies"`
	Powerups     int     `expr:"powerups"`
}

// Build reads the snapshot from the world. It never fails: missing data falls
// back to neutral values.
func Build(w *ecs.World) Context {
	ctx := Context{PlayerHealth: DefaultHealth}
	if id, _, ok := ecs.Store[component.Player](w).First(); ok {
		if t, ok := ecs.Get[component.Transform](w, id); ok {
			ctx.PlayerX, ctx.PlayerY = t.X, t.Y
		}
		if h, ok := ecs.Get[component.Health](w, id); ok {
			ctx.PlayerHealth = h.Points
		}
	}
	ctx.BossAlive = ecs.Store[component.Boss](w).Len() > 0
	ctx.BossDefeated = !ctx.BossAlive && ecs.Store[component.BossEngaged](w).Len() > 0
	ctx.Enemies = ecs.Store[component.Enemy](w).Len()
	ctx.Powerups = ecs.Store[component.Powerup](w).Len()
	return ctx
}

// Fields projects the snapshot into a Lua table.
func (c Context) Fields() map[string]any {
	return map[string]any{
		"player_x":      c.PlayerX,
		"player_y":      c.PlayerY,
		"player_health": c.PlayerHealth,
		"boss_alive":    c.BossAlive,
		"boss_defeated": c.BossDefeated,
		"enemies":       c.Enemies,
		"powerups":      c.Powerups,
	}
}

// Distance is how far up the level the player has flown.
func Distance(c Context) float64 { return c.PlayerY }
