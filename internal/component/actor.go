package component

// Markers. Pure data, zero methods: all behaviour lives in systems.

type Player struct{}

type Enemy struct{}

type Boss struct{}

type Powerup struct{}

// BossEngaged marks a level entity whose plan has called in the boss.
type BossEngaged struct{}

// Transform is a world position. Y grows toward the end of the level.
type Transform struct {
	X, Y float64
}

// Size is an axis-aligned box centred on Transform.
type Size struct {
	W, H float64
}

// Velocity is in world units per second. Bouncing entities reflect off the
// level bounds and lose a health point on each bounce.
type Velocity struct {
	X, Y    float64
	Bounces bool
}

type Health struct {
	Points int
}

// HealthFlash counts down invulnerability ticks after a hit.
type HealthFlash struct {
	Ticks int
}

// Bounds is the playable rectangle of the level.
type Bounds struct {
	Left, Right, Bottom, Top float64
}
