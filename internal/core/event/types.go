package event

import "github.com/levelplan/levelplan/internal/core/ecs"

// Result is the terminal outcome of a level.
type Result int

const (
	Victory Result = iota + 1
	Defeat
)

func (r Result) String() string {
	switch r {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// LevelOutcome is the application-terminal signal. Plans and systems emit it;
// the host decides whether to stop.
type LevelOutcome struct {
	Source ecs.EntityID
	Result Result
}

// PlanRetired is emitted when a plan's root finishes and its target is despawned.
type PlanRetired struct {
	Target ecs.EntityID
}
