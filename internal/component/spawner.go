package component

import "time"

// Timer repeats every Period. Elapsed carries over between firings.
type Timer struct {
	Period  time.Duration
	Elapsed time.Duration
}

// DiverSpawner drops enemies from above the player while attached.
type DiverSpawner struct {
	Timer Timer
}

// SwooperSpawner sends enemies across the screen from either side while attached.
type SwooperSpawner struct {
	Timer Timer
}

func NewDiverSpawner() DiverSpawner {
	return DiverSpawner{Timer: Timer{Period: 500 * time.Millisecond}}
}

func NewSwooperSpawner() SwooperSpawner {
	return SwooperSpawner{Timer: Timer{Period: 250 * time.Millisecond}}
}
