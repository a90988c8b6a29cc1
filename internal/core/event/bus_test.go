package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []Result
	Subscribe(b, func(ev LevelOutcome) { got = append(got, ev.Result) })

	Emit(b, LevelOutcome{Result: Victory})
	Emit(b, LevelOutcome{Result: Defeat})
	assert.Equal(t, 2, b.Pending())

	b.DispatchAll()
	assert.Empty(t, got, "events are not visible in the tick they were emitted")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []Result{Victory, Defeat}, got)
	assert.Equal(t, 0, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 2, "front buffer is cleared after the next swap")
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "victory", Victory.String())
	assert.Equal(t, "defeat", Defeat.String())
	assert.Equal(t, "unknown", Result(0).String())
}
