package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelplan/levelplan/internal/core/command"
	"github.com/levelplan/levelplan/internal/core/ecs"
	"github.com/levelplan/levelplan/internal/plan"
	"github.com/levelplan/levelplan/internal/scripting"
)

type snapshot struct {
	Distance float64 `expr:"distance"`
	Alarm    bool    `expr:"alarm"`
}

type siren struct{}
type lights struct{}

func catalog() Catalog[snapshot] {
	return Catalog[snapshot]{
		Components: map[string]func() plan.Element[snapshot]{
			"siren":  func() plan.Element[snapshot] { return plan.NewSetComponent[snapshot](siren{}) },
			"lights": func() plan.Element[snapshot] { return plan.NewSetComponent[snapshot](lights{}) },
		},
		Leaves: map[string]func() plan.Element[snapshot]{
			"wait": func() plan.Element[snapshot] { return plan.NewNop[snapshot]() },
		},
		Measures: map[string]plan.Measure[snapshot]{
			"distance": func(s snapshot) float64 { return s.Distance },
		},
		Project: func(s snapshot) map[string]any {
			return map[string]any{"alarm": s.Alarm, "distance": s.Distance}
		},
	}
}

const patrol = `
name: patrol
plan:
  sequence:
    - for:
        measure: distance
        length: 100
        do:
          cycle:
            - for_ticks: {count: 1, do: {set: siren}}
            - for_ticks: {count: 1, do: {set: lights}}
    - if:
        when: alarm
        then: {set: siren}
        else: {leaf: wait}
`

type runner struct {
	world  *ecs.World
	buf    *command.Buffer
	target ecs.EntityID
	p      plan.Plan[snapshot]
}

func newRunner(t *testing.T, root plan.Element[snapshot]) *runner {
	t.Helper()
	w := ecs.NewWorld()
	return &runner{world: w, buf: command.NewBuffer(w), target: w.CreateEntity(), p: plan.New(root)}
}

func (r *runner) tick(s snapshot) bool {
	alive := r.p.Tick(r.target, r.buf, s)
	r.buf.Apply(r.world, nil)
	return alive
}

func TestCompileLevelDrivesComponents(t *testing.T) {
	lvl, err := ParseLevel([]byte(patrol))
	require.NoError(t, err)
	assert.Equal(t, "patrol", lvl.Name)

	root, err := CompileLevel(lvl, catalog())
	require.NoError(t, err)
	r := newRunner(t, root)

	require.True(t, r.tick(snapshot{Distance: 0}))
	assert.True(t, ecs.Has[siren](r.world, r.target))

	require.True(t, r.tick(snapshot{Distance: 10}))
	assert.False(t, ecs.Has[siren](r.world, r.target))
	assert.True(t, ecs.Has[lights](r.world, r.target))

	require.True(t, r.tick(snapshot{Distance: 20}))
	assert.False(t, ecs.Has[siren](r.world, r.target), "lights get their one step")
	assert.True(t, ecs.Has[lights](r.world, r.target))

	require.True(t, r.tick(snapshot{Distance: 30}))
	assert.True(t, ecs.Has[siren](r.world, r.target), "cycle restarts")
	assert.False(t, ecs.Has[lights](r.world, r.target))

	require.True(t, r.tick(snapshot{Distance: 100}))
	assert.False(t, ecs.Has[siren](r.world, r.target), "leaving the cycle detaches its component")
	assert.False(t, ecs.Has[lights](r.world, r.target))

	require.True(t, r.tick(snapshot{Distance: 110}))
	assert.False(t, ecs.Has[siren](r.world, r.target))

	require.True(t, r.tick(snapshot{Distance: 120, Alarm: true}))
	assert.True(t, ecs.Has[siren](r.world, r.target))
}

func TestCompileLevelTreesAreIndependent(t *testing.T) {
	lvl, err := ParseLevel([]byte(patrol))
	require.NoError(t, err)
	a, err := CompileLevel(lvl, catalog())
	require.NoError(t, err)
	b, err := CompileLevel(lvl, catalog())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestCompileLuaGuard(t *testing.T) {
	e, err := scripting.NewEngine("", nil)
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.DoString(`function far(ctx) return ctx.distance > 50 end`))

	cat := catalog()
	cat.Lua = e
	lvl, err := ParseLevel([]byte(`
plan:
  while:
    lua: far
    do: {set: lights}
`))
	require.NoError(t, err)
	root, err := CompileLevel(lvl, cat)
	require.NoError(t, err)

	r := newRunner(t, root)
	assert.True(t, r.tick(snapshot{Distance: 60}))
	assert.True(t, ecs.Has[lights](r.world, r.target))
	assert.False(t, r.tick(snapshot{Distance: 10}))
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		node Node
		want error
	}{
		{"empty node", Node{}, ErrUnknownNode},
		{"two kinds", Node{Set: "siren", Nop: true}, ErrAmbiguousNode},
		{"empty sequence", Node{Sequence: []Node{}}, ErrEmptySequence},
		{"unknown component", Node{Set: "horn"}, ErrUnknownComponent},
		{"unknown leaf", Node{Leaf: "dance"}, ErrUnknownLeaf},
		{"unknown measure", Node{For: &Bounded{Measure: "time", Length: 1, Do: Node{Nop: true}}}, ErrUnknownMeasure},
		{"guard without condition", Node{While: &Guarded{Do: Node{Nop: true}}}, ErrMissingCondition},
		{"guard with both", Node{If: &Branch{Guard: Guard{When: "alarm", Lua: "far"}, Then: Node{Nop: true}}}, ErrMissingCondition},
		{"nested", Node{Cycle: []Node{{Nop: true}, {Leaf: "dance"}}}, ErrUnknownLeaf},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileLevel(&Level{Plan: tc.node}, catalog())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseLevelRejectsUnknownKeys(t *testing.T) {
	cases := map[string]string{
		"misspelt kind beside a valid one": `
plan:
  sequence: [{nop: true}]
  whlie: {when: alarm, do: {nop: true}}
`,
		"unknown field in a node body": `
plan:
  for_ticks: {count: 3, do: {nop: true}, dooo: 1}
`,
		"unknown top-level key": `
name: patrol
plna: {nop: true}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLevel([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := ParseLevel([]byte("plan:\n  if: {when: alarm, then: {nop: true}}\n"))
	assert.NoError(t, err, "inline guard keys are known")
}

func TestParseLevelEmptyDocument(t *testing.T) {
	lvl, err := ParseLevel(nil)
	require.NoError(t, err)
	_, err = CompileLevel(lvl, catalog())
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestCompileRejectsBadExpressionAndMissingLua(t *testing.T) {
	_, err := CompileLevel(&Level{Plan: Node{While: &Guarded{Guard: Guard{When: "alarm &&"}, Do: Node{Nop: true}}}}, catalog())
	assert.Error(t, err)

	_, err = CompileLevel(&Level{Plan: Node{While: &Guarded{Guard: Guard{Lua: "far"}, Do: Node{Nop: true}}}}, catalog())
	assert.ErrorContains(t, err, "without a scripting engine")
}

func TestLoadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(patrol), 0o644))
	lvl, err := LoadLevel(path)
	require.NoError(t, err)
	assert.Len(t, lvl.Plan.Sequence, 2)

	_, err = LoadLevel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("plan: [unterminated"), 0o644))
	_, err = LoadLevel(bad)
	assert.Error(t, err)
}
