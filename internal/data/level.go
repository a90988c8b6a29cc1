package data

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/levelplan/levelplan/internal/guard"
	"github.com/levelplan/levelplan/internal/plan"
	"github.com/levelplan/levelplan/internal/scripting"
)

var (
	ErrUnknownNode      = errors.New("node has no known kind")
	ErrAmbiguousNode    = errors.New("node has more than one kind")
	ErrEmptySequence    = errors.New("sequence has no elements")
	ErrUnknownComponent = errors.New("unknown component")
	ErrUnknownLeaf      = errors.New("unknown leaf")
	ErrUnknownMeasure   = errors.New("unknown measure")
	ErrMissingCondition = errors.New("guard needs exactly one of when or lua")
)

// Level is one authored level file.
type Level struct {
	Name string `yaml:"name"`
	Plan Node   `yaml:"plan"`
}

// Node is one plan element. Exactly one field may be set.
type Node struct {
	Sequence []Node   `yaml:"sequence"`
	Cycle    []Node   `yaml:"cycle"`
	While    *Guarded `yaml:"while"`
	If       *Branch  `yaml:"if"`
	For      *Bounded `yaml:"for"`
	ForTicks *Counted `yaml:"for_ticks"`
	Set      string   `yaml:"set"`
	Leaf     string   `yaml:"leaf"`
	Nop      bool     `yaml:"nop"`
}

// Guard is an expr-lang expression (when) or a global Lua function name (lua).
type Guard struct {
	When string `yaml:"when"`
	Lua  string `yaml:"lua"`
}

type Guarded struct {
	Guard `yaml:",inline"`
	Do    Node `yaml:"do"`
}

type Branch struct {
	Guard `yaml:",inline"`
	Then  Node  `yaml:"then"`
	Else  *Node `yaml:"else"`
}

type Bounded struct {
	Measure string  `yaml:"measure"`
	Length  float64 `yaml:"length"`
	Do      Node    `yaml:"do"`
}

type Counted struct {
	Count int  `yaml:"count"`
	Do    Node `yaml:"do"`
}

// LoadLevel reads and parses a level file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	lvl, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes a level document. Keys that name no field are errors, so
// a misspelt node kind cannot silently drop part of a plan.
func ParseLevel(raw []byte) (*Level, error) {
	var lvl Level
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&lvl); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &lvl, nil
}

// Catalog binds the names a level file may use to snapshot type T.
type Catalog[T any] struct {
	Components map[string]func() plan.Element[T] // set: <name>
	Leaves     map[string]func() plan.Element[T] // leaf: <name>
	Measures   map[string]plan.Measure[T]        // for: {measure: <name>}
	Lua        *scripting.Engine                 // optional, for lua guards
	Project    func(T) map[string]any            // snapshot → Lua table
	Log        *zap.Logger
}

// CompileLevel turns the level's plan into a fresh element tree. Every call
// yields an independent tree.
func CompileLevel[T any](lvl *Level, cat Catalog[T]) (plan.Element[T], error) {
	if cat.Log == nil {
		cat.Log = zap.NewNop()
	}
	return compile(lvl.Plan, cat, "plan")
}

func (n Node) kinds() int {
	k := 0
	for _, set := range []bool{
		n.Sequence != nil, n.Cycle != nil, n.While != nil, n.If != nil,
		n.For != nil, n.ForTicks != nil, n.Set != "", n.Leaf != "", n.Nop,
	} {
		if set {
			k++
		}
	}
	return k
}

func compile[T any](n Node, cat Catalog[T], path string) (plan.Element[T], error) {
	switch n.kinds() {
	case 0:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownNode)
	case 1:
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrAmbiguousNode)
	}

	switch {
	case n.Sequence != nil:
		children, err := compileList(n.Sequence, cat, path+".sequence")
		if err != nil {
			return nil, err
		}
		return plan.NewSequence(children...), nil

	case n.Cycle != nil:
		children, err := compileList(n.Cycle, cat, path+".cycle")
		if err != nil {
			return nil, err
		}
		return plan.CycleOf(children...), nil

	case n.While != nil:
		cond, err := compileGuard(n.While.Guard, cat, path+".while")
		if err != nil {
			return nil, err
		}
		child, err := compile(n.While.Do, cat, path+".while.do")
		if err != nil {
			return nil, err
		}
		return plan.NewWhile(cond, child), nil

	case n.If != nil:
		cond, err := compileGuard(n.If.Guard, cat, path+".if")
		if err != nil {
			return nil, err
		}
		then, err := compile(n.If.Then, cat, path+".if.then")
		if err != nil {
			return nil, err
		}
		if n.If.Else == nil {
			return plan.NewConditional(cond, then), nil
		}
		els, err := compile(*n.If.Else, cat, path+".if.else")
		if err != nil {
			return nil, err
		}
		return plan.NewIfElse(cond, then, els), nil

	case n.For != nil:
		measure, ok := cat.Measures[n.For.Measure]
		if !ok {
			return nil, fmt.Errorf("%s.for: %w %q", path, ErrUnknownMeasure, n.For.Measure)
		}
		child, err := compile(n.For.Do, cat, path+".for.do")
		if err != nil {
			return nil, err
		}
		return plan.NewFor(measure, n.For.Length, child), nil

	case n.ForTicks != nil:
		child, err := compile(n.ForTicks.Do, cat, path+".for_ticks.do")
		if err != nil {
			return nil, err
		}
		return plan.NewForTicks(n.ForTicks.Count, child), nil

	case n.Set != "":
		mk, ok := cat.Components[n.Set]
		if !ok {
			return nil, fmt.Errorf("%s.set: %w %q", path, ErrUnknownComponent, n.Set)
		}
		return mk(), nil

	case n.Leaf != "":
		mk, ok := cat.Leaves[n.Leaf]
		if !ok {
			return nil, fmt.Errorf("%s.leaf: %w %q", path, ErrUnknownLeaf, n.Leaf)
		}
		return mk(), nil

	default:
		return plan.NewNop[T](), nil
	}
}

func compileList[T any](nodes []Node, cat Catalog[T], path string) ([]plan.Element[T], error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptySequence)
	}
	out := make([]plan.Element[T], 0, len(nodes))
	for i, n := range nodes {
		e, err := compile(n, cat, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func compileGuard[T any](g Guard, cat Catalog[T], path string) (plan.Condition[T], error) {
	switch {
	case (g.When == "") == (g.Lua == ""):
		return nil, fmt.Errorf("%s: %w", path, ErrMissingCondition)
	case g.When != "":
		cond, err := guard.Expr[T](g.When, cat.Log)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cond, nil
	default:
		if cat.Lua == nil || cat.Project == nil {
			return nil, fmt.Errorf("%s: lua guard %q without a scripting engine", path, g.Lua)
		}
		if !cat.Lua.HasFunction(g.Lua) {
			return nil, fmt.Errorf("%s: lua function %q not defined", path, g.Lua)
		}
		return scripting.Condition(cat.Lua, g.Lua, cat.Project), nil
	}
}
