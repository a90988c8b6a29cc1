package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/plan"
)

// Engine wraps a single gopher-lua VM. Single-goroutine access only: guards
// and tuning hooks run inside the tick.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a VM and loads every .lua file in scriptsDir in name order.
// A missing directory yields an empty engine.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(scriptsDir); err != nil {
		e.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk, typically to define functions.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// HasFunction reports whether a global function name is defined.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) table(fields map[string]any) *lua.LTable {
	t := e.vm.NewTable()
	for k, v := range fields {
		t.RawSetString(k, toLValue(v))
	}
	return t
}

func toLValue(v any) lua.LValue {
	switch x := v.(type) {
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int32:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint32:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	default:
		return lua.LNil
	}
}

// call invokes a global function with args and returns its single result.
func (e *Engine) call(name string, args ...lua.LValue) (lua.LValue, error) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil, fmt.Errorf("lua function %s not found", name)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return nil, err
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, nil
}

// Condition adapts the global Lua function fn into a plan guard. project turns
// the snapshot into the table fn receives. Missing functions and runtime
// errors are logged and read as false.
func Condition[T any](e *Engine, fn string, project func(T) map[string]any) plan.Condition[T] {
	return func(ctx T) bool {
		ret, err := e.call(fn, e.table(project(ctx)))
		if err != nil {
			e.log.Error("lua guard error", zap.String("fn", fn), zap.Error(err))
			return false
		}
		return lua.LVAsBool(ret)
	}
}

// SpawnInterval asks spawn_interval(kind, progress) for a spawner period in
// seconds. Without the hook, or on a bad answer, fallback is returned.
func (e *Engine) SpawnInterval(kind string, progress float64, fallback time.Duration) time.Duration {
	if !e.HasFunction("spawn_interval") {
		return fallback
	}
	ret, err := e.call("spawn_interval", lua.LString(kind), lua.LNumber(progress))
	if err != nil {
		e.log.Error("lua spawn_interval error", zap.Error(err))
		return fallback
	}
	secs, ok := ret.(lua.LNumber)
	if !ok || secs <= 0 {
		return fallback
	}
	return time.Duration(float64(secs) * float64(time.Second))
}

func (e *Engine) Close() {
	e.vm.Close()
}
