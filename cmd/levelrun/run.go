package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/levelplan/levelplan/internal/config"
	"github.com/levelplan/levelplan/internal/data"
	"github.com/levelplan/levelplan/internal/game"
	"github.com/levelplan/levelplan/internal/level"
	"github.com/levelplan/levelplan/internal/metrics"
	"github.com/levelplan/levelplan/internal/persist"
	"github.com/levelplan/levelplan/internal/plan"
	"github.com/levelplan/levelplan/internal/scripting"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a level until it ends",
	Long: `Plays the built-in shooter level, or the level file given with --level,
with an autopilot player until the level reports victory or defeat.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("level") {
			cfg.Level.File, _ = cmd.Flags().GetString("level")
		}
		if cmd.Flags().Changed("max-ticks") {
			cfg.Loop.MaxTicks, _ = cmd.Flags().GetInt("max-ticks")
		}
		if cmd.Flags().Changed("seed") {
			cfg.Level.Seed, _ = cmd.Flags().GetInt64("seed")
		}
		fast, _ := cmd.Flags().GetBool("fast")
		return runLevel(cmd.Context(), cfg, fast)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("level", "", "level file to play instead of the built-in plan")
	runCmd.Flags().Int("max-ticks", 0, "stop after this many ticks (0: no limit)")
	runCmd.Flags().Int64("seed", 0, "random seed (0: from the clock)")
	runCmd.Flags().Bool("fast", false, "tick as fast as possible instead of at tick_rate")
}

func runLevel(parent context.Context, cfg *config.Config, fast bool) error {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	plans := metrics.NewPlans(reg)
	metrics.Serve(ctx, cfg.Metrics.Addr, reg, log)

	lua, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()

	name, root, err := loadRoot(cfg, lua, log)
	if err != nil {
		return err
	}

	seed := cfg.Level.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.New()
	log = log.With(zap.Stringer("run", runID), zap.String("level", name))

	var journal *persist.RunRepo
	if cfg.Database.Enabled {
		db, err := connect(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()
		journal = persist.NewRunRepo(db)
		if err := journal.Start(ctx, runID, name, seed); err != nil {
			return err
		}
	}

	g := game.New(game.Options{
		Root:   root,
		Bounds: level.Bounds(cfg.Level.Width, cfg.Level.Length),
		Speed:  cfg.Level.Speed,
		Seed:   seed,
		Lua:    lua,
		Plans:  plans,
		Log:    log,
	})
	log.Info("level started", zap.Int64("seed", seed), zap.Duration("tick_rate", cfg.Loop.TickRate))

	outcome := play(ctx, g, cfg.Loop, fast)
	if result, ok := g.Outcome(); ok {
		plans.ObserveOutcome(result)
	}
	log.Info("level finished", zap.String("outcome", outcome), zap.Uint64("ticks", g.Ticks()))

	if journal != nil {
		finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := journal.Finish(finishCtx, runID, outcome, g.Ticks()); err != nil {
			return err
		}
	}
	return nil
}

// play ticks g until it is done, the tick limit is hit or ctx ends, and names
// how the run ended.
func play(ctx context.Context, g *game.Game, loop config.LoopConfig, fast bool) string {
	var tick <-chan time.Time
	if !fast {
		ticker := time.NewTicker(loop.TickRate)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if fast {
			select {
			case <-ctx.Done():
				return persist.OutcomeAborted
			default:
			}
		} else {
			select {
			case <-ctx.Done():
				return persist.OutcomeAborted
			case <-tick:
			}
		}

		g.Tick(loop.TickRate)
		if g.Done() {
			if result, ok := g.Outcome(); ok {
				return result.String()
			}
			return persist.OutcomeRetired
		}
		if loop.MaxTicks > 0 && g.Ticks() >= uint64(loop.MaxTicks) {
			return persist.OutcomeTimeout
		}
	}
}

func loadRoot(cfg *config.Config, lua *scripting.Engine, log *zap.Logger) (string, plan.Element[level.Context], error) {
	if cfg.Level.File == "" {
		return cfg.Level.Name, level.MakePlan(cfg.Level.Length), nil
	}
	lvl, err := data.LoadLevel(cfg.Level.File)
	if err != nil {
		return "", nil, err
	}
	root, err := data.CompileLevel(lvl, level.Catalog(lua, log))
	if err != nil {
		return "", nil, err
	}
	log.Info("level file loaded", zap.String("file", cfg.Level.File), zap.String("name", lvl.Name))
	return lvl.Name, root, nil
}

func connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*persist.Journal, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	j, err := persist.OpenJournal(connectCtx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return j, nil
}
