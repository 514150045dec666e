package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crowdclash/server/internal/config"
	"github.com/crowdclash/server/internal/data"
	"github.com/crowdclash/server/internal/game"
	"github.com/crowdclash/server/internal/observer"
	"github.com/crowdclash/server/internal/persist"
	"github.com/crowdclash/server/internal/trace"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(scenario string, match uuid.UUID) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             crowdclash  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscenario:\033[0m %s \033[90m(match %s)\033[0m\n\n", scenario, match)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value string) {
	dotsLen := 42 - len(label) - len(value)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Match setup and loop ───────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load scenario
	sc, err := data.LoadScenario(cfg.Simulation.Scenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	match := uuid.New()
	seed := game.Seed(cfg.Simulation)

	printBanner(sc.Name, match)
	printSection("scenario")
	printStat("teams", humanize.Comma(int64(len(sc.Teams))))
	printStat("leaders", humanize.Comma(int64(len(sc.Leaders))))
	printStat("spawn points", humanize.Comma(int64(len(sc.SpawnPoints))))
	for _, c := range cfg.Pool.Categories {
		printStat("pool "+c.Name, humanize.Comma(int64(c.Capacity)))
	}
	printStat("seed", fmt.Sprintf("%d", seed))
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)
	go func() {
		select {
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	opts := game.Options{Match: match, Seed: seed}
	printSection("outputs")

	// 4. Optional battle journal
	var journal *persist.JournalRepo
	if cfg.Journal.DSN != "" {
		dbCtx, dbCancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Journal, log)
		if err != nil {
			dbCancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(dbCtx, db.Pool); err != nil {
			dbCancel()
			return fmt.Errorf("migrations: %w", err)
		}
		journal = persist.NewJournalRepo(db)
		if err := journal.StartMatch(dbCtx, match, sc.Name, seed); err != nil {
			dbCancel()
			return fmt.Errorf("start match: %w", err)
		}
		dbCancel()
		opts.Journal = journal
		printOK("battle journal connected")
	}

	// 5. Optional event trace
	if cfg.Trace.Path != "" {
		path := strings.ReplaceAll(cfg.Trace.Path, "{match}", match.String())
		tw, err := trace.NewWriter(path, trace.Header{
			Match:    match.String(),
			Scenario: sc.Name,
			Seed:     seed,
			Started:  time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("trace: %w", err)
		}
		defer func() {
			if err := tw.Close(); err != nil {
				log.Error("close trace", zap.Error(err))
				return
			}
			size := "?"
			if fi, err := os.Stat(tw.Path()); err == nil {
				size = humanize.Bytes(uint64(fi.Size()))
			}
			log.Info("trace written", zap.String("path", tw.Path()),
				zap.Int("records", tw.Records()), zap.String("size", size))
		}()
		opts.Trace = tw
		printOK("event trace: " + path)
	}

	// 6. Optional spectator feed
	var observerDone chan error
	if cfg.Observer.Enabled {
		srv := observer.NewServer(cfg.Observer.BindAddress, log)
		observerDone = make(chan error, 1)
		go func() { observerDone <- srv.Serve(ctx) }()
		opts.Publisher = srv
		printOK("observer feed on " + cfg.Observer.BindAddress)
	}
	fmt.Println()

	// 7. Assemble and run the match
	g, err := game.New(cfg, sc, opts, log)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	defer g.Close()

	printSection("match")
	if cfg.Simulation.Realtime {
		printReady(fmt.Sprintf("realtime loop (tick: %s)", cfg.Simulation.TickRate))
	} else {
		printReady("headless loop")
	}
	fmt.Println()

	runErr := g.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run: %w", runErr)
	}
	summary := g.Summary()
	fmt.Println()
	fmt.Print(summary.String())

	if journal != nil {
		finishCtx, finishCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer finishCancel()
		if err := journal.FinishMatch(finishCtx, match, summary.Ticks, summary.Winner); err != nil {
			log.Error("finish match", zap.Error(err))
		}
	}

	cancel()
	if observerDone != nil {
		if err := <-observerDone; err != nil {
			log.Error("observer stopped", zap.Error(err))
		}
	}
	log.Info("match stopped", zap.Uint64("ticks", summary.Ticks), zap.String("winner", summary.Winner))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
