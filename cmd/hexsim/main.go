// Command hexsim runs a headless skirmish on a hex battlefield: two scripted
// teams select, hover, and order exactly as a player would.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hex-tactics/internal/catalog"
	"github.com/talgya/hex-tactics/internal/engine"
	"github.com/talgya/hex-tactics/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dbPath := envOrDefault("HEXSIM_DB", "data/levels.db")
	levelName := envOrDefault("HEXSIM_LEVEL", "skirmish")
	seed := int64(envIntOrDefault("HEXSIM_SEED", 42))
	radius := envIntOrDefault("HEXSIM_RADIUS", 10)
	maxTicks := envIntOrDefault("HEXSIM_TICKS", 2000)
	unitsPerTeam := envIntOrDefault("HEXSIM_UNITS", 3)
	intervalMS := envIntOrDefault("HEXSIM_INTERVAL_MS", 0)

	// ── Level catalog ────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		slog.Error("failed to create data directory", "path", dbPath, "error", err)
		os.Exit(1)
	}
	cat, err := catalog.Open(dbPath)
	if err != nil {
		slog.Error("failed to open level catalog", "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	var level *world.Map
	if cat.HasLevel(levelName) {
		level, err = cat.LoadLevel(levelName)
		if err != nil {
			slog.Error("failed to load level", "level", levelName, "error", err)
			os.Exit(1)
		}
		slog.Info("level loaded", "level", levelName, "map", level.String())
	} else {
		cfg := world.DefaultGenConfig()
		cfg.Seed = seed
		cfg.Radius = radius
		level = world.Generate(cfg)
		if err := cat.SaveLevel(levelName, level.Seed, level); err != nil {
			slog.Error("failed to save level", "level", levelName, "error", err)
			os.Exit(1)
		}
		slog.Info("level generated", "level", levelName, "seed", level.Seed, "map", level.String())
	}

	for t, c := range world.TerrainCounts(level) {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}

	// ── Battle ───────────────────────────────────────────────────────
	battle, err := engine.NewBattle(level, engine.DefaultBattleConfig())
	if err != nil {
		slog.Error("failed to build battle", "error", err)
		os.Exit(1)
	}

	anchors := world.DeploymentAnchors(level.Radius)
	for i, team := range []engine.Team{engine.TeamWest, engine.TeamEast} {
		for n := 0; n < unitsPerTeam; n++ {
			if _, err := battle.SpawnNear(team, anchors[i], level.Radius); err != nil {
				slog.Error("failed to deploy unit", "team", team, "error", err)
				os.Exit(1)
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewEngine()
	eng.Interval = time.Duration(intervalMS) * time.Millisecond
	eng.MaxTicks = uint64(maxTicks)

	var cmdr engine.Commander
	quietTurns := 0

	playTurn := func() {
		issued, err := cmdr.PlayTurn(battle)
		if err != nil {
			slog.Error("turn failed", "error", err)
			eng.Stop()
			return
		}
		if issued == 0 {
			quietTurns++
		} else {
			quietTurns = 0
		}
	}

	eng.OnTick = func(tick uint64) {
		if err := battle.Step(ctx, tick); err != nil {
			slog.Error("step failed", "tick", tick, "error", err)
			eng.Stop()
			return
		}
		if winner, ok := battle.Winner(); ok {
			slog.Info("battle decided", "winner", winner, "clock", engine.BattleClock(tick))
			eng.Stop()
			return
		}
		if !battle.TeamIdle(battle.Active) {
			return
		}
		if quietTurns >= 2 {
			slog.Info("stalemate, neither side can act", "clock", engine.BattleClock(tick))
			eng.Stop()
			return
		}
		if err := battle.EndTurn(ctx); err != nil {
			slog.Error("end turn failed", "error", err)
			eng.Stop()
			return
		}
		playTurn()
	}
	eng.OnRound = func(tick uint64) {
		slog.Info("status",
			"clock", engine.BattleClock(tick),
			"turn", battle.Turn,
			"active", battle.Active,
			"west", len(battle.Units(engine.TeamWest)),
			"east", len(battle.Units(engine.TeamEast)),
		)
	}

	// ── Start ────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
		eng.Stop()
	}()

	fmt.Printf("\n%s: %d v %d on %s nodes.\n", levelName, unitsPerTeam, unitsPerTeam,
		humanize.Comma(int64(battle.Grid.NodeCount())))

	playTurn()
	eng.Run()

	// ── Summary ──────────────────────────────────────────────────────
	byCategory := make(map[string]int)
	for _, e := range battle.Events {
		byCategory[e.Category]++
	}
	for category, n := range byCategory {
		slog.Info("events", "category", category, "count", n)
	}

	outcome := "no winner"
	if winner, ok := battle.Winner(); ok {
		outcome = winner.String() + " wins"
	}
	fmt.Printf("Battle over after %d turns (%s): %s, %s orders issued.\n",
		battle.Turn, engine.BattleClock(eng.Tick), outcome, humanize.Comma(int64(cmdr.Orders)))

	if err := battle.Close(); err != nil {
		slog.Error("close battle", "error", err)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
