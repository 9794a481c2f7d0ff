// Command territories runs the multi-agent grid-world environment with a
// random policy and records per-episode statistics.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"

	"github.com/talgya/territories/internal/engine"
	"github.com/talgya/territories/internal/persistence"
)

// userConfig is the on-disk configuration, written with defaults on first
// run.
type userConfig struct {
	World struct {
		Width   int
		Height  int
		MapFile string // Empty: generate soil from the seed
		Seed    int64
	}
	Population struct {
		MaxAgents int
		NGenes    int
		NAlleles  int
		NRoles    int
	}
	Episode struct {
		MinLength int
		MaxLength int
		Count     int
	}
	Reward struct {
		GrowthRate       bool
		ExtinctionReward float64
	}
	Database struct {
		Path string
	}
	Pace struct {
		IntervalMS int // 0 = unpaced
	}
}

func defaultConfig() userConfig {
	var c userConfig
	c.World.Width = 40
	c.World.Height = 40
	c.World.Seed = 42
	c.Population.MaxAgents = 64
	c.Population.NGenes = 3
	c.Population.NAlleles = 4
	c.Population.NRoles = 3
	c.Episode.MinLength = 500
	c.Episode.MaxLength = 1000
	c.Episode.Count = 10
	c.Reward.ExtinctionReward = -1.0
	c.Database.Path = "data/territories.db"
	return c
}

// readConfig loads territories.toml, creating it with defaults when it
// does not exist yet.
func readConfig(path string) (userConfig, error) {
	c := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		out, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, out, 0644); err != nil {
			return c, fmt.Errorf("write default config: %w", err)
		}
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	uc, err := readConfig("territories.toml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cfg := engine.Config{
		NGenes:           uc.Population.NGenes,
		NAlleles:         uc.Population.NAlleles,
		Width:            uc.World.Width,
		Height:           uc.World.Height,
		MaxAgents:        uc.Population.MaxAgents,
		NRoles:           uc.Population.NRoles,
		MinEpLength:      uc.Episode.MinLength,
		MaxEpLength:      uc.Episode.MaxLength,
		ExtinctionReward: uc.Reward.ExtinctionReward,
		RewardGrowthRate: uc.Reward.GrowthRate,
		MapName:          uc.World.MapFile,
		Seed:             uc.World.Seed,
	}

	buffers := engine.NewBuffers(cfg)
	env, err := engine.New(cfg, buffers)
	if err != nil {
		slog.Error("failed to initialise environment", "error", err)
		os.Exit(1)
	}
	defer env.Close()

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(uc.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	runID := uuid.NewString()
	slog.Info("run starting",
		"run_id", runID,
		"grid", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"max_agents", cfg.MaxAgents,
		"n_genes", cfg.NGenes,
		"episodes", uc.Episode.Count,
		"seed", cfg.Seed,
	)

	env.OnEpisodeEnd = func(s engine.EpisodeStats) {
		if err := db.SaveEpisode(runID, env.Episode(), cfg.Seed, s); err != nil {
			slog.Error("episode save failed", "error", err)
		}
	}

	// Random policy: an independent stream so replaying the same engine
	// seed with a different policy seed exercises different trajectories.
	policyRNG := rand.New(rand.NewSource(cfg.Seed + 1))
	policy := func(_ *engine.Env, actions []int32) {
		for i := range actions {
			actions[i] = int32(policyRNG.Intn(11))
		}
	}

	env.Reset()

	runner := &engine.Runner{
		Env:      env,
		Policy:   policy,
		Episodes: uc.Episode.Count,
		Interval: time.Duration(uc.Pace.IntervalMS) * time.Millisecond,
		Speed:    1,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	runner.Run()

	summary, err := db.Summarize(runID)
	if err != nil {
		slog.Error("run summary failed", "error", err)
		return
	}
	fmt.Printf("\nRun %s finished: %d episodes, %s steps.\n",
		runID, summary.Episodes, humanize.Comma(summary.TotalSteps))
	fmt.Printf("Average per episode: reward %.3f, population %.1f, length %.0f ticks.\n",
		summary.AvgReward, summary.AvgPopulation, summary.AvgLength)
}
