// Package persistence provides SQLite-based episode history storage.
package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/territories/internal/engine"
)

// DB wraps a SQLite connection for episode stats persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		run_id TEXT NOT NULL,
		episode INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		births INTEGER NOT NULL,
		starvations INTEGER NOT NULL,
		murders INTEGER NOT NULL,
		stone_mined INTEGER NOT NULL,
		walls_built INTEGER NOT NULL,
		walls_destroyed INTEGER NOT NULL,
		food_stored INTEGER NOT NULL,
		food_eaten INTEGER NOT NULL,
		max_pop INTEGER NOT NULL,
		min_pop INTEGER NOT NULL,
		avg_population REAL NOT NULL,
		total_reward REAL NOT NULL,
		episode_length INTEGER NOT NULL,
		life_expectancy REAL NOT NULL,
		genetic_diversity REAL NOT NULL,
		n INTEGER NOT NULL,
		PRIMARY KEY (run_id, episode)
	);

	CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEpisode inserts one episode's aggregates.
func (db *DB) SaveEpisode(runID string, episode int, seed int64, s engine.EpisodeStats) error {
	_, err := db.conn.Exec(`INSERT INTO episodes
		(run_id, episode, seed, births, starvations, murders, stone_mined,
		 walls_built, walls_destroyed, food_stored, food_eaten, max_pop,
		 min_pop, avg_population, total_reward, episode_length,
		 life_expectancy, genetic_diversity, n)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, episode, seed, s.Births, s.Starvations, s.Murders, s.StoneMined,
		s.WallsBuilt, s.WallsDestroyed, s.FoodStored, s.FoodEaten, s.MaxPop,
		s.MinPop, s.AvgPopulation, s.TotalReward, s.EpisodeLength,
		s.LifeExpectancy, s.GeneticDiversity, s.N,
	)
	if err != nil {
		return fmt.Errorf("insert episode %d: %w", episode, err)
	}
	return nil
}

// RunSummary aggregates a run's episodes.
type RunSummary struct {
	Episodes      int     `db:"episodes"`
	TotalSteps    int64   `db:"total_steps"`
	AvgReward     float64 `db:"avg_reward"`
	AvgPopulation float64 `db:"avg_population"`
	AvgLength     float64 `db:"avg_length"`
}

// Summarize returns aggregates over every episode of a run.
func (db *DB) Summarize(runID string) (RunSummary, error) {
	var s RunSummary
	err := db.conn.Get(&s, `SELECT
		COUNT(*) AS episodes,
		COALESCE(SUM(episode_length), 0) AS total_steps,
		COALESCE(AVG(total_reward), 0) AS avg_reward,
		COALESCE(AVG(avg_population), 0) AS avg_population,
		COALESCE(AVG(episode_length), 0) AS avg_length
		FROM episodes WHERE run_id = ?`, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	return s, nil
}
