// Package engine provides the deterministic tick engine: world rules,
// action resolution, rewards, observations, and the step/reset driver.
package engine

import (
	"fmt"

	"github.com/talgya/territories/internal/agents"
)

// World calendar constants.
const (
	SummerDuration = 100
	WinterDuration = 10
	StartingDay    = 55
	YearLength     = SummerDuration + WinterDuration
)

// GrowthRate is the exponent of the crop growth law:
// crop = floor(exp(GrowthRate*days) - 1), saturating at 70 days.
const GrowthRate = 0.07167543

// VisionRadius is the half-width of the observation window.
const VisionRadius = 4

// MaxGenes is the largest supported gene count.
const MaxGenes = 3

// Config holds every engine parameter. All capacities are fixed at init.
type Config struct {
	NGenes    int
	NAlleles  int
	Width     int
	Height    int
	MaxAgents int
	NRoles    int

	MinEpLength int
	MaxEpLength int

	ExtinctionReward float64
	RewardGrowthRate bool // false: delta-family-size, true: log growth rate

	// MapName is the soil bitmap file to load. When empty, a bitmap is
	// generated from Seed instead.
	MapName string
	Seed    int64
}

// Validate checks parameter ranges. Any violation is fatal at init.
func (c Config) Validate() error {
	if c.NGenes < 0 || c.NGenes > MaxGenes {
		return fmt.Errorf("n_genes must be in [0,%d], got %d", MaxGenes, c.NGenes)
	}
	// Alleles are stored as bytes and shifted by one in observations, so
	// 255 distinct values is the ceiling.
	if c.NAlleles < 1 || c.NAlleles > 255 {
		return fmt.Errorf("n_alleles must be in [1,255], got %d", c.NAlleles)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("grid size must be >= 1, got %dx%d", c.Width, c.Height)
	}
	if c.MaxAgents < 1 {
		return fmt.Errorf("max_agents must be >= 1, got %d", c.MaxAgents)
	}
	if c.NRoles < 1 {
		return fmt.Errorf("n_roles must be >= 1, got %d", c.NRoles)
	}
	if c.MinEpLength < 1 {
		return fmt.Errorf("min_ep_length must be >= 1, got %d", c.MinEpLength)
	}
	if c.MaxEpLength <= c.MinEpLength {
		return fmt.Errorf("max_ep_length must exceed min_ep_length, got [%d,%d)", c.MinEpLength, c.MaxEpLength)
	}
	if c.ExtinctionReward >= 0 {
		return fmt.Errorf("extinction_reward must be negative, got %g", c.ExtinctionReward)
	}
	return nil
}

// ObsSize returns the per-agent observation length in bytes: the vision
// field, the self block, and the world summary block.
func (c Config) ObsSize() int {
	side := 2*VisionRadius + 1
	return side*side*(11+c.NGenes) + 6 + c.NGenes + 5
}

// Action is one symbol of the 11-action input alphabet.
type Action int32

const (
	ActionMoveUp Action = iota
	ActionMoveRight
	ActionMoveDown
	ActionMoveLeft
	ActionNoop
	ActionPickup
	ActionMine
	ActionPackage
	ActionBuildWall
	ActionAttack
	ActionReproduce
)

// moveDirection maps a movement action to its facing.
func moveDirection(a Action) agents.Direction {
	return agents.Direction(a)
}
