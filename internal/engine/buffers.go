package engine

import "fmt"

// Buffers are the host-allocated arrays the engine mutates in place:
// observations, actions, rewards, termination flags, the alive mask, the
// kinship matrix, and the DNA table. The engine borrows them for its
// lifetime and never frees them.
type Buffers struct {
	Observations []uint8   // max_agents × obs_size
	Actions      []int32   // max_agents
	Rewards      []float32 // max_agents
	Terminals    []uint8   // max_agents
	Truncations  []uint8   // max_agents
	AliveMask    []uint8   // max_agents
	Kinship      []uint8   // max_agents × max_agents
	DNAs         []uint8   // max_agents × n_genes
}

// NewBuffers allocates a correctly-shaped buffer set for a config. Hosts
// with their own shared memory build a Buffers value directly instead.
func NewBuffers(cfg Config) *Buffers {
	n := cfg.MaxAgents
	return &Buffers{
		Observations: make([]uint8, n*cfg.ObsSize()),
		Actions:      make([]int32, n),
		Rewards:      make([]float32, n),
		Terminals:    make([]uint8, n),
		Truncations:  make([]uint8, n),
		AliveMask:    make([]uint8, n),
		Kinship:      make([]uint8, n*n),
		DNAs:         make([]uint8, n*cfg.NGenes),
	}
}

// validate checks every buffer length against the config.
func (b *Buffers) validate(cfg Config) error {
	n := cfg.MaxAgents
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"observations", len(b.Observations), n * cfg.ObsSize()},
		{"actions", len(b.Actions), n},
		{"rewards", len(b.Rewards), n},
		{"terminals", len(b.Terminals), n},
		{"truncations", len(b.Truncations), n},
		{"alive_mask", len(b.AliveMask), n},
		{"kinship", len(b.Kinship), n * n},
		{"dnas", len(b.DNAs), n * cfg.NGenes},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("%s buffer: got %d elements, want %d", c.name, c.got, c.want)
		}
	}
	return nil
}
