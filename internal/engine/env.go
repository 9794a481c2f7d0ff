package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/territories/internal/agents"
	"github.com/talgya/territories/internal/genetics"
	"github.com/talgya/territories/internal/world"
)

// Env is the simulation engine. It owns the tile store, the agent table,
// and the kinship state; the host owns the buffers. Single-threaded: a
// Step call is indivisible and draws all randomness from one seeded
// stream.
type Env struct {
	cfg Config
	rng *rand.Rand
	buf *Buffers

	tiles   *world.Tiles
	manager *agents.Manager
	kinship *genetics.Kinship

	tick          int
	episodeBudget int
	episode       int
	day           int
	isWinter      bool

	stats      statsAccum
	terminated []int32 // Slots killed by the current tick's death sweep
	rewardPIDs []int32 // Scratch: alive ∪ terminated

	// OnEpisodeEnd, when set, receives the aggregates of each finished
	// episode before the automatic reset.
	OnEpisodeEnd func(EpisodeStats)
}

// New validates the configuration and buffers, loads or generates the
// soil map, and allocates all owned state. No allocation happens on the
// stepping path after this returns.
func New(cfg Config, buf *Buffers) (*Env, error) {
	var soil *world.SoilMap
	if cfg.MapName != "" {
		var err error
		soil, err = world.LoadSoil(cfg.MapName, cfg.Width, cfg.Height)
		if err != nil {
			return nil, err
		}
	} else {
		soil = world.GenerateSoil(world.DefaultGenConfig(cfg.Width, cfg.Height, cfg.Seed))
	}
	return NewWithSoil(cfg, buf, soil)
}

// NewWithSoil builds an engine over an already-constructed soil map.
func NewWithSoil(cfg Config, buf *Buffers, soil *world.SoilMap) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := buf.validate(cfg); err != nil {
		return nil, fmt.Errorf("buffers: %w", err)
	}
	if soil.Width != cfg.Width || soil.Height != cfg.Height {
		return nil, fmt.Errorf("soil map is %dx%d, config wants %dx%d",
			soil.Width, soil.Height, cfg.Width, cfg.Height)
	}

	e := &Env{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		buf:        buf,
		tiles:      world.NewTiles(soil),
		manager:    agents.NewManager(cfg.MaxAgents, buf.AliveMask),
		kinship:    genetics.NewKinship(cfg.MaxAgents, cfg.NGenes, buf.Kinship, buf.DNAs),
		terminated: make([]int32, 0, cfg.MaxAgents),
		rewardPIDs: make([]int32, 0, cfg.MaxAgents),
	}
	return e, nil
}

// initialPairs is how many same-DNA breeding pairs seed a fresh episode.
const initialPairs = 4

// Reset begins a new episode. On return the observations and rewards for
// tick 0 are populated.
func (e *Env) Reset() {
	e.tick = 0
	e.episodeBudget = e.cfg.MinEpLength + e.rng.Intn(e.cfg.MaxEpLength-e.cfg.MinEpLength)
	e.episode++

	e.day = dayOfYear(0)
	e.isWinter = e.day >= SummerDuration

	e.tiles.Reset()
	e.placeStones()
	e.manager.Reset()
	e.kinship.Reset()
	e.stats.reset(e.cfg.MaxAgents)

	clearBytes(e.buf.Terminals)
	clearBytes(e.buf.Truncations)
	clearBytes(e.buf.Observations)
	for i := range e.buf.Rewards {
		e.buf.Rewards[i] = 0
	}

	e.seedPopulation()
	e.manager.RefreshAliveList()
	e.stats.samplePopulation(e.manager.Count())

	e.terminated = e.terminated[:0]
	e.computeRewards()
	e.writeObservations()
}

// seedPopulation spawns the initial breeding pairs. Both members of a
// pair share one randomly-drawn DNA vector and stand on adjacent cells.
func (e *Env) seedPopulation() {
	for i := 0; i < initialPairs; i++ {
		r, c, ok := e.randomFreeCell()
		if !ok {
			return
		}
		first := e.spawnAt(r, c)
		if first == agents.None {
			return
		}
		dna := e.kinship.DNA(first)
		for g := range dna {
			dna[g] = uint8(e.rng.Intn(e.cfg.NAlleles))
		}
		e.manager.Get(first).Role = uint8(e.rng.Intn(e.cfg.NRoles))
		e.kinship.OnBirth(first, e.buf.AliveMask)

		pr, pc, ok := e.freeMooreNeighbour(r, c)
		if !ok {
			pr, pc, ok = e.randomFreeCell()
			if !ok {
				return
			}
		}
		second := e.spawnAt(pr, pc)
		if second == agents.None {
			return
		}
		copy(e.kinship.DNA(second), dna)
		e.manager.Get(second).Role = uint8(e.rng.Intn(e.cfg.NRoles))
		e.kinship.OnBirth(second, e.buf.AliveMask)
	}
}

// spawnAt allocates a slot and stamps the spatial index.
func (e *Env) spawnAt(r, c int) int32 {
	pid := e.manager.Spawn(r, c, e.rng)
	if pid != agents.None {
		e.tiles.PIDAt[e.tiles.Index(r, c)] = pid
	}
	return pid
}

// randomFreeCell draws random coordinates until an unblocked cell turns
// up, bailing out after a bounded number of tries on crowded maps.
func (e *Env) randomFreeCell() (r, c int, ok bool) {
	for tries := 0; tries < 16*e.tiles.Width*e.tiles.Height; tries++ {
		r = e.rng.Intn(e.tiles.Height)
		c = e.rng.Intn(e.tiles.Width)
		if !e.tiles.Blocked(r, c) {
			return r, c, true
		}
	}
	return 0, 0, false
}

// Step advances exactly one tick. If an episode-end condition triggered
// at the top of the call, the episode is finalised and a fresh one begins
// instead; the buffers then hold the new episode's tick-0 data.
func (e *Env) Step() {
	clearBytes(e.buf.Terminals)
	clearBytes(e.buf.Truncations)

	if e.manager.Count() == 0 || e.tick >= e.episodeBudget {
		e.finishEpisode()
		e.Reset()
		return
	}

	e.advanceSeason()

	e.tick++
	if e.tick < e.cfg.MinEpLength {
		e.stats.samplePopulation(e.manager.Count())
	}

	alive := e.manager.Alive()
	e.rng.Shuffle(len(alive), func(i, j int) {
		alive[i], alive[j] = alive[j], alive[i]
	})

	e.runActions(alive)
	e.manager.RefreshAliveList()
	e.deathSweep()
	e.manager.RefreshAliveList()

	if e.tick >= e.episodeBudget {
		for _, pid := range e.manager.Alive() {
			e.buf.Truncations[pid] = 1
		}
	}

	e.computeRewards()
	e.writeObservations()
}

// deathSweep kills every agent that ran out of satiation or hit points
// during the action pass. Kinship rows of the victims are left intact so
// the reward pass can attribute a final reward to them.
func (e *Env) deathSweep() {
	e.terminated = e.terminated[:0]
	for _, pid := range e.manager.Alive() {
		a := e.manager.Get(pid)
		if a.Satiation > 0 && a.HP > 0 {
			continue
		}
		if a.HP <= 0 {
			e.stats.murders++
		} else {
			e.stats.starvations++
		}
		e.stats.deathAgeSum += int64(a.Age)
		e.stats.deaths++

		e.tiles.PIDAt[e.tiles.Index(int(a.Row), int(a.Col))] = world.NoAgent
		e.buf.Terminals[pid] = 1
		e.manager.Kill(pid)
		e.terminated = append(e.terminated, pid)
	}
}

// finishEpisode derives the aggregates, logs them, and hands them to the
// episode hook.
func (e *Env) finishEpisode() {
	s := e.episodeStats()
	slog.Info("episode complete",
		"episode", e.episode,
		"length", s.EpisodeLength,
		"births", s.Births,
		"starvations", s.Starvations,
		"murders", s.Murders,
		"stone_mined", s.StoneMined,
		"walls_built", s.WallsBuilt,
		"walls_destroyed", s.WallsDestroyed,
		"food_stored", s.FoodStored,
		"food_eaten", s.FoodEaten,
		"max_pop", s.MaxPop,
		"min_pop", s.MinPop,
		"avg_population", s.AvgPopulation,
		"total_reward", s.TotalReward,
		"life_expectancy", s.LifeExpectancy,
		"genetic_diversity", s.GeneticDiversity,
		"n", s.N,
	)
	if e.OnEpisodeEnd != nil {
		e.OnEpisodeEnd(s)
	}
}

// episodeStats folds the accumulator into the exported aggregate form.
func (e *Env) episodeStats() EpisodeStats {
	s := EpisodeStats{
		Births:         e.stats.births,
		Starvations:    e.stats.starvations,
		Murders:        e.stats.murders,
		StoneMined:     e.stats.stoneMined,
		WallsBuilt:     e.stats.wallsBuilt,
		WallsDestroyed: e.stats.wallsDestroyed,
		FoodStored:     e.stats.foodStored,
		FoodEaten:      e.stats.foodEaten,
		MaxPop:         e.stats.maxPop,
		MinPop:         e.stats.minPop,
		TotalReward:    e.stats.totalReward,
		EpisodeLength:  e.tick,
		N:              e.manager.Count(),
	}
	if e.stats.popSamples > 0 {
		s.AvgPopulation = float64(e.stats.popSum) / float64(e.stats.popSamples)
	}
	if e.stats.deaths > 0 {
		s.LifeExpectancy = float64(e.stats.deathAgeSum) / float64(e.stats.deaths)
	}
	s.GeneticDiversity = genetics.GeneticDiversity(
		e.buf.DNAs, e.manager.Alive(), e.cfg.NGenes, e.cfg.NAlleles)
	return s
}

// Close releases the engine-owned state. The host buffers are untouched.
func (e *Env) Close() {
	e.tiles = nil
	e.manager = nil
	e.kinship = nil
	e.buf = nil
}

// Tick returns the current tick counter within the episode.
func (e *Env) Tick() int { return e.tick }

// Episode returns the number of episodes started so far.
func (e *Env) Episode() int { return e.episode }

// EpisodeBudget returns the tick budget drawn for the current episode.
func (e *Env) EpisodeBudget() int { return e.episodeBudget }

// AliveCount returns the current population.
func (e *Env) AliveCount() int { return e.manager.Count() }

func clearBytes(b []uint8) {
	for i := range b {
		b[i] = 0
	}
}
