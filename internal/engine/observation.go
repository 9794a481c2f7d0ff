package engine

import (
	"math"

	"github.com/talgya/territories/internal/agents"
	"github.com/talgya/territories/internal/world"
)

// quantize maps x from [lo, hi] onto a byte, clamping first.
func quantize(x, lo, hi float64) uint8 {
	if hi <= lo {
		return 0
	}
	if x < lo {
		x = lo
	}
	if x > hi {
		x = hi
	}
	return uint8(math.Round((x - lo) / (hi - lo) * 255))
}

// writeObservations fills the observation buffer for every alive agent:
// the byte-quantised vision field, the self block, and the world summary.
func (e *Env) writeObservations() {
	obsSize := e.cfg.ObsSize()
	for _, pid := range e.manager.Alive() {
		a := e.manager.Get(pid)
		out := e.buf.Observations[int(pid)*obsSize : (int(pid)+1)*obsSize]
		i := 0

		for rOff := -VisionRadius; rOff <= VisionRadius; rOff++ {
			for cOff := -VisionRadius; cOff <= VisionRadius; cOff++ {
				r := world.Wrap(int(a.Row)+rOff, e.tiles.Height)
				c := world.Wrap(int(a.Col)+cOff, e.tiles.Width)
				i += e.writeCell(out[i:], pid, r, c)
			}
		}

		i += e.writeSelf(out[i:], a, pid)
		e.writeSummary(out[i:], a, pid)
	}
}

// writeCell emits one vision cell: tile bytes, then the occupant block
// (zeros when the cell is empty). Returns the number of bytes written.
func (e *Env) writeCell(out []uint8, viewer int32, r, c int) int {
	p := e.tiles.At(r, c)

	soil := uint8(0)
	if e.tiles.Soil.IsSoil(r, c) {
		soil = 1
	}
	out[0] = soil
	out[1] = uint8(e.growthDays(r, c))
	out[2] = quantize(float64(p.StoredFood), 0, world.StorageCapacity)
	out[3] = quantize(float64(p.Stone), 0, world.StonePerMine)
	out[4] = quantize(float64(p.WallHP), 0, world.WallHPMax)

	n := 11 + e.cfg.NGenes
	q := e.tiles.Occupant(r, c)
	if q == world.NoAgent {
		for i := 5; i < n; i++ {
			out[i] = 0
		}
		return n
	}

	b := e.manager.Get(q)
	out[5] = quantize(float64(e.kinship.At(viewer, q)), 0, float64(e.cfg.NGenes))
	out[6] = quantize(float64(b.HP), 0, agents.MaxHP)
	out[7] = quantize(float64(b.Age), 0, 100)
	out[8] = quantize(float64(b.Satiation), 0, agents.MaxSatiation)
	out[9] = uint8(b.Dir) + 1
	out[10] = b.Role + 1
	for g, allele := range e.kinship.DNA(q) {
		out[11+g] = allele + 1
	}
	return n
}

// writeSelf emits the agent's own quantised state and DNA.
func (e *Env) writeSelf(out []uint8, a *agents.Agent, pid int32) int {
	out[0] = quantize(float64(a.FoodCarried), 0, agents.FoodCapacity)
	out[1] = quantize(float64(a.StoneCarried), 0, agents.StoneCapacity)
	out[2] = quantize(float64(a.HP), 0, agents.MaxHP)
	out[3] = quantize(float64(a.Satiation), 0, agents.MaxSatiation)
	out[4] = quantize(float64(a.Age), 0, 100)
	out[5] = a.Role
	dna := e.kinship.DNA(pid)
	copy(out[6:], dna)
	return 6 + len(dna)
}

// writeSummary emits position, calendar, and population context.
func (e *Env) writeSummary(out []uint8, a *agents.Agent, pid int32) {
	n := float64(e.cfg.MaxAgents)
	out[0] = quantize(float64(a.Row), 0, float64(e.tiles.Height))
	out[1] = quantize(float64(a.Col), 0, float64(e.tiles.Width))
	out[2] = quantize(float64(e.day), 0, YearLength)
	out[3] = quantize(float64(e.kinship.FamilySize(pid)), 0, n)
	out[4] = quantize(float64(e.manager.Count()), 0, n)
}
