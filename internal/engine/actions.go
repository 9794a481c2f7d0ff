package engine

import (
	"github.com/talgya/territories/internal/agents"
	"github.com/talgya/territories/internal/world"
)

// mooreOffsets are the 8-neighbourhood deltas, scanned row-major.
var mooreOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// swordOffsets is the forward 1×3 attack arc per facing.
var swordOffsets = [agents.NumDirections][3][2]int{
	agents.DirUp:    {{-1, -1}, {-1, 0}, {-1, 1}},
	agents.DirRight: {{-1, 1}, {0, 1}, {1, 1}},
	agents.DirDown:  {{1, 1}, {1, 0}, {1, -1}},
	agents.DirLeft:  {{1, -1}, {0, -1}, {-1, -1}},
}

// runActions processes every agent of the shuffled alive list. Ageing,
// metabolism, and eating happen per agent inside this loop, before its
// action. Agents spawned mid-pass are not in the list and act next tick;
// agents beaten to 0 hp stay in the pass until the death sweep.
func (e *Env) runActions(order []int32) {
	for _, pid := range order {
		a := e.manager.Get(pid)
		e.preAction(a)

		switch act := Action(e.buf.Actions[pid]); act {
		case ActionMoveUp, ActionMoveRight, ActionMoveDown, ActionMoveLeft:
			e.actMove(pid, a, moveDirection(act))
		case ActionPickup:
			e.actPickup(a)
		case ActionMine:
			e.actMine(a)
		case ActionPackage:
			e.actPackage(a)
		case ActionBuildWall:
			e.actBuildWall(a)
		case ActionAttack:
			e.actAttack(a)
		case ActionReproduce:
			e.actReproduce(pid, a)
		default:
			// Noop, and any out-of-alphabet code.
		}
	}
}

// preAction applies ageing, metabolism, and the automatic meal.
func (e *Env) preAction(a *agents.Agent) {
	a.Age++
	if a.Age == agents.ReproductionAge {
		a.HPMax = agents.MaxHP
		a.HP = agents.MaxHP
	}
	a.Satiation -= agents.MetabolismRate

	if a.FoodCarried > 0 && a.Satiation < agents.MaxSatiation {
		n := agents.MaxSatiation - a.Satiation
		if n > a.FoodCarried {
			n = a.FoodCarried
		}
		a.Satiation += n
		a.FoodCarried -= n
		e.stats.foodEaten += int(n)
	}
}

// actMove steps one tile when the chosen direction matches the current
// facing; otherwise it only turns. The facing updates regardless.
func (e *Env) actMove(pid int32, a *agents.Agent, d agents.Direction) {
	if d == a.Dir {
		dr, dc := d.Offset()
		nr := world.Wrap(int(a.Row)+dr, e.tiles.Height)
		nc := world.Wrap(int(a.Col)+dc, e.tiles.Width)
		if !e.tiles.Blocked(nr, nc) {
			e.tiles.PIDAt[e.tiles.Index(int(a.Row), int(a.Col))] = world.NoAgent
			a.Row, a.Col = int32(nr), int32(nc)
			e.tiles.PIDAt[e.tiles.Index(nr, nc)] = pid
		}
	}
	a.Dir = d
}

// actPickup takes stored food from the agent's tile, or failing that,
// harvests the standing crop. An actual harvest restarts the crop timer;
// food beyond the carrying capacity lands in the tile's store.
func (e *Env) actPickup(a *agents.Agent) {
	r, c := int(a.Row), int(a.Col)
	p := e.tiles.At(r, c)

	if p.StoredFood > 0 {
		take := int(p.StoredFood)
		if room := agents.FoodCapacity - int(a.FoodCarried); take > room {
			take = room
		}
		p.StoredFood -= uint16(take)
		a.FoodCarried += int16(take)
		if p.StoredFood == 0 && !e.isWinter && e.tiles.Soil.IsSoil(r, c) {
			p.LastHarvest = uint16(e.day)
		}
		return
	}

	days := e.growthDays(r, c)
	if days == 0 {
		return
	}
	crop := cropAvailable(days)
	if crop == 0 {
		return
	}
	p.LastHarvest = uint16(e.day)
	take := crop
	if room := agents.FoodCapacity - int(a.FoodCarried); take > room {
		take = room
	}
	a.FoodCarried += int16(take)
	if rest := crop - take; rest > 0 {
		if rest > world.StorageCapacity {
			rest = world.StorageCapacity
		}
		p.StoredFood = uint16(rest)
		e.stats.foodStored += rest
	}
}

// actMine scans the cardinal neighbours in cardinal order, turns toward
// the first deposit, and chips one stone off it.
func (e *Env) actMine(a *agents.Agent) {
	for d := agents.DirUp; d < agents.NumDirections; d++ {
		dr, dc := d.Offset()
		r := world.Wrap(int(a.Row)+dr, e.tiles.Height)
		c := world.Wrap(int(a.Col)+dc, e.tiles.Width)
		p := e.tiles.At(r, c)
		if p.Stone == 0 {
			continue
		}
		a.Dir = d
		if a.StoneCarried < agents.StoneCapacity {
			p.Stone--
			a.StoneCarried++
			e.stats.stoneMined++
		}
		return
	}
}

// actPackage harvests the standing crop into the tile's store, then drops
// carried food on top, up to the storage cap.
func (e *Env) actPackage(a *agents.Agent) {
	r, c := int(a.Row), int(a.Col)
	p := e.tiles.At(r, c)

	if days := e.growthDays(r, c); days > 0 {
		crop := cropAvailable(days)
		stored := int(p.StoredFood) + crop
		if stored > world.StorageCapacity {
			stored = world.StorageCapacity
		}
		e.stats.foodStored += stored - int(p.StoredFood)
		p.StoredFood = uint16(stored)
		p.LastHarvest = uint16(e.day)
	}

	drop := int(a.FoodCarried)
	if room := world.StorageCapacity - int(p.StoredFood); drop > room {
		drop = room
	}
	if drop > 0 {
		p.StoredFood += uint16(drop)
		a.FoodCarried -= int16(drop)
		e.stats.foodStored += drop
	}
}

// actBuildWall raises a wall on the faced cell, spending one stone.
func (e *Env) actBuildWall(a *agents.Agent) {
	if a.StoneCarried == 0 {
		return
	}
	dr, dc := a.Dir.Offset()
	r := world.Wrap(int(a.Row)+dr, e.tiles.Height)
	c := world.Wrap(int(a.Col)+dc, e.tiles.Width)
	if e.placeWall(r, c) {
		a.StoneCarried--
		e.stats.wallsBuilt++
	}
}

// actAttack sweeps the sword arcs clockwise from the current facing and
// strikes the first wall or agent found, turning toward it. A victim
// brought to 0 hp is looted immediately but removed only by the death
// sweep, so it stays a valid target for the rest of the pass.
func (e *Env) actAttack(a *agents.Agent) {
	for i := 0; i < agents.NumDirections; i++ {
		d := a.Dir.Rotate(i)
		for _, off := range swordOffsets[d] {
			r := world.Wrap(int(a.Row)+off[0], e.tiles.Height)
			c := world.Wrap(int(a.Col)+off[1], e.tiles.Width)
			p := e.tiles.At(r, c)

			if p.WallHP > 0 {
				a.Dir = d
				p.WallHP--
				if p.WallHP == 0 {
					e.destroyWall(r, c)
					e.stats.wallsDestroyed++
				}
				return
			}

			victim := e.tiles.Occupant(r, c)
			if victim == world.NoAgent {
				continue
			}
			a.Dir = d
			v := e.manager.Get(victim)
			v.HP--
			if v.HP == 0 {
				e.lootVictim(a, v)
			}
			return
		}
	}
}

// lootVictim transfers half the victim's satiation plus its inventory to
// the attacker, respecting the attacker's caps.
func (e *Env) lootVictim(a, v *agents.Agent) {
	a.Satiation += v.Satiation / 2
	if a.Satiation > agents.MaxSatiation {
		a.Satiation = agents.MaxSatiation
	}

	stone := v.StoneCarried
	if room := agents.StoneCapacity - a.StoneCarried; stone > room {
		stone = room
	}
	a.StoneCarried += stone
	v.StoneCarried -= stone

	food := v.FoodCarried
	if room := agents.FoodCapacity - a.FoodCarried; food > room {
		food = room
	}
	a.FoodCarried += food
	v.FoodCarried -= food
}

// canBreed checks the fitness preconditions shared by both parents.
func canBreed(a *agents.Agent) bool {
	return a.Age >= agents.ReproductionAge && a.Satiation > agents.MaxSatiation/2
}

// actReproduce pairs the agent with a willing adjacent partner and spawns
// a child on a free neighbouring cell. The child inherits each gene from
// either parent with equal probability and is visible to later agents in
// the same tick through the alive mask and the spatial index.
func (e *Env) actReproduce(pid int32, a *agents.Agent) {
	if !canBreed(a) || e.manager.Count() == e.manager.Capacity() {
		return
	}

	partnerPID := agents.None
	for _, off := range mooreOffsets {
		r := world.Wrap(int(a.Row)+off[0], e.tiles.Height)
		c := world.Wrap(int(a.Col)+off[1], e.tiles.Width)
		q := e.tiles.Occupant(r, c)
		if q == world.NoAgent || Action(e.buf.Actions[q]) != ActionReproduce {
			continue
		}
		if canBreed(e.manager.Get(q)) {
			partnerPID = q
			break
		}
	}
	if partnerPID == agents.None {
		return
	}
	partner := e.manager.Get(partnerPID)

	er, ec, ok := e.freeMooreNeighbour(int(a.Row), int(a.Col))
	if !ok {
		return
	}

	a.Satiation -= agents.MaxSatiation / 2
	partner.Satiation -= agents.MaxSatiation / 2

	child := e.spawnAt(er, ec)
	if child == agents.None {
		return
	}
	dna := e.kinship.DNA(child)
	pa, pb := e.kinship.DNA(pid), e.kinship.DNA(partnerPID)
	for g := range dna {
		if e.rng.Intn(2) == 0 {
			dna[g] = pa[g]
		} else {
			dna[g] = pb[g]
		}
	}
	e.manager.Get(child).Role = uint8(e.rng.Intn(e.cfg.NRoles))
	e.kinship.OnBirth(child, e.buf.AliveMask)
	e.stats.births++
}

// freeMooreNeighbour returns the first unblocked 8-neighbour of (r, c).
func (e *Env) freeMooreNeighbour(r, c int) (int, int, bool) {
	for _, off := range mooreOffsets {
		nr := world.Wrap(r+off[0], e.tiles.Height)
		nc := world.Wrap(c+off[1], e.tiles.Width)
		if !e.tiles.Blocked(nr, nc) {
			return nr, nc, true
		}
	}
	return 0, 0, false
}
