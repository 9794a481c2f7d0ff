package engine

import "math"

// computeRewards writes the per-slot reward for every slot that is alive
// or was terminated this tick, then commits the family sizes as the next
// baseline. Terminated slots still carry their pre-death kinship rows, so
// a final reward reaches the deceased.
func (e *Env) computeRewards() {
	alive := e.manager.Alive()
	e.rewardPIDs = e.rewardPIDs[:0]
	e.rewardPIDs = append(e.rewardPIDs, alive...)
	e.rewardPIDs = append(e.rewardPIDs, e.terminated...)

	e.kinship.ComputeFamilySizes(e.rewardPIDs, alive)

	for i := range e.buf.Rewards {
		e.buf.Rewards[i] = 0
	}
	for _, pid := range e.rewardPIDs {
		var r float64
		if e.cfg.RewardGrowthRate {
			r = e.growthRateReward(pid)
		} else {
			r = e.deltaReward(pid)
		}
		e.buf.Rewards[pid] = float32(r)
		e.stats.totalReward += r
	}

	e.kinship.CommitFamilySizes(e.rewardPIDs)
}

// deltaReward is the change in family size, normalised by the gene count.
func (e *Env) deltaReward(pid int32) float64 {
	if e.cfg.NGenes == 0 {
		return 0
	}
	fs := e.kinship.FamilySize(pid)
	prev := e.kinship.PrevFamilySize(pid)
	return float64(fs-prev) / float64(e.cfg.NGenes)
}

// growthRateReward is the log growth rate of the family size. A family
// size of zero means the slot's entire kin line died this tick; the
// extinction penalty applies, plus the final collapse from the previous
// family size when there was one.
func (e *Env) growthRateReward(pid int32) float64 {
	fs := e.kinship.FamilySize(pid)
	prev := e.kinship.PrevFamilySize(pid)
	if fs > 0 {
		if prev <= 0 {
			return 0
		}
		return math.Log(float64(fs) / float64(prev))
	}
	r := e.cfg.ExtinctionReward
	if prev > 1 {
		r += math.Log(1 / float64(prev))
	}
	return r
}
