package engine

import (
	"math"

	"github.com/talgya/territories/internal/world"
)

// dayOfYear maps a tick counter onto the seasonal calendar.
func dayOfYear(tick int) int {
	return (tick + StartingDay) % YearLength
}

// advanceSeason recomputes the day counter and flips the winter flag.
// Returning to summer restarts every soil tile's crop timer.
func (e *Env) advanceSeason() {
	e.day = dayOfYear(e.tick)
	winter := e.day >= SummerDuration
	if e.isWinter && !winter {
		for r := 0; r < e.tiles.Height; r++ {
			for c := 0; c < e.tiles.Width; c++ {
				if e.tiles.Soil.IsSoil(r, c) {
					e.tiles.At(r, c).LastHarvest = 0
				}
			}
		}
	}
	e.isWinter = winter
}

// growthDays returns how many days of crop growth a cell has accumulated.
// Only an empty soil tile grows, and only in summer; growth saturates.
func (e *Env) growthDays(r, c int) int {
	if e.isWinter || !e.tiles.Soil.IsSoil(r, c) {
		return 0
	}
	p := e.tiles.At(r, c)
	if p.StoredFood > 0 || p.Stone > 0 || p.WallHP > 0 {
		return 0
	}
	days := e.day - int(p.LastHarvest)
	if days < 0 {
		days = 0
	}
	if days > world.GrowthDaysCap {
		days = world.GrowthDaysCap
	}
	return days
}

// cropAvailable converts accumulated growth days into harvestable food.
// Never materialised on the tile; recomputed on demand.
func cropAvailable(days int) int {
	if days <= 0 {
		return 0
	}
	return int(math.Floor(math.Exp(GrowthRate*float64(days)) - 1))
}

// placeStones seeds the five deposits: one per map quadrant plus the
// centre, each holding a full mine.
func (e *Env) placeStones() {
	h, w := e.tiles.Height, e.tiles.Width
	anchors := [5][2]int{
		{h / 4, w / 4},
		{h / 4, 3 * w / 4},
		{3 * h / 4, w / 4},
		{3 * h / 4, 3 * w / 4},
		{h / 2, w / 2},
	}
	for _, a := range anchors {
		e.tiles.At(a[0], a[1]).Stone = world.StonePerMine
	}
}

// placeWall raises a wall on an unblocked cell, wiping its resources.
// Reports whether the wall was placed.
func (e *Env) placeWall(r, c int) bool {
	if e.tiles.Blocked(r, c) {
		return false
	}
	p := e.tiles.At(r, c)
	p.StoredFood = 0
	p.Stone = 0
	p.WallHP = world.WallHPMax
	return true
}

// destroyWall clears a wall. In summer on soil the crop timer restarts
// immediately so the freed tile begins growing.
func (e *Env) destroyWall(r, c int) {
	p := e.tiles.At(r, c)
	p.WallHP = 0
	if !e.isWinter && e.tiles.Soil.IsSoil(r, c) {
		p.LastHarvest = uint16(e.day)
	}
}
