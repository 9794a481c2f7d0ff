package world

// Tile resource limits.
const (
	StorageCapacity = 150 // Max stored food per cell
	StonePerMine    = 600 // Stone held by a fresh deposit
	WallHPMax       = 8
	GrowthDaysCap   = 70 // Crop growth saturates after this many days
)

// NoAgent marks an unoccupied cell in the spatial index.
const NoAgent int32 = -1

// TileProps holds the mutable per-cell state.
type TileProps struct {
	LastHarvest uint16 // Day index the crop timer was last reset
	StoredFood  uint16
	Stone       uint16
	WallHP      uint16
}

// Tiles is the flat row-major tile store plus the agent spatial index.
type Tiles struct {
	Width  int
	Height int
	Soil   *SoilMap
	Props  []TileProps
	PIDAt  []int32
}

// NewTiles creates the tile store for a soil map.
func NewTiles(soil *SoilMap) *Tiles {
	t := &Tiles{
		Width:  soil.Width,
		Height: soil.Height,
		Soil:   soil,
		Props:  make([]TileProps, soil.Width*soil.Height),
		PIDAt:  make([]int32, soil.Width*soil.Height),
	}
	t.Reset()
	return t
}

// Reset zeroes every tile and clears the spatial index.
func (t *Tiles) Reset() {
	for i := range t.Props {
		t.Props[i] = TileProps{}
	}
	for i := range t.PIDAt {
		t.PIDAt[i] = NoAgent
	}
}

// Index returns the flat index for toroidal coordinates.
func (t *Tiles) Index(r, c int) int {
	return Wrap(r, t.Height)*t.Width + Wrap(c, t.Width)
}

// At returns the tile record at (r, c). Coordinates wrap.
func (t *Tiles) At(r, c int) *TileProps {
	return &t.Props[t.Index(r, c)]
}

// Occupant returns the pid standing on (r, c), or NoAgent.
func (t *Tiles) Occupant(r, c int) int32 {
	return t.PIDAt[t.Index(r, c)]
}

// Blocked reports whether an agent may not enter (r, c): a wall, a stone
// deposit, or another agent makes a cell impassable.
func (t *Tiles) Blocked(r, c int) bool {
	i := t.Index(r, c)
	p := &t.Props[i]
	return p.WallHP > 0 || p.Stone > 0 || t.PIDAt[i] != NoAgent
}
