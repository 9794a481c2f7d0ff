package agents

import (
	"math/rand"
	"testing"
)

func newTestManager(capacity int) (*Manager, []uint8) {
	mask := make([]uint8, capacity)
	return NewManager(capacity, mask), mask
}

func TestSpawnInitialisesRecord(t *testing.T) {
	m, mask := newTestManager(4)
	rng := rand.New(rand.NewSource(1))

	pid := m.Spawn(3, 5, rng)
	if pid == None {
		t.Fatal("Spawn returned None with free capacity")
	}
	if mask[pid] != 1 {
		t.Error("alive mask not set on spawn")
	}

	a := m.Get(pid)
	if a.Row != 3 || a.Col != 5 {
		t.Errorf("position = (%d,%d), want (3,5)", a.Row, a.Col)
	}
	if a.HP != 1 || a.HPMax != 1 {
		t.Errorf("hp = %d/%d, want 1/1 for a newborn", a.HP, a.HPMax)
	}
	if a.Satiation != MaxSatiation {
		t.Errorf("satiation = %d, want %d", a.Satiation, MaxSatiation)
	}
	if a.Age != 0 || a.FoodCarried != 0 || a.StoneCarried != 0 {
		t.Error("newborn record carries leftover state")
	}
	if a.Dir >= NumDirections {
		t.Errorf("dir = %d out of range", a.Dir)
	}
}

func TestSpawnSaturates(t *testing.T) {
	m, _ := newTestManager(3)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 3; i++ {
		if m.Spawn(0, i, rng) == None {
			t.Fatalf("spawn %d failed below capacity", i)
		}
	}
	if m.Spawn(0, 3, rng) != None {
		t.Error("spawn above capacity did not return None")
	}
	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}
}

func TestKillRecyclesLIFO(t *testing.T) {
	m, mask := newTestManager(8)
	rng := rand.New(rand.NewSource(1))

	a := m.Spawn(0, 0, rng)
	b := m.Spawn(0, 1, rng)
	c := m.Spawn(0, 2, rng)

	m.Kill(b)
	m.Kill(a)
	if mask[a] != 0 || mask[b] != 0 {
		t.Error("alive mask not cleared on kill")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	// Most recently freed slot comes back first.
	if got := m.Spawn(1, 0, rng); got != a {
		t.Errorf("reused slot = %d, want %d", got, a)
	}
	if got := m.Spawn(1, 1, rng); got != b {
		t.Errorf("reused slot = %d, want %d", got, b)
	}
	// Free stack drained: next allocation advances the high-water mark.
	if got := m.Spawn(1, 2, rng); got != c+1 {
		t.Errorf("fresh slot = %d, want %d", got, c+1)
	}
}

func TestRefreshAliveList(t *testing.T) {
	m, _ := newTestManager(16)
	rng := rand.New(rand.NewSource(1))

	var pids []int32
	for i := 0; i < 6; i++ {
		pids = append(pids, m.Spawn(0, i, rng))
	}
	m.Kill(pids[1])
	m.Kill(pids[4])
	m.RefreshAliveList()

	alive := m.Alive()
	want := []int32{pids[0], pids[2], pids[3], pids[5]}
	if len(alive) != len(want) {
		t.Fatalf("alive list has %d entries, want %d", len(alive), len(want))
	}
	for i := range want {
		if alive[i] != want[i] {
			t.Errorf("alive[%d] = %d, want %d", i, alive[i], want[i])
		}
	}
	if len(alive) != m.Count() {
		t.Errorf("list length %d != count %d", len(alive), m.Count())
	}
}

func TestReset(t *testing.T) {
	m, mask := newTestManager(4)
	rng := rand.New(rand.NewSource(1))
	m.Spawn(0, 0, rng)
	m.Spawn(0, 1, rng)
	m.Kill(0)
	m.Reset()

	if m.Count() != 0 {
		t.Errorf("Count() = %d after Reset, want 0", m.Count())
	}
	for i, v := range mask {
		if v != 0 {
			t.Errorf("mask[%d] = %d after Reset, want 0", i, v)
		}
	}
	// First allocation after reset starts from slot 0 again.
	if got := m.Spawn(0, 0, rng); got != 0 {
		t.Errorf("first post-reset spawn = %d, want 0", got)
	}
}
