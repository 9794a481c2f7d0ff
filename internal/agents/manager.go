package agents

import (
	"math/rand"

	"github.com/talgya/territories/internal/bitset"
)

// None marks the absence of an agent slot.
const None int32 = -1

// Manager allocates agent slots out of a fixed-capacity table. Freed slots
// are recycled LIFO; first-time allocations come from a high-water mark.
// The cached alive list is only valid after RefreshAliveList and must be
// rebuilt after any batch of spawns or kills.
type Manager struct {
	capacity  int
	agents    []Agent
	free      []int32
	alive     *bitset.Set
	alivePIDs []int32
	aliveMask []uint8 // Host-shared; one byte per slot
	nextPID   int32
	count     int
}

// NewManager creates a slot manager over a host-shared alive mask of
// exactly capacity bytes.
func NewManager(capacity int, aliveMask []uint8) *Manager {
	return &Manager{
		capacity:  capacity,
		agents:    make([]Agent, capacity),
		free:      make([]int32, 0, capacity),
		alive:     bitset.New(capacity),
		alivePIDs: make([]int32, 0, capacity),
		aliveMask: aliveMask,
	}
}

// Reset returns the manager to its post-init state: no slot alive, no slot
// ever allocated. Agent records are not cleared; spawn rewrites them.
func (m *Manager) Reset() {
	m.free = m.free[:0]
	m.alive.Clear()
	m.alivePIDs = m.alivePIDs[:0]
	for i := range m.aliveMask {
		m.aliveMask[i] = 0
	}
	m.nextPID = 0
	m.count = 0
}

// Spawn allocates a slot for a newborn at (r, c) and initialises its
// record. Returns None when the table is full. The caller owns the spatial
// index update and, for reproduction, the DNA copy.
func (m *Manager) Spawn(r, c int, rng *rand.Rand) int32 {
	if m.count == m.capacity {
		return None
	}
	var pid int32
	if n := len(m.free); n > 0 {
		pid = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		pid = m.nextPID
		m.nextPID++
	}

	m.alive.Add(int(pid))
	m.aliveMask[pid] = 1
	m.count++

	m.agents[pid] = Agent{
		Row:       int32(r),
		Col:       int32(c),
		Dir:       Direction(rng.Intn(NumDirections)),
		HP:        1,
		HPMax:     1,
		Satiation: MaxSatiation,
	}
	return pid
}

// Kill releases a slot back to the free stack. The agent record, the
// spatial index, and the kinship matrix are left to the caller.
func (m *Manager) Kill(pid int32) {
	m.free = append(m.free, pid)
	m.alive.Remove(int(pid))
	m.aliveMask[pid] = 0
	m.count--
}

// RefreshAliveList rebuilds the cached alive list from the bitset, in
// ascending slot order.
func (m *Manager) RefreshAliveList() {
	m.alivePIDs = m.alivePIDs[:m.capacity]
	n := m.alive.Enumerate(m.alivePIDs)
	m.alivePIDs = m.alivePIDs[:n]
}

// Alive returns the cached alive list. Callers may reorder it in place.
func (m *Manager) Alive() []int32 {
	return m.alivePIDs
}

// IsAlive reports whether the slot currently holds a living agent.
func (m *Manager) IsAlive(pid int32) bool {
	return m.aliveMask[pid] != 0
}

// Count returns the number of living agents.
func (m *Manager) Count() int {
	return m.count
}

// Capacity returns the size of the slot table.
func (m *Manager) Capacity() int {
	return m.capacity
}

// Get returns the slot record. Valid for any slot ever spawned.
func (m *Manager) Get(pid int32) *Agent {
	return &m.agents[pid]
}
