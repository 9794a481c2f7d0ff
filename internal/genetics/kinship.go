// Package genetics provides the DNA store, the kinship matrix, and the
// family-size bookkeeping the reward function is built on.
package genetics

import "math"

// Kinship maintains a symmetric capacity×capacity byte matrix where cell
// (i, j) counts the genes slots i and j share. The matrix and the DNA
// table live in host-shared buffers; family-size vectors are owned here.
//
// Rows of dead slots are deliberately never cleared: the reward engine
// reads the pre-death relations of slots terminated in the current tick.
type Kinship struct {
	capacity int
	nGenes   int
	matrix   []uint8 // capacity*capacity, host-shared
	dnas     []uint8 // capacity*nGenes, host-shared
	family   []int32
	prev     []int32
}

// NewKinship wraps the host-shared matrix and DNA buffers.
func NewKinship(capacity, nGenes int, matrix, dnas []uint8) *Kinship {
	return &Kinship{
		capacity: capacity,
		nGenes:   nGenes,
		matrix:   matrix,
		dnas:     dnas,
		family:   make([]int32, capacity),
		prev:     make([]int32, capacity),
	}
}

// Reset zeroes the matrix and sets every diagonal cell to the gene count.
func (k *Kinship) Reset() {
	for i := range k.matrix {
		k.matrix[i] = 0
	}
	for i := 0; i < k.capacity; i++ {
		k.matrix[i*k.capacity+i] = uint8(k.nGenes)
	}
	for i := range k.family {
		k.family[i] = 0
		k.prev[i] = 0
	}
}

// DNA returns the allele vector of a slot.
func (k *Kinship) DNA(pid int32) []uint8 {
	return k.dnas[int(pid)*k.nGenes : int(pid)*k.nGenes+k.nGenes]
}

// At returns the kinship between two slots.
func (k *Kinship) At(i, j int32) uint8 {
	return k.matrix[int(i)*k.capacity+int(j)]
}

// OnBirth fills the row and column of a freshly-spawned slot against every
// other living slot and seeds its previous family size with the family
// size at birth. Iterates the alive mask, not the cached list: the newborn
// is already in the mask while the list is only refreshed at tick end.
func (k *Kinship) OnBirth(pid int32, aliveMask []uint8) {
	k.matrix[int(pid)*k.capacity+int(pid)] = uint8(k.nGenes)
	dna := k.DNA(pid)
	total := int32(k.nGenes) // Self-kinship
	for q := 0; q < k.capacity; q++ {
		if aliveMask[q] == 0 || int32(q) == pid {
			continue
		}
		other := k.dnas[q*k.nGenes : q*k.nGenes+k.nGenes]
		n := uint8(0)
		for g := 0; g < k.nGenes; g++ {
			if dna[g] == other[g] {
				n++
			}
		}
		k.matrix[int(pid)*k.capacity+q] = n
		k.matrix[q*k.capacity+int(pid)] = n
		total += int32(n)
	}
	k.prev[pid] = total
}

// ComputeFamilySizes sums each listed slot's kinship across the current
// alive list. The slot list may include slots terminated this tick; their
// un-cleared rows yield their final family size.
func (k *Kinship) ComputeFamilySizes(pids, alive []int32) {
	for _, p := range pids {
		row := k.matrix[int(p)*k.capacity:]
		sum := int32(0)
		for _, q := range alive {
			sum += int32(row[q])
		}
		k.family[p] = sum
	}
}

// FamilySize returns the family size computed by the last
// ComputeFamilySizes pass.
func (k *Kinship) FamilySize(pid int32) int32 {
	return k.family[pid]
}

// PrevFamilySize returns the family size used for the previous reward.
func (k *Kinship) PrevFamilySize(pid int32) int32 {
	return k.prev[pid]
}

// CommitFamilySizes records the current family sizes as the baseline for
// the next reward computation.
func (k *Kinship) CommitFamilySizes(pids []int32) {
	for _, p := range pids {
		k.prev[p] = k.family[p]
	}
}

// GeneticDiversity returns the summed per-gene allele entropy, in bits,
// over the listed slots.
func GeneticDiversity(dnas []uint8, alive []int32, nGenes, nAlleles int) float64 {
	if len(alive) == 0 || nGenes == 0 {
		return 0
	}
	total := 0.0
	counts := make([]int, nAlleles)
	for g := 0; g < nGenes; g++ {
		for i := range counts {
			counts[i] = 0
		}
		for _, p := range alive {
			counts[dnas[int(p)*nGenes+g]]++
		}
		for _, n := range counts {
			if n == 0 {
				continue
			}
			p := float64(n) / float64(len(alive))
			total -= p * math.Log2(p)
		}
	}
	return total
}
