package batch

import (
	"studbook/horse"
)

const (
	// Ceiling is the capacity a batch starts with on its first opening.
	Ceiling = 1000
	// LowWaterMark closes a batch once its remaining capacity drops to it.
	LowWaterMark = 500
)

// bloodlines maps every known batch id to the lineage its horses inherit.
var bloodlines = map[uint64]horse.Bloodline{
	1:  horse.Nakamoto,
	2:  horse.Nakamoto,
	3:  horse.Szabo,
	4:  horse.Szabo,
	5:  horse.Finney,
	6:  horse.Finney,
	7:  horse.Finney,
	8:  horse.Buterin,
	9:  horse.Buterin,
	10: horse.Buterin,
}

// Batch is an admission window with its own capacity counter.
type Batch struct {
	ID        uint64
	IsOpen    bool
	Remaining uint32
}

// New returns a closed batch at full capacity.
func New(id uint64) Batch {
	return Batch{
		ID:        id,
		Remaining: Ceiling,
	}
}

// Known reports whether id has an entry in the lineage table.
func Known(id uint64) bool {
	_, ok := bloodlines[id]
	return ok
}

// IDs returns all known batch ids in ascending order.
func IDs() []uint64 {
	ids := make([]uint64, 0, len(bloodlines))
	for id := uint64(1); len(ids) < len(bloodlines); id++ {
		if Known(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// DeriveAttributes returns the genotype and bloodline of a horse admitted while b is open.
func DeriveAttributes(b Batch) (uint8, horse.Bloodline) {
	return uint8(b.ID), bloodlines[b.ID]
}

// Accepting reports whether an admission can be routed to b.
func (b Batch) Accepting() bool {
	return b.IsOpen && b.Remaining > 0
}

// Admit consumes one unit of capacity. It closes the batch and returns true
// when the remaining capacity drops from above the low-water mark to it,
// or when capacity runs out.
func (b *Batch) Admit() bool {
	if b.Remaining == 0 {
		return false
	}

	crossed := b.Remaining > LowWaterMark && b.Remaining-1 <= LowWaterMark
	b.Remaining--

	if crossed || b.Remaining == 0 {
		b.IsOpen = false
		return true
	}
	return false
}

// Sold returns how many horses were admitted against b.
func (b Batch) Sold() int {
	return Ceiling - int(b.Remaining)
}
