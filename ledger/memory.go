package ledger

import (
	"sync"

	"studbook/horse"
)

// Memory is an in-process AssetLedger. Ids are sequential from 0;
// even ids are male and odd ids female.
type Memory struct {
	mu     sync.Mutex
	horses []horse.Attributes
}

// NewMemory returns an empty ledger.
func NewMemory() *Memory {
	return &Memory{}
}

// SexOf returns the sex the in-process ledger assigns to id.
func SexOf(id uint64) horse.Sex {
	if id%2 == 0 {
		return horse.Male
	}
	return horse.Female
}

// RegisterAsset appends a new horse.
func (m *Memory) RegisterAsset(owner string, genotype uint8, bloodline horse.Bloodline, contentHash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uint64(len(m.horses))
	m.horses = append(m.horses, horse.Attributes{
		ID:          id,
		Owner:       owner,
		ContentHash: contentHash,
		Traits: horse.Traits{
			Genotype:  genotype,
			Bloodline: bloodline,
			Sex:       SexOf(id),
		},
	})

	return id, nil
}

// GetAttributes returns the record of id.
func (m *Memory) GetAttributes(id uint64) (horse.Attributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id >= uint64(len(m.horses)) {
		return horse.Attributes{ID: id}, nil
	}
	return m.horses[id], nil
}

// Transfer changes the owner of a horse. Transfers are driven by the
// surrounding asset registry; the in-process ledger exposes it for tooling and tests.
func (m *Memory) Transfer(id uint64, to string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id >= uint64(len(m.horses)) {
		return false
	}
	m.horses[id].Owner = to
	return true
}

// Count returns the number of registered horses.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.horses)
}
