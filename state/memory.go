package state

import (
	"sync"

	"github.com/shopspring/decimal"

	"studbook/batch"
	"studbook/horse"
)

// Memory is an in-process Store. Calls are serialized by a single lock.
type Memory struct {
	mu       sync.Mutex
	batches  map[uint64]batch.Batch
	active   uint64
	listings map[uint64]horse.StudListing
	balances map[string]decimal.Decimal
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		batches:  make(map[uint64]batch.Batch),
		listings: make(map[uint64]horse.StudListing),
		balances: make(map[string]decimal.Decimal),
	}
}

// Update runs fn against staged copies of the touched records.
func (m *Memory) Update(fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := newMemTx(m, false)
	if err := fn(t); err != nil {
		return err
	}

	t.apply()
	return nil
}

// View runs fn against the current state.
func (m *Memory) View(fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(newMemTx(m, true))
}

// memTx overlays pending writes on top of the committed maps.
type memTx struct {
	m        *Memory
	readOnly bool

	batches  map[uint64]batch.Batch
	active   *uint64
	listings map[uint64]horse.StudListing
	balances map[string]decimal.Decimal
}

func newMemTx(m *Memory, readOnly bool) *memTx {
	return &memTx{
		m:        m,
		readOnly: readOnly,
		batches:  make(map[uint64]batch.Batch),
		listings: make(map[uint64]horse.StudListing),
		balances: make(map[string]decimal.Decimal),
	}
}

func (t *memTx) Batch(id uint64) (batch.Batch, bool, error) {
	if b, ok := t.batches[id]; ok {
		return b, true, nil
	}
	b, ok := t.m.batches[id]
	return b, ok, nil
}

func (t *memTx) PutBatch(b batch.Batch) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.batches[b.ID] = b
	return nil
}

func (t *memTx) ActiveBatch() (uint64, error) {
	if t.active != nil {
		return *t.active, nil
	}
	return t.m.active, nil
}

func (t *memTx) SetActiveBatch(id uint64) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.active = &id
	return nil
}

func (t *memTx) Listing(horseID uint64) (horse.StudListing, error) {
	if l, ok := t.listings[horseID]; ok {
		return l, nil
	}
	return t.m.listings[horseID], nil
}

func (t *memTx) PutListing(horseID uint64, l horse.StudListing) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.listings[horseID] = l
	return nil
}

func (t *memTx) Balance(addr string) (decimal.Decimal, error) {
	if b, ok := t.balances[addr]; ok {
		return b, nil
	}
	if b, ok := t.m.balances[addr]; ok {
		return b, nil
	}
	return decimal.Zero, nil
}

func (t *memTx) Credit(addr string, amount decimal.Decimal) error {
	if t.readOnly {
		return ErrReadOnly
	}
	balance, _ := t.Balance(addr)
	t.balances[addr] = balance.Add(amount)
	return nil
}

func (t *memTx) apply() {
	for id, b := range t.batches {
		t.m.batches[id] = b
	}
	if t.active != nil {
		t.m.active = *t.active
	}
	for id, l := range t.listings {
		if l.IsListed {
			t.m.listings[id] = l
		} else {
			delete(t.m.listings, id)
		}
	}
	for addr, b := range t.balances {
		t.m.balances[addr] = b
	}
}
