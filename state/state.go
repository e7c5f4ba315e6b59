// Package state holds the registry's mutable ledger state behind a
// transactional interface. A call either commits all of its writes or none.
package state

import (
	"errors"

	"github.com/shopspring/decimal"

	"studbook/batch"
	"studbook/horse"
)

// ErrReadOnly is returned by writes attempted inside View.
var ErrReadOnly = errors.New("state: write in read-only transaction")

// Tx is the view of ledger state available to a single call.
type Tx interface {
	// Batch returns the batch with id. ok is false for batches that were never opened.
	Batch(id uint64) (b batch.Batch, ok bool, err error)
	PutBatch(b batch.Batch) error

	// ActiveBatch returns the id of the open batch admissions route to, or 0.
	ActiveBatch() (uint64, error)
	SetActiveBatch(id uint64) error

	// Listing returns the stud listing of a horse, the zero listing if none exists.
	Listing(horseID uint64) (horse.StudListing, error)
	PutListing(horseID uint64, l horse.StudListing) error

	Balance(addr string) (decimal.Decimal, error)
	Credit(addr string, amount decimal.Decimal) error
}

// Store runs calls against ledger state.
type Store interface {
	// Update runs fn and commits its writes only if fn returns nil.
	Update(fn func(Tx) error) error
	// View runs fn without allowing writes.
	View(fn func(Tx) error) error
}
