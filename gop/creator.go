// Package gop admits new horses against the currently open batch.
package gop

import (
	"github.com/shopspring/decimal"

	"studbook/batch"
	"studbook/ledger"
	"studbook/log"
	"studbook/revert"
	"studbook/state"
	"studbook/tx"
	"studbook/util"
)

// Price is the minimum payment for one admission.
var Price = decimal.RequireFromString("0.40")

// Creator owns the batch lifecycle and mints horses through the asset ledger.
type Creator struct {
	admin  string
	store  state.Store
	ledger ledger.AssetLedger
}

// NewCreator returns a Creator administered by admin.
func NewCreator(admin string, store state.Store, l ledger.AssetLedger) *Creator {
	return &Creator{
		admin:  admin,
		store:  store,
		ledger: l,
	}
}

// Admin returns the administrative principal.
func (c *Creator) Admin() string {
	return c.admin
}

func (c *Creator) onlyAdmin(op string, call tx.Invocation) error {
	if call.From != c.admin {
		return revert.New(op, revert.ErrAuthorization, "%s is not the administrator", call.From)
	}
	return nil
}

// OpenBatch routes admissions to batch id. The capacity counter starts at
// the ceiling on the first opening and is kept on later ones.
// Opening a batch while a different one is open is rejected.
func (c *Creator) OpenBatch(call tx.Invocation, id uint64) error {
	const op = "openBatch"

	if err := c.onlyAdmin(op, call); err != nil {
		return err
	}
	if !batch.Known(id) {
		return revert.New(op, revert.ErrInvalidArgument, "unknown batch %d", id)
	}

	return c.store.Update(func(t state.Tx) error {
		active, err := t.ActiveBatch()
		if err != nil {
			return err
		}
		if active != 0 && active != id {
			return revert.New(op, revert.ErrBatchConflict, "batch %d is open", active)
		}

		b, ok, err := t.Batch(id)
		if err != nil {
			return err
		}
		if !ok {
			b = batch.New(id)
		}
		b.IsOpen = true

		if err := t.PutBatch(b); err != nil {
			return err
		}
		return t.SetActiveBatch(id)
	})
}

// CloseBatch stops routing admissions to batch id. Closing a batch that is
// not open succeeds without changes.
func (c *Creator) CloseBatch(call tx.Invocation, id uint64) error {
	if err := c.onlyAdmin("closeBatch", call); err != nil {
		return err
	}

	return c.store.Update(func(t state.Tx) error {
		b, ok, err := t.Batch(id)
		if err != nil {
			return err
		}
		if ok && b.IsOpen {
			b.IsOpen = false
			if err := t.PutBatch(b); err != nil {
				return err
			}
		}

		active, err := t.ActiveBatch()
		if err != nil {
			return err
		}
		if active == id {
			return t.SetActiveBatch(0)
		}
		return nil
	})
}

// CreateGOP mints a horse for beneficiary with the genotype and bloodline of
// the open batch, debits one unit of its capacity and credits the payment to
// the administrator. It returns the id of the new horse.
//
// The debit and credit commit before the horse is registered, so a minted
// horse is always counted. If registration fails they are reverted.
func (c *Creator) CreateGOP(call tx.Invocation, beneficiary string, contentHash string) (uint64, error) {
	const op = "createGOP"

	if call.Value.LessThan(Price) {
		return 0, revert.New(op, revert.ErrPayment, "paid %s, price is %s", call.Value, Price)
	}
	if !util.AddressValid(beneficiary) {
		return 0, revert.New(op, revert.ErrInvalidArgument, "invalid beneficiary %q", beneficiary)
	}

	var (
		admitted batch.Batch
		closed   bool
	)
	err := c.store.Update(func(t state.Tx) error {
		active, err := t.ActiveBatch()
		if err != nil {
			return err
		}
		if active == 0 {
			return revert.New(op, revert.ErrNoOpenBatch, "")
		}

		b, ok, err := t.Batch(active)
		if err != nil {
			return err
		}
		if !ok || !b.Accepting() {
			return revert.New(op, revert.ErrNoOpenBatch, "batch %d is not accepting admissions", active)
		}

		closed = b.Admit()
		if closed {
			if err := t.SetActiveBatch(0); err != nil {
				return err
			}
		}
		if err := t.PutBatch(b); err != nil {
			return err
		}
		if err := t.Credit(c.admin, call.Value); err != nil {
			return err
		}

		admitted = b
		return nil
	})
	if err != nil {
		return 0, err
	}

	genotype, bloodline := batch.DeriveAttributes(admitted)
	id, err := c.ledger.RegisterAsset(beneficiary, genotype, bloodline, contentHash)
	if err != nil {
		if rerr := c.revertAdmission(admitted.ID, closed, call.Value); rerr != nil {
			log.Errorf("Failed to revert admission to batch %d after %v: %v", admitted.ID, err, rerr)
		}
		return 0, err
	}

	return id, nil
}

// revertAdmission gives back the capacity and payment of an admission whose
// horse was never registered. A batch closed by that admission is reopened
// when no other batch became active since.
func (c *Creator) revertAdmission(id uint64, closed bool, paid decimal.Decimal) error {
	return c.store.Update(func(t state.Tx) error {
		b, ok, err := t.Batch(id)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		b.Remaining++
		if closed {
			active, err := t.ActiveBatch()
			if err != nil {
				return err
			}
			if active == 0 {
				b.IsOpen = true
				if err := t.SetActiveBatch(id); err != nil {
					return err
				}
			}
		}

		if err := t.PutBatch(b); err != nil {
			return err
		}
		return t.Credit(c.admin, paid.Neg())
	})
}

// HorsesRemaining returns the remaining capacity of batch id, 0 for batches never opened.
func (c *Creator) HorsesRemaining(id uint64) (uint32, error) {
	var remaining uint32
	err := c.store.View(func(t state.Tx) error {
		b, _, err := t.Batch(id)
		remaining = b.Remaining
		return err
	})
	return remaining, err
}

// Batch returns the state of batch id.
func (c *Creator) Batch(id uint64) (batch.Batch, bool, error) {
	var (
		b  batch.Batch
		ok bool
	)
	err := c.store.View(func(t state.Tx) error {
		var err error
		b, ok, err = t.Batch(id)
		return err
	})
	return b, ok, err
}

// ActiveBatch returns the id of the open batch, 0 if none.
func (c *Creator) ActiveBatch() (uint64, error) {
	var active uint64
	err := c.store.View(func(t state.Tx) error {
		var err error
		active, err = t.ActiveBatch()
		return err
	})
	return active, err
}

// Balance returns the payments accumulated for addr.
func (c *Creator) Balance(addr string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := c.store.View(func(t state.Tx) error {
		var err error
		balance, err = t.Balance(addr)
		return err
	})
	return balance, err
}
