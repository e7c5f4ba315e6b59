package db

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"studbook/batch"
	"studbook/horse"
	"studbook/state"
)

// registryRow is the single row of the registry table.
const registryRow = 1

const (
	selectBatchQuery   = "SELECT `is_open`, `remaining` FROM `batch` WHERE `id` = ?"
	upsertBatchQuery   = "INSERT INTO `batch` (`id`, `is_open`, `remaining`) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE `is_open` = VALUES(`is_open`), `remaining` = VALUES(`remaining`)"
	selectActiveQuery  = "SELECT `active_batch` FROM `registry` WHERE `id` = ?"
	upsertActiveQuery  = "INSERT INTO `registry` (`id`, `active_batch`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `active_batch` = VALUES(`active_batch`)"
	selectListingQuery = "SELECT `fee`, `duration` FROM `stud` WHERE `horse_id` = ?"
	upsertListingQuery = "INSERT INTO `stud` (`horse_id`, `fee`, `duration`) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE `fee` = VALUES(`fee`), `duration` = VALUES(`duration`)"
	deleteListingQuery = "DELETE FROM `stud` WHERE `horse_id` = ?"
	selectBalanceQuery = "SELECT `balance` FROM `balance` WHERE `address` = ?"
	creditBalanceQuery = "INSERT INTO `balance` (`address`, `balance`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `balance` = `balance` + VALUES(`balance`)"
	forUpdate          = " FOR UPDATE"
)

type sqlTx struct {
	tx       *sql.Tx
	readOnly bool
}

// lock makes reads inside Update hold their rows until commit.
func (t *sqlTx) lock(query string) string {
	if t.readOnly {
		return query
	}
	return query + forUpdate
}

func (t *sqlTx) write() error {
	if t.readOnly {
		return state.ErrReadOnly
	}
	return nil
}

func (t *sqlTx) Batch(id uint64) (batch.Batch, bool, error) {
	b := batch.Batch{ID: id}

	err := t.tx.QueryRow(t.lock(selectBatchQuery), id).Scan(&b.IsOpen, &b.Remaining)
	if err == sql.ErrNoRows {
		return batch.Batch{}, false, nil
	}
	if err != nil {
		return batch.Batch{}, false, err
	}

	return b, true, nil
}

func (t *sqlTx) PutBatch(b batch.Batch) error {
	if err := t.write(); err != nil {
		return err
	}

	_, err := t.tx.Exec(upsertBatchQuery, b.ID, b.IsOpen, b.Remaining)
	return err
}

func (t *sqlTx) ActiveBatch() (uint64, error) {
	var id uint64

	err := t.tx.QueryRow(t.lock(selectActiveQuery), registryRow).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	return id, err
}

func (t *sqlTx) SetActiveBatch(id uint64) error {
	if err := t.write(); err != nil {
		return err
	}

	_, err := t.tx.Exec(upsertActiveQuery, registryRow, id)
	return err
}

func (t *sqlTx) Listing(horseID uint64) (horse.StudListing, error) {
	var feeStr string
	var seconds int64

	err := t.tx.QueryRow(t.lock(selectListingQuery), horseID).Scan(&feeStr, &seconds)
	if err == sql.ErrNoRows {
		return horse.StudListing{}, nil
	}
	if err != nil {
		return horse.StudListing{}, err
	}

	fee, err := decimal.NewFromString(feeStr)
	if err != nil {
		return horse.StudListing{}, err
	}

	return horse.StudListing{
		IsListed: true,
		Fee:      fee,
		Duration: time.Duration(seconds) * time.Second,
	}, nil
}

// PutListing stores listed horses and deletes the row of a cleared listing.
func (t *sqlTx) PutListing(horseID uint64, l horse.StudListing) error {
	if err := t.write(); err != nil {
		return err
	}

	if !l.IsListed {
		_, err := t.tx.Exec(deleteListingQuery, horseID)
		return err
	}

	_, err := t.tx.Exec(upsertListingQuery, horseID, l.Fee.String(), int64(l.Duration/time.Second))
	return err
}

func (t *sqlTx) Balance(addr string) (decimal.Decimal, error) {
	var balanceStr string

	err := t.tx.QueryRow(t.lock(selectBalanceQuery), addr).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromString(balanceStr)
}

func (t *sqlTx) Credit(addr string, amount decimal.Decimal) error {
	if err := t.write(); err != nil {
		return err
	}

	_, err := t.tx.Exec(creditBalanceQuery, addr, amount.String())
	return err
}
