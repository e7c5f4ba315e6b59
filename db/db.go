package db

import (
	"database/sql"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"

	"studbook/config"
	"studbook/log"
	"studbook/state"
)

// Store keeps ledger state in mysql. See schema.sql for the tables.
type Store struct {
	dsn string

	mu     sync.RWMutex
	conn   *sql.DB
	locker uint32

	// RetryWait is the pause between reconnect attempts.
	RetryWait time.Duration
}

var _ state.Store = (*Store)(nil)

// Init connects to the configured mysql database.
func Init() *Store {
	s, err := Open(config.GetDbConnStr())
	if err != nil {
		panic(err)
	}

	return s
}

// Open returns a store connected to dsn.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	s := New(conn)
	s.dsn = dsn
	return s, nil
}

// New wraps an established connection. The store cannot reconnect without a dsn.
func New(conn *sql.DB) *Store {
	return &Store{
		conn:      conn,
		RetryWait: 5 * time.Second,
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db().Close()
}

// Update runs fn in a transaction holding row locks on everything it reads.
func (s *Store) Update(fn func(state.Tx) error) error {
	return s.transact(func(tx *sql.Tx) error {
		return fn(&sqlTx{tx: tx})
	})
}

// View runs fn in a transaction that rejects writes.
func (s *Store) View(fn func(state.Tx) error) error {
	return s.transact(func(tx *sql.Tx) error {
		return fn(&sqlTx{tx: tx, readOnly: true})
	})
}

func (s *Store) db() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

func (s *Store) reconnect() {
	if !atomic.CompareAndSwapUint32(&s.locker, 0, 1) {
		for {
			// Lock was held by others, wait till lock released.
			time.Sleep(20 * time.Millisecond)
			if atomic.LoadUint32(&s.locker) != 1 {
				return
			}
		}
	}

	defer atomic.StoreUint32(&s.locker, 0)

	for {
		log.Printf("Try Reconnecting to database...")
		conn, err := sql.Open("mysql", s.dsn)
		if err == nil {
			if err = conn.Ping(); err == nil {
				s.mu.Lock()
				old := s.conn
				s.conn = conn
				s.mu.Unlock()
				old.Close()
				return
			}
			conn.Close()
		}

		log.Printf("Wait for few seconds to reconnect again")
		time.Sleep(s.RetryWait)
	}
}

// transact only retries when the transaction could not begin. Once fn has run,
// the ledger may have seen its side effects, so errors are returned as is.
func (s *Store) transact(txFunc func(*sql.Tx) error) (err error) {
	tx, err := s.db().Begin()
	if err != nil {
		if !connErr(err) || s.dsn == "" {
			return err
		}

		s.reconnect()
		return s.transact(txFunc)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	return txFunc(tx)
}

func connErr(err error) bool {
	if err == nil {
		return false
	}

	if err == mysql.ErrInvalidConn ||
		strings.HasSuffix(err.Error(), "operation timed out") ||
		strings.HasSuffix(err.Error(), "Server shutdown in progress") ||
		strings.HasPrefix(err.Error(), "Error 1290") {
		log.Println(err)
		return true
	}

	return false
}
