// Package ledger owns all per-user ledger state. The Store is the sole
// reader and writer of persisted ledgers: every mutation is a single
// load-modify-persist step serialized per user id, so callers never observe
// an interleaved read-modify-write.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"moneyplus/internal/core"
	"moneyplus/internal/log"
)

// RecordStore is the keyed byte-store the ledger persists through. Get must
// return (nil, nil) when the user has no record yet.
type RecordStore interface {
	Get(ctx context.Context, userID string) ([]byte, error)
	Put(ctx context.Context, userID string, data []byte) error
	Close() error
}

// Store loads, mutates and persists per-user ledgers.
type Store struct {
	records RecordStore
	timeout time.Duration
	logger  *log.Logger

	mu      sync.Mutex
	userMus map[string]*sync.Mutex
}

// NewStore wires a record store with a bounded persistence timeout.
func NewStore(records RecordStore, timeout time.Duration, logger *log.Logger) *Store {
	return &Store{
		records: records,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentLedger),
		userMus: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing all operations for one user id,
// creating it on first reference.
func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.userMus[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userMus[userID] = mu
	}
	return mu
}

// Load returns the user's persisted ledger. A missing or corrupt record
// yields a fresh empty ledger; only a backend failure is reported, and even
// then the empty ledger is still returned for best-effort replies.
func (s *Store) Load(ctx context.Context, userID string) (core.Ledger, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	return s.load(ctx, userID)
}

// AppendTransaction appends tx to the user's ledger, re-rounds the balance,
// persists and returns the updated ledger. Persistence is best-effort: on a
// failed write the updated in-memory ledger is still returned alongside a
// core.ErrPersistence so the caller can reply and log.
func (s *Store) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Ledger, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	led, err := s.load(ctx, userID)
	if err != nil {
		// Unreadable backend falls back to an empty ledger, same as a
		// corrupt record; the subsequent put reports the real trouble.
		s.logger.WarnContext(ctx, "Loading ledger failed, starting from empty",
			log.FieldUserID, userID, log.FieldError, err)
	}

	led.Append(tx)

	if err := s.persist(ctx, userID, led); err != nil {
		return led, err
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldUserID, userID,
		log.FieldExpression, tx.Expression,
		log.FieldAmount, tx.Amount.String(),
		log.FieldBalance, led.Balance.String())
	return led, nil
}

// Clear replaces the user's ledger with the empty one and persists it.
func (s *Store) Clear(ctx context.Context, userID string) (core.Ledger, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	led := core.NewLedger()
	if err := s.persist(ctx, userID, led); err != nil {
		return led, err
	}

	s.logger.InfoContext(ctx, "Ledger cleared", log.FieldUserID, userID)
	return led, nil
}

func (s *Store) load(ctx context.Context, userID string) (core.Ledger, error) {
	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.records.Get(getCtx, userID)
	if err != nil {
		return core.NewLedger(), fmt.Errorf("load ledger for %s: %w", userID, errors.Join(core.ErrPersistence, err))
	}
	if data == nil {
		return core.NewLedger(), nil
	}

	var led core.Ledger
	if err := json.Unmarshal(data, &led); err != nil {
		// Corrupt records are logged and treated as empty, never surfaced.
		s.logger.WarnContext(ctx, "Corrupt ledger record, treating as empty",
			log.FieldUserID, userID,
			log.FieldError, errors.Join(core.ErrCorruptRecord, err))
		return core.NewLedger(), nil
	}
	if led.Transactions == nil {
		led.Transactions = []core.Transaction{}
	}
	return led, nil
}

func (s *Store) persist(ctx context.Context, userID string, led core.Ledger) error {
	data, err := json.MarshalIndent(led, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger for %s: %w", userID, errors.Join(core.ErrPersistence, err))
	}

	putCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.records.Put(putCtx, userID, data); err != nil {
		return fmt.Errorf("save ledger for %s: %w", userID, errors.Join(core.ErrPersistence, err))
	}
	return nil
}

// Close releases the underlying record store.
func (s *Store) Close() error {
	return s.records.Close()
}
