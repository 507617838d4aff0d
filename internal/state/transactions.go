// Package state holds the in-memory transaction collection shared between
// the import path, the reports and the API handlers. Mutation is wholesale
// only: append a committed batch or clear everything, never edit in place.
package state

import (
	"sync"

	"github.com/taxpj/backend/internal/domain"
)

// TransactionStore is the bounded in-memory transaction list. It is safe for
// concurrent use by HTTP handlers.
type TransactionStore struct {
	mu  sync.RWMutex
	txs []domain.Transaction
}

// NewTransactionStore creates an empty store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

// Append commits one import batch.
func (s *TransactionStore) Append(txs []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
}

// List returns a copy of the current collection.
func (s *TransactionStore) List() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

// Clear drops every transaction (user-triggered reset).
func (s *TransactionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = nil
}

// Len reports the current number of transactions.
func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}
