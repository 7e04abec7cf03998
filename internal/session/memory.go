package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type ledgerKey struct {
	recipe uuid.UUID
	user   uuid.UUID
}

// MemoryLedger keeps entries for the lifetime of the process.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries map[ledgerKey]Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[ledgerKey]Entry)}
}

func (l *MemoryLedger) Get(ctx context.Context, recipeID, userID uuid.UUID) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries[ledgerKey{recipeID, userID}], nil
}

func (l *MemoryLedger) Put(ctx context.Context, recipeID, userID uuid.UUID, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[ledgerKey{recipeID, userID}] = e
	return nil
}

func (l *MemoryLedger) CompareAndPut(ctx context.Context, recipeID, userID uuid.UUID, old, next Entry) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{recipeID, userID}
	if l.entries[k] != old {
		return false, nil
	}
	l.entries[k] = next
	return true, nil
}

// Len reports the number of entries.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// MemoryRegistry keeps one MemoryLedger per session id.
type MemoryRegistry struct {
	mu      sync.Mutex
	ledgers map[string]*MemoryLedger
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{ledgers: make(map[string]*MemoryLedger)}
}

func (r *MemoryRegistry) Ledger(sessionID string) Ledger {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[sessionID]
	if !ok {
		l = NewMemoryLedger()
		r.ledgers[sessionID] = l
	}
	return l
}

// Forget drops a session's ledger, as on logout.
func (r *MemoryRegistry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ledgers, sessionID)
}
