package repository

import (
	"context"
	"sync"

	"licenseplatform/services/activation-service/internal/domain"
)

type auditKey struct {
	serialNo  string
	timestamp int64
}

// MemoryAuditLog stores audit entries in memory (development/testing use).
type MemoryAuditLog struct {
	mu      sync.Mutex
	seen    map[auditKey]struct{}
	entries []domain.AuditEntry
}

func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{seen: make(map[auditKey]struct{})}
}

func (l *MemoryAuditLog) Append(_ context.Context, entry domain.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := auditKey{serialNo: entry.SerialNo, timestamp: entry.Timestamp}
	if _, dup := l.seen[key]; dup {
		return domain.ErrDuplicateAuditEntry
	}
	l.seen[key] = struct{}{}
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of all stored entries in append order.
func (l *MemoryAuditLog) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
