package repository

import (
	"context"
	"sort"
	"sync"

	"licenseplatform/services/activation-service/internal/domain"
)

// MemoryBindingStore keeps bindings in process memory (development/testing use).
type MemoryBindingStore struct {
	mu       sync.RWMutex
	bindings map[string]map[string]domain.Binding
}

func NewMemoryBindingStore() *MemoryBindingStore {
	return &MemoryBindingStore{
		bindings: make(map[string]map[string]domain.Binding),
	}
}

func (s *MemoryBindingStore) ListBySerial(ctx context.Context, serialNo string) ([]domain.Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list bindings", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Binding, 0, len(s.bindings[serialNo]))
	for _, b := range s.bindings[serialNo] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MachineID < out[j].MachineID })
	return out, nil
}

func (s *MemoryBindingStore) Bind(ctx context.Context, b domain.Binding, limit int) (domain.BindResult, error) {
	if err := ctx.Err(); err != nil {
		return 0, &domain.StoreError{Op: "bind", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	serial, ok := s.bindings[b.SerialNo]
	if !ok {
		serial = make(map[string]domain.Binding)
		s.bindings[b.SerialNo] = serial
	}
	if _, exists := serial[b.MachineID]; exists {
		serial[b.MachineID] = b
		return domain.BindUpdated, nil
	}
	if len(serial) >= limit {
		return 0, &domain.SlotsExhaustedError{Bound: len(serial)}
	}
	serial[b.MachineID] = b
	return domain.BindCreated, nil
}

// Put stores b without any slot check. Tests use it to seed states the
// resolver itself would never produce.
func (s *MemoryBindingStore) Put(b domain.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	serial, ok := s.bindings[b.SerialNo]
	if !ok {
		serial = make(map[string]domain.Binding)
		s.bindings[b.SerialNo] = serial
	}
	serial[b.MachineID] = b
}

// Count returns the number of machines bound to serialNo.
func (s *MemoryBindingStore) Count(serialNo string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings[serialNo])
}
