package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/model"
)

// MemoryStore is an in-memory Store used for tests and single-node
// deployments. Mutations copy records in and out so callers never share
// pointers with the store.
type MemoryStore struct {
	mu           sync.RWMutex
	contracts    map[string]*model.Contract
	signatures   map[string]*model.Signature // key: contractID + "/" + role
	certificates map[string]*model.Certificate
	audit        map[string][]model.AuditTrailEntry
	reminders    map[string]struct{} // key: contractID + "/" + offset + "/" + day
	maxContracts int                 // 0 = unlimited
}

// NewMemoryStore creates a MemoryStore with the configured limits
func NewMemoryStore(cfg *config.StoreConfig) *MemoryStore {
	maxContracts := 0
	if cfg != nil && cfg.MaxContracts > 0 {
		maxContracts = cfg.MaxContracts
	}
	slog.Info("memory store initialized", "max_contracts", maxContracts)
	return &MemoryStore{
		contracts:    make(map[string]*model.Contract),
		signatures:   make(map[string]*model.Signature),
		certificates: make(map[string]*model.Certificate),
		audit:        make(map[string][]model.AuditTrailEntry),
		reminders:    make(map[string]struct{}),
		maxContracts: maxContracts,
	}
}

func (s *MemoryStore) SaveContract(_ context.Context, contract *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *contract
	stored.UpdatedAt = time.Now()
	s.contracts[stored.ID] = &stored

	s.cleanupIfNeeded()
	return nil
}

func (s *MemoryStore) GetContract(_ context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *MemoryStore) ListContracts(_ context.Context) ([]*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out := *c
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) SaveSignature(_ context.Context, sig *model.Signature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sig.ContractID + "/" + sig.SignerRole
	if _, exists := s.signatures[key]; exists {
		return ErrAlreadySigned
	}
	stored := *sig
	s.signatures[key] = &stored
	return nil
}

func (s *MemoryStore) GetSignature(_ context.Context, contractID, role string) (*model.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sig, ok := s.signatures[contractID+"/"+role]
	if !ok {
		return nil, ErrNotFound
	}
	out := *sig
	return &out, nil
}

func (s *MemoryStore) ListSignatures(_ context.Context, contractID string) ([]*model.Signature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Signature
	for _, sig := range s.signatures {
		if sig.ContractID == contractID {
			out := *sig
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SignatureTimestamp.Before(result[j].SignatureTimestamp)
	})
	return result, nil
}

func (s *MemoryStore) SaveCertificate(_ context.Context, cert *model.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cert
	s.certificates[stored.CertificateNumber] = &stored
	return nil
}

func (s *MemoryStore) GetCertificate(_ context.Context, certificateNumber string) (*model.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, ok := s.certificates[certificateNumber]
	if !ok {
		return nil, ErrNotFound
	}
	out := *cert
	return &out, nil
}

func (s *MemoryStore) IncrementVerificationCount(_ context.Context, certificateNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cert, ok := s.certificates[certificateNumber]
	if !ok {
		return 0, ErrNotFound
	}
	cert.VerificationCount++
	return cert.VerificationCount, nil
}

func (s *MemoryStore) AppendAuditEntry(_ context.Context, entry model.AuditTrailEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit[entry.CertificateNumber] = append(s.audit[entry.CertificateNumber], entry)
	return nil
}

func (s *MemoryStore) GetAuditTrail(_ context.Context, certificateNumber string) ([]model.AuditTrailEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.audit[certificateNumber]
	out := make([]model.AuditTrailEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *MemoryStore) MarkReminderSent(_ context.Context, contractID string, offsetDays int, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reminderKey(contractID, offsetDays, day)
	if _, exists := s.reminders[key]; exists {
		return false, nil
	}
	s.reminders[key] = struct{}{}
	return true, nil
}

// cleanupIfNeeded removes oldest contracts if store exceeds maxContracts.
// Must be called with lock held. Signatures and certificates are never
// cleaned up (legal records).
func (s *MemoryStore) cleanupIfNeeded() {
	if s.maxContracts <= 0 {
		return // Unlimited
	}

	if len(s.contracts) <= s.maxContracts {
		return
	}

	contracts := make([]*model.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})

	removeCount := len(contracts) - s.maxContracts
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old contract",
			"contract_id", contracts[i].ID,
			"created_at", contracts[i].CreatedAt,
		)
		delete(s.contracts, contracts[i].ID)
	}
}

// Count returns the number of contracts in the store
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contracts)
}
