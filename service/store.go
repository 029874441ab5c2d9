package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stagelink/backend/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadySigned is returned when a signature already exists for a
// (contract, role) pair. Signatures are legal records: a second capture
// must not mint a second certificate for the same logical signature.
var ErrAlreadySigned = errors.New("signature already captured for this role")

// Store is the persistence boundary for the contract/signature core.
// Services hold a Store rather than a concrete backing so tests run
// against MemoryStore and production against PostgresStore.
type Store interface {
	// Contracts
	SaveContract(ctx context.Context, contract *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context) ([]*model.Contract, error)

	// Signatures. One per (contract, role); SaveSignature returns
	// ErrAlreadySigned on a duplicate pair.
	SaveSignature(ctx context.Context, sig *model.Signature) error
	GetSignature(ctx context.Context, contractID, role string) (*model.Signature, error)
	ListSignatures(ctx context.Context, contractID string) ([]*model.Signature, error)

	// Certificates
	SaveCertificate(ctx context.Context, cert *model.Certificate) error
	GetCertificate(ctx context.Context, certificateNumber string) (*model.Certificate, error)
	IncrementVerificationCount(ctx context.Context, certificateNumber string) (int, error)

	// Audit trail, append-only
	AppendAuditEntry(ctx context.Context, entry model.AuditTrailEntry) error
	GetAuditTrail(ctx context.Context, certificateNumber string) ([]model.AuditTrailEntry, error)

	// MarkReminderSent records that the reminder at offsetDays fired for
	// contractID on the given day (YYYY-MM-DD). Returns false when the
	// marker already existed, so a re-triggered sweep skips the send.
	MarkReminderSent(ctx context.Context, contractID string, offsetDays int, day string) (bool, error)
}

func reminderKey(contractID string, offsetDays int, day string) string {
	return fmt.Sprintf("%s/%d/%s", contractID, offsetDays, day)
}
