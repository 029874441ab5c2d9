package model

import (
	"time"
)

// Signer roles
const (
	RoleArtist = "artist"
	RoleVenue  = "venue"
)

// ValidSignerRole reports whether role is a known signer role
func ValidSignerRole(role string) bool {
	return role == RoleArtist || role == RoleVenue
}

// Signature is a captured digital signature for one role on a contract.
// One signature per (contract, role); signatures are legal records and
// are never deleted.
type Signature struct {
	ContractID         string    `json:"contract_id"`
	SignerName         string    `json:"signer_name"`
	SignerEmail        string    `json:"signer_email"`
	SignerRole         string    `json:"signer_role"`
	SignatureImage     string    `json:"signature_image"` // base64 payload
	SignatureHash      string    `json:"signature_hash"`
	SignatureTimestamp time.Time `json:"signature_timestamp"`
	CertificateNumber  string    `json:"certificate_number"`
}

// Certificate binds a captured signature to a verifiable record
type Certificate struct {
	CertificateNumber string    `json:"certificate_number"`
	ContractID        string    `json:"contract_id"`
	SignerRole        string    `json:"signer_role"`
	SignatureHash     string    `json:"signature_hash"`
	IssuedAt          time.Time `json:"issued_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	VerificationCount int       `json:"verification_count"`
	Revoked           bool      `json:"revoked"`
}

// Audit trail actions
const (
	AuditActionCreated        = "created"
	AuditActionVerified       = "verified"
	AuditActionTamperDetected = "tamper-detected"
)

// AuditTrailEntry is one append-only record of an action taken against a
// certificate. The first entry for any certificate is always "created".
type AuditTrailEntry struct {
	CertificateNumber string    `json:"certificate_number"`
	Action            string    `json:"action"`
	Timestamp         time.Time `json:"timestamp"`
}
