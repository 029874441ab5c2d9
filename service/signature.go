package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/model"
	"github.com/stagelink/backend/pkg/logger"
)

// SignatureService captures digital signatures, mints certificates and
// answers verification queries. Integrity problems are reported as data
// (TamperDetected flags, boolean returns), never as errors, so callers
// decide remediation themselves.
type SignatureService struct {
	store        Store
	archive      *SignatureArchive // nil when archiving is disabled
	certValidity time.Duration
	now          func() time.Time
}

// NewSignatureService wires the signature service. archive may be nil.
func NewSignatureService(store Store, archive *SignatureArchive, cfg *config.ReminderConfig) *SignatureService {
	years := 10
	if cfg != nil && cfg.CertificateValidityYears > 0 {
		years = cfg.CertificateValidityYears
	}
	return &SignatureService{
		store:        store,
		archive:      archive,
		certValidity: time.Duration(years) * 365 * 24 * time.Hour,
		now:          time.Now,
	}
}

// SignatureData is the capture input from the signing form
type SignatureData struct {
	ContractID     string `json:"contract_id"`
	SignerName     string `json:"signer_name"`
	SignerEmail    string `json:"signer_email"`
	SignerRole     string `json:"signer_role"`
	SignatureImage string `json:"signature_image"`
}

// SignatureCaptureResult is the capture outcome. Validation failures fill
// Errors and leave the certificate fields empty; the caller renders them.
type SignatureCaptureResult struct {
	CertificateNumber string   `json:"certificate_number,omitempty"`
	SignatureHash     string   `json:"signature_hash,omitempty"`
	TamperDetected    bool     `json:"tamper_detected"`
	Errors            []string `json:"errors,omitempty"`
}

// CertificateIssueResult is returned by the explicit re-issue path
type CertificateIssueResult struct {
	CertificateNumber string    `json:"certificate_number"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// CertificateDetails is the full read model for one certificate
type CertificateDetails struct {
	CertificateNumber string    `json:"certificate_number"`
	ContractID        string    `json:"contract_id"`
	SignerName        string    `json:"signer_name"`
	SignerRole        string    `json:"signer_role"`
	SignatureHash     string    `json:"signature_hash"`
	IssuedAt          time.Time `json:"issued_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	VerificationCount int       `json:"verification_count"`
	Revoked           bool      `json:"revoked"`
	SignatureImageURL string    `json:"signature_image_url,omitempty"`
}

// CaptureAndVerifySignature validates the capture input, computes the
// signature hash, mints a certificate and records the created audit entry.
// Invalid input comes back as a populated Errors field, not an error: the
// signing form must be able to render failures without aborting batch flows.
func (s *SignatureService) CaptureAndVerifySignature(ctx context.Context, data SignatureData) (SignatureCaptureResult, error) {
	if errs := validateSignatureData(data); len(errs) > 0 {
		return SignatureCaptureResult{Errors: errs}, nil
	}

	now := s.now()
	hash := hashPayload(data.SignatureImage)
	certNumber := newCertificateNumber(now)

	sig := &model.Signature{
		ContractID:         data.ContractID,
		SignerName:         strings.TrimSpace(data.SignerName),
		SignerEmail:        strings.TrimSpace(data.SignerEmail),
		SignerRole:         data.SignerRole,
		SignatureImage:     data.SignatureImage,
		SignatureHash:      hash,
		SignatureTimestamp: now,
		CertificateNumber:  certNumber,
	}

	if err := s.store.SaveSignature(ctx, sig); err != nil {
		if errors.Is(err, ErrAlreadySigned) {
			return SignatureCaptureResult{
				Errors: []string{fmt.Sprintf("signature already captured for role %q on contract %s", data.SignerRole, data.ContractID)},
			}, nil
		}
		return SignatureCaptureResult{}, fmt.Errorf("save signature: %w", err)
	}

	cert := &model.Certificate{
		CertificateNumber: certNumber,
		ContractID:        data.ContractID,
		SignerRole:        data.SignerRole,
		SignatureHash:     hash,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.certValidity),
	}
	if err := s.store.SaveCertificate(ctx, cert); err != nil {
		return SignatureCaptureResult{}, fmt.Errorf("save certificate: %w", err)
	}

	if err := s.store.AppendAuditEntry(ctx, model.AuditTrailEntry{
		CertificateNumber: certNumber,
		Action:            model.AuditActionCreated,
		Timestamp:         now,
	}); err != nil {
		return SignatureCaptureResult{}, fmt.Errorf("append audit entry: %w", err)
	}

	// Archive the image best-effort; the capture stands either way.
	if s.archive != nil {
		if err := s.archive.StoreSignatureImage(ctx, certNumber, data.SignatureImage); err != nil {
			logger.Warn(ctx, "failed to archive signature image",
				"certificate_number", certNumber, "error", err)
		}
	}

	s.advanceContractStatus(ctx, data.ContractID)

	logger.Info(ctx, "signature captured",
		"contract_id", data.ContractID,
		"signer_role", data.SignerRole,
		"certificate_number", certNumber,
	)

	return SignatureCaptureResult{
		CertificateNumber: certNumber,
		SignatureHash:     hash,
		TamperDetected:    false,
	}, nil
}

// GenerateSignatureCertificate re-issues a certificate for an existing
// signature without a fresh capture. The new certificate carries the same
// hash under a new unique number.
func (s *SignatureService) GenerateSignatureCertificate(ctx context.Context, contractID, signerRole string) (CertificateIssueResult, error) {
	sig, err := s.store.GetSignature(ctx, contractID, signerRole)
	if err != nil {
		return CertificateIssueResult{}, fmt.Errorf("get signature: %w", err)
	}

	now := s.now()
	certNumber := newCertificateNumber(now)
	cert := &model.Certificate{
		CertificateNumber: certNumber,
		ContractID:        sig.ContractID,
		SignerRole:        sig.SignerRole,
		SignatureHash:     sig.SignatureHash,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.certValidity),
	}
	if err := s.store.SaveCertificate(ctx, cert); err != nil {
		return CertificateIssueResult{}, fmt.Errorf("save certificate: %w", err)
	}
	if err := s.store.AppendAuditEntry(ctx, model.AuditTrailEntry{
		CertificateNumber: certNumber,
		Action:            model.AuditActionCreated,
		Timestamp:         now,
	}); err != nil {
		return CertificateIssueResult{}, fmt.Errorf("append audit entry: %w", err)
	}

	logger.Info(ctx, "certificate re-issued",
		"contract_id", contractID,
		"signer_role", signerRole,
		"certificate_number", certNumber,
	)

	return CertificateIssueResult{CertificateNumber: certNumber, ExpiresAt: cert.ExpiresAt}, nil
}

// VerifyCertificate confirms a certificate exists and is neither revoked
// nor expired. Unknown or malformed numbers return false, never an error.
// Each successful verification increments the certificate's counter and
// appends a verified audit entry.
func (s *SignatureService) VerifyCertificate(ctx context.Context, certificateNumber string) bool {
	certificateNumber = strings.TrimSpace(certificateNumber)
	if certificateNumber == "" {
		return false
	}

	cert, err := s.store.GetCertificate(ctx, certificateNumber)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error(ctx, "certificate lookup failed",
				"certificate_number", certificateNumber, "error", err)
		}
		return false
	}
	now := s.now()
	if cert.Revoked || now.After(cert.ExpiresAt) {
		return false
	}

	if _, err := s.store.IncrementVerificationCount(ctx, certificateNumber); err != nil {
		logger.Error(ctx, "failed to increment verification count",
			"certificate_number", certificateNumber, "error", err)
		return false
	}
	if err := s.store.AppendAuditEntry(ctx, model.AuditTrailEntry{
		CertificateNumber: certificateNumber,
		Action:            model.AuditActionVerified,
		Timestamp:         now,
	}); err != nil {
		logger.Error(ctx, "failed to append verified audit entry",
			"certificate_number", certificateNumber, "error", err)
	}
	return true
}

// ValidateCertificateAuthenticity recomputes the hash of the referenced
// signature payload and compares it with the certificate's stored hash.
// A mismatch means the payload changed after capture: a tamper-detected
// audit entry is appended and false returned.
func (s *SignatureService) ValidateCertificateAuthenticity(ctx context.Context, certificateNumber string) bool {
	cert, err := s.store.GetCertificate(ctx, strings.TrimSpace(certificateNumber))
	if err != nil {
		return false
	}
	sig, err := s.store.GetSignature(ctx, cert.ContractID, cert.SignerRole)
	if err != nil {
		return false
	}

	recomputed := hashPayload(sig.SignatureImage)
	if subtle.ConstantTimeCompare([]byte(recomputed), []byte(cert.SignatureHash)) != 1 {
		if err := s.store.AppendAuditEntry(ctx, model.AuditTrailEntry{
			CertificateNumber: cert.CertificateNumber,
			Action:            model.AuditActionTamperDetected,
			Timestamp:         s.now(),
		}); err != nil {
			logger.Error(ctx, "failed to append tamper-detected audit entry",
				"certificate_number", cert.CertificateNumber, "error", err)
		}
		logger.Warn(ctx, "signature tampering detected",
			"certificate_number", cert.CertificateNumber,
			"contract_id", cert.ContractID,
		)
		return false
	}
	return true
}

// GetAuditTrail returns the append-only audit entries for a certificate in
// creation order. The first entry for any known certificate is "created".
func (s *SignatureService) GetAuditTrail(ctx context.Context, certificateNumber string) ([]model.AuditTrailEntry, error) {
	return s.store.GetAuditTrail(ctx, certificateNumber)
}

// GetCertificateDetails returns the full read model for a certificate,
// including a presigned archive URL when archiving is enabled.
func (s *SignatureService) GetCertificateDetails(ctx context.Context, certificateNumber string) (*CertificateDetails, error) {
	cert, err := s.store.GetCertificate(ctx, strings.TrimSpace(certificateNumber))
	if err != nil {
		return nil, err
	}

	details := &CertificateDetails{
		CertificateNumber: cert.CertificateNumber,
		ContractID:        cert.ContractID,
		SignerRole:        cert.SignerRole,
		SignatureHash:     cert.SignatureHash,
		IssuedAt:          cert.IssuedAt,
		ExpiresAt:         cert.ExpiresAt,
		VerificationCount: cert.VerificationCount,
		Revoked:           cert.Revoked,
	}

	if sig, err := s.store.GetSignature(ctx, cert.ContractID, cert.SignerRole); err == nil {
		details.SignerName = sig.SignerName
	}
	if s.archive != nil {
		if url, err := s.archive.SignatureImageURL(ctx, cert.CertificateNumber); err == nil {
			details.SignatureImageURL = url
		}
	}
	return details, nil
}

// advanceContractStatus moves the parent contract forward after a capture:
// first signature takes a draft to pending_signatures, both roles signed
// takes it to signed. Missing contracts are tolerated (capture may precede
// contract registration in this core).
func (s *SignatureService) advanceContractStatus(ctx context.Context, contractID string) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return
	}

	sigs, err := s.store.ListSignatures(ctx, contractID)
	if err != nil {
		return
	}
	roles := make(map[string]bool, len(sigs))
	for _, sig := range sigs {
		roles[sig.SignerRole] = true
	}

	target := ""
	switch {
	case roles[model.RoleArtist] && roles[model.RoleVenue]:
		target = model.StatusSigned
	case len(roles) > 0:
		target = model.StatusPendingSignatures
	}
	if target == "" || !model.CanTransition(contract.Status, target) {
		return
	}

	contract.Status = target
	if err := s.store.SaveContract(ctx, contract); err != nil {
		logger.Error(ctx, "failed to advance contract status",
			"contract_id", contractID, "status", target, "error", err)
		return
	}
	logger.Info(ctx, "contract status advanced by signature",
		"contract_id", contractID, "status", target)
}

func validateSignatureData(data SignatureData) []string {
	var errs []string
	if strings.TrimSpace(data.ContractID) == "" {
		errs = append(errs, "contract_id is required")
	}
	if strings.TrimSpace(data.SignerName) == "" {
		errs = append(errs, "signer_name is required")
	}
	if strings.TrimSpace(data.SignerEmail) == "" {
		errs = append(errs, "signer_email is required")
	} else if !isValidEmail(data.SignerEmail) {
		errs = append(errs, "signer_email is not a valid email address")
	}
	if !model.ValidSignerRole(data.SignerRole) {
		errs = append(errs, `signer_role must be "artist" or "venue"`)
	}
	if data.SignatureImage == "" {
		errs = append(errs, "signature_image is required")
	}
	return errs
}

// hashPayload computes the deterministic tamper-check hash of a signature payload
func hashPayload(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// newCertificateNumber mints a globally unique certificate number. The
// millisecond timestamp keeps numbers monotonically distinguishable; the
// random suffix breaks ties within the same millisecond.
func newCertificateNumber(now time.Time) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return fmt.Sprintf("SIG-%d-%s", now.UnixMilli(), hex.EncodeToString(b))
}

// isValidEmail does a basic structural check on the address
func isValidEmail(email string) bool {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
