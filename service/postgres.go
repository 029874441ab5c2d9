package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/model"
)

// PostgresStore is the production Store backing, using pgx directly
// (no ORM). Free-form detail records are stored as JSONB.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects a pool from the configured DSN and returns the store
func NewPostgresStore(ctx context.Context, cfg *config.StoreConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: pool}, nil
}

// Close releases the underlying pool
func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) SaveContract(ctx context.Context, c *model.Contract) error {
	details, err := json.Marshal(c.PerformanceDetails)
	if err != nil {
		return fmt.Errorf("marshal performance details: %w", err)
	}
	tech, err := json.Marshal(c.TechnicalRequirements)
	if err != nil {
		return fmt.Errorf("marshal technical requirements: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO contracts (
			id, title, artist_id, artist_name, artist_email,
			venue_id, venue_name, venue_email, event_date, event_venue,
			performance_fee, payment_terms, performance_details,
			technical_requirements, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			event_date = EXCLUDED.event_date,
			event_venue = EXCLUDED.event_venue,
			performance_fee = EXCLUDED.performance_fee,
			payment_terms = EXCLUDED.payment_terms,
			performance_details = EXCLUDED.performance_details,
			technical_requirements = EXCLUDED.technical_requirements,
			status = EXCLUDED.status,
			updated_at = now()`,
		c.ID, c.Title, c.ArtistID, c.ArtistName, c.ArtistEmail,
		c.VenueID, c.VenueName, c.VenueEmail, c.EventDate, c.EventVenue,
		c.PerformanceFee, c.PaymentTerms, details, tech, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var (
		c       model.Contract
		details []byte
		tech    []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, title, artist_id, artist_name, artist_email,
			venue_id, venue_name, venue_email, event_date, event_venue,
			performance_fee, payment_terms, performance_details,
			technical_requirements, status, created_at, updated_at
		 FROM contracts WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.Title, &c.ArtistID, &c.ArtistName, &c.ArtistEmail,
		&c.VenueID, &c.VenueName, &c.VenueEmail, &c.EventDate, &c.EventVenue,
		&c.PerformanceFee, &c.PaymentTerms, &details, &tech, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &c.PerformanceDetails); err != nil {
			return nil, fmt.Errorf("unmarshal performance details: %w", err)
		}
	}
	if len(tech) > 0 {
		if err := json.Unmarshal(tech, &c.TechnicalRequirements); err != nil {
			return nil, fmt.Errorf("unmarshal technical requirements: %w", err)
		}
	}
	return &c, nil
}

func (s *PostgresStore) ListContracts(ctx context.Context) ([]*model.Contract, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, artist_id, artist_name, artist_email,
			venue_id, venue_name, venue_email, event_date, event_venue,
			performance_fee, payment_terms, performance_details,
			technical_requirements, status, created_at, updated_at
		 FROM contracts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var result []*model.Contract
	for rows.Next() {
		var (
			c       model.Contract
			details []byte
			tech    []byte
		)
		if err := rows.Scan(
			&c.ID, &c.Title, &c.ArtistID, &c.ArtistName, &c.ArtistEmail,
			&c.VenueID, &c.VenueName, &c.VenueEmail, &c.EventDate, &c.EventVenue,
			&c.PerformanceFee, &c.PaymentTerms, &details, &tech, &c.Status,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &c.PerformanceDetails); err != nil {
				return nil, fmt.Errorf("unmarshal performance details: %w", err)
			}
		}
		if len(tech) > 0 {
			if err := json.Unmarshal(tech, &c.TechnicalRequirements); err != nil {
				return nil, fmt.Errorf("unmarshal technical requirements: %w", err)
			}
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) SaveSignature(ctx context.Context, sig *model.Signature) error {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO signatures (
			contract_id, signer_name, signer_email, signer_role,
			signature_image, signature_hash, signature_timestamp, certificate_number
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (contract_id, signer_role) DO NOTHING`,
		sig.ContractID, sig.SignerName, sig.SignerEmail, sig.SignerRole,
		sig.SignatureImage, sig.SignatureHash, sig.SignatureTimestamp, sig.CertificateNumber,
	)
	if err != nil {
		return fmt.Errorf("save signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadySigned
	}
	return nil
}

func (s *PostgresStore) GetSignature(ctx context.Context, contractID, role string) (*model.Signature, error) {
	return s.scanSignature(s.db.QueryRow(ctx,
		`SELECT contract_id, signer_name, signer_email, signer_role,
			signature_image, signature_hash, signature_timestamp, certificate_number
		 FROM signatures WHERE contract_id = $1 AND signer_role = $2`,
		contractID, role))
}

func (s *PostgresStore) scanSignature(row pgx.Row) (*model.Signature, error) {
	var sig model.Signature
	err := row.Scan(
		&sig.ContractID, &sig.SignerName, &sig.SignerEmail, &sig.SignerRole,
		&sig.SignatureImage, &sig.SignatureHash, &sig.SignatureTimestamp,
		&sig.CertificateNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get signature: %w", err)
	}
	return &sig, nil
}

func (s *PostgresStore) ListSignatures(ctx context.Context, contractID string) ([]*model.Signature, error) {
	rows, err := s.db.Query(ctx,
		`SELECT contract_id, signer_name, signer_email, signer_role,
			signature_image, signature_hash, signature_timestamp, certificate_number
		 FROM signatures WHERE contract_id = $1 ORDER BY signature_timestamp`,
		contractID)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer rows.Close()

	var result []*model.Signature
	for rows.Next() {
		var sig model.Signature
		if err := rows.Scan(
			&sig.ContractID, &sig.SignerName, &sig.SignerEmail, &sig.SignerRole,
			&sig.SignatureImage, &sig.SignatureHash, &sig.SignatureTimestamp,
			&sig.CertificateNumber,
		); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		result = append(result, &sig)
	}
	return result, rows.Err()
}

func (s *PostgresStore) SaveCertificate(ctx context.Context, cert *model.Certificate) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO certificates (
			certificate_number, contract_id, signer_role, signature_hash,
			issued_at, expires_at, verification_count, revoked
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		cert.CertificateNumber, cert.ContractID, cert.SignerRole, cert.SignatureHash,
		cert.IssuedAt, cert.ExpiresAt, cert.VerificationCount, cert.Revoked,
	)
	if err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCertificate(ctx context.Context, certificateNumber string) (*model.Certificate, error) {
	var cert model.Certificate
	err := s.db.QueryRow(ctx,
		`SELECT certificate_number, contract_id, signer_role, signature_hash,
			issued_at, expires_at, verification_count, revoked
		 FROM certificates WHERE certificate_number = $1`,
		certificateNumber,
	).Scan(
		&cert.CertificateNumber, &cert.ContractID, &cert.SignerRole, &cert.SignatureHash,
		&cert.IssuedAt, &cert.ExpiresAt, &cert.VerificationCount, &cert.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return &cert, nil
}

func (s *PostgresStore) IncrementVerificationCount(ctx context.Context, certificateNumber string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`UPDATE certificates SET verification_count = verification_count + 1
		 WHERE certificate_number = $1
		 RETURNING verification_count`,
		certificateNumber,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment verification count: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) AppendAuditEntry(ctx context.Context, entry model.AuditTrailEntry) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_trail (certificate_number, action, created_at)
		 VALUES ($1, $2, $3)`,
		entry.CertificateNumber, entry.Action, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAuditTrail(ctx context.Context, certificateNumber string) ([]model.AuditTrailEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT certificate_number, action, created_at
		 FROM audit_trail WHERE certificate_number = $1
		 ORDER BY created_at, id`,
		certificateNumber)
	if err != nil {
		return nil, fmt.Errorf("get audit trail: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditTrailEntry
	for rows.Next() {
		var e model.AuditTrailEntry
		if err := rows.Scan(&e.CertificateNumber, &e.Action, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) MarkReminderSent(ctx context.Context, contractID string, offsetDays int, day string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO reminder_markers (contract_id, offset_days, day)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (contract_id, offset_days, day) DO NOTHING`,
		contractID, offsetDays, day,
	)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
