package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stagelink/backend/model"
	"github.com/stagelink/backend/pkg/logger"
)

// ContractService owns the contract lifecycle: creation from booking data,
// status transitions and the lazy expiry rule.
type ContractService struct {
	store Store
	now   func() time.Time
}

func NewContractService(store Store) *ContractService {
	return &ContractService{store: store, now: time.Now}
}

// ContractData is the creation input, normally derived from a booking
type ContractData struct {
	Title                 string                      `json:"title"`
	ArtistID              string                      `json:"artist_id"`
	ArtistName            string                      `json:"artist_name"`
	ArtistEmail           string                      `json:"artist_email"`
	VenueID               string                      `json:"venue_id"`
	VenueName             string                      `json:"venue_name"`
	VenueEmail            string                      `json:"venue_email"`
	EventDate             time.Time                   `json:"event_date"`
	EventVenue            string                      `json:"event_venue"`
	PerformanceFee        float64                     `json:"performance_fee"`
	PaymentTerms          string                      `json:"payment_terms"`
	PerformanceDetails    model.PerformanceDetails    `json:"performance_details,omitempty"`
	TechnicalRequirements model.TechnicalRequirements `json:"technical_requirements,omitempty"`
}

// ContractResult reports the created contract plus any validation findings.
// Incomplete contracts are saved anyway (draft semantics) with the gaps
// listed in Errors for the caller to surface.
type ContractResult struct {
	ContractID string   `json:"contract_id"`
	Errors     []string `json:"errors,omitempty"`
}

// ContractPatch carries the updatable fields; nil means "leave unchanged"
type ContractPatch struct {
	Title                 *string                      `json:"title,omitempty"`
	EventDate             *time.Time                   `json:"event_date,omitempty"`
	EventVenue            *string                      `json:"event_venue,omitempty"`
	PerformanceFee        *float64                     `json:"performance_fee,omitempty"`
	PaymentTerms          *string                      `json:"payment_terms,omitempty"`
	PerformanceDetails    *model.PerformanceDetails    `json:"performance_details,omitempty"`
	TechnicalRequirements *model.TechnicalRequirements `json:"technical_requirements,omitempty"`
}

// GenerateContract creates a contract record. Creation is deliberately
// permissive: missing required fields are reported in the result's Errors
// but the draft is stored regardless, so incomplete contracts can be saved
// and finished later.
func (s *ContractService) GenerateContract(ctx context.Context, data ContractData) (ContractResult, error) {
	errs := validateContractData(data)

	now := s.now()
	contract := &model.Contract{
		ID:                    uuid.New().String(),
		Title:                 strings.TrimSpace(data.Title),
		ArtistID:              data.ArtistID,
		ArtistName:            data.ArtistName,
		ArtistEmail:           data.ArtistEmail,
		VenueID:               data.VenueID,
		VenueName:             data.VenueName,
		VenueEmail:            data.VenueEmail,
		EventDate:             data.EventDate,
		EventVenue:            data.EventVenue,
		PerformanceFee:        data.PerformanceFee,
		PaymentTerms:          data.PaymentTerms,
		PerformanceDetails:    data.PerformanceDetails,
		TechnicalRequirements: data.TechnicalRequirements,
		Status:                model.StatusDraft,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.SaveContract(ctx, contract); err != nil {
		return ContractResult{}, fmt.Errorf("save contract: %w", err)
	}

	logger.Info(ctx, "contract generated",
		"contract_id", contract.ID,
		"artist_id", contract.ArtistID,
		"venue_id", contract.VenueID,
		"validation_errors", len(errs),
	)

	return ContractResult{ContractID: contract.ID, Errors: errs}, nil
}

// GetContract returns a contract by ID
func (s *ContractService) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	return s.store.GetContract(ctx, id)
}

// ListContracts returns all contracts in creation order
func (s *ContractService) ListContracts(ctx context.Context) ([]*model.Contract, error) {
	return s.store.ListContracts(ctx)
}

// UpdateContractStatus applies a lifecycle transition. Transitions are
// forward-only; cancellation is the one move allowed from any non-terminal
// state.
func (s *ContractService) UpdateContractStatus(ctx context.Context, id, newStatus string) (*model.Contract, error) {
	if !model.ValidStatus(newStatus) {
		return nil, fmt.Errorf("unknown contract status %q", newStatus)
	}

	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(contract.Status, newStatus) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", contract.Status, newStatus)
	}

	contract.Status = newStatus
	if err := s.store.SaveContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}

	logger.Info(ctx, "contract status updated",
		"contract_id", id, "status", newStatus)
	return contract, nil
}

// UpdateContractDetails patches contract fields. The event date is
// immutable once any signature exists on the contract.
func (s *ContractService) UpdateContractDetails(ctx context.Context, id string, patch ContractPatch) (*model.Contract, error) {
	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.EventDate != nil && !patch.EventDate.Equal(contract.EventDate) {
		sigs, err := s.store.ListSignatures(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list signatures: %w", err)
		}
		if len(sigs) > 0 {
			return nil, fmt.Errorf("event date cannot change after a signature exists")
		}
		contract.EventDate = *patch.EventDate
	}
	if patch.Title != nil {
		contract.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.EventVenue != nil {
		contract.EventVenue = *patch.EventVenue
	}
	if patch.PerformanceFee != nil {
		contract.PerformanceFee = *patch.PerformanceFee
	}
	if patch.PaymentTerms != nil {
		contract.PaymentTerms = *patch.PaymentTerms
	}
	if patch.PerformanceDetails != nil {
		contract.PerformanceDetails = *patch.PerformanceDetails
	}
	if patch.TechnicalRequirements != nil {
		contract.TechnicalRequirements = *patch.TechnicalRequirements
	}

	if err := s.store.SaveContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}
	return contract, nil
}

// UpcomingContracts returns contracts with a future event date that are
// still live (not cancelled and not lazily expired), for the reminder sweep.
func (s *ContractService) UpcomingContracts(ctx context.Context) ([]*model.Contract, error) {
	contracts, err := s.store.ListContracts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var upcoming []*model.Contract
	for _, c := range contracts {
		if c.Status == model.StatusCancelled || c.Status == model.StatusExpired || c.IsExpired(now) {
			continue
		}
		if c.EventDate.After(now) {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

func validateContractData(data ContractData) []string {
	var errs []string
	if strings.TrimSpace(data.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(data.ArtistID) == "" {
		errs = append(errs, "artist_id is required")
	}
	if strings.TrimSpace(data.VenueID) == "" {
		errs = append(errs, "venue_id is required")
	}
	if data.EventDate.IsZero() {
		errs = append(errs, "event_date is required")
	}
	if strings.TrimSpace(data.EventVenue) == "" {
		errs = append(errs, "event_venue is required")
	}
	if data.PerformanceFee <= 0 {
		errs = append(errs, "performance_fee must be greater than zero")
	}
	if strings.TrimSpace(data.PaymentTerms) == "" {
		errs = append(errs, "payment_terms is required")
	}
	return errs
}
