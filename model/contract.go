package model

import (
	"time"
)

// Contract represents a performance contract between an artist and a venue
type Contract struct {
	ID                    string                `json:"id"`
	Title                 string                `json:"title"`
	ArtistID              string                `json:"artist_id"`
	ArtistName            string                `json:"artist_name"`
	ArtistEmail           string                `json:"artist_email"`
	VenueID               string                `json:"venue_id"`
	VenueName             string                `json:"venue_name"`
	VenueEmail            string                `json:"venue_email"`
	EventDate             time.Time             `json:"event_date"`
	EventVenue            string                `json:"event_venue"`
	PerformanceFee        float64               `json:"performance_fee"`
	PaymentTerms          string                `json:"payment_terms"`
	PerformanceDetails    PerformanceDetails    `json:"performance_details,omitempty"`
	TechnicalRequirements TechnicalRequirements `json:"technical_requirements,omitempty"`
	Status                string                `json:"status"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// ContractStatus constants
const (
	StatusDraft             = "draft"
	StatusPendingSignatures = "pending_signatures"
	StatusSigned            = "signed"
	StatusExecuted          = "executed"
	StatusCancelled         = "cancelled"
	StatusExpired           = "expired"
)

// statusRank orders the forward lifecycle. Cancelled and expired are
// terminal and sit outside the forward chain.
var statusRank = map[string]int{
	StatusDraft:             0,
	StatusPendingSignatures: 1,
	StatusSigned:            2,
	StatusExecuted:          3,
}

// ValidStatus reports whether s is a known contract status
func ValidStatus(s string) bool {
	if _, ok := statusRank[s]; ok {
		return true
	}
	return s == StatusCancelled || s == StatusExpired
}

// CanTransition reports whether a contract may move from one status to
// another. Transitions are forward-only; cancellation is allowed from any
// non-terminal state.
func CanTransition(from, to string) bool {
	if from == StatusCancelled || from == StatusExpired {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	if to == StatusExpired {
		return from != StatusExecuted
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// IsExpired reports whether a contract should be treated as expired at the
// given time: the event date has passed without the contract reaching
// signed or executed. Evaluated lazily at query time, never stored.
func (c *Contract) IsExpired(now time.Time) bool {
	if c.Status == StatusSigned || c.Status == StatusExecuted {
		return false
	}
	return !c.EventDate.IsZero() && c.EventDate.Before(now)
}

// PerformanceDetails captures the agreed performance scope. Fields the
// parties negotiate ad hoc go into Extra so a typo in a known field does
// not silently vanish.
type PerformanceDetails struct {
	SetLengthMinutes int               `json:"set_length_minutes,omitempty"`
	SetCount         int               `json:"set_count,omitempty"`
	SoundcheckTime   string            `json:"soundcheck_time,omitempty"`
	Genre            string            `json:"genre,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// TechnicalRequirements captures the technical rider
type TechnicalRequirements struct {
	PASystem    bool              `json:"pa_system,omitempty"`
	Monitors    int               `json:"monitors,omitempty"`
	Microphones int               `json:"microphones,omitempty"`
	StageNotes  string            `json:"stage_notes,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}
