package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/model"
	"github.com/stagelink/backend/pkg/logger"
)

// ContractEmailService orchestrates which template goes to which recipient
// at each contract lifecycle transition. Every method reports a boolean
// outcome and never propagates transport errors: a failed notification must
// not fail the booking or contract operation that triggered it.
type ContractEmailService struct {
	mailer       Mailer
	deadlineDays int
	now          func() time.Time
}

func NewContractEmailService(mailer Mailer, cfg *config.ReminderConfig) *ContractEmailService {
	deadlineDays := 7
	if cfg != nil && cfg.SigningDeadlineDays > 0 {
		deadlineDays = cfg.SigningDeadlineDays
	}
	return &ContractEmailService{
		mailer:       mailer,
		deadlineDays: deadlineDays,
		now:          time.Now,
	}
}

// ContractNotification carries the contract fields the templates need
type ContractNotification struct {
	ContractID    string
	ContractTitle string
	EventDate     time.Time
	EventVenue    string
	ArtistName    string
	ArtistEmail   string
	VenueName     string
	VenueEmail    string
}

// Recipient is one notification target
type Recipient struct {
	Name  string
	Email string
}

// BatchResult accumulates batch send outcomes
type BatchResult struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

// SendContractCreatedNotification sends the contract-sent template to both
// the artist and the venue. A failed send to one party does not block the
// other; the return value is true only when both sends succeeded.
func (s *ContractEmailService) SendContractCreatedNotification(ctx context.Context, n ContractNotification) bool {
	ok := true
	pairs := []struct {
		recipient Recipient
		sender    string
	}{
		{Recipient{n.ArtistName, n.ArtistEmail}, n.VenueName},
		{Recipient{n.VenueName, n.VenueEmail}, n.ArtistName},
	}
	for _, p := range pairs {
		params := s.baseParams(n, p.recipient)
		params["senderName"] = p.sender
		subject, body := ContractSentEmail(params)
		if !s.send(ctx, p.recipient.Email, subject, body, "contract-sent") {
			ok = false
		}
	}
	return ok
}

// SendSignatureRequestNotification asks a single recipient to sign. When no
// deadline is supplied, a default of now plus the configured signing window
// is used.
func (s *ContractEmailService) SendSignatureRequestNotification(ctx context.Context, n ContractNotification, recipient Recipient, signDeadline time.Time) bool {
	if signDeadline.IsZero() {
		signDeadline = s.now().AddDate(0, 0, s.deadlineDays)
	}
	params := s.baseParams(n, recipient)
	params["signDeadline"] = signDeadline.Format("January 2, 2006")
	subject, body := SignatureRequestEmail(params)
	return s.send(ctx, recipient.Email, subject, body, "signature-request")
}

// SendSignatureCompletionNotification confirms a recorded signature to a
// single recipient. A certificate number is required.
func (s *ContractEmailService) SendSignatureCompletionNotification(ctx context.Context, n ContractNotification, recipient Recipient, certificateNumber string) bool {
	if certificateNumber == "" {
		logger.Warn(ctx, "signature completion notification skipped: no certificate number",
			"contract_id", n.ContractID, "recipient", recipient.Email)
		return false
	}
	params := s.baseParams(n, recipient)
	params["certificateNumber"] = certificateNumber
	subject, body := SignatureReceivedEmail(params)
	return s.send(ctx, recipient.Email, subject, body, "signature-received")
}

// SendContractReminderNotification sends one reminder. The subject wording
// follows status; daysUntilEvent is caller-supplied, not recomputed here.
func (s *ContractEmailService) SendContractReminderNotification(ctx context.Context, n ContractNotification, recipient Recipient, status string, daysUntilEvent int) bool {
	params := s.baseParams(n, recipient)
	params["daysUntilEvent"] = fmt.Sprintf("%d", daysUntilEvent)
	subject, body := ReminderEmail(status, params)
	return s.send(ctx, recipient.Email, subject, body, "reminder")
}

// SendCancellationNotification tells both parties the booking is cancelled
func (s *ContractEmailService) SendCancellationNotification(ctx context.Context, n ContractNotification) bool {
	ok := true
	for _, r := range []Recipient{
		{n.ArtistName, n.ArtistEmail},
		{n.VenueName, n.VenueEmail},
	} {
		params := s.baseParams(n, r)
		subject, body := CancellationEmail(params)
		if !s.send(ctx, r.Email, subject, body, "cancellation") {
			ok = false
		}
	}
	return ok
}

// SendBatchContractReminders sends reminders for each contract to both
// parties, computing days-until-event from the injected clock. The batch is
// fail-open: one failing send increments FailureCount and the iteration
// continues, so SuccessCount+FailureCount always equals two sends per
// contract.
func (s *ContractEmailService) SendBatchContractReminders(ctx context.Context, contracts []*model.Contract) BatchResult {
	var result BatchResult
	now := s.now()

	for _, c := range contracts {
		days := DaysUntil(c.EventDate, now)
		n := NotificationFromContract(c)
		status := reminderStatusFor(c)

		for _, r := range []Recipient{
			{c.ArtistName, c.ArtistEmail},
			{c.VenueName, c.VenueEmail},
		} {
			if s.SendContractReminderNotification(ctx, n, r, status, days) {
				result.SuccessCount++
			} else {
				result.FailureCount++
			}
		}
	}

	logger.Info(ctx, "batch contract reminders sent",
		"contracts", len(contracts),
		"success", result.SuccessCount,
		"failure", result.FailureCount,
	)
	return result
}

// send delivers one email, converting transport errors into a logged false
func (s *ContractEmailService) send(ctx context.Context, to, subject, body, kind string) bool {
	if to == "" || !isValidEmail(to) {
		logger.Warn(ctx, "notification skipped: invalid recipient",
			"kind", kind, "to", to)
		return false
	}
	if err := s.mailer.Send(ctx, Email{To: to, Subject: subject, HTML: body}); err != nil {
		logger.Error(ctx, "failed to send notification",
			"kind", kind, "to", to, "error", err)
		return false
	}
	logger.Debug(ctx, "notification sent", "kind", kind, "to", to)
	return true
}

func (s *ContractEmailService) baseParams(n ContractNotification, r Recipient) map[string]string {
	return map[string]string{
		"recipientName": r.Name,
		"contractTitle": n.ContractTitle,
		"eventDate":     n.EventDate.Format("January 2, 2006"),
		"eventVenue":    n.EventVenue,
		"contractId":    n.ContractID,
	}
}

// NotificationFromContract maps a contract record to template parameters
func NotificationFromContract(c *model.Contract) ContractNotification {
	return ContractNotification{
		ContractID:    c.ID,
		ContractTitle: c.Title,
		EventDate:     c.EventDate,
		EventVenue:    c.EventVenue,
		ArtistName:    c.ArtistName,
		ArtistEmail:   c.ArtistEmail,
		VenueName:     c.VenueName,
		VenueEmail:    c.VenueEmail,
	}
}

// reminderStatusFor picks the subject wording from the contract lifecycle:
// drafts are unsigned, contracts awaiting signatures are pending, anything
// further along is only reminded because the event is close.
func reminderStatusFor(c *model.Contract) string {
	switch c.Status {
	case model.StatusDraft:
		return ReminderUnsigned
	case model.StatusPendingSignatures:
		return ReminderPendingSignature
	default:
		return ReminderExpiringSoon
	}
}

// DaysUntil computes ceil((eventDate - now) / 24h)
func DaysUntil(eventDate, now time.Time) int {
	return int(math.Ceil(float64(eventDate.Sub(now)) / float64(24*time.Hour)))
}
