package service

import (
	"context"
	"errors"
	"time"

	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/model"
	"github.com/stagelink/backend/pkg/logger"
)

// BookingEmailService is the entry point invoked when a booking is
// created, confirmed or cancelled. The booking trigger only decides what
// notifications and reminders are needed; actually dispatching scheduled
// reminders is the job of the periodic SendUpcomingEventReminders sweep.
type BookingEmailService struct {
	store      Store
	emails     *ContractEmailService
	offsetDays []int
	now        func() time.Time
}

func NewBookingEmailService(store Store, emails *ContractEmailService, cfg *config.ReminderConfig) *BookingEmailService {
	offsets := []int{7, 3, 1}
	if cfg != nil && len(cfg.OffsetDays) > 0 {
		offsets = cfg.OffsetDays
	}
	return &BookingEmailService{
		store:      store,
		emails:     emails,
		offsetDays: offsets,
		now:        time.Now,
	}
}

// BookingEmailResult reports the outcome of a booking lifecycle trigger.
// Success reflects the primary operation, not the notification sends: a
// booking never fails because an email could not be delivered.
type BookingEmailResult struct {
	Success          bool   `json:"success"`
	BookingID        string `json:"booking_id"`
	NotificationSent bool   `json:"notification_sent"`
	RemindersPlanned []int  `json:"reminders_planned,omitempty"`
}

// HandleBookingCreated sends the contract-created notification to both
// parties and computes which reminder offsets are still ahead of the event.
// The plan is logged; dispatch belongs to the reminder sweep.
func (s *BookingEmailService) HandleBookingCreated(ctx context.Context, booking model.Booking) BookingEmailResult {
	n := notificationFromBooking(booking)
	sent := s.emails.SendContractCreatedNotification(ctx, n)

	days := DaysUntil(booking.EventDate, s.now())
	var planned []int
	for _, offset := range s.offsetDays {
		if days > offset {
			planned = append(planned, offset)
		}
	}

	logger.Info(ctx, "booking created, reminders planned",
		"booking_id", booking.ID,
		"days_until_event", days,
		"reminder_offsets", planned,
	)

	return BookingEmailResult{
		Success:          true,
		BookingID:        booking.ID,
		NotificationSent: sent,
		RemindersPlanned: planned,
	}
}

// HandleBookingConfirmed asks both parties for their signature
func (s *BookingEmailService) HandleBookingConfirmed(ctx context.Context, booking model.Booking) BookingEmailResult {
	n := notificationFromBooking(booking)

	sent := true
	for _, r := range []Recipient{
		{booking.ArtistName, booking.ArtistEmail},
		{booking.VenueName, booking.VenueEmail},
	} {
		if !s.emails.SendSignatureRequestNotification(ctx, n, r, time.Time{}) {
			sent = false
		}
	}

	return BookingEmailResult{
		Success:          true,
		BookingID:        booking.ID,
		NotificationSent: sent,
	}
}

// HandleBookingCancelled sends the cancellation template to both parties
// and moves the linked contract to cancelled, so every future sweep drops
// it regardless of which day the pending reminders would have fired.
func (s *BookingEmailService) HandleBookingCancelled(ctx context.Context, booking model.Booking) BookingEmailResult {
	n := notificationFromBooking(booking)
	sent := s.emails.SendCancellationNotification(ctx, n)

	if booking.ContractID != "" {
		s.cancelLinkedContract(ctx, booking)
	}

	return BookingEmailResult{
		Success:          true,
		BookingID:        booking.ID,
		NotificationSent: sent,
	}
}

// cancelLinkedContract transitions the booking's contract to cancelled.
// A missing contract is tolerated (nothing stored means nothing to sweep);
// a terminal contract is left alone.
func (s *BookingEmailService) cancelLinkedContract(ctx context.Context, booking model.Booking) {
	contract, err := s.store.GetContract(ctx, booking.ContractID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error(ctx, "failed to load contract for cancelled booking",
				"booking_id", booking.ID,
				"contract_id", booking.ContractID,
				"error", err,
			)
		}
		return
	}
	if !model.CanTransition(contract.Status, model.StatusCancelled) {
		return
	}

	contract.Status = model.StatusCancelled
	if err := s.store.SaveContract(ctx, contract); err != nil {
		logger.Error(ctx, "failed to cancel contract for cancelled booking",
			"booking_id", booking.ID,
			"contract_id", booking.ContractID,
			"error", err,
		)
		return
	}
	logger.Info(ctx, "contract cancelled with booking",
		"booking_id", booking.ID,
		"contract_id", booking.ContractID,
	)
}

// SendUpcomingEventReminders is the periodic sweep, intended to be
// triggered externally (cron hitting the reminders endpoint). It re-queries
// live contracts, keeps those whose days-until-event matches a configured
// offset, skips anything already marked for today, then delegates sending.
// Markers are written before dispatch so a re-triggered sweep on the same
// day cannot duplicate sends.
func (s *BookingEmailService) SendUpcomingEventReminders(ctx context.Context) BatchResult {
	contracts, err := s.store.ListContracts(ctx)
	if err != nil {
		logger.Error(ctx, "reminder sweep failed to list contracts", "error", err)
		return BatchResult{}
	}

	now := s.now()
	day := now.Format("2006-01-02")
	var due []*model.Contract

	for _, c := range contracts {
		if c.Status == model.StatusCancelled || c.IsExpired(now) {
			continue
		}
		days := DaysUntil(c.EventDate, now)
		offset, ok := matchOffset(days, s.offsetDays)
		if !ok {
			continue
		}
		fresh, err := s.store.MarkReminderSent(ctx, c.ID, offset, day)
		if err != nil {
			logger.Error(ctx, "failed to mark reminder",
				"contract_id", c.ID, "offset_days", offset, "error", err)
			continue
		}
		if !fresh {
			logger.Debug(ctx, "reminder already sent today",
				"contract_id", c.ID, "offset_days", offset)
			continue
		}
		due = append(due, c)
	}

	if len(due) == 0 {
		logger.Info(ctx, "reminder sweep found nothing due", "day", day)
		return BatchResult{}
	}
	return s.emails.SendBatchContractReminders(ctx, due)
}

// matchOffset reports the configured offset equal to daysUntilEvent, if any
func matchOffset(daysUntilEvent int, offsets []int) (int, bool) {
	for _, offset := range offsets {
		if daysUntilEvent == offset {
			return offset, true
		}
	}
	return 0, false
}

func notificationFromBooking(b model.Booking) ContractNotification {
	contractID := b.ContractID
	if contractID == "" {
		contractID = b.ID
	}
	return ContractNotification{
		ContractID:    contractID,
		ContractTitle: b.EventTitle,
		EventDate:     b.EventDate,
		EventVenue:    b.EventVenue,
		ArtistName:    b.ArtistName,
		ArtistEmail:   b.ArtistEmail,
		VenueName:     b.VenueName,
		VenueEmail:    b.VenueEmail,
	}
}
