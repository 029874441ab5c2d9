package model

import (
	"testing"
	"time"
)

func TestCanTransitionForwardOnly(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{StatusDraft, StatusPendingSignatures, true},
		{StatusDraft, StatusSigned, true},
		{StatusPendingSignatures, StatusSigned, true},
		{StatusSigned, StatusExecuted, true},
		// Backward transitions are rejected
		{StatusSigned, StatusPendingSignatures, false},
		{StatusExecuted, StatusSigned, false},
		{StatusPendingSignatures, StatusDraft, false},
		{StatusDraft, StatusDraft, false},
		// Cancellation allowed from any non-terminal state
		{StatusDraft, StatusCancelled, true},
		{StatusPendingSignatures, StatusCancelled, true},
		{StatusSigned, StatusCancelled, true},
		{StatusExecuted, StatusCancelled, true},
		// Terminal states stay terminal
		{StatusCancelled, StatusDraft, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusExpired, StatusSigned, false},
		// Expiry cannot claw back an executed contract
		{StatusExecuted, StatusExpired, false},
		{StatusPendingSignatures, StatusExpired, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusDraft, StatusPendingSignatures, StatusSigned, StatusExecuted, StatusCancelled, StatusExpired} {
		if !ValidStatus(s) {
			t.Errorf("Expected %s to be a valid status", s)
		}
	}
	if ValidStatus("archived") {
		t.Error("Expected archived to be invalid")
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	tests := []struct {
		name      string
		eventDate time.Time
		status    string
		expired   bool
	}{
		{"past event, draft", past, StatusDraft, true},
		{"past event, pending", past, StatusPendingSignatures, true},
		{"past event, signed", past, StatusSigned, false},
		{"past event, executed", past, StatusExecuted, false},
		{"future event, draft", future, StatusDraft, false},
		{"zero event date", time.Time{}, StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contract{EventDate: tt.eventDate, Status: tt.status}
			if got := c.IsExpired(now); got != tt.expired {
				t.Errorf("IsExpired = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestValidSignerRole(t *testing.T) {
	if !ValidSignerRole(RoleArtist) || !ValidSignerRole(RoleVenue) {
		t.Error("Expected artist and venue to be valid roles")
	}
	if ValidSignerRole("promoter") {
		t.Error("Expected promoter to be invalid")
	}
}
