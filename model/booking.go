package model

import (
	"time"
)

// Booking status constants
const (
	BookingCreated   = "created"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is the booking-marketplace record that triggers the contract
// email lifecycle. The booking router owns the full record; this core only
// reads the fields needed to build notification parameters.
type Booking struct {
	ID             string    `json:"id"`
	ContractID     string    `json:"contract_id,omitempty"`
	ArtistID       string    `json:"artist_id"`
	ArtistName     string    `json:"artist_name"`
	ArtistEmail    string    `json:"artist_email"`
	VenueID        string    `json:"venue_id"`
	VenueName      string    `json:"venue_name"`
	VenueEmail     string    `json:"venue_email"`
	EventTitle     string    `json:"event_title"`
	EventDate      time.Time `json:"event_date"`
	EventVenue     string    `json:"event_venue"`
	PerformanceFee float64   `json:"performance_fee"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
