package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stagelink/backend/model"
	"github.com/stagelink/backend/service"
)

// BookingHandler exposes the booking lifecycle triggers consumed by the
// marketplace's booking router, plus the reminder sweep endpoint hit by an
// external scheduler.
type BookingHandler struct {
	bookings *service.BookingEmailService
}

func NewBookingHandler(bookings *service.BookingEmailService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Created is invoked when a booking is created
func (h *BookingHandler) Created(c *gin.Context) {
	var booking model.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result := h.bookings.HandleBookingCreated(c.Request.Context(), booking)
	c.JSON(http.StatusOK, result)
}

// Confirmed is invoked when a booking is confirmed
func (h *BookingHandler) Confirmed(c *gin.Context) {
	var booking model.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result := h.bookings.HandleBookingConfirmed(c.Request.Context(), booking)
	c.JSON(http.StatusOK, result)
}

// Cancelled is invoked when a booking is cancelled
func (h *BookingHandler) Cancelled(c *gin.Context) {
	var booking model.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result := h.bookings.HandleBookingCancelled(c.Request.Context(), booking)
	c.JSON(http.StatusOK, result)
}

// RunReminders triggers the reminder sweep. Intended caller is a cron job;
// the dedup markers make re-triggering on the same day harmless.
func (h *BookingHandler) RunReminders(c *gin.Context) {
	result := h.bookings.SendUpcomingEventReminders(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
