// Package notifier propagates booking membership changes to the external
// per-user booking-record service. Propagation is best-effort and
// fire-and-forget: the room's own state is the source of truth and the
// user-side record is an eventually consistent mirror. Failures are logged
// and swallowed, never retried here, and never surfaced to the operation
// that triggered them.
package notifier

import (
	"context"
	"time"

	"roomsvc/pkg/client"
	"roomsvc/pkg/logger"
	"roomsvc/pkg/model"
)

type Notifier interface {
	BookingCreated(roomID string, booking *model.Booking)
	BookingDeleted(booking *model.Booking)
}

type userNotifier struct {
	client  *client.UserBookingsClient
	timeout time.Duration
	log     *logger.Logger
}

func NewUserNotifier(userClient *client.UserBookingsClient, timeout time.Duration, log *logger.Logger) Notifier {
	return &userNotifier{
		client:  userClient,
		timeout: timeout,
		log:     log,
	}
}

// BookingCreated schedules an upsert notification for every user on the
// booking. Returns immediately; each notification runs detached from the
// triggering request with its own bounded timeout, so request completion or
// cancellation never affects delivery attempts. No ordering is guaranteed
// between users.
func (n *userNotifier) BookingCreated(roomID string, booking *model.Booking) {
	payload := client.UserBookingPayload{
		BookingID: booking.ID,
		RoomID:    roomID,
		Start:     booking.Start,
	}

	for _, userID := range booking.Users {
		go func(userID string) {
			ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
			defer cancel()

			if err := n.client.AddBooking(ctx, userID, payload); err != nil {
				n.log.Error("Failed to propagate booking creation",
					"user_id", userID,
					"booking_id", booking.ID,
					"room_id", roomID,
					"error", err,
				)
				return
			}
			n.log.Debug("Propagated booking creation",
				"user_id", userID,
				"booking_id", booking.ID,
			)
		}(userID)
	}
}

// BookingDeleted schedules a delete notification for every user that had
// been on the booking, with the same best-effort semantics as creation.
func (n *userNotifier) BookingDeleted(booking *model.Booking) {
	for _, userID := range booking.Users {
		go func(userID string) {
			ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
			defer cancel()

			if err := n.client.RemoveBooking(ctx, userID, booking.ID); err != nil {
				n.log.Error("Failed to propagate booking deletion",
					"user_id", userID,
					"booking_id", booking.ID,
					"error", err,
				)
				return
			}
			n.log.Debug("Propagated booking deletion",
				"user_id", userID,
				"booking_id", booking.ID,
			)
		}(userID)
	}
}
