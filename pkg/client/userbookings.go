package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// UserBookingPayload is the upsert body the user-booking service accepts on
// POST /{userId}/bookings.
type UserBookingPayload struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	Start     time.Time `json:"start"`
}

// UserBookingsClient talks to the external per-user booking-record service.
// The room service treats this collaborator as unreliable and optional; all
// callers own their error handling.
type UserBookingsClient struct {
	httpClient *HttpClient
}

func NewUserBookingsClient(baseURL string) *UserBookingsClient {
	return &UserBookingsClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *UserBookingsClient) AddBooking(ctx context.Context, userID string, payload UserBookingPayload) error {
	path := "/" + url.PathEscape(userID) + "/bookings"
	resp, err := c.httpClient.POST(ctx, path, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("user service returned status %d for user %s", resp.StatusCode, userID)
	}
	return nil
}

func (c *UserBookingsClient) RemoveBooking(ctx context.Context, userID, bookingID string) error {
	path := "/" + url.PathEscape(userID) + "/bookings/" + url.PathEscape(bookingID)
	resp, err := c.httpClient.DELETE(ctx, path)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("user service returned status %d for user %s", resp.StatusCode, userID)
	}
	return nil
}
