// Package slot defines the hourly reservation grid: every booking occupies a
// fixed one-hour window identified by its hour-aligned start instant.
package slot

import (
	"context"
	"errors"
	"time"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/pkg/model"
)

// Length is the fixed duration of every slot.
const Length = time.Hour

// Normalize validates that t falls exactly on an hour boundary and returns it
// in UTC. Alignment is checked before any occupancy concern.
func Normalize(t time.Time) (time.Time, error) {
	utc := t.UTC()
	if !utc.Truncate(Length).Equal(utc) {
		return time.Time{}, roomerrors.ErrNotHourAligned
	}
	return utc, nil
}

// Floor returns the start of the slot enclosing t.
func Floor(t time.Time) time.Time {
	return t.UTC().Truncate(Length)
}

// End returns the end instant for a slot starting at the given aligned time.
func End(start time.Time) time.Time {
	return start.Add(Length)
}

// Store is the read path the calendar needs from the room store.
type Store interface {
	FindBookingAtSlot(ctx context.Context, roomID string, start time.Time) (*model.Booking, error)
}

// Calendar is the read-only view of a room's slot occupancy. It never
// mutates state.
type Calendar struct {
	store Store
}

func NewCalendar(store Store) *Calendar {
	return &Calendar{store: store}
}

// Lookup returns the booking occupying the slot at the given aligned instant,
// roomerrors.ErrBookingNotFound when the slot is free, or
// roomerrors.ErrRoomNotFound when the room does not exist.
func (c *Calendar) Lookup(ctx context.Context, roomID string, start time.Time) (*model.Booking, error) {
	return c.store.FindBookingAtSlot(ctx, roomID, start.UTC())
}

// Occupied reports whether the slot holds a booking. ErrRoomNotFound is
// surfaced; a free slot is not an error.
func (c *Calendar) Occupied(ctx context.Context, roomID string, start time.Time) (bool, error) {
	_, err := c.Lookup(ctx, roomID, start)
	if errors.Is(err, roomerrors.ErrBookingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
