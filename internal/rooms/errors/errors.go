package errors

import "errors"

var (
	// ErrRoomNotFound means the referenced room document is absent. Never
	// conflated with a missing booking.
	ErrRoomNotFound = errors.New("room not found")

	// ErrBookingNotFound means the room exists but no booking matches.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRoomExists is returned when creating a room whose room_id is taken.
	ErrRoomExists = errors.New("room already exists")

	// ErrSlotTaken is detected by the conditional insert at commit time, not
	// by a prior read.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrNotHourAligned rejects start instants that do not fall exactly on an
	// hour boundary.
	ErrNotHourAligned = errors.New("start time not on the hour")
)
