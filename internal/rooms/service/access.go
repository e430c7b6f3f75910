package service

import (
	"context"
	"errors"
	"time"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/internal/rooms/repository"
	"roomsvc/internal/rooms/slot"
	"roomsvc/pkg/config"
	apperrors "roomsvc/pkg/errors"
	"roomsvc/pkg/model"
)

// AccessService answers "should this room unlock for this user right now?".
// The decision is derived purely from slot membership; there are no standing
// per-room permission tables and no side effects.
type AccessService interface {
	CanUnlock(ctx context.Context, roomID, userID string, at *time.Time) (*model.UnlockDecision, error)
}

type accessService struct {
	calendar *slot.Calendar
	cfg      *config.Config
	now      func() time.Time
}

func NewAccessService(repo repository.RoomRepository, cfg *config.Config) AccessService {
	return &accessService{
		calendar: slot.NewCalendar(repo),
		cfg:      cfg,
		now:      time.Now,
	}
}

// CanUnlock floors the supplied instant (or the current time when none is
// given) to its enclosing slot and checks whether the user is on the booking
// occupying it. An unbooked slot reports Booking not found: opening an
// unbooked room is not supported and no booking is ever auto-created here.
// BookingID is reported for the occupying booking even when Unlock is false.
func (s *accessService) CanUnlock(ctx context.Context, roomID, userID string, at *time.Time) (*model.UnlockDecision, error) {
	instant := s.now()
	if at != nil {
		instant = *at
	}
	slotStart := slot.Floor(instant)

	booking, err := s.calendar.Lookup(ctx, roomID, slotStart)
	if err != nil {
		switch {
		case errors.Is(err, roomerrors.ErrRoomNotFound):
			return nil, apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomerrors.ErrBookingNotFound):
			return nil, apperrors.NotFound("Booking")
		default:
			s.cfg.Log.Error("Failed to resolve unlock decision", "room_id", roomID, "user_id", userID, "error", err)
			return nil, apperrors.Internal("Failed to resolve unlock decision", err)
		}
	}

	decision := &model.UnlockDecision{
		Unlock:    booking.HasUser(userID),
		BookingID: booking.ID,
	}

	s.cfg.Log.Info("Unlock decision",
		"room_id", roomID,
		"user_id", userID,
		"slot_start", slotStart,
		"unlock", decision.Unlock,
		"booking_id", decision.BookingID,
	)

	return decision, nil
}
