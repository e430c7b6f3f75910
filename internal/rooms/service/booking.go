package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/internal/rooms/events"
	"roomsvc/internal/rooms/notifier"
	"roomsvc/internal/rooms/repository"
	"roomsvc/internal/rooms/slot"
	"roomsvc/internal/rooms/validator"
	"roomsvc/pkg/config"
	apperrors "roomsvc/pkg/errors"
	"roomsvc/pkg/model"
)

// BookingService is the booking lifecycle manager: the single place where
// slot exclusivity is enforced against concurrent writers.
type BookingService interface {
	Create(ctx context.Context, roomID string, req *model.BookingRequest) (*model.Booking, error)
	Delete(ctx context.Context, roomID, bookingID string) (*model.Booking, error)
	GetAt(ctx context.Context, roomID string, at time.Time) (*model.Booking, error)
	CheckAvailable(ctx context.Context, roomID string, start time.Time) (time.Time, error)
}

type bookingService struct {
	repo      repository.RoomRepository
	calendar  *slot.Calendar
	notifier  notifier.Notifier
	publisher *events.Publisher
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.RoomRepository,
	n notifier.Notifier,
	publisher *events.Publisher,
	v *validator.RoomValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		calendar:  slot.NewCalendar(repo),
		notifier:  n,
		publisher: publisher,
		validator: v,
		cfg:       cfg,
	}
}

// Create reserves the slot at req.Start in one atomic conditional store
// operation. There is deliberately no availability pre-read: a read-then-push
// sequence would let two concurrent requests both observe the slot free and
// both insert. Either the guarded append succeeds and the returned booking
// carries its store-assigned identifier and derived end, or the slot was
// taken at commit time and Conflict is reported with nothing mutated.
func (s *bookingService) Create(ctx context.Context, roomID string, req *model.BookingRequest) (*model.Booking, error) {
	if req.Start.IsZero() {
		return nil, apperrors.InvalidInput("No start time provided")
	}

	if err := s.validator.ValidateBookingRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "room_id", roomID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	start, err := slot.Normalize(req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput("Start time not on the hour")
	}

	booking := &model.Booking{
		Start:  start,
		End:    slot.End(start),
		Leader: req.Leader,
		Users:  req.Users,
	}

	if err := s.repo.AppendBookingIfSlotFree(ctx, roomID, booking); err != nil {
		switch {
		case errors.Is(err, roomerrors.ErrRoomNotFound):
			return nil, apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomerrors.ErrSlotTaken):
			return nil, apperrors.Conflict(fmt.Sprintf("Room already booked at %s", start.Format(time.RFC3339)))
		default:
			s.cfg.Log.Error("Failed to create booking", "room_id", roomID, "error", err)
			return nil, apperrors.Internal("Failed to create booking", err)
		}
	}

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"room_id", roomID,
		"start", booking.Start,
		"leader", booking.Leader,
		"users", len(booking.Users),
	)

	// Room-side state is committed; everything below is best-effort.
	s.notifier.BookingCreated(roomID, booking)
	s.publisher.Publish(events.TypeBookingCreated, roomID, booking)

	return booking, nil
}

// Delete atomically recovers the target booking and removes it from the
// room's collection in one store command, then schedules delete notifications
// for every user that had been on it.
func (s *bookingService) Delete(ctx context.Context, roomID, bookingID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.RemoveBookingByID(ctx, roomID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, roomerrors.ErrRoomNotFound):
			return nil, apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomerrors.ErrBookingNotFound):
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		default:
			s.cfg.Log.Error("Failed to delete booking", "room_id", roomID, "booking_id", bookingID, "error", err)
			return nil, apperrors.Internal("Failed to delete booking", err)
		}
	}

	s.cfg.Log.Info("Booking deleted successfully",
		"booking_id", booking.ID,
		"room_id", roomID,
		"start", booking.Start,
	)

	s.notifier.BookingDeleted(booking)
	s.publisher.Publish(events.TypeBookingDeleted, roomID, booking)

	return booking, nil
}

// GetAt is a thin read passthrough for booking-at-time queries. A free slot
// yields (nil, nil); only a missing room is an error. If the store ever held
// more than one booking at the same instant only the first is reported, which
// would itself be a symptom of a broken exclusivity invariant.
func (s *bookingService) GetAt(ctx context.Context, roomID string, at time.Time) (*model.Booking, error) {
	booking, err := s.calendar.Lookup(ctx, roomID, at)
	if err != nil {
		switch {
		case errors.Is(err, roomerrors.ErrBookingNotFound):
			return nil, nil
		case errors.Is(err, roomerrors.ErrRoomNotFound):
			return nil, apperrors.NotFoundWithID("Room", roomID)
		default:
			s.cfg.Log.Error("Failed to look up booking", "room_id", roomID, "at", at, "error", err)
			return nil, apperrors.Internal("Failed to look up booking", err)
		}
	}
	return booking, nil
}

// CheckAvailable gates booking creation for callers that want a dry run.
// Alignment is validated before occupancy: an unaligned start is rejected
// regardless of what the slot holds.
func (s *bookingService) CheckAvailable(ctx context.Context, roomID string, start time.Time) (time.Time, error) {
	aligned, err := slot.Normalize(start)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("Start time not on the hour")
	}

	occupied, err := s.calendar.Occupied(ctx, roomID, aligned)
	if err != nil {
		if errors.Is(err, roomerrors.ErrRoomNotFound) {
			return time.Time{}, apperrors.NotFoundWithID("Room", roomID)
		}
		s.cfg.Log.Error("Failed to check slot availability", "room_id", roomID, "start", aligned, "error", err)
		return time.Time{}, apperrors.Internal("Failed to check availability", err)
	}
	if occupied {
		return time.Time{}, apperrors.Conflict(fmt.Sprintf("Room already booked at %s", aligned.Format(time.RFC3339)))
	}

	return aligned, nil
}
