package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/internal/rooms/repository"
	"roomsvc/internal/rooms/validator"
	"roomsvc/pkg/config"
	apperrors "roomsvc/pkg/errors"
	"roomsvc/pkg/model"
)

// RoomService covers room attribute CRUD. Bookings are exposed read-only as
// part of the room document; every booking mutation goes through
// BookingService.
type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, roomID string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, roomID string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, roomID string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(repo repository.RoomRepository, v *validator.RoomValidator, cfg *config.Config) RoomService {
	return &roomService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.sanitize(room)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "room_id", room.RoomID, "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	// Rooms are created empty; bookings only ever enter through the booking
	// lifecycle, so any bookings on the request payload are discarded.
	room.Bookings = []model.Booking{}

	if err := s.repo.Insert(ctx, room); err != nil {
		if errors.Is(err, roomerrors.ErrRoomExists) {
			return apperrors.Conflict("Room " + room.RoomID + " already exists")
		}
		s.cfg.Log.Error("Failed to create room", "room_id", room.RoomID, "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully", "room_id", room.RoomID, "capacity", room.Capacity)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomerrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, roomID string, updates *model.RoomUpdate) (*model.Room, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	s.sanitizeUpdate(updates)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "room_id", roomID, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	room, err := s.repo.Update(ctx, roomID, updates)
	if err != nil {
		if errors.Is(err, roomerrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		s.cfg.Log.Error("Failed to update room", "room_id", roomID, "error", err)
		return nil, apperrors.Internal("Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated successfully", "room_id", roomID)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, roomID string) error {
	if roomID == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, roomID); err != nil {
		if errors.Is(err, roomerrors.ErrRoomNotFound) {
			return apperrors.NotFoundWithID("Room", roomID)
		}
		s.cfg.Log.Error("Failed to delete room", "room_id", roomID, "error", err)
		return apperrors.Internal("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "room_id", roomID)
	return nil
}

// sanitize uppercases the enumerated fields so that "tv" and "TV" land as
// the same tag, matching how the store normalizes them.
func (s *roomService) sanitize(room *model.Room) {
	for i, e := range room.Equipment {
		room.Equipment[i] = strings.ToUpper(strings.TrimSpace(e))
	}
	room.NoiseLevel = strings.ToUpper(strings.TrimSpace(room.NoiseLevel))
	room.TemperatureLevel = strings.ToUpper(strings.TrimSpace(room.TemperatureLevel))
}

func (s *roomService) sanitizeUpdate(updates *model.RoomUpdate) {
	if updates.Equipment != nil {
		for i, e := range *updates.Equipment {
			(*updates.Equipment)[i] = strings.ToUpper(strings.TrimSpace(e))
		}
	}
	updates.NoiseLevel = strings.ToUpper(strings.TrimSpace(updates.NoiseLevel))
	updates.TemperatureLevel = strings.ToUpper(strings.TrimSpace(updates.TemperatureLevel))
}
