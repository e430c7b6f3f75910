package service

import (
	"context"
	"sync"
	"time"

	"roomsvc/internal/rooms/repository"
	"roomsvc/pkg/config"
	"roomsvc/pkg/logger"
	"roomsvc/pkg/model"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.FormatJSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

type mockRoomRepository struct {
	insertFunc            func(ctx context.Context, room *model.Room) error
	findByIDFunc          func(ctx context.Context, roomID string) (*model.Room, error)
	findAllFunc           func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFunc             func(ctx context.Context) (int64, error)
	updateFunc            func(ctx context.Context, roomID string, updates *model.RoomUpdate) (*model.Room, error)
	deleteFunc            func(ctx context.Context, roomID string) error
	appendBookingFunc     func(ctx context.Context, roomID string, booking *model.Booking) error
	removeBookingFunc     func(ctx context.Context, roomID, bookingID string) (*model.Booking, error)
	findBookingAtSlotFunc func(ctx context.Context, roomID string, start time.Time) (*model.Booking, error)
}

var _ repository.RoomRepository = (*mockRoomRepository)(nil)

func (m *mockRoomRepository) Insert(ctx context.Context, room *model.Room) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, room)
	}
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, roomID string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, roomID)
	}
	return nil, nil
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, roomID string, updates *model.RoomUpdate) (*model.Room, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, roomID, updates)
	}
	return nil, nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, roomID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, roomID)
	}
	return nil
}

func (m *mockRoomRepository) AppendBookingIfSlotFree(ctx context.Context, roomID string, booking *model.Booking) error {
	if m.appendBookingFunc != nil {
		return m.appendBookingFunc(ctx, roomID, booking)
	}
	return nil
}

func (m *mockRoomRepository) RemoveBookingByID(ctx context.Context, roomID, bookingID string) (*model.Booking, error) {
	if m.removeBookingFunc != nil {
		return m.removeBookingFunc(ctx, roomID, bookingID)
	}
	return nil, nil
}

func (m *mockRoomRepository) FindBookingAtSlot(ctx context.Context, roomID string, start time.Time) (*model.Booking, error) {
	if m.findBookingAtSlotFunc != nil {
		return m.findBookingAtSlotFunc(ctx, roomID, start)
	}
	return nil, nil
}

// mockNotifier records notifications synchronously; safe for concurrent use.
type mockNotifier struct {
	mu       sync.Mutex
	created  []string
	deleted  []string
	rooms    []string
	bookings []*model.Booking
}

func (m *mockNotifier) BookingCreated(roomID string, booking *model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, booking.Users...)
	m.rooms = append(m.rooms, roomID)
	m.bookings = append(m.bookings, booking)
}

func (m *mockNotifier) BookingDeleted(booking *model.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, booking.Users...)
	m.bookings = append(m.bookings, booking)
}

func (m *mockNotifier) createdUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.created...)
}

func (m *mockNotifier) deletedUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
