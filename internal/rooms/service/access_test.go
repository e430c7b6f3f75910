package service

import (
	"context"
	"testing"
	"time"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/internal/rooms/slot"
	apperrors "roomsvc/pkg/errors"
	"roomsvc/pkg/model"
)

func newAccessService(repo *mockRoomRepository, now func() time.Time) AccessService {
	svc := &accessService{
		calendar: slot.NewCalendar(repo),
		cfg:      newTestConfig(),
		now:      now,
	}
	return svc
}

func TestCanUnlock(t *testing.T) {
	slotStart := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	occupying := &model.Booking{
		ID:     "bk-1",
		Start:  slotStart,
		Leader: "u1",
		Users:  []string{"u1", "u2"},
	}
	midSlot := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

	leaderOutside := &model.Booking{
		ID:     "bk-1",
		Start:  slotStart,
		Leader: "u1",
		Users:  []string{"u2"},
	}

	tests := []struct {
		name       string
		userID     string
		at         *time.Time
		booking    *model.Booking
		storeErr   error
		wantUnlock bool
		wantCode   string
	}{
		{name: "member mid-slot", userID: "u2", at: &midSlot, wantUnlock: true},
		{name: "leader in users mid-slot", userID: "u1", at: &midSlot, wantUnlock: true},
		{name: "leader outside users is denied", userID: "u1", at: &midSlot, booking: leaderOutside, wantUnlock: false},
		{name: "non-member gets booking id but no unlock", userID: "u3", at: &midSlot, wantUnlock: false},
		{name: "no booking in slot", userID: "u1", at: &midSlot, storeErr: roomerrors.ErrBookingNotFound, wantCode: apperrors.CodeNotFound},
		{name: "room absent", userID: "u1", at: &midSlot, storeErr: roomerrors.ErrRoomNotFound, wantCode: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lookedUp time.Time
			repo := &mockRoomRepository{
				findBookingAtSlotFunc: func(ctx context.Context, roomID string, at time.Time) (*model.Booking, error) {
					lookedUp = at
					if tt.storeErr != nil {
						return nil, tt.storeErr
					}
					if tt.booking != nil {
						return tt.booking, nil
					}
					return occupying, nil
				},
			}
			svc := newAccessService(repo, time.Now)

			decision, err := svc.CanUnlock(context.Background(), "A-101", tt.userID, tt.at)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !lookedUp.Equal(slotStart) {
				t.Errorf("expected lookup at floored slot %v, got %v", slotStart, lookedUp)
			}
			if decision.Unlock != tt.wantUnlock {
				t.Errorf("expected unlock=%v, got %v", tt.wantUnlock, decision.Unlock)
			}
			if decision.BookingID != "bk-1" {
				t.Errorf("expected booking id reported regardless of membership, got %q", decision.BookingID)
			}
		})
	}
}

func TestCanUnlock_DefaultsToCurrentTime(t *testing.T) {
	now := time.Date(2024, 6, 3, 14, 42, 7, 0, time.UTC)
	wantSlot := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)

	var lookedUp time.Time
	repo := &mockRoomRepository{
		findBookingAtSlotFunc: func(ctx context.Context, roomID string, at time.Time) (*model.Booking, error) {
			lookedUp = at
			return &model.Booking{ID: "bk-1", Start: at, Users: []string{"u1"}}, nil
		},
	}
	svc := newAccessService(repo, func() time.Time { return now })

	decision, err := svc.CanUnlock(context.Background(), "A-101", "u1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lookedUp.Equal(wantSlot) {
		t.Errorf("expected lookup at %v, got %v", wantSlot, lookedUp)
	}
	if !decision.Unlock {
		t.Error("expected unlock for member")
	}
}
