package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	roomerrors "roomsvc/internal/rooms/errors"
	"roomsvc/internal/rooms/validator"
	apperrors "roomsvc/pkg/errors"
	"roomsvc/pkg/model"
)

func newBookingService(repo *mockRoomRepository, n *mockNotifier) BookingService {
	cfg := newTestConfig()
	return NewBookingService(repo, n, nil, validator.NewRoomValidator(cfg.Log), cfg)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestCreateBooking_Success(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	repo := &mockRoomRepository{
		appendBookingFunc: func(ctx context.Context, roomID string, booking *model.Booking) error {
			booking.ID = "bk-1"
			return nil
		},
	}
	n := &mockNotifier{}
	svc := newBookingService(repo, n)

	booking, err := svc.Create(context.Background(), "A-101", &model.BookingRequest{
		Start:  start,
		Leader: "u1",
		Users:  []string{"u1", "u2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID != "bk-1" {
		t.Errorf("expected store-assigned id, got %q", booking.ID)
	}
	if !booking.Start.Equal(start) {
		t.Errorf("expected start %v, got %v", start, booking.Start)
	}
	if !booking.End.Equal(start.Add(time.Hour)) {
		t.Errorf("expected end one hour after start, got %v", booking.End)
	}
	if booking.Leader != "u1" {
		t.Errorf("expected leader u1, got %q", booking.Leader)
	}

	created := n.createdUsers()
	if len(created) != 2 {
		t.Fatalf("expected 2 user notifications, got %d", len(created))
	}
}

func TestCreateBooking_UnalignedStartNeverReachesStore(t *testing.T) {
	storeCalls := 0
	repo := &mockRoomRepository{
		appendBookingFunc: func(ctx context.Context, roomID string, booking *model.Booking) error {
			storeCalls++
			return nil
		},
	}
	svc := newBookingService(repo, &mockNotifier{})

	unaligned := []time.Time{
		time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 9, 0, 1, 0, time.UTC),
		time.Date(2024, 6, 3, 9, 59, 59, 999999999, time.UTC),
	}

	for _, start := range unaligned {
		_, err := svc.Create(context.Background(), "A-101", &model.BookingRequest{
			Start:  start,
			Leader: "u1",
			Users:  []string{"u1"},
		})
		assertCode(t, err, apperrors.CodeInvalidInput)
	}

	if storeCalls != 0 {
		t.Errorf("unaligned create must not reach the store, got %d calls", storeCalls)
	}
}

func TestCreateBooking_MissingStart(t *testing.T) {
	svc := newBookingService(&mockRoomRepository{}, &mockNotifier{})

	_, err := svc.Create(context.Background(), "A-101", &model.BookingRequest{
		Leader: "u1",
		Users:  []string{"u1"},
	})
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestCreateBooking_Conflict(t *testing.T) {
	repo := &mockRoomRepository{
		appendBookingFunc: func(ctx context.Context, roomID string, booking *model.Booking) error {
			return roomerrors.ErrSlotTaken
		},
	}
	n := &mockNotifier{}
	svc := newBookingService(repo, n)

	_, err := svc.Create(context.Background(), "A-101", &model.BookingRequest{
		Start:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		Leader: "u1",
		Users:  []string{"u1"},
	})
	assertCode(t, err, apperrors.CodeConflict)

	if len(n.createdUsers()) != 0 {
		t.Error("conflicting create must not notify anyone")
	}
}

func TestCreateBooking_RoomNotFound(t *testing.T) {
	repo := &mockRoomRepository{
		appendBookingFunc: func(ctx context.Context, roomID string, booking *model.Booking) error {
			return roomerrors.ErrRoomNotFound
		},
	}
	svc := newBookingService(repo, &mockNotifier{})

	_, err := svc.Create(context.Background(), "Z-999", &model.BookingRequest{
		Start:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		Leader: "u1",
		Users:  []string{"u1"},
	})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	// Mutex-guarded conditional append mirrors the store-side guarantee: of
	// any set of concurrent attempts for one slot, at most one may succeed.
	const attempts = 50
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	occupied := map[time.Time]bool{}
	nextID := 0

	repo := &mockRoomRepository{
		appendBookingFunc: func(ctx context.Context, roomID string, booking *model.Booking) error {
			mu.Lock()
			defer mu.Unlock()
			if occupied[booking.Start] {
				return roomerrors.ErrSlotTaken
			}
			occupied[booking.Start] = true
			nextID++
			booking.ID = fmt.Sprintf("bk-%d", nextID)
			return nil
		},
	}
	svc := newBookingService(repo, &mockNotifier{})

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), "A-101", &model.BookingRequest{
				Start:  start,
				Leader: "u1",
				Users:  []string{"u1"},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.CodeConflict {
			conflicts++
			continue
		}
		t.Fatalf("unexpected error: %v", err)
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestDeleteBooking_Success(t *testing.T) {
	removed := &model.Booking{
		ID:     "bk-1",
		Start:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Leader: "u1",
		Users:  []string{"u1", "u2"},
	}
	repo := &mockRoomRepository{
		removeBookingFunc: func(ctx context.Context, roomID, bookingID string) (*model.Booking, error) {
			return removed, nil
		},
	}
	n := &mockNotifier{}
	svc := newBookingService(repo, n)

	booking, err := svc.Delete(context.Background(), "A-101", "bk-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID != "bk-1" {
		t.Errorf("expected removed booking back, got %+v", booking)
	}

	deleted := n.deletedUsers()
	if len(deleted) != 2 {
		t.Fatalf("expected delete notification for each user, got %d", len(deleted))
	}
}

func TestDeleteBooking_NotFoundVariants(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
	}{
		{name: "booking absent", storeErr: roomerrors.ErrBookingNotFound},
		{name: "room absent", storeErr: roomerrors.ErrRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRoomRepository{
				removeBookingFunc: func(ctx context.Context, roomID, bookingID string) (*model.Booking, error) {
					return nil, tt.storeErr
				},
			}
			n := &mockNotifier{}
			svc := newBookingService(repo, n)

			_, err := svc.Delete(context.Background(), "A-101", "bk-1")
			assertCode(t, err, apperrors.CodeNotFound)

			if len(n.deletedUsers()) != 0 {
				t.Error("failed delete must not notify anyone")
			}
		})
	}
}

func TestDeleteBooking_EmptyID(t *testing.T) {
	svc := newBookingService(&mockRoomRepository{}, &mockNotifier{})

	_, err := svc.Delete(context.Background(), "A-101", "")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestGetAt(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	stored := &model.Booking{ID: "bk-1", Start: start}

	tests := []struct {
		name     string
		storeErr error
		want     *model.Booking
		wantCode string
	}{
		{name: "booking present", want: stored},
		{name: "free slot yields nil without error", storeErr: roomerrors.ErrBookingNotFound},
		{name: "room absent", storeErr: roomerrors.ErrRoomNotFound, wantCode: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRoomRepository{
				findBookingAtSlotFunc: func(ctx context.Context, roomID string, at time.Time) (*model.Booking, error) {
					if tt.storeErr != nil {
						return nil, tt.storeErr
					}
					return stored, nil
				},
			}
			svc := newBookingService(repo, &mockNotifier{})

			booking, err := svc.GetAt(context.Background(), "A-101", start)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == nil && booking != nil {
				t.Errorf("expected nil booking, got %+v", booking)
			}
			if tt.want != nil && (booking == nil || booking.ID != tt.want.ID) {
				t.Errorf("expected booking %+v, got %+v", tt.want, booking)
			}
		})
	}
}

func TestCheckAvailable(t *testing.T) {
	aligned := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		storeErr error
		occupied bool
		wantCode string
	}{
		{name: "free aligned slot", start: aligned, storeErr: roomerrors.ErrBookingNotFound},
		{name: "unaligned rejected before occupancy", start: aligned.Add(10 * time.Minute), wantCode: apperrors.CodeInvalidInput},
		{name: "occupied slot", start: aligned, occupied: true, wantCode: apperrors.CodeConflict},
		{name: "room absent", start: aligned, storeErr: roomerrors.ErrRoomNotFound, wantCode: apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storeCalls := 0
			repo := &mockRoomRepository{
				findBookingAtSlotFunc: func(ctx context.Context, roomID string, at time.Time) (*model.Booking, error) {
					storeCalls++
					if tt.storeErr != nil {
						return nil, tt.storeErr
					}
					if tt.occupied {
						return &model.Booking{ID: "bk-1", Start: at}, nil
					}
					return nil, roomerrors.ErrBookingNotFound
				},
			}
			svc := newBookingService(repo, &mockNotifier{})

			got, err := svc.CheckAvailable(context.Background(), "A-101", tt.start)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				if tt.wantCode == apperrors.CodeInvalidInput && storeCalls != 0 {
					t.Error("alignment failure must not reach the store")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(aligned) {
				t.Errorf("expected aligned start %v, got %v", aligned, got)
			}
		})
	}
}
