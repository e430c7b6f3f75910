package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"roomsvc/internal/rooms/service"
	apperrors "roomsvc/pkg/errors"
	httputil "roomsvc/pkg/http"
	"roomsvc/pkg/logger"
	"roomsvc/pkg/model"
)

type BookingHandler struct {
	bookings service.BookingService
	access   service.AccessService
	log      *logger.Logger
}

func NewBookingHandler(bookings service.BookingService, access service.AccessService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		access:   access,
		log:      log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.bookings.Create(r.Context(), roomID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetAtTime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")

	at, err := time.Parse(time.RFC3339, ps.ByName("start"))
	if err != nil {
		h.writeError(w, "GetAtTime", apperrors.InvalidInput("invalid start time, must be RFC3339"))
		return
	}

	booking, err := h.bookings.GetAt(r.Context(), roomID, at)
	if err != nil {
		h.writeError(w, "GetAtTime", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAtTime", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")
	bookingID := ps.ByName("bookingId")

	booking, err := h.bookings.Delete(r.Context(), roomID, bookingID)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")

	startStr := r.URL.Query().Get("start")
	if startStr == "" {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("'start' query parameter is required"))
		return
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		h.writeError(w, "CheckAvailability", apperrors.InvalidInput("invalid start time, must be RFC3339"))
		return
	}

	aligned, err := h.bookings.CheckAvailable(r.Context(), roomID, start)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"start": aligned, "available": true}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

func (h *BookingHandler) Unlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")
	userID := ps.ByName("userId")

	var at *time.Time
	if timeStr := r.URL.Query().Get("time"); timeStr != "" {
		parsed, err := time.Parse(time.RFC3339, timeStr)
		if err != nil {
			h.writeError(w, "Unlock", apperrors.InvalidInput("invalid time, must be RFC3339"))
			return
		}
		at = &parsed
	}

	decision, err := h.access.CanUnlock(r.Context(), roomID, userID, at)
	if err != nil {
		h.writeError(w, "Unlock", err)
		return
	}

	if err := httputil.WriteSuccess(w, decision); err != nil {
		h.log.Error("failed to write success response", "handler", "Unlock", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms/:roomId/bookings", h.Create)
	router.GET("/api/v1/rooms/:roomId/bookings/:start", h.GetAtTime)
	router.DELETE("/api/v1/rooms/:roomId/bookings/:bookingId", h.Delete)
	router.GET("/api/v1/rooms/:roomId/availability", h.CheckAvailability)
	router.GET("/api/v1/rooms/:roomId/unlock/:userId", h.Unlock)
}
