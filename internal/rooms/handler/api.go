package handler

import (
	"github.com/julienschmidt/httprouter"
)

// API bundles the room and booking surfaces behind one route registrar.
type API struct {
	rooms    *RoomHandler
	bookings *BookingHandler
}

func NewAPI(rooms *RoomHandler, bookings *BookingHandler) *API {
	return &API{
		rooms:    rooms,
		bookings: bookings,
	}
}

func (a *API) RegisterRoutes(router *httprouter.Router) {
	a.rooms.RegisterRoutes(router)
	a.bookings.RegisterRoutes(router)
}
