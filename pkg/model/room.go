package model

import (
	"time"
)

// Booking occupies exactly one hour-aligned slot in a room. End is always
// Start plus one hour and is stored denormalized for readers.
type Booking struct {
	ID     string    `json:"id,omitempty" bson:"_id,omitempty"`
	Start  time.Time `json:"start" bson:"start"`
	End    time.Time `json:"end" bson:"end"`
	Leader string    `json:"leader" bson:"leader"`
	Users  []string  `json:"users" bson:"users"`
}

// HasUser reports whether userID is in the booking's user set. Membership is
// decided by Users alone; Leader carries no access of its own.
func (b *Booking) HasUser(userID string) bool {
	if userID == "" {
		return false
	}
	for _, u := range b.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// Location uses pointer coordinates so 0/0 survives required validation.
type Location struct {
	Latitude  *float64 `json:"latitude" bson:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" bson:"longitude" validate:"required,min=-180,max=180"`
}

type Room struct {
	RoomID           string    `json:"room_id" bson:"room_id" validate:"required,room_id"`
	Floor            *int      `json:"floor" bson:"floor" validate:"required"`
	Location         Location  `json:"location" bson:"location"`
	Capacity         int       `json:"capacity" bson:"capacity" validate:"required,min=1"`
	Equipment        []string  `json:"equipment" bson:"equipment" validate:"omitempty,dive,oneof=TV PROJECTOR"`
	Bookings         []Booking `json:"bookings" bson:"bookings" validate:"omitempty"`
	NoiseLevel       string    `json:"noise_level,omitempty" bson:"noise_level,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	TemperatureLevel string    `json:"temperature_level,omitempty" bson:"temperature_level,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	WifiSpeed        *float64  `json:"wifi_speed,omitempty" bson:"wifi_speed,omitempty" validate:"omitempty,min=0"`
}

// RoomUpdate carries partial room attribute changes. Identity (room_id,
// floor, location) and the booking collection are not updatable here.
type RoomUpdate struct {
	Capacity         *int      `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Equipment        *[]string `json:"equipment,omitempty" validate:"omitempty,dive,oneof=TV PROJECTOR"`
	NoiseLevel       string    `json:"noise_level,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	TemperatureLevel string    `json:"temperature_level,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	WifiSpeed        *float64  `json:"wifi_speed,omitempty" validate:"omitempty,min=0"`
}

// BookingRequest is the create payload. The booking identifier and end time
// are assigned by the service, never by the caller.
type BookingRequest struct {
	Start  time.Time `json:"start" validate:"required"`
	Leader string    `json:"leader" validate:"required"`
	Users  []string  `json:"users" validate:"required,min=1,dive,required"`
}

// UnlockDecision answers an unlock check. BookingID identifies the occupying
// booking even when Unlock is false.
type UnlockDecision struct {
	Unlock    bool   `json:"unlock"`
	BookingID string `json:"booking_id,omitempty"`
}
