package model

import "time"

// ProfileBooking is the schedule profile consulted by the availability
// engine.  Restaurants may maintain additional informational profiles (e.g.
// kitchen hours) under other names; those never influence booking.
const ProfileBooking = "booking"

// OpeningHour is one shift window of a restaurant's weekly schedule.  A day
// may carry zero, one or several rows (lunch and dinner services).  The week
// is restaurant-local with Monday as day 0.
//
// Fields:
//  ID              – primary key identifier.
//  RestaurantID    – restaurant the row belongs to.
//  Profile         – schedule profile name; booking uses ProfileBooking.
//  DayOfWeek       – 0=Monday .. 6=Sunday.
//  IsOpen          – closed rows exist so staff can toggle days off without
//                    deleting their times.
//  OpenTime        – wall-clock opening time, "HH:MM".
//  CloseTime       – wall-clock closing time, "HH:MM".
//  LastReservation – latest permissible slot start, "HH:MM"; at most CloseTime.
type OpeningHour struct {
	ID              uint64 // opening_hours.id
	RestaurantID    uint64 // opening_hours.restaurant_id
	Profile         string // opening_hours.profile
	DayOfWeek       int    // opening_hours.day_of_week
	IsOpen          bool   // opening_hours.is_open
	OpenTime        string // opening_hours.open_time
	CloseTime       string // opening_hours.close_time
	LastReservation string // opening_hours.last_reservation
}

// BlockedWindow is a one-off blackout for a calendar date.  It suppresses
// slot generation for its range regardless of the weekly schedule.  An
// all-day row blacks out the entire date; otherwise TimeFrom/TimeTo bound a
// partial-day range.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – restaurant the row belongs to.
//  Profile      – schedule profile the blackout applies to.
//  Date         – calendar date, "YYYY-MM-DD" in the restaurant's zone.
//  AllDay       – the whole date is blacked out.
//  TimeFrom     – start of a partial blackout, "HH:MM".
//  TimeTo       – end of a partial blackout, "HH:MM".
type BlockedWindow struct {
	ID           uint64    // blocked_windows.id
	RestaurantID uint64    // blocked_windows.restaurant_id
	Profile      string    // blocked_windows.profile
	Date         string    // blocked_windows.date
	AllDay       bool      // blocked_windows.all_day
	TimeFrom     string    // blocked_windows.time_from
	TimeTo       string    // blocked_windows.time_to
	CreatedAt    time.Time // blocked_windows.created_at
}
