package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusDeparted  ScheduleStatus = "DEPARTED"
	ScheduleStatusArrived   ScheduleStatus = "ARRIVED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

// DefaultTripDuration is the assumed length of a trip whose arrival time is
// not known yet. Such trips block their vehicle and driver for this long.
const DefaultTripDuration = 8 * time.Hour

type Schedule struct {
	ID             string         `json:"id"`
	RouteID        string         `json:"route_id"`
	VehicleID      string         `json:"vehicle_id"`
	DriverID       string         `json:"driver_id,omitempty"` // empty until a driver is assigned
	DepartureTime  time.Time      `json:"departure_time"`
	ArrivalTime    *time.Time     `json:"arrival_time,omitempty"`
	Price          int64          `json:"price"`
	AvailableSeats int            `json:"available_seats"`
	Status         ScheduleStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Window returns the interval during which the schedule occupies its vehicle
// and driver. Open-ended trips span DefaultTripDuration from departure.
func (s *Schedule) Window() (time.Time, time.Time) {
	if s.ArrivalTime != nil {
		return s.DepartureTime, *s.ArrivalTime
	}
	return s.DepartureTime, s.DepartureTime.Add(DefaultTripDuration)
}

// Bookable reports whether new tickets may still target this schedule.
func (s *Schedule) Bookable(now time.Time) bool {
	return s.Status == ScheduleStatusScheduled && s.DepartureTime.After(now)
}

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "ACTIVE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusRetired     VehicleStatus = "RETIRED"
)

type Vehicle struct {
	ID            string        `json:"id"`
	VehicleNumber string        `json:"vehicle_number"`
	Type          string        `json:"type"`
	Capacity      int           `json:"capacity"`
	Status        VehicleStatus `json:"status"`
}

type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

type Driver struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone"`
	LicenseNumber string       `json:"license_number"`
	Status        DriverStatus `json:"status"`
}

type Route struct {
	ID          string `json:"id"`
	RouteCode   string `json:"route_code"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	IsActive    bool   `json:"is_active"`
}
