package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelink/internal/domain"
	"travelink/internal/repository"
)

type ScheduleUseCase interface {
	CreateTrip(ctx context.Context, input CreateTripInput) (*domain.Schedule, error)
	GetTrip(ctx context.Context, id string) (*domain.Schedule, error)
	ListUpcoming(ctx context.Context, limit int) ([]domain.Schedule, error)
	UpdateTrip(ctx context.Context, id string, input UpdateTripInput) (*domain.Schedule, error)
	AssignDriver(ctx context.Context, id, driverID string) (*domain.Schedule, error)
	CancelTrip(ctx context.Context, id string) (*domain.Schedule, error)
	MarkDeparted(ctx context.Context, id string) (*domain.Schedule, error)
	MarkArrived(ctx context.Context, id string) (*domain.Schedule, error)
	SweepDepartures(ctx context.Context) ([]domain.Schedule, error)
	RemoveTrip(ctx context.Context, id string) error
}

// Cache keeps the hot upcoming-trip listing out of the database. Seat counts
// are never served from it for booking decisions.
type Cache interface {
	GetUpcomingSchedules(ctx context.Context) ([]domain.Schedule, error)
	SetUpcomingSchedules(ctx context.Context, schedules []domain.Schedule) error
	InvalidateUpcomingSchedules(ctx context.Context) error
}

type ScheduleService struct {
	schedules repository.ScheduleRepository
	refs      repository.ReferenceRepository
	cache     Cache
	log       *zap.Logger
}

type CreateTripInput struct {
	RouteID        string
	VehicleID      string
	DriverID       string
	DepartureTime  time.Time
	ArrivalTime    *time.Time
	Price          int64
	AvailableSeats int
}

// UpdateTripInput uses pointers so absent fields stay untouched.
type UpdateTripInput struct {
	RouteID        *string
	VehicleID      *string
	DriverID       *string
	DepartureTime  *time.Time
	ArrivalTime    *time.Time
	Price          *int64
	AvailableSeats *int
}

func NewScheduleService(schedules repository.ScheduleRepository, refs repository.ReferenceRepository, cache Cache, log *zap.Logger) *ScheduleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleService{schedules: schedules, refs: refs, cache: cache, log: log}
}

func (s *ScheduleService) CreateTrip(ctx context.Context, input CreateTripInput) (*domain.Schedule, error) {
	route, err := s.refs.GetRoute(ctx, input.RouteID)
	if err != nil {
		return nil, err
	}
	if !route.IsActive {
		return nil, domain.Validationf("route %s is not active", route.RouteCode)
	}

	vehicle, err := s.refs.GetVehicle(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == domain.VehicleStatusRetired {
		return nil, domain.Validationf("vehicle %s is retired and cannot be used", vehicle.VehicleNumber)
	}
	if input.AvailableSeats < 1 {
		return nil, domain.Validationf("available seats must be at least 1")
	}
	if input.AvailableSeats > vehicle.Capacity {
		return nil, domain.CapacityExceededf("available seats (%d) cannot exceed vehicle capacity (%d)",
			input.AvailableSeats, vehicle.Capacity)
	}

	if !input.DepartureTime.After(time.Now()) {
		return nil, domain.TemporalViolationf("departure time must be in the future")
	}
	if input.ArrivalTime != nil && !input.ArrivalTime.After(input.DepartureTime) {
		return nil, domain.TemporalViolationf("arrival time must be after departure time")
	}

	candidate := domain.Schedule{DepartureTime: input.DepartureTime, ArrivalTime: input.ArrivalTime}
	from, to := candidate.Window()

	if err := s.checkVehicleAvailability(ctx, input.VehicleID, from, to, ""); err != nil {
		return nil, err
	}
	if input.DriverID != "" {
		if err := s.checkDriverAvailability(ctx, input.DriverID, from, to, ""); err != nil {
			return nil, err
		}
	}

	trip := &domain.Schedule{
		ID:             uuid.NewString(),
		RouteID:        input.RouteID,
		VehicleID:      input.VehicleID,
		DriverID:       input.DriverID,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		Price:          input.Price,
		AvailableSeats: input.AvailableSeats,
		Status:         domain.ScheduleStatusScheduled,
	}
	if err := s.schedules.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.invalidateUpcoming(ctx)
	s.log.Info("trip created",
		zap.String("schedule_id", trip.ID),
		zap.String("vehicle_id", trip.VehicleID),
		zap.Time("departure", trip.DepartureTime))
	return trip, nil
}

func (s *ScheduleService) GetTrip(ctx context.Context, id string) (*domain.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *ScheduleService) ListUpcoming(ctx context.Context, limit int) ([]domain.Schedule, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetUpcomingSchedules(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	schedules, err := s.schedules.ListUpcoming(ctx, limit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetUpcomingSchedules(ctx, schedules); err != nil {
			s.log.Warn("cache upcoming schedules", zap.Error(err))
		}
	}
	return schedules, nil
}

func (s *ScheduleService) UpdateTrip(ctx context.Context, id string, input UpdateTripInput) (*domain.Schedule, error) {
	trip, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.ScheduleStatusScheduled {
		return nil, domain.InvalidStatef("cannot update schedule with status %s", trip.Status)
	}

	updated := *trip
	if input.RouteID != nil {
		route, err := s.refs.GetRoute(ctx, *input.RouteID)
		if err != nil {
			return nil, err
		}
		if !route.IsActive {
			return nil, domain.Validationf("route %s is not active", route.RouteCode)
		}
		updated.RouteID = *input.RouteID
	}
	if input.VehicleID != nil {
		updated.VehicleID = *input.VehicleID
	}
	if input.DriverID != nil {
		updated.DriverID = *input.DriverID
	}
	if input.DepartureTime != nil {
		updated.DepartureTime = *input.DepartureTime
	}
	if input.ArrivalTime != nil {
		updated.ArrivalTime = input.ArrivalTime
	}
	if input.Price != nil {
		updated.Price = *input.Price
	}
	if input.AvailableSeats != nil {
		updated.AvailableSeats = *input.AvailableSeats
	}

	vehicle, err := s.refs.GetVehicle(ctx, updated.VehicleID)
	if err != nil {
		return nil, err
	}
	if updated.AvailableSeats > vehicle.Capacity {
		return nil, domain.CapacityExceededf("available seats (%d) cannot exceed vehicle capacity (%d)",
			updated.AvailableSeats, vehicle.Capacity)
	}
	if updated.ArrivalTime != nil && !updated.ArrivalTime.After(updated.DepartureTime) {
		return nil, domain.TemporalViolationf("arrival time must be after departure time")
	}
	if input.DepartureTime != nil && !updated.DepartureTime.After(time.Now()) {
		return nil, domain.TemporalViolationf("departure time must be in the future")
	}

	from, to := updated.Window()
	if err := s.checkVehicleAvailability(ctx, updated.VehicleID, from, to, id); err != nil {
		return nil, err
	}
	if updated.DriverID != "" {
		if err := s.checkDriverAvailability(ctx, updated.DriverID, from, to, id); err != nil {
			return nil, err
		}
	}

	if err := s.schedules.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.invalidateUpcoming(ctx)
	return &updated, nil
}

func (s *ScheduleService) AssignDriver(ctx context.Context, id, driverID string) (*domain.Schedule, error) {
	trip, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.ScheduleStatusScheduled {
		return nil, domain.InvalidStatef("cannot assign driver to schedule with status %s", trip.Status)
	}

	from, to := trip.Window()
	if err := s.checkDriverAvailability(ctx, driverID, from, to, id); err != nil {
		return nil, err
	}

	updated := *trip
	updated.DriverID = driverID
	if err := s.schedules.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ScheduleService) CancelTrip(ctx context.Context, id string) (*domain.Schedule, error) {
	trip, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status == domain.ScheduleStatusArrived || trip.Status == domain.ScheduleStatusCancelled {
		return nil, domain.InvalidStatef("cannot cancel schedule with status %s", trip.Status)
	}

	active, err := s.schedules.CountActiveTickets(ctx, id)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, domain.InvalidStatef("cannot cancel schedule: it has %d active ticket(s)", active)
	}

	cancelled, err := s.schedules.UpdateStatus(ctx, id, domain.ScheduleStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.invalidateUpcoming(ctx)
	s.log.Info("trip cancelled", zap.String("schedule_id", id))
	return cancelled, nil
}

func (s *ScheduleService) MarkDeparted(ctx context.Context, id string) (*domain.Schedule, error) {
	trip, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.ScheduleStatusScheduled {
		return nil, domain.InvalidStatef("cannot mark schedule with status %s as departed", trip.Status)
	}
	updated, err := s.schedules.UpdateStatus(ctx, id, domain.ScheduleStatusDeparted)
	if err != nil {
		return nil, err
	}
	s.invalidateUpcoming(ctx)
	return updated, nil
}

func (s *ScheduleService) MarkArrived(ctx context.Context, id string) (*domain.Schedule, error) {
	trip, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.ScheduleStatusDeparted {
		return nil, domain.InvalidStatef("cannot mark schedule with status %s as arrived", trip.Status)
	}
	return s.schedules.UpdateStatus(ctx, id, domain.ScheduleStatusArrived)
}

// SweepDepartures flips overdue SCHEDULED trips to DEPARTED. Run periodically
// by the worker so booking guards stay accurate without driver input.
func (s *ScheduleService) SweepDepartures(ctx context.Context) ([]domain.Schedule, error) {
	due, err := s.schedules.ListDueForDeparture(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	var departed []domain.Schedule
	for _, trip := range due {
		updated, err := s.schedules.UpdateStatus(ctx, trip.ID, domain.ScheduleStatusDeparted)
		if err != nil {
			s.log.Warn("sweep departure", zap.String("schedule_id", trip.ID), zap.Error(err))
			continue
		}
		departed = append(departed, *updated)
	}
	if len(departed) > 0 {
		s.invalidateUpcoming(ctx)
	}
	return departed, nil
}

func (s *ScheduleService) RemoveTrip(ctx context.Context, id string) error {
	trip, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	active, err := s.schedules.CountActiveTickets(ctx, trip.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.InvalidStatef("cannot delete schedule with active tickets; cancel it instead")
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateUpcoming(ctx)
	return nil
}

func (s *ScheduleService) checkVehicleAvailability(ctx context.Context, vehicleID string, from, to time.Time, excludeID string) error {
	trips, err := s.schedules.ListActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if conflicts := findConflicts(trips, from, to, excludeID); len(conflicts) > 0 {
		c := conflicts[0]
		start, end := c.Window()
		return domain.ResourceConflictf("vehicle is already scheduled for trip %s from %s to %s",
			c.ID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func (s *ScheduleService) checkDriverAvailability(ctx context.Context, driverID string, from, to time.Time, excludeID string) error {
	driver, err := s.refs.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if driver.Status != domain.DriverStatusActive {
		return domain.Validationf("driver %s is not active", driver.Name)
	}

	trips, err := s.schedules.ListActiveByDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if conflicts := findConflicts(trips, from, to, excludeID); len(conflicts) > 0 {
		c := conflicts[0]
		start, end := c.Window()
		return domain.ResourceConflictf("driver is already assigned to trip %s from %s to %s",
			c.ID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func (s *ScheduleService) invalidateUpcoming(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUpcomingSchedules(ctx); err != nil {
		s.log.Warn("invalidate schedule cache", zap.Error(err))
	}
}

var _ ScheduleUseCase = (*ScheduleService)(nil)
