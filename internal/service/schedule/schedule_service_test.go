package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelink/internal/domain"
)

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) UpdateStatus(ctx context.Context, id string, status domain.ScheduleStatus) (*domain.Schedule, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListUpcoming(ctx context.Context, limit int) ([]domain.Schedule, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Schedule, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListActiveByDriver(ctx context.Context, driverID string) ([]domain.Schedule, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ListDueForDeparture(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleRepository) ReserveSeats(ctx context.Context, scheduleID string, count int) error {
	args := m.Called(ctx, scheduleID, count)
	return args.Error(0)
}

func (m *MockScheduleRepository) ReleaseSeats(ctx context.Context, scheduleID string, count int) error {
	args := m.Called(ctx, scheduleID, count)
	return args.Error(0)
}

func (m *MockScheduleRepository) TakenSeatNumbers(ctx context.Context, scheduleID string) ([]string, error) {
	args := m.Called(ctx, scheduleID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockScheduleRepository) CountActiveTickets(ctx context.Context, scheduleID string) (int, error) {
	args := m.Called(ctx, scheduleID)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockReferenceRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockReferenceRepository) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockReferenceRepository) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockReferenceRepository) GetAdminByUserID(ctx context.Context, userID string) (*domain.Admin, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockReferenceRepository) GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockScheduleCache struct {
	mock.Mock
}

func (m *MockScheduleCache) GetUpcomingSchedules(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockScheduleCache) SetUpcomingSchedules(ctx context.Context, schedules []domain.Schedule) error {
	args := m.Called(ctx, schedules)
	return args.Error(0)
}

func (m *MockScheduleCache) InvalidateUpcomingSchedules(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func activeRoute() *domain.Route {
	return &domain.Route{ID: "route-1", RouteCode: "JKT-BDG", Origin: "Jakarta", Destination: "Bandung", IsActive: true}
}

func activeVehicle() *domain.Vehicle {
	return &domain.Vehicle{ID: "vehicle-1", VehicleNumber: "B 1234 XYZ", Capacity: 40, Status: domain.VehicleStatusActive}
}

func activeDriver() *domain.Driver {
	return &domain.Driver{ID: "driver-1", Name: "Budi", Status: domain.DriverStatusActive}
}

func TestScheduleService_CreateTrip_Success(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	mockCache := &MockScheduleCache{}
	service := NewScheduleService(mockSchedules, mockRefs, mockCache, nil)

	ctx := context.Background()
	departure := time.Now().Add(24 * time.Hour)
	arrival := departure.Add(3 * time.Hour)

	input := CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-1",
		DriverID:       "driver-1",
		DepartureTime:  departure,
		ArrivalTime:    &arrival,
		Price:          150000,
		AvailableSeats: 40,
	}

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-1").Return(activeVehicle(), nil).Once()
	mockRefs.On("GetDriver", ctx, "driver-1").Return(activeDriver(), nil).Once()
	mockSchedules.On("ListActiveByVehicle", ctx, "vehicle-1").Return([]domain.Schedule{}, nil).Once()
	mockSchedules.On("ListActiveByDriver", ctx, "driver-1").Return([]domain.Schedule{}, nil).Once()
	mockSchedules.On("Create", ctx, mock.AnythingOfType("*domain.Schedule")).Return(nil).Once()
	mockCache.On("InvalidateUpcomingSchedules", ctx).Return(nil).Once()

	trip, err := service.CreateTrip(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, trip)
	assert.NotEmpty(t, trip.ID)
	assert.Equal(t, domain.ScheduleStatusScheduled, trip.Status)
	assert.Equal(t, 40, trip.AvailableSeats)

	mockSchedules.AssertExpectations(t)
	mockRefs.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestScheduleService_CreateTrip_SeatsExceedCapacity(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()
	departure := time.Now().Add(24 * time.Hour)

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-1").Return(activeVehicle(), nil).Once()

	trip, err := service.CreateTrip(ctx, CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-1",
		DepartureTime:  departure,
		AvailableSeats: 41,
	})

	assert.Error(t, err)
	assert.Nil(t, trip)
	assert.True(t, domain.IsCapacityExceeded(err))
	mockSchedules.AssertNotCalled(t, "Create")
}

func TestScheduleService_CreateTrip_DepartureInPast(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-1").Return(activeVehicle(), nil).Once()

	trip, err := service.CreateTrip(ctx, CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-1",
		DepartureTime:  time.Now().Add(-time.Hour),
		AvailableSeats: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, trip)
	assert.True(t, domain.IsTemporalViolation(err))
	mockSchedules.AssertNotCalled(t, "Create")
}

func TestScheduleService_CreateTrip_VehicleConflict(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()
	day := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	departure := day.Add(14 * time.Hour)
	arrival := day.Add(20 * time.Hour)

	existingArrival := day.Add(16 * time.Hour)
	existing := domain.Schedule{
		ID:            "existing-trip",
		VehicleID:     "vehicle-1",
		DepartureTime: day.Add(8 * time.Hour),
		ArrivalTime:   &existingArrival,
		Status:        domain.ScheduleStatusScheduled,
	}

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-1").Return(activeVehicle(), nil).Once()
	mockSchedules.On("ListActiveByVehicle", ctx, "vehicle-1").Return([]domain.Schedule{existing}, nil).Once()

	trip, err := service.CreateTrip(ctx, CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-1",
		DepartureTime:  departure,
		ArrivalTime:    &arrival,
		AvailableSeats: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, trip)
	assert.True(t, domain.IsResourceConflict(err))
	assert.Contains(t, err.Error(), "existing-trip")
	mockSchedules.AssertNotCalled(t, "Create")
}

func TestScheduleService_CreateTrip_AdjacentTripSucceeds(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()
	day := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	departure := day.Add(16 * time.Hour)
	arrival := day.Add(20 * time.Hour)

	existingArrival := day.Add(16 * time.Hour)
	existing := domain.Schedule{
		ID:            "existing-trip",
		VehicleID:     "vehicle-1",
		DepartureTime: day.Add(8 * time.Hour),
		ArrivalTime:   &existingArrival,
		Status:        domain.ScheduleStatusScheduled,
	}

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-1").Return(activeVehicle(), nil).Once()
	mockSchedules.On("ListActiveByVehicle", ctx, "vehicle-1").Return([]domain.Schedule{existing}, nil).Once()
	mockSchedules.On("Create", ctx, mock.AnythingOfType("*domain.Schedule")).Return(nil).Once()

	trip, err := service.CreateTrip(ctx, CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-1",
		DepartureTime:  departure,
		ArrivalTime:    &arrival,
		AvailableSeats: 10,
	})

	assert.NoError(t, err)
	assert.NotNil(t, trip)
	mockSchedules.AssertExpectations(t)
}

func TestScheduleService_CreateTrip_DriverConflict(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()
	day := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	departure := day.Add(9 * time.Hour)
	arrival := day.Add(12 * time.Hour)

	existingArrival := day.Add(11 * time.Hour)
	existing := domain.Schedule{
		ID:            "driver-busy-trip",
		DriverID:      "driver-1",
		DepartureTime: day.Add(8 * time.Hour),
		ArrivalTime:   &existingArrival,
		Status:        domain.ScheduleStatusScheduled,
	}

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-1").Return(activeVehicle(), nil).Once()
	mockRefs.On("GetDriver", ctx, "driver-1").Return(activeDriver(), nil).Once()
	mockSchedules.On("ListActiveByVehicle", ctx, "vehicle-1").Return([]domain.Schedule{}, nil).Once()
	mockSchedules.On("ListActiveByDriver", ctx, "driver-1").Return([]domain.Schedule{existing}, nil).Once()

	trip, err := service.CreateTrip(ctx, CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-1",
		DriverID:       "driver-1",
		DepartureTime:  departure,
		ArrivalTime:    &arrival,
		AvailableSeats: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, trip)
	assert.True(t, domain.IsResourceConflict(err))
	mockSchedules.AssertNotCalled(t, "Create")
}

func TestScheduleService_CreateTrip_RetiredVehicle(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()
	retired := &domain.Vehicle{ID: "vehicle-2", VehicleNumber: "B 9 OLD", Capacity: 30, Status: domain.VehicleStatusRetired}

	mockRefs.On("GetRoute", ctx, "route-1").Return(activeRoute(), nil).Once()
	mockRefs.On("GetVehicle", ctx, "vehicle-2").Return(retired, nil).Once()

	trip, err := service.CreateTrip(ctx, CreateTripInput{
		RouteID:        "route-1",
		VehicleID:      "vehicle-2",
		DepartureTime:  time.Now().Add(24 * time.Hour),
		AvailableSeats: 10,
	})

	assert.Error(t, err)
	assert.Nil(t, trip)
	assert.True(t, domain.IsValidation(err))
}

func TestScheduleService_CancelTrip_WithActiveTickets(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	service := NewScheduleService(mockSchedules, mockRefs, nil, nil)

	ctx := context.Background()
	trip := &domain.Schedule{ID: "trip-1", Status: domain.ScheduleStatusScheduled}

	mockSchedules.On("GetByID", ctx, "trip-1").Return(trip, nil).Once()
	mockSchedules.On("CountActiveTickets", ctx, "trip-1").Return(3, nil).Once()

	cancelled, err := service.CancelTrip(ctx, "trip-1")

	assert.Error(t, err)
	assert.Nil(t, cancelled)
	assert.True(t, domain.IsInvalidState(err))
	mockSchedules.AssertNotCalled(t, "UpdateStatus")
}

func TestScheduleService_CancelTrip_Success(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockRefs := &MockReferenceRepository{}
	mockCache := &MockScheduleCache{}
	service := NewScheduleService(mockSchedules, mockRefs, mockCache, nil)

	ctx := context.Background()
	trip := &domain.Schedule{ID: "trip-1", Status: domain.ScheduleStatusScheduled}
	cancelled := &domain.Schedule{ID: "trip-1", Status: domain.ScheduleStatusCancelled}

	mockSchedules.On("GetByID", ctx, "trip-1").Return(trip, nil).Once()
	mockSchedules.On("CountActiveTickets", ctx, "trip-1").Return(0, nil).Once()
	mockSchedules.On("UpdateStatus", ctx, "trip-1", domain.ScheduleStatusCancelled).Return(cancelled, nil).Once()
	mockCache.On("InvalidateUpcomingSchedules", ctx).Return(nil).Once()

	result, err := service.CancelTrip(ctx, "trip-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.ScheduleStatusCancelled, result.Status)
	mockSchedules.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestScheduleService_MarkDeparted_WrongStatus(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	service := NewScheduleService(mockSchedules, &MockReferenceRepository{}, nil, nil)

	ctx := context.Background()
	trip := &domain.Schedule{ID: "trip-1", Status: domain.ScheduleStatusCancelled}

	mockSchedules.On("GetByID", ctx, "trip-1").Return(trip, nil).Once()

	result, err := service.MarkDeparted(ctx, "trip-1")

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, domain.IsInvalidState(err))
}

func TestScheduleService_ListUpcoming_CacheHit(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockCache := &MockScheduleCache{}
	service := NewScheduleService(mockSchedules, &MockReferenceRepository{}, mockCache, nil)

	ctx := context.Background()
	cached := []domain.Schedule{{ID: "trip-1"}, {ID: "trip-2"}}

	mockCache.On("GetUpcomingSchedules", ctx).Return(cached, nil).Once()

	result, err := service.ListUpcoming(ctx, 20)

	assert.NoError(t, err)
	assert.Equal(t, cached, result)
	mockSchedules.AssertNotCalled(t, "ListUpcoming")
}

func TestScheduleService_ListUpcoming_CacheMiss(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockCache := &MockScheduleCache{}
	service := NewScheduleService(mockSchedules, &MockReferenceRepository{}, mockCache, nil)

	ctx := context.Background()
	fromDB := []domain.Schedule{{ID: "trip-1"}}

	mockCache.On("GetUpcomingSchedules", ctx).Return(nil, errors.New("cache miss")).Once()
	mockSchedules.On("ListUpcoming", ctx, 20).Return(fromDB, nil).Once()
	mockCache.On("SetUpcomingSchedules", ctx, fromDB).Return(nil).Once()

	result, err := service.ListUpcoming(ctx, 20)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, result)
	mockSchedules.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestScheduleService_SweepDepartures(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	mockCache := &MockScheduleCache{}
	service := NewScheduleService(mockSchedules, &MockReferenceRepository{}, mockCache, nil)

	ctx := context.Background()
	due := []domain.Schedule{
		{ID: "trip-1", Status: domain.ScheduleStatusScheduled},
		{ID: "trip-2", Status: domain.ScheduleStatusScheduled},
	}

	mockSchedules.On("ListDueForDeparture", ctx, mock.AnythingOfType("time.Time")).Return(due, nil).Once()
	mockSchedules.On("UpdateStatus", ctx, "trip-1", domain.ScheduleStatusDeparted).
		Return(&domain.Schedule{ID: "trip-1", Status: domain.ScheduleStatusDeparted}, nil).Once()
	mockSchedules.On("UpdateStatus", ctx, "trip-2", domain.ScheduleStatusDeparted).
		Return(&domain.Schedule{ID: "trip-2", Status: domain.ScheduleStatusDeparted}, nil).Once()
	mockCache.On("InvalidateUpcomingSchedules", ctx).Return(nil).Once()

	departed, err := service.SweepDepartures(ctx)

	assert.NoError(t, err)
	assert.Len(t, departed, 2)
	mockSchedules.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestScheduleService_UpdateTrip_BlockedAfterDeparture(t *testing.T) {
	mockSchedules := &MockScheduleRepository{}
	service := NewScheduleService(mockSchedules, &MockReferenceRepository{}, nil, nil)

	ctx := context.Background()
	trip := &domain.Schedule{ID: "trip-1", Status: domain.ScheduleStatusDeparted}

	mockSchedules.On("GetByID", ctx, "trip-1").Return(trip, nil).Once()

	newPrice := int64(200000)
	result, err := service.UpdateTrip(ctx, "trip-1", UpdateTripInput{Price: &newPrice})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, domain.IsInvalidState(err))
	mockSchedules.AssertNotCalled(t, "Update")
}
