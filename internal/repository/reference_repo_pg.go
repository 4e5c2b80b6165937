package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/domain"
)

// ReferenceRepository answers existence/activity checks for the static
// entities bookings refer to. Their CRUD lives outside this service.
type ReferenceRepository interface {
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	GetRoute(ctx context.Context, id string) (*domain.Route, error)
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
	GetAdminByUserID(ctx context.Context, userID string) (*domain.Admin, error)
	GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error)
}

type PGReferenceRepository struct {
	db *pgxpool.Pool
}

func NewReferenceRepository(db *pgxpool.Pool) ReferenceRepository {
	return &PGReferenceRepository{db: db}
}

func (r *PGReferenceRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT id, vehicle_number, type, capacity, status FROM vehicles WHERE id=$1`, id).
		Scan(&v.ID, &v.VehicleNumber, &v.Type, &v.Capacity, &v.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("vehicle %s not found", id)
		}
		return nil, domain.StorageError("get vehicle", err)
	}
	return &v, nil
}

func (r *PGReferenceRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	var d domain.Driver
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT id, name, phone, license_number, status FROM drivers WHERE id=$1`, id).
		Scan(&d.ID, &d.Name, &d.Phone, &d.LicenseNumber, &d.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("driver %s not found", id)
		}
		return nil, domain.StorageError("get driver", err)
	}
	return &d, nil
}

func (r *PGReferenceRepository) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	var rt domain.Route
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT id, route_code, origin, destination, is_active FROM routes WHERE id=$1`, id).
		Scan(&rt.ID, &rt.RouteCode, &rt.Origin, &rt.Destination, &rt.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("route %s not found", id)
		}
		return nil, domain.StorageError("get route", err)
	}
	return &rt, nil
}

func (r *PGReferenceRepository) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	return r.getAdmin(ctx, `WHERE id=$1`, id)
}

func (r *PGReferenceRepository) GetAdminByUserID(ctx context.Context, userID string) (*domain.Admin, error) {
	return r.getAdmin(ctx, `WHERE user_id=$1`, userID)
}

func (r *PGReferenceRepository) getAdmin(ctx context.Context, where, arg string) (*domain.Admin, error) {
	var a domain.Admin
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT id, user_id, name, phone, coin_balance, active FROM admins `+where, arg).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Phone, &a.CoinBalance, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("admin not found")
		}
		return nil, domain.StorageError("get admin", err)
	}
	return &a, nil
}

func (r *PGReferenceRepository) GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	var c domain.Customer
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT id, user_id, name, phone, address FROM customers WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("customer profile not found")
		}
		return nil, domain.StorageError("get customer", err)
	}
	return &c, nil
}

var _ ReferenceRepository = (*PGReferenceRepository)(nil)
