package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test; Begin on a
// pgx.Tx opens a savepoint, so saves nest cleanly inside the test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgSheetRepo stores each collection as one table. The position column keeps
// insertion order, which same-day accumulation depends on.
type pgSheetRepo struct {
	db db
}

// NewPostgresRepo constructs a SheetRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresRepo(db db) SheetRepo {
	return &pgSheetRepo{db: db}
}

var tripRowColumns = []string{
	"id", "position", "trip_date", "vehicle", "start_km", "end_km", "accumulated_km",
	"driver", "route", "remarks", "edited_by", "fleet_change", "plate_at_trip_time",
}

// LoadTrips returns all trip rows ordered by position.
func (r *pgSheetRepo) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	const q = `
		SELECT id, trip_date, vehicle, start_km, end_km, accumulated_km,
		       driver, route, remarks, edited_by, fleet_change, plate_at_trip_time
		FROM trip_rows
		ORDER BY position`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.pgSheetRepo.LoadTrips: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.pgSheetRepo.LoadTrips: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.pgSheetRepo.LoadTrips: rows: %w", err)
	}
	return trips, nil
}

// SaveTrips replaces every trip row inside one transaction using COPY.
func (r *pgSheetRepo) SaveTrips(ctx context.Context, trips []domain.Trip) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM trip_rows`); err != nil {
			return err
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"trip_rows"}, tripRowColumns,
			pgx.CopyFromSlice(len(trips), func(i int) ([]any, error) {
				t := trips[i]
				return []any{
					pgtype.UUID{Bytes: t.ID, Valid: true},
					int32(i),
					pgtype.Date{Time: t.Date.Time(), Valid: !t.Date.IsZero()},
					t.Vehicle,
					t.StartKM,
					t.EndKM,
					t.AccumulatedKM,
					t.Driver,
					t.Route.String(),
					t.Remarks,
					t.EditedBy,
					t.FleetChange,
					t.PlateAtTripTime,
				}, nil
			}))
		return err
	})
	if err != nil {
		return fmt.Errorf("repo.pgSheetRepo.SaveTrips: %w", err)
	}
	return nil
}

// LoadVehicles returns all vehicle rows ordered by position.
func (r *pgSheetRepo) LoadVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	const q = `
		SELECT vehicle, license_plate, comments
		FROM vehicle_rows
		ORDER BY position`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.pgSheetRepo.LoadVehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var (
			v     domain.Vehicle
			plate pgtype.Text
		)
		if err := rows.Scan(&v.ID, &plate, &v.Comments); err != nil {
			return nil, fmt.Errorf("repo.pgSheetRepo.LoadVehicles: scan: %w", err)
		}
		if plate.Valid {
			p := plate.String
			v.LicensePlate = &p
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.pgSheetRepo.LoadVehicles: rows: %w", err)
	}
	return vehicles, nil
}

// SaveVehicles replaces every vehicle row inside one transaction.
// The registry is a handful of rows, so plain inserts are enough.
func (r *pgSheetRepo) SaveVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	const ins = `
		INSERT INTO vehicle_rows (vehicle, position, license_plate, comments)
		VALUES (@vehicle, @position, @license_plate, @comments)`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM vehicle_rows`); err != nil {
			return err
		}
		for i, v := range vehicles {
			args := pgx.NamedArgs{
				"vehicle":       v.ID,
				"position":      i,
				"license_plate": v.LicensePlate, // nil becomes NULL
				"comments":      v.Comments,
			}
			if _, err := tx.Exec(ctx, ins, args); err != nil {
				return fmt.Errorf("vehicle %q: %w", v.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.pgSheetRepo.SaveVehicles: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a trip_rows row into a domain.Trip.
// NULL or negative distances load as 0 and a NULL date as the zero Date.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                 domain.Trip
		id                pgtype.UUID
		date              pgtype.Date
		start, end, accum pgtype.Int8
		route             string
	)

	err := s.Scan(&id, &date, &t.Vehicle, &start, &end, &accum,
		&t.Driver, &route, &t.Remarks, &t.EditedBy, &t.FleetChange, &t.PlateAtTripTime)
	if err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	if date.Valid {
		t.Date = domain.DateOf(date.Time)
	}
	t.StartKM = clampKM(start.Int64)
	t.EndKM = clampKM(end.Int64)
	t.AccumulatedKM = clampKM(accum.Int64)
	t.Route = domain.ParseRoute(route)
	return t, nil
}
