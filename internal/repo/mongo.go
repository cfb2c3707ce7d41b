package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Collection names in the ledger database.
const (
	TripsCollection    = "trips"
	VehiclesCollection = "vehicles"
)

// ConnectMongo connects to MongoDB at uri and pings it.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("repo.ConnectMongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("repo.ConnectMongo: ping: %w", err)
	}
	return client, nil
}

// tripDoc is the stored form of a trip. Seq keeps insertion order.
// Dates and routes keep their sheet text form so documents read the same
// as workbook rows. Date and distances decode into any because documents
// edited by hand may hold them as strings, doubles or BSON dates.
type tripDoc struct {
	ID              string `bson:"_id"`
	Seq             int    `bson:"seq"`
	Date            any    `bson:"date"`
	Vehicle         string `bson:"vehicle"`
	StartKM         any    `bson:"start_km"`
	EndKM           any    `bson:"end_km"`
	AccumulatedKM   any    `bson:"accumulated_km"`
	Driver          string `bson:"driver"`
	Route           string `bson:"route"`
	Remarks         string `bson:"remarks"`
	EditedBy        string `bson:"edited_by"`
	FleetChange     string `bson:"fleet_change"`
	PlateAtTripTime string `bson:"plate_at_trip_time"`
}

// vehicleDoc is the stored form of a vehicle registry entry.
// A nil LicensePlate is stored as null.
type vehicleDoc struct {
	ID           string  `bson:"_id"`
	Seq          int     `bson:"seq"`
	LicensePlate *string `bson:"license_plate"`
	Comments     string  `bson:"comments"`
}

type mongoSheetRepo struct {
	trips    *mongo.Collection
	vehicles *mongo.Collection
}

// NewMongoRepo constructs a SheetRepo over the trips and vehicles
// collections of database.
func NewMongoRepo(database *mongo.Database) SheetRepo {
	return &mongoSheetRepo{
		trips:    database.Collection(TripsCollection),
		vehicles: database.Collection(VehiclesCollection),
	}
}

func (r *mongoSheetRepo) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	var docs []tripDoc
	if err := findAllBySeq(ctx, r.trips, &docs); err != nil {
		return nil, fmt.Errorf("repo.mongoSheetRepo.LoadTrips: %w", err)
	}

	trips := make([]domain.Trip, 0, len(docs))
	for _, d := range docs {
		trips = append(trips, domain.Trip{
			ID:              parseID(d.ID),
			Date:            dateValue(d.Date),
			Vehicle:         d.Vehicle,
			StartKM:         kmValue(d.StartKM),
			EndKM:           kmValue(d.EndKM),
			AccumulatedKM:   kmValue(d.AccumulatedKM),
			Driver:          d.Driver,
			Route:           domain.ParseRoute(d.Route),
			Remarks:         d.Remarks,
			EditedBy:        d.EditedBy,
			FleetChange:     d.FleetChange,
			PlateAtTripTime: d.PlateAtTripTime,
		})
	}
	return trips, nil
}

func (r *mongoSheetRepo) SaveTrips(ctx context.Context, trips []domain.Trip) error {
	docs := make([]any, len(trips))
	for i, t := range trips {
		docs[i] = tripDoc{
			ID:              t.ID.String(),
			Seq:             i,
			Date:            t.Date.String(),
			Vehicle:         t.Vehicle,
			StartKM:         t.StartKM,
			EndKM:           t.EndKM,
			AccumulatedKM:   t.AccumulatedKM,
			Driver:          t.Driver,
			Route:           t.Route.String(),
			Remarks:         t.Remarks,
			EditedBy:        t.EditedBy,
			FleetChange:     t.FleetChange,
			PlateAtTripTime: t.PlateAtTripTime,
		}
	}
	if err := replaceAll(ctx, r.trips, docs); err != nil {
		return fmt.Errorf("repo.mongoSheetRepo.SaveTrips: %w", err)
	}
	return nil
}

func (r *mongoSheetRepo) LoadVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var docs []vehicleDoc
	if err := findAllBySeq(ctx, r.vehicles, &docs); err != nil {
		return nil, fmt.Errorf("repo.mongoSheetRepo.LoadVehicles: %w", err)
	}

	vehicles := make([]domain.Vehicle, 0, len(docs))
	for _, d := range docs {
		vehicles = append(vehicles, domain.Vehicle{ID: d.ID, LicensePlate: d.LicensePlate, Comments: d.Comments})
	}
	return vehicles, nil
}

func (r *mongoSheetRepo) SaveVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	docs := make([]any, len(vehicles))
	for i, v := range vehicles {
		docs[i] = vehicleDoc{ID: v.ID, Seq: i, LicensePlate: v.LicensePlate, Comments: v.Comments}
	}
	if err := replaceAll(ctx, r.vehicles, docs); err != nil {
		return fmt.Errorf("repo.mongoSheetRepo.SaveVehicles: %w", err)
	}
	return nil
}

// kmValue reads a decoded distance field. Numbers of any BSON width and
// numeric strings are accepted; anything else becomes 0.
func kmValue(v any) int64 {
	switch n := v.(type) {
	case int32:
		return clampKM(int64(n))
	case int64:
		return clampKM(n)
	case float64:
		return kmFromFloat(n)
	case string:
		return parseKM(n)
	case primitive.Decimal128:
		return parseKM(n.String())
	default:
		return 0
	}
}

// dateValue reads a decoded date field stored as text or as a BSON date.
func dateValue(v any) domain.Date {
	switch d := v.(type) {
	case string:
		return parseDate(d)
	case primitive.DateTime:
		return domain.DateOf(d.Time().UTC())
	default:
		return domain.Date{}
	}
}

func findAllBySeq(ctx context.Context, coll *mongo.Collection, out any) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// replaceAll swaps the collection contents. Without a replica set there is
// no multi-document transaction, so a failure between the two calls leaves
// the collection empty; the next save rewrites it in full.
func replaceAll(ctx context.Context, coll *mongo.Collection, docs []any) error {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear %s: %w", coll.Name(), err)
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert %s: %w", coll.Name(), err)
	}
	return nil
}
