package store

import (
	"context"
	"time"

	"github.com/fleetwatch/fleetwatch/pkg/database"
	"github.com/fleetwatch/fleetwatch/pkg/fdm"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoVehicleStore persists vehicles as single documents with their assigned
// route embedded, giving read-modify-write per request with last-writer-wins
// semantics from the underlying collection.
type MongoVehicleStore struct{}

func (s MongoVehicleStore) Vehicle(ctx context.Context, identifier string) (*fdm.Vehicle, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	var vehicle *fdm.Vehicle
	vehiclesCollection.FindOne(ctx, bson.M{"primaryidentifier": identifier}).Decode(&vehicle)

	if vehicle == nil {
		return nil, ErrNotFound
	}

	return vehicle, nil
}

func (s MongoVehicleStore) SaveVehicle(ctx context.Context, vehicle *fdm.Vehicle) error {
	vehiclesCollection := database.GetCollection("vehicles")

	vehicle.ModificationDateTime = time.Now()

	result, err := vehiclesCollection.ReplaceOne(ctx, bson.M{"primaryidentifier": vehicle.PrimaryIdentifier}, vehicle)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrConflict
	}

	return nil
}

func (s MongoVehicleStore) UpdateVehicleFields(ctx context.Context, identifier string, fields map[string]interface{}) error {
	vehiclesCollection := database.GetCollection("vehicles")

	updateMap := bson.M{
		"modificationdatetime": time.Now(),
	}
	for path, value := range fields {
		updateMap[path] = value
	}

	result, err := vehiclesCollection.UpdateOne(ctx, bson.M{"primaryidentifier": identifier}, bson.M{"$set": updateMap})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrConflict
	}

	return nil
}

func (s MongoVehicleStore) VehiclesByStatus(ctx context.Context, status fdm.VehicleStatus) ([]*fdm.Vehicle, error) {
	return s.findVehicles(ctx, bson.M{"status": status})
}

func (s MongoVehicleStore) VehiclesServingStop(ctx context.Context, stopRef string) ([]*fdm.Vehicle, error) {
	return s.findVehicles(ctx, bson.M{"route.stops": stopRef})
}

func (s MongoVehicleStore) findVehicles(ctx context.Context, query bson.M) ([]*fdm.Vehicle, error) {
	vehiclesCollection := database.GetCollection("vehicles")

	cursor, err := vehiclesCollection.Find(ctx, query)
	if err != nil {
		return nil, err
	}

	vehicles := []*fdm.Vehicle{}
	for cursor.Next(ctx) {
		var vehicle fdm.Vehicle
		if err := cursor.Decode(&vehicle); err != nil {
			log.Error().Err(err).Msg("Failed to decode Vehicle")
			continue
		}

		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, nil
}

// MongoStopStore resolves stop references from the stops collection.
type MongoStopStore struct{}

func (s MongoStopStore) Stop(ctx context.Context, identifier string) (*fdm.Stop, error) {
	stopsCollection := database.GetCollection("stops")

	var stop *fdm.Stop
	err := stopsCollection.FindOne(ctx, bson.M{"primaryidentifier": identifier}).Decode(&stop)
	if err == mongo.ErrNoDocuments || stop == nil {
		return nil, ErrNotFound
	}

	return stop, nil
}
