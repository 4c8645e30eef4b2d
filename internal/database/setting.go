package repository

import (
	"AtendeBot/entity"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSetting returns the value for a key, or "" when absent.
func (m *MongoDB) GetSetting(ctx context.Context, key string) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)
	filter := bson.D{{Key: "key", Value: key}}

	var setting entity.AppSetting
	err = collection.FindOne(ctx, filter).Decode(&setting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", m.findError(err)
	}
	return setting.Value, nil
}

// SetSetting upserts a key/value pair. Last write wins.
func (m *MongoDB) SetSetting(ctx context.Context, key, value string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)
	filter := bson.D{{Key: "key", Value: key}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "key", Value: key}, {Key: "value", Value: value}}}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb set setting: %w", err)
	}
	return nil
}

// ListSettings returns every setting row.
func (m *MongoDB) ListSettings(ctx context.Context) ([]entity.AppSetting, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find settings: %w", err)
	}
	defer cursor.Close(ctx)

	var settings []entity.AppSetting
	if err = cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("mongodb decode settings: %w", err)
	}
	return settings, nil
}
