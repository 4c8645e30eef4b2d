package repository

import (
	"AtendeBot/entity"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveMessage appends a message to a session's log.
func (m *MongoDB) SaveMessage(ctx context.Context, msg entity.Message) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	_, err = collection.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("mongodb insert message: %w", err)
	}
	return nil
}

// GetMessages returns a session's messages in ascending timestamp order.
func (m *MongoDB) GetMessages(ctx context.Context, sessionID string) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	filter := bson.D{{Key: "session_id", Value: sessionID}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []entity.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode messages: %w", err)
	}
	return messages, nil
}

// CountMessages returns the total number of messages.
func (m *MongoDB) CountMessages(ctx context.Context) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	return collection.CountDocuments(ctx, bson.D{})
}

// EnsureMessageIndexes creates the session/timestamp index used for replay.
func (m *MongoDB) EnsureMessageIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)
	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "timestamp", Value: 1},
		},
	}

	_, err = collection.Indexes().CreateOne(m.ctx, index)
	if err != nil {
		return fmt.Errorf("mongodb create message index: %w", err)
	}
	return nil
}
