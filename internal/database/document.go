package repository

import (
	"AtendeBot/entity"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// InsertChunk stores one embedded document chunk.
func (m *MongoDB) InsertChunk(ctx context.Context, chunk entity.DocumentChunk) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(documentsCollection)

	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now()
	}

	_, err = collection.InsertOne(ctx, chunk)
	if err != nil {
		return fmt.Errorf("mongodb insert chunk: %w", err)
	}
	return nil
}

// ListChunks returns every stored chunk. Retrieval does an exhaustive scan;
// the collection is expected to stay in the low thousands.
func (m *MongoDB) ListChunks(ctx context.Context) ([]entity.DocumentChunk, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(documentsCollection)

	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var chunks []entity.DocumentChunk
	if err = cursor.All(ctx, &chunks); err != nil {
		return nil, fmt.Errorf("mongodb decode chunks: %w", err)
	}
	return chunks, nil
}

// CountChunks returns the total number of stored chunks.
func (m *MongoDB) CountChunks(ctx context.Context) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(documentsCollection)
	return collection.CountDocuments(ctx, bson.D{})
}
