package repository

import (
	"AtendeBot/entity"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSession returns the session with the given id, or (nil, nil) when it
// does not exist.
func (m *MongoDB) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.D{{Key: "session_id", Value: sessionID}}

	var session entity.Session
	err = collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &session, nil
}

// CreateSession inserts a new session row.
func (m *MongoDB) CreateSession(ctx context.Context, session *entity.Session) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastMessageAt = now

	_, err = collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("mongodb insert session: %w", err)
	}
	return nil
}

// TouchSession refreshes last_message_at and flags the session unread.
func (m *MongoDB) TouchSession(ctx context.Context, sessionID string) error {
	return m.updateSession(ctx, sessionID, bson.D{
		{Key: "last_message_at", Value: time.Now()},
		{Key: "is_read", Value: false},
	})
}

// SetSessionIdentity sets the onboarding identity fields.
func (m *MongoDB) SetSessionIdentity(ctx context.Context, sessionID, fullName, firstName, phone string) error {
	fields := bson.D{
		{Key: "full_name", Value: fullName},
		{Key: "first_name", Value: firstName},
	}
	if phone != "" {
		fields = append(fields, bson.E{Key: "phone", Value: phone})
	}
	return m.updateSession(ctx, sessionID, fields)
}

// SetSessionPhone sets the onboarding phone field only.
func (m *MongoDB) SetSessionPhone(ctx context.Context, sessionID, phone string) error {
	return m.updateSession(ctx, sessionID, bson.D{{Key: "phone", Value: phone}})
}

// SetSessionRouting updates current_mode and current_department together.
// The two are mutually exclusive; callers pass "" to clear.
func (m *MongoDB) SetSessionRouting(ctx context.Context, sessionID, mode, department string) error {
	return m.updateSession(ctx, sessionID, bson.D{
		{Key: "current_mode", Value: mode},
		{Key: "current_department", Value: department},
	})
}

// SetSessionControl updates the control owner ("admin" or "").
func (m *MongoDB) SetSessionControl(ctx context.Context, sessionID, controlledBy string) error {
	return m.updateSession(ctx, sessionID, bson.D{{Key: "controlled_by", Value: controlledBy}})
}

// SetSessionRead marks a session read or unread for the inbox view.
func (m *MongoDB) SetSessionRead(ctx context.Context, sessionID string, read bool) error {
	return m.updateSession(ctx, sessionID, bson.D{{Key: "is_read", Value: read}})
}

// SetSessionOptions persists the last-offered quick-reply options so that
// numbered WhatsApp replies can be remapped without text scraping.
func (m *MongoDB) SetSessionOptions(ctx context.Context, sessionID string, opts []entity.Option) error {
	return m.updateSession(ctx, sessionID, bson.D{{Key: "last_options", Value: opts}})
}

// BumpSessionActivity refreshes last_message_at without touching is_read.
func (m *MongoDB) BumpSessionActivity(ctx context.Context, sessionID string) error {
	return m.updateSession(ctx, sessionID, bson.D{{Key: "last_message_at", Value: time.Now()}})
}

// ListSessions returns all sessions sorted by recency.
func (m *MongoDB) ListSessions(ctx context.Context) ([]entity.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []entity.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("mongodb decode sessions: %w", err)
	}
	return sessions, nil
}

// CountSessions returns the total number of sessions.
func (m *MongoDB) CountSessions(ctx context.Context) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	return collection.CountDocuments(ctx, bson.D{})
}

func (m *MongoDB) updateSession(ctx context.Context, sessionID string, fields bson.D) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.D{{Key: "session_id", Value: sessionID}}
	update := bson.D{{Key: "$set", Value: fields}}

	res, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// EnsureSessionIndexes creates the unique session_id index.
func (m *MongoDB) EnsureSessionIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err = collection.Indexes().CreateOne(m.ctx, index)
	if err != nil {
		return fmt.Errorf("mongodb create session index: %w", err)
	}
	return nil
}
