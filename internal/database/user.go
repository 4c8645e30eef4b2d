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

// GetAdminUser returns the admin user by username, or (nil, nil).
func (m *MongoDB) GetAdminUser(ctx context.Context, username string) (*entity.AdminUser, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "username", Value: username}}

	var user entity.AdminUser
	err = collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, m.findError(err)
	}
	return &user, nil
}

// EnsureAdminUser creates the bootstrap dashboard account when absent.
func (m *MongoDB) EnsureAdminUser(username, password string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(usersCollection)
	filter := bson.D{{Key: "username", Value: username}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "username", Value: username},
		{Key: "password_hash", Value: password},
		{Key: "role", Value: "admin"},
	}}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb ensure admin user: %w", err)
	}
	return nil
}

// SaveToken stores an issued bearer token.
func (m *MongoDB) SaveToken(ctx context.Context, token entity.AuthToken) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(tokensCollection)
	_, err = collection.InsertOne(ctx, token)
	if err != nil {
		return fmt.Errorf("mongodb insert token: %w", err)
	}
	return nil
}

// GetUserByToken resolves a bearer token to its admin user.
func (m *MongoDB) GetUserByToken(ctx context.Context, token string) (*entity.AdminUser, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	tokens := connection.Database(m.database).Collection(tokensCollection)
	filter := bson.D{{Key: "token", Value: token}}

	var stored entity.AuthToken
	err = tokens.FindOne(ctx, filter).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("token not found")
		}
		return nil, m.findError(err)
	}

	return m.GetAdminUser(ctx, stored.Username)
}
