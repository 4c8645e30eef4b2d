package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

// AdminUser is a dashboard operator account.
type AdminUser struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         string             `json:"role" bson:"role"`
}

// AuthToken is an opaque bearer token issued on login.
type AuthToken struct {
	Token    string `json:"token" bson:"token"`
	Username string `json:"username" bson:"username"`
}
