package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message senders.
const (
	SenderUser   = "user"
	SenderBot    = "bot"
	SenderSystem = "system"
)

// Message is a single utterance within a session. The message log is
// append-only and replayed in ascending timestamp order.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID string             `json:"session_id" bson:"session_id"`
	Sender    string             `json:"sender" bson:"sender"`
	Content   string             `json:"content" bson:"content"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}
