package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channels a session can originate from.
const (
	PlatformWeb      = "web"
	PlatformWhatsApp = "whatsapp"
)

// ControlledByAdmin marks a session taken over by a human agent. The
// automated engine stays silent while it is set.
const ControlledByAdmin = "admin"

// ModeAI marks a session talking to the general assistant. Mutually
// exclusive with a department assignment.
const ModeAI = "AI"

// Session is one conversation's durable state. Logical state (onboarding,
// menu, routing, takeover) is derived from these fields, not stored.
type Session struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SessionID         string             `json:"session_id" bson:"session_id"`
	Platform          string             `json:"platform" bson:"platform"`
	FullName          string             `json:"full_name" bson:"full_name"`
	FirstName         string             `json:"first_name" bson:"first_name"`
	Phone             string             `json:"phone" bson:"phone"`
	CurrentMode       string             `json:"current_mode" bson:"current_mode"`
	CurrentDepartment string             `json:"current_department" bson:"current_department"`
	ControlledBy      string             `json:"controlled_by" bson:"controlled_by"`
	LastOptions       []Option           `json:"last_options,omitempty" bson:"last_options,omitempty"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	LastMessageAt     time.Time          `json:"last_message_at" bson:"last_message_at"`
	IsRead            bool               `json:"is_read" bson:"is_read"`
}

// Option is one selectable reply offered to the user. Value is what the
// engine expects back when the option is chosen.
type Option struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

// EngineResult is the engine's answer to one inbound message.
type EngineResult struct {
	Response     string   `json:"response"`
	Options      []Option `json:"options,omitempty"`
	ControlledBy string   `json:"controlled_by,omitempty"`
	RedirectURL  string   `json:"redirect_url,omitempty"`
}
