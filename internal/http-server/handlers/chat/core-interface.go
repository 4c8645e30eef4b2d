package chat

import (
	"context"

	engine "AtendeBot/bot/chat"
	"AtendeBot/entity"
)

// Core is the conversation surface exposed to the web widget.
type Core interface {
	ProcessMessage(ctx context.Context, sessionID, message, platform string, meta *engine.Metadata) entity.EngineResult
	GetMessages(ctx context.Context, sessionID string) ([]entity.Message, error)
}
