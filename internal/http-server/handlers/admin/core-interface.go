package admin

import (
	"context"

	"AtendeBot/entity"
)

// Core is the dashboard's data surface.
type Core interface {
	ListSessions(ctx context.Context) ([]entity.Session, error)
	GetMessages(ctx context.Context, sessionID string) ([]entity.Message, error)
	SetSessionRead(ctx context.Context, sessionID string, read bool) error

	ListDepartments(ctx context.Context) ([]entity.Department, error)
	CreateDepartment(ctx context.Context, dept *entity.Department) error
	UpdateDepartment(ctx context.Context, id string, dept *entity.Department) error
	DeleteDepartment(ctx context.Context, id string) error

	ListSettings(ctx context.Context) ([]entity.AppSetting, error)
	SetSetting(ctx context.Context, key, value string) error

	CountSessions(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
}

// Control is the manual takeover surface.
type Control interface {
	Assume(ctx context.Context, sessionID string) error
	Release(ctx context.Context, sessionID string) error
	SendAsAgent(ctx context.Context, sessionID, text string) error
}

// Ingest feeds uploaded documents into the knowledge base.
type Ingest interface {
	IngestFile(ctx context.Context, filename string, data []byte) (int, error)
}
