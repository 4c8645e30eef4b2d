package control

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/sl"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	SetSessionControl(ctx context.Context, sessionID, controlledBy string) error
	SetSessionRead(ctx context.Context, sessionID string, read bool) error
	BumpSessionActivity(ctx context.Context, sessionID string) error
}

type MessageStore interface {
	SaveMessage(ctx context.Context, msg entity.Message) error
}

// ChannelSender forwards agent replies to sessions living on WhatsApp.
type ChannelSender interface {
	Send(recipient, text string, options []entity.Option) error
}

// Notifier receives events the dashboard cares about.
type Notifier interface {
	MessageSaved(msg entity.Message)
	BroadcastSessionUpdate(sessionID string)
}

// Service implements manual conversation takeover. While a session is
// controlled the automated pipeline stays silent; the agent speaks through
// SendAsAgent.
type Service struct {
	sessions SessionStore
	messages MessageStore
	sender   ChannelSender
	notifier Notifier
	log      *slog.Logger
}

func NewControlService(sessions SessionStore, messages MessageStore, logger *slog.Logger) *Service {
	return &Service{
		sessions: sessions,
		messages: messages,
		log:      logger.With(sl.Module("control-service")),
	}
}

// SetChannelSender wires the WhatsApp transport. Optional; web sessions
// deliver agent replies through the websocket feed.
func (s *Service) SetChannelSender(sender ChannelSender) {
	s.sender = sender
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

func (s *Service) getSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Assume marks the session as controlled by a human agent. Idempotent.
func (s *Service) Assume(ctx context.Context, sessionID string) error {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessions.SetSessionControl(ctx, sessionID, entity.ControlledByAdmin); err != nil {
		return err
	}
	if err := s.sessions.SetSessionRead(ctx, sessionID, true); err != nil {
		s.log.Warn("marking session read", sl.Err(err))
	}

	s.log.Info("session assumed by agent", slog.String("session_id", sessionID))
	if s.notifier != nil {
		s.notifier.BroadcastSessionUpdate(sessionID)
	}
	return nil
}

// Release hands the session back to the automated pipeline. Idempotent.
func (s *Service) Release(ctx context.Context, sessionID string) error {
	if _, err := s.getSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessions.SetSessionControl(ctx, sessionID, ""); err != nil {
		return err
	}

	s.log.Info("session released to bot", slog.String("session_id", sessionID))
	if s.notifier != nil {
		s.notifier.BroadcastSessionUpdate(sessionID)
	}
	return nil
}

// SendAsAgent persists an agent reply under the bot sender and forwards it
// over the session's channel. Sending implies control: the session is forced
// into agent hands so the pipeline cannot answer over the agent.
func (s *Service) SendAsAgent(ctx context.Context, sessionID, text string) error {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.ControlledBy != entity.ControlledByAdmin {
		if err := s.sessions.SetSessionControl(ctx, sessionID, entity.ControlledByAdmin); err != nil {
			return err
		}
	}

	msg := entity.Message{
		SessionID: sessionID,
		Sender:    entity.SenderBot,
		Content:   text,
		Timestamp: time.Now(),
	}
	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		return err
	}
	if err := s.sessions.BumpSessionActivity(ctx, sessionID); err != nil {
		s.log.Warn("bumping session activity", sl.Err(err))
	}
	if err := s.sessions.SetSessionRead(ctx, sessionID, true); err != nil {
		s.log.Warn("marking session read", sl.Err(err))
	}

	if session.Platform == entity.PlatformWhatsApp && s.sender != nil {
		recipient := session.Phone
		if recipient == "" {
			recipient, _, _ = strings.Cut(session.SessionID, "@")
		}
		if err := s.sender.Send(recipient, text, nil); err != nil {
			s.log.Error("forwarding agent reply to whatsapp", sl.Err(err),
				slog.String("session_id", sessionID))
		}
	}

	if s.notifier != nil {
		s.notifier.MessageSaved(msg)
	}
	return nil
}

// HandleMarkRead satisfies the websocket hub's client message handler.
func (s *Service) HandleMarkRead(username, sessionID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.sessions.SetSessionRead(ctx, sessionID, true)
}
