package whatsapp

import (
	"AtendeBot/entity"
	"AtendeBot/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Connection states.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusAwaitingScan Status = "awaiting_scan"
	StatusConnected    Status = "connected"
)

const (
	initialBackoff = 2 * time.Second
	maxBackoff     = 60 * time.Second
)

// StatusInfo is the connection state surface exposed to the dashboard.
type StatusInfo struct {
	Status Status `json:"status"`
	QR     string `json:"qr,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Supervisor owns the transport lifecycle: Disconnected → Connecting →
// AwaitingScan → Connected, reconnecting with bounded exponential backoff on
// unexpected closes and stopping for good on logout. The conversation
// engine stays agnostic to connectivity; outbound sends simply fail while
// the transport is down.
type Supervisor struct {
	socket Socket
	log    *slog.Logger

	mu      sync.RWMutex
	status  Status
	qr      string
	cancel  context.CancelFunc
	running bool
}

// NewSupervisor wraps a socket. The supervisor starts disconnected.
func NewSupervisor(socket Socket, log *slog.Logger) *Supervisor {
	return &Supervisor{
		socket: socket,
		log:    log.With(sl.Module("whatsapp.supervisor")),
		status: StatusDisconnected,
	}
}

// Start launches the supervision loop. Calling Start while running is a
// no-op.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	go s.run(ctx)
}

func (s *Supervisor) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		s.setStatus(StatusConnecting, "")
		events, err := s.socket.Connect(ctx)
		if err != nil {
			s.log.Error("transport connect failed", sl.Err(err))
			s.setStatus(StatusDisconnected, "")
			if !s.sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff)
			continue
		}

		permanent := s.pump(ctx, events, &backoff)
		if permanent {
			s.setStatus(StatusDisconnected, "")
			return
		}

		s.setStatus(StatusDisconnected, "")
		if !s.sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff)
	}
}

// pump consumes events until the stream ends. Returns true when the close
// was permanent.
func (s *Supervisor) pump(ctx context.Context, events <-chan Event, backoff *time.Duration) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case ev, ok := <-events:
			if !ok {
				return false
			}
			switch ev.Kind {
			case EventQR:
				s.log.Info("pairing code received, awaiting scan")
				s.setStatus(StatusAwaitingScan, ev.QR)
			case EventOpen:
				s.log.Info("transport connected")
				s.setStatus(StatusConnected, "")
				*backoff = initialBackoff
			case EventClosed:
				if ev.Err != nil {
					s.log.Warn("transport closed", sl.Err(ev.Err))
				} else {
					s.log.Info("transport closed")
				}
				return ev.Permanent
			}
		}
	}
}

func (s *Supervisor) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (s *Supervisor) setStatus(status Status, qr string) {
	s.mu.Lock()
	s.status = status
	s.qr = qr
	s.mu.Unlock()
}

// Send forwards text and options over the transport.
func (s *Supervisor) Send(recipient, text string, options []entity.Option) error {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()

	if status != StatusConnected {
		return fmt.Errorf("whatsapp transport not connected (status %s)", status)
	}
	return s.socket.Send(recipient, text, options)
}

// Logout tears down the pairing and stops supervision.
func (s *Supervisor) Logout() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	err := s.socket.Logout()
	s.setStatus(StatusDisconnected, "")
	return err
}

// StatusInfo reports the current connection surface.
func (s *Supervisor) StatusInfo() StatusInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := StatusInfo{Status: s.status, QR: s.qr}
	if s.status == StatusConnected {
		info.Phone = s.socket.SelfID()
	}
	return info
}
