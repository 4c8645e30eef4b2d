package whatsapp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"AtendeBot/entity"
)

// fakeSocket hands out one pre-scripted event channel per Connect call.
type fakeSocket struct {
	mu       sync.Mutex
	scripts  []chan Event
	connects int
	sent     []string
	logouts  int
}

func (f *fakeSocket) Connect(ctx context.Context) (<-chan Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connects >= len(f.scripts) {
		// Keep the supervisor parked on an open channel.
		ch := make(chan Event)
		f.connects++
		return ch, nil
	}
	ch := f.scripts[f.connects]
	f.connects++
	return ch, nil
}

func (f *fakeSocket) Send(recipient, text string, _ []entity.Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recipient+": "+text)
	return nil
}

func (f *fakeSocket) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

func (f *fakeSocket) SelfID() string { return "5511999999999" }

func (f *fakeSocket) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func (f *fakeSocket) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func waitForStatus(t *testing.T, s *Supervisor, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.StatusInfo().Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status never reached %q, stuck at %q", want, s.StatusInfo().Status)
}

func TestSupervisorConnectsAndReportsPhone(t *testing.T) {
	script := make(chan Event, 1)
	script <- Event{Kind: EventOpen}
	socket := &fakeSocket{scripts: []chan Event{script}}
	s := NewSupervisor(socket, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Start(context.Background())
	waitForStatus(t, s, StatusConnected)

	info := s.StatusInfo()
	if info.Phone != "5511999999999" {
		t.Errorf("connected status must carry the account id, got %q", info.Phone)
	}
}

func TestSupervisorSurfacesPairingCode(t *testing.T) {
	script := make(chan Event, 1)
	script <- Event{Kind: EventQR, QR: "pairing-data"}
	socket := &fakeSocket{scripts: []chan Event{script}}
	s := NewSupervisor(socket, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Start(context.Background())
	waitForStatus(t, s, StatusAwaitingScan)

	if got := s.StatusInfo().QR; got != "pairing-data" {
		t.Errorf("qr payload not surfaced, got %q", got)
	}
}

func TestSupervisorSendRequiresConnection(t *testing.T) {
	socket := &fakeSocket{}
	s := NewSupervisor(socket, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := s.Send("5511988887777", "olá", nil); err == nil {
		t.Error("send must fail while disconnected")
	}

	script := make(chan Event, 1)
	script <- Event{Kind: EventOpen}
	socket.mu.Lock()
	socket.scripts = []chan Event{script}
	socket.connects = 0
	socket.mu.Unlock()

	s.Start(context.Background())
	waitForStatus(t, s, StatusConnected)

	if err := s.Send("5511988887777", "olá", nil); err != nil {
		t.Errorf("send must work while connected: %v", err)
	}
}

func TestSupervisorReconnectsAfterTransientClose(t *testing.T) {
	first := make(chan Event, 2)
	first <- Event{Kind: EventOpen}
	first <- Event{Kind: EventClosed, Err: errors.New("stream error")}
	second := make(chan Event, 1)
	second <- Event{Kind: EventOpen}
	socket := &fakeSocket{scripts: []chan Event{first, second}}
	s := NewSupervisor(socket, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if socket.connectCount() >= 2 && s.StatusInfo().Status == StatusConnected {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("supervisor never reconnected, connects=%d status=%q",
		socket.connectCount(), s.StatusInfo().Status)
}

func TestSupervisorStopsOnPermanentClose(t *testing.T) {
	script := make(chan Event, 2)
	script <- Event{Kind: EventOpen}
	script <- Event{Kind: EventClosed, Permanent: true}
	socket := &fakeSocket{scripts: []chan Event{script}}
	s := NewSupervisor(socket, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Start(context.Background())
	waitForStatus(t, s, StatusDisconnected)

	// Give a would-be reconnect loop time to act, then verify it did not.
	time.Sleep(100 * time.Millisecond)
	if got := socket.connectCount(); got != 1 {
		t.Errorf("permanent close must not be retried, got %d connects", got)
	}
}

func TestSupervisorLogout(t *testing.T) {
	script := make(chan Event, 1)
	script <- Event{Kind: EventOpen}
	socket := &fakeSocket{scripts: []chan Event{script}}
	s := NewSupervisor(socket, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Start(context.Background())
	waitForStatus(t, s, StatusConnected)

	if err := s.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if got := socket.logoutCount(); got != 1 {
		t.Errorf("socket logout not invoked, got %d", got)
	}
	if got := s.StatusInfo().Status; got != StatusDisconnected {
		t.Errorf("status after logout: %q", got)
	}
}
