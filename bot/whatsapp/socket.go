package whatsapp

import (
	"AtendeBot/entity"
	"context"
)

// EventKind identifies a connection event emitted by a Socket.
type EventKind int

const (
	// EventQR asks the operator to scan a pairing code.
	EventQR EventKind = iota
	// EventOpen signals the transport is connected and ready to send.
	EventOpen
	// EventClosed signals the transport dropped. Permanent closes (logout)
	// must not be retried.
	EventClosed
)

// Event is a connection lifecycle notification.
type Event struct {
	Kind      EventKind
	QR        string
	Err       error
	Permanent bool
}

// InboundHandler receives messages arriving from the channel. sender is the
// channel identifier, displayName the contact's profile name (may be empty).
type InboundHandler func(sender, displayName, text string)

// Socket is the message send/receive boundary to a WhatsApp transport. The
// conversation engine never touches it; the Supervisor owns its lifecycle.
type Socket interface {
	// Connect establishes the transport and streams lifecycle events until
	// the context is cancelled or the connection closes permanently.
	Connect(ctx context.Context) (<-chan Event, error)

	// Send delivers text to a recipient. Options are rendered per channel
	// rules: up to three as tappable buttons, more as a selectable list,
	// none as plain text.
	Send(recipient, text string, options []entity.Option) error

	// Logout tears the pairing down. The supervisor will not reconnect.
	Logout() error

	// SelfID returns the connected account identifier, if known.
	SelfID() string
}
