package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"AtendeBot/entity"
	"AtendeBot/internal/lib/sl"
)

const graphAPIURL = "https://graph.facebook.com/v21.0"

// Cloud API caps interactive button messages at three buttons; longer
// option sets are sent as a list message.
const maxButtons = 3

// GraphSocket is the WhatsApp Business Cloud API transport: inbound via
// webhooks, outbound via REST. A cloud pairing needs no QR scan, so Connect
// reports open immediately and the supervisor never enters AwaitingScan.
type GraphSocket struct {
	log           *slog.Logger
	accessToken   string
	verifyToken   string
	appSecret     string
	phoneNumberID string
	inbound       InboundHandler
}

// NewGraphSocket creates a Cloud API socket.
func NewGraphSocket(accessToken, verifyToken, appSecret, phoneNumberID string, log *slog.Logger) *GraphSocket {
	return &GraphSocket{
		log:           log.With(sl.Module("whatsapp.graph")),
		accessToken:   accessToken,
		verifyToken:   verifyToken,
		appSecret:     appSecret,
		phoneNumberID: phoneNumberID,
	}
}

// SetInboundHandler wires the receiver for webhook messages.
func (g *GraphSocket) SetInboundHandler(h InboundHandler) {
	g.inbound = h
}

// Connect validates configuration and reports the transport open. Webhook
// delivery is push-based; there is no persistent connection to supervise,
// so the event stream stays open until the context is cancelled.
func (g *GraphSocket) Connect(ctx context.Context) (<-chan Event, error) {
	if g.accessToken == "" || g.phoneNumberID == "" {
		return nil, fmt.Errorf("whatsapp access token or phone number id not configured")
	}

	events := make(chan Event, 1)
	events <- Event{Kind: EventOpen}

	go func() {
		<-ctx.Done()
		events <- Event{Kind: EventClosed, Permanent: true}
		close(events)
	}()

	return events, nil
}

// SelfID returns the business phone number id.
func (g *GraphSocket) SelfID() string {
	return g.phoneNumberID
}

// Logout is a no-op for a cloud pairing; credentials are revoked upstream.
func (g *GraphSocket) Logout() error {
	return nil
}

// WebhookPayload is the incoming webhook body from WhatsApp.
type WebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Contacts         []struct {
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
					WaID string `json:"wa_id"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					ID   string `json:"id"`
					Type string `json:"type"`
					Text *struct {
						Body string `json:"body"`
					} `json:"text,omitempty"`
					Interactive *struct {
						ButtonReply *struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"button_reply,omitempty"`
						ListReply *struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"list_reply,omitempty"`
					} `json:"interactive,omitempty"`
				} `json:"messages"`
			} `json:"value"`
			Field string `json:"field"`
		} `json:"changes"`
	} `json:"entry"`
}

// HandleWebhookVerification handles the GET verification handshake.
func (g *GraphSocket) HandleWebhookVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == g.verifyToken {
		g.log.Info("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	g.log.Warn("webhook verification failed", slog.String("mode", mode))
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleWebhook handles incoming webhook POSTs. The payload is acknowledged
// immediately and processed asynchronously.
func (g *GraphSocket) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		g.log.Error("failed to read webhook body", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if g.appSecret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !g.verifySignature(body, signature) {
			g.log.Warn("invalid webhook signature")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		g.log.Error("failed to parse webhook payload", sl.Err(err))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	go g.processPayload(payload)
}

func (g *GraphSocket) processPayload(payload WebhookPayload) {
	if payload.Object != "whatsapp_business_account" || g.inbound == nil {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}

			names := make(map[string]string)
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}

			for _, message := range change.Value.Messages {
				text := ""
				switch {
				case message.Type == "text" && message.Text != nil:
					text = message.Text.Body
				case message.Interactive != nil && message.Interactive.ButtonReply != nil:
					text = message.Interactive.ButtonReply.ID
				case message.Interactive != nil && message.Interactive.ListReply != nil:
					text = message.Interactive.ListReply.ID
				}
				if text == "" {
					continue
				}

				g.log.Info("received message",
					slog.String("sender", message.From),
				)
				g.inbound(message.From, names[message.From], text)
			}
		}
	}
}

// Send delivers text to a recipient, rendering options per channel rules.
func (g *GraphSocket) Send(recipient, text string, options []entity.Option) error {
	var body map[string]any
	switch {
	case len(options) == 0:
		body = map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                recipient,
			"type":              "text",
			"text":              map[string]any{"preview_url": false, "body": text},
		}
	case len(options) <= maxButtons:
		buttons := make([]map[string]any, len(options))
		for i, opt := range options {
			buttons[i] = map[string]any{
				"type":  "reply",
				"reply": map[string]string{"id": opt.Value, "title": truncate(opt.Label, 20)},
			}
		}
		body = map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                recipient,
			"type":              "interactive",
			"interactive": map[string]any{
				"type":   "button",
				"body":   map[string]string{"text": text},
				"action": map[string]any{"buttons": buttons},
			},
		}
	default:
		rows := make([]map[string]string, len(options))
		for i, opt := range options {
			rows[i] = map[string]string{"id": opt.Value, "title": truncate(opt.Label, 24)}
		}
		body = map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                recipient,
			"type":              "interactive",
			"interactive": map[string]any{
				"type":   "list",
				"body":   map[string]string{"text": text},
				"action": map[string]any{
					"button":   "Opções",
					"sections": []map[string]any{{"rows": rows}},
				},
			},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIURL, g.phoneNumberID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	g.log.Info("message sent", slog.String("recipient", recipient))
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (g *GraphSocket) verifySignature(body []byte, signature string) bool {
	if len(signature) < 8 || signature[:7] != "sha256=" {
		return false
	}

	expectedSig := signature[7:]
	mac := hmac.New(sha256.New, []byte(g.appSecret))
	mac.Write(body)
	actualSig := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expectedSig), []byte(actualSig))
}
