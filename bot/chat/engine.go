package chat

import (
	"AtendeBot/entity"
	"AtendeBot/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// SessionStore persists per-conversation state.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	CreateSession(ctx context.Context, session *entity.Session) error
	TouchSession(ctx context.Context, sessionID string) error
	SetSessionIdentity(ctx context.Context, sessionID, fullName, firstName, phone string) error
	SetSessionPhone(ctx context.Context, sessionID, phone string) error
	SetSessionRouting(ctx context.Context, sessionID, mode, department string) error
	SetSessionOptions(ctx context.Context, sessionID string, opts []entity.Option) error
	BumpSessionActivity(ctx context.Context, sessionID string) error
}

// MessageStore appends to the conversation log.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg entity.Message) error
}

// DepartmentStore resolves routing destinations.
type DepartmentStore interface {
	GetDepartment(ctx context.Context, name string) (*entity.Department, error)
	ListDepartments(ctx context.Context) ([]entity.Department, error)
}

// SettingStore reads runtime configuration (system prompt).
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Retriever performs the document-chunk similarity search. It degrades to
// an empty result rather than failing the turn.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) []entity.DocumentChunk
}

// Generator produces text for a prompt. It never fails: exhausted backends
// yield a fixed apology string.
type Generator interface {
	Complete(ctx context.Context, prompt string) string
}

// MessageListener is notified after a message is persisted, so the admin
// dashboard can be updated live without coupling the engine to transports.
type MessageListener interface {
	MessageSaved(msg entity.Message)
}

// Metadata carries channel-provided identity hints.
type Metadata struct {
	DisplayName string
}

const searchLimit = 3

// ChatEngine drives the conversation state machine: session lifecycle,
// intent classification, onboarding gating, AI/department routing and the
// human-takeover interrupt, across the web and WhatsApp channels.
type ChatEngine struct {
	sessions    SessionStore
	messages    MessageStore
	departments DepartmentStore
	settings    SettingStore
	retriever   Retriever
	generator   Generator
	listener    MessageListener
	log         *slog.Logger
}

// NewChatEngine builds the engine with its injected collaborators.
func NewChatEngine(sessions SessionStore, messages MessageStore, departments DepartmentStore, settings SettingStore, retriever Retriever, generator Generator, log *slog.Logger) *ChatEngine {
	return &ChatEngine{
		sessions:    sessions,
		messages:    messages,
		departments: departments,
		settings:    settings,
		retriever:   retriever,
		generator:   generator,
		log:         log.With(sl.Module("chat.engine")),
	}
}

// SetMessageListener sets the listener for persisted messages (may be nil).
func (e *ChatEngine) SetMessageListener(l MessageListener) {
	e.listener = l
}

// ProcessMessage handles one inbound message and returns the response to be
// delivered on the originating channel. Expected conditions never produce an
// error; unexpected internal faults are logged and turned into a generic
// failure result. State persisted before a fault is not rolled back.
func (e *ChatEngine) ProcessMessage(ctx context.Context, sessionID, message, platform string, meta *Metadata) (result entity.EngineResult) {
	log := e.log.With(
		slog.String("session_id", sessionID),
		slog.String("platform", platform),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing message", slog.Any("panic", r))
			result = entity.EngineResult{Response: internalFaultText}
		}
	}()

	res, err := e.process(ctx, log, sessionID, message, platform, meta)
	if err != nil {
		log.Error("processing message", sl.Err(err))
		return entity.EngineResult{Response: internalFaultText}
	}
	return res
}

func (e *ChatEngine) process(ctx context.Context, log *slog.Logger, sessionID, message, platform string, meta *Metadata) (entity.EngineResult, error) {
	// 1. Session resolution. Creation is lazy; every turn refreshes
	// activity and flags the inbox unread.
	session, err := e.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return entity.EngineResult{}, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		log.Info("session not found, creating")
		session = &entity.Session{SessionID: sessionID, Platform: platform}
		if err := e.sessions.CreateSession(ctx, session); err != nil {
			return entity.EngineResult{}, fmt.Errorf("creating session: %w", err)
		}
	} else if err := e.sessions.TouchSession(ctx, sessionID); err != nil {
		return entity.EngineResult{}, fmt.Errorf("touching session: %w", err)
	}

	// 2. WhatsApp pre-fill: the channel identity already carries a
	// verified phone, so text-based onboarding is bypassed entirely.
	if platform == entity.PlatformWhatsApp && session.Phone == "" {
		phone := strings.SplitN(sessionID, "@", 2)[0]
		name := phone
		if meta != nil && meta.DisplayName != "" {
			name = meta.DisplayName
		}
		first := FirstName(name)
		if err := e.sessions.SetSessionIdentity(ctx, sessionID, name, first, phone); err != nil {
			return entity.EngineResult{}, fmt.Errorf("prefilling identity: %w", err)
		}
		session.FullName, session.FirstName, session.Phone = name, first, phone
	}

	// Numbered replies are remapped against the options offered on the
	// previous turn. An unmatched digit passes through as plain text.
	routed := message
	if platform == entity.PlatformWhatsApp && len(session.LastOptions) > 0 {
		if mapped := MatchNumberToOption(message, session.LastOptions); mapped != "" {
			log.Debug("numbered reply remapped", slog.String("value", mapped))
			routed = mapped
		}
	}

	// 3. The inbound message is persisted before any routing decision.
	if err := e.saveMessage(ctx, sessionID, entity.SenderUser, message); err != nil {
		return entity.EngineResult{}, err
	}

	state := StateOf(session)

	// 4. Takeover short-circuit: the engine never talks over a human
	// agent. No classification, no retrieval, no bot message.
	if state.Kind == StateAdminControlled {
		log.Info("session under admin control, skipping automated response")
		return entity.EngineResult{Response: "", ControlledBy: entity.ControlledByAdmin}, nil
	}

	// 5. Intent. Exact matches resolve before the classification call so
	// menu clicks never depend on an external service.
	intent := IntentQuestion
	var selected *entity.Department
	if routed == aiOptionValue {
		intent = IntentSelection
	} else {
		selected, err = e.departments.GetDepartment(ctx, routed)
		if err != nil {
			return entity.EngineResult{}, fmt.Errorf("resolving department: %w", err)
		}
		if selected != nil {
			intent = IntentSelection
		} else {
			intent = e.classifyIntent(ctx, routed)
		}
	}
	log.Debug("intent resolved", slog.String("intent", string(intent)))

	// 6. Menu: clear routing and re-offer the full option list.
	if intent == IntentMenu {
		if err := e.sessions.SetSessionRouting(ctx, sessionID, "", ""); err != nil {
			return entity.EngineResult{}, fmt.Errorf("clearing routing: %w", err)
		}
		options, err := e.menuOptions(ctx)
		if err != nil {
			return entity.EngineResult{}, err
		}
		return e.finalize(ctx, sessionID, menuHeaderText, options, platform)
	}

	// 7. Onboarding gate. Only the fast-path SELECTION intent is exempt.
	if state.Kind == StateOnboardingName && intent != IntentSelection {
		first := FirstName(routed)
		if err := e.sessions.SetSessionIdentity(ctx, sessionID, routed, first, ""); err != nil {
			return entity.EngineResult{}, fmt.Errorf("saving name: %w", err)
		}
		return e.finalize(ctx, sessionID, fmt.Sprintf(askPhoneFmt, first), nil, platform)
	}
	if state.Kind == StateOnboardingPhone && intent != IntentSelection {
		digits := DigitsOnly(routed)
		if len(digits) < 10 || len(digits) > 11 {
			return e.finalize(ctx, sessionID, invalidPhoneText, nil, platform)
		}
		if err := e.sessions.SetSessionPhone(ctx, sessionID, digits); err != nil {
			return entity.EngineResult{}, fmt.Errorf("saving phone: %w", err)
		}
		options, err := e.menuOptions(ctx)
		if err != nil {
			return entity.EngineResult{}, err
		}
		return e.finalize(ctx, sessionID, phoneAcceptedText, options, platform)
	}

	// 8. Execution.
	var response string
	var options []entity.Option

	switch {
	case intent == IntentSelection && routed == aiOptionValue:
		if err := e.sessions.SetSessionRouting(ctx, sessionID, entity.ModeAI, ""); err != nil {
			return entity.EngineResult{}, fmt.Errorf("entering ai mode: %w", err)
		}
		response = aiModeEnterText

	case intent == IntentSelection && selected.Type == entity.DeptTypeHuman:
		return e.humanHandoff(ctx, sessionID, selected)

	case intent == IntentSelection:
		if err := e.sessions.SetSessionRouting(ctx, sessionID, "", selected.Name); err != nil {
			return entity.EngineResult{}, fmt.Errorf("entering department: %w", err)
		}
		response = fmt.Sprintf(departmentEnterFmt, selected.Name)

	case state.Kind == StateAIMode || (state.Kind == StateMenu && intent == IntentQuestion):
		if state.Kind != StateAIMode {
			if err := e.sessions.SetSessionRouting(ctx, sessionID, entity.ModeAI, ""); err != nil {
				return entity.EngineResult{}, fmt.Errorf("recording ai mode: %w", err)
			}
		}
		response = e.answerWithAI(ctx, sessionID, routed)

	case state.Kind == StateDepartment:
		response = e.answerWithDepartment(ctx, state.Department, routed)

	default:
		response = didNotUnderstandText
		options, err = e.menuOptions(ctx)
		if err != nil {
			return entity.EngineResult{}, err
		}
	}

	return e.finalize(ctx, sessionID, response, options, platform)
}

// answerWithAI runs retrieval and generation under the configured (or
// default) system prompt.
func (e *ChatEngine) answerWithAI(ctx context.Context, sessionID, question string) string {
	context_ := e.retrievalContext(ctx, question)

	systemPrompt, err := e.settings.GetSetting(ctx, entity.SettingSystemPrompt)
	if err != nil || systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	prompt := fmt.Sprintf("%s\n\nContexto:\n%s\n\nPergunta: %s", systemPrompt, context_, question)
	return e.generator.Complete(ctx, prompt)
}

// answerWithDepartment runs retrieval and generation under the department's
// own prompt, falling back to a generic department-expert instruction.
func (e *ChatEngine) answerWithDepartment(ctx context.Context, department, question string) string {
	deptPrompt := fmt.Sprintf(departmentExpertFmt, department)
	dept, err := e.departments.GetDepartment(ctx, department)
	if err == nil && dept != nil && dept.Prompt != "" {
		deptPrompt = dept.Prompt
	}

	context_ := e.retrievalContext(ctx, question)
	prompt := fmt.Sprintf("%s\n\nContexto:\n%s\n\nPergunta: %s", deptPrompt, context_, question)
	return e.generator.Complete(ctx, prompt)
}

func (e *ChatEngine) retrievalContext(ctx context.Context, question string) string {
	chunks := e.retriever.Search(ctx, question, searchLimit)
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n")
}

// humanHandoff answers a human-department selection with an external deep
// link. Routing is cleared; the session parks back at the menu. This path
// persists its own bot line since it bypasses finalize.
func (e *ChatEngine) humanHandoff(ctx context.Context, sessionID string, dept *entity.Department) (entity.EngineResult, error) {
	response := fmt.Sprintf(humanRedirectFmt, dept.Name)
	redirect := WhatsAppHandoffLink(dept.Phone, dept.Name)

	if err := e.sessions.SetSessionRouting(ctx, sessionID, "", ""); err != nil {
		return entity.EngineResult{}, fmt.Errorf("clearing routing for handoff: %w", err)
	}
	if err := e.saveMessage(ctx, sessionID, entity.SenderBot, response); err != nil {
		return entity.EngineResult{}, err
	}
	if err := e.sessions.BumpSessionActivity(ctx, sessionID); err != nil {
		return entity.EngineResult{}, fmt.Errorf("bumping activity: %w", err)
	}
	if err := e.sessions.SetSessionOptions(ctx, sessionID, nil); err != nil {
		return entity.EngineResult{}, fmt.Errorf("clearing options: %w", err)
	}

	return entity.EngineResult{Response: response, RedirectURL: redirect}, nil
}

// finalize renders options for the channel, persists the bot response and
// the offered options, and refreshes activity.
func (e *ChatEngine) finalize(ctx context.Context, sessionID, response string, options []entity.Option, platform string) (entity.EngineResult, error) {
	if platform == entity.PlatformWhatsApp && response != "" && len(options) > 0 {
		response = AppendNumberedOptions(response, options)
	}

	if response != "" {
		if err := e.saveMessage(ctx, sessionID, entity.SenderBot, response); err != nil {
			return entity.EngineResult{}, err
		}
		if err := e.sessions.BumpSessionActivity(ctx, sessionID); err != nil {
			return entity.EngineResult{}, fmt.Errorf("bumping activity: %w", err)
		}
	}

	if err := e.sessions.SetSessionOptions(ctx, sessionID, options); err != nil {
		return entity.EngineResult{}, fmt.Errorf("persisting options: %w", err)
	}

	return entity.EngineResult{Response: response, Options: options}, nil
}

// menuOptions builds the full option list: the synthetic AI choice first,
// then departments ordered by display_order.
func (e *ChatEngine) menuOptions(ctx context.Context) ([]entity.Option, error) {
	depts, err := e.departments.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}

	options := make([]entity.Option, 0, len(depts)+1)
	options = append(options, entity.Option{Label: aiOptionLabel, Value: aiOptionValue})
	for _, d := range depts {
		options = append(options, entity.Option{Label: DepartmentOptionLabel(d), Value: d.Name})
	}
	return options, nil
}

func (e *ChatEngine) saveMessage(ctx context.Context, sessionID, sender, content string) error {
	msg := entity.Message{
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
	}
	if err := e.messages.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("saving %s message: %w", sender, err)
	}
	if e.listener != nil {
		e.listener.MessageSaved(msg)
	}
	return nil
}
