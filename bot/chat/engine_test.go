package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"AtendeBot/entity"
)

type fakeSessions struct {
	sessions map[string]*entity.Session
	created  int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*entity.Session)}
}

func (f *fakeSessions) GetSession(_ context.Context, sessionID string) (*entity.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessions) CreateSession(_ context.Context, session *entity.Session) error {
	copied := *session
	f.sessions[session.SessionID] = &copied
	f.created++
	return nil
}

func (f *fakeSessions) TouchSession(_ context.Context, sessionID string) error {
	f.sessions[sessionID].IsRead = false
	return nil
}

func (f *fakeSessions) SetSessionIdentity(_ context.Context, sessionID, fullName, firstName, phone string) error {
	s := f.sessions[sessionID]
	s.FullName = fullName
	s.FirstName = firstName
	if phone != "" {
		s.Phone = phone
	}
	return nil
}

func (f *fakeSessions) SetSessionPhone(_ context.Context, sessionID, phone string) error {
	f.sessions[sessionID].Phone = phone
	return nil
}

func (f *fakeSessions) SetSessionRouting(_ context.Context, sessionID, mode, department string) error {
	s := f.sessions[sessionID]
	s.CurrentMode = mode
	s.CurrentDepartment = department
	return nil
}

func (f *fakeSessions) SetSessionOptions(_ context.Context, sessionID string, opts []entity.Option) error {
	f.sessions[sessionID].LastOptions = opts
	return nil
}

func (f *fakeSessions) BumpSessionActivity(_ context.Context, sessionID string) error {
	return nil
}

type fakeMessages struct {
	saved []entity.Message
}

func (f *fakeMessages) SaveMessage(_ context.Context, msg entity.Message) error {
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessages) bySender(sender string) []entity.Message {
	var out []entity.Message
	for _, m := range f.saved {
		if m.Sender == sender {
			out = append(out, m)
		}
	}
	return out
}

type fakeDepartments struct {
	depts []entity.Department
}

func (f *fakeDepartments) GetDepartment(_ context.Context, name string) (*entity.Department, error) {
	for _, d := range f.depts {
		if d.Name == name {
			copied := d
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDepartments) ListDepartments(_ context.Context) ([]entity.Department, error) {
	return f.depts, nil
}

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetSetting(_ context.Context, key string) (string, error) {
	if f.values == nil {
		return "", nil
	}
	return f.values[key], nil
}

type fakeRetriever struct {
	chunks []entity.DocumentChunk
	calls  int
}

func (f *fakeRetriever) Search(_ context.Context, query string, limit int) []entity.DocumentChunk {
	f.calls++
	return f.chunks
}

// fakeGenerator answers classification prompts with the scripted intent and
// everything else with answer.
type fakeGenerator struct {
	intent string
	answer string
	calls  int
}

func (f *fakeGenerator) Complete(_ context.Context, prompt string) string {
	f.calls++
	if strings.Contains(prompt, "Classifique a intenção") {
		return f.intent
	}
	return f.answer
}

type engineFixture struct {
	engine      *ChatEngine
	sessions    *fakeSessions
	messages    *fakeMessages
	departments *fakeDepartments
	retriever   *fakeRetriever
	generator   *fakeGenerator
}

func newFixture() *engineFixture {
	sessions := newFakeSessions()
	messages := &fakeMessages{}
	departments := &fakeDepartments{depts: []entity.Department{
		{Name: "Vendas", Icon: "🛒", Type: entity.DeptTypeAI, DisplayOrder: 1},
		{Name: "Suporte Técnico", Icon: "🔧", Type: entity.DeptTypeAI, DisplayOrder: 2},
		{Name: "Projetos Customizados", Icon: "⚙️", Type: entity.DeptTypeHuman, Phone: "5511988887777", DisplayOrder: 3},
	}}
	retriever := &fakeRetriever{}
	generator := &fakeGenerator{intent: "QUESTION", answer: "resposta gerada"}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewChatEngine(sessions, messages, departments, &fakeSettings{}, retriever, generator, log)

	return &engineFixture{
		engine:      engine,
		sessions:    sessions,
		messages:    messages,
		departments: departments,
		retriever:   retriever,
		generator:   generator,
	}
}

// onboard walks a web session through name and phone.
func (f *engineFixture) onboard(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	f.engine.ProcessMessage(ctx, sessionID, "Maria Souza", entity.PlatformWeb, nil)
	res := f.engine.ProcessMessage(ctx, sessionID, "11999999999", entity.PlatformWeb, nil)
	if res.Response != phoneAcceptedText {
		t.Fatalf("onboarding did not finish: %q", res.Response)
	}
}

func TestOnboardingAsksPhoneAfterName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res := f.engine.ProcessMessage(ctx, "web-1", "Maria Souza", entity.PlatformWeb, nil)

	want := fmt.Sprintf(askPhoneFmt, "Maria")
	if res.Response != want {
		t.Errorf("got %q, want %q", res.Response, want)
	}
	if f.sessions.created != 1 {
		t.Errorf("expected one session created, got %d", f.sessions.created)
	}
	s := f.sessions.sessions["web-1"]
	if s.FullName != "Maria Souza" || s.FirstName != "Maria" {
		t.Errorf("identity not stored: %+v", s)
	}
	if s.Phone != "" {
		t.Errorf("phone must stay empty until asked, got %q", s.Phone)
	}
}

func TestOnboardingPhoneValidation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
		want  string
	}{
		{"plain 11 digits", "11999999999", true, "11999999999"},
		{"formatted", "(11) 99999-9999", true, "11999999999"},
		{"ten digits", "1133334444", true, "1133334444"},
		{"too short", "123", false, ""},
		{"too long", "551199999999999", false, ""},
		{"no digits", "meu telefone", false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			f.engine.ProcessMessage(ctx, "web-1", "Maria Souza", entity.PlatformWeb, nil)

			res := f.engine.ProcessMessage(ctx, "web-1", tc.input, entity.PlatformWeb, nil)

			if tc.valid {
				if res.Response != phoneAcceptedText {
					t.Errorf("got %q, want acceptance", res.Response)
				}
				if got := f.sessions.sessions["web-1"].Phone; got != tc.want {
					t.Errorf("stored phone %q, want %q", got, tc.want)
				}
				if len(res.Options) == 0 {
					t.Error("expected menu options after onboarding")
				}
			} else {
				if res.Response != invalidPhoneText {
					t.Errorf("got %q, want rejection", res.Response)
				}
				if got := f.sessions.sessions["web-1"].Phone; got != "" {
					t.Errorf("phone must stay empty, got %q", got)
				}
			}
		})
	}
}

func TestOnboardingGateBlocksQuestions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Looks like a question, but the session has no name yet: the text is
	// consumed as the name.
	f.engine.ProcessMessage(ctx, "web-1", "qual o preço do produto", entity.PlatformWeb, nil)

	if f.generator.calls != 1 {
		t.Errorf("only the classification call is expected, got %d", f.generator.calls)
	}
	if f.retriever.calls != 0 {
		t.Errorf("no retrieval during onboarding, got %d calls", f.retriever.calls)
	}
}

func TestSelectionExemptFromOnboardingGate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.engine.ProcessMessage(ctx, "web-1", "Maria Souza", entity.PlatformWeb, nil)

	// Mid-onboarding, an exact department name is still a selection.
	res := f.engine.ProcessMessage(ctx, "web-1", "Vendas", entity.PlatformWeb, nil)

	want := fmt.Sprintf(departmentEnterFmt, "Vendas")
	if res.Response != want {
		t.Errorf("got %q, want %q", res.Response, want)
	}
	if got := f.sessions.sessions["web-1"].CurrentDepartment; got != "Vendas" {
		t.Errorf("department not recorded, got %q", got)
	}
}

func TestAdminTakeoverSilencesEngine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")
	f.sessions.sessions["web-1"].ControlledBy = entity.ControlledByAdmin
	generatorCallsBefore := f.generator.calls
	botMsgsBefore := len(f.messages.bySender(entity.SenderBot))

	res := f.engine.ProcessMessage(ctx, "web-1", "alguém me ajuda?", entity.PlatformWeb, nil)

	if res.Response != "" {
		t.Errorf("expected silence, got %q", res.Response)
	}
	if res.ControlledBy != entity.ControlledByAdmin {
		t.Errorf("result must flag control, got %q", res.ControlledBy)
	}
	if f.generator.calls != generatorCallsBefore {
		t.Error("generator must not be called under admin control")
	}
	if f.retriever.calls != 0 {
		t.Error("retriever must not be called under admin control")
	}
	if got := len(f.messages.bySender(entity.SenderBot)); got != botMsgsBefore {
		t.Error("no bot message may be persisted under admin control")
	}
	// The user line is still recorded for the agent to read.
	userMsgs := f.messages.bySender(entity.SenderUser)
	if userMsgs[len(userMsgs)-1].Content != "alguém me ajuda?" {
		t.Error("user message must be persisted")
	}
}

func TestAISelectionFastPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")
	callsBefore := f.generator.calls

	res := f.engine.ProcessMessage(ctx, "web-1", "IA", entity.PlatformWeb, nil)

	if res.Response != aiModeEnterText {
		t.Errorf("got %q, want %q", res.Response, aiModeEnterText)
	}
	if f.generator.calls != callsBefore {
		t.Error("exact selection must not reach the classification backend")
	}
	if got := f.sessions.sessions["web-1"].CurrentMode; got != entity.ModeAI {
		t.Errorf("mode not recorded, got %q", got)
	}
}

func TestAIModeAnswersWithRetrieval(t *testing.T) {
	f := newFixture()
	f.retriever.chunks = []entity.DocumentChunk{{Content: "catálogo de produtos"}}
	ctx := context.Background()
	f.onboard(t, "web-1")
	f.engine.ProcessMessage(ctx, "web-1", "IA", entity.PlatformWeb, nil)

	res := f.engine.ProcessMessage(ctx, "web-1", "qual o horário de funcionamento?", entity.PlatformWeb, nil)

	if res.Response != "resposta gerada" {
		t.Errorf("got %q", res.Response)
	}
	if f.retriever.calls != 1 {
		t.Errorf("expected one retrieval, got %d", f.retriever.calls)
	}
}

func TestQuestionFromMenuEntersAIMode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")

	res := f.engine.ProcessMessage(ctx, "web-1", "vocês fazem entrega?", entity.PlatformWeb, nil)

	if res.Response != "resposta gerada" {
		t.Errorf("got %q", res.Response)
	}
	if got := f.sessions.sessions["web-1"].CurrentMode; got != entity.ModeAI {
		t.Errorf("implicit ai mode not recorded, got %q", got)
	}
}

func TestDepartmentModeExclusivity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")

	f.engine.ProcessMessage(ctx, "web-1", "IA", entity.PlatformWeb, nil)
	f.engine.ProcessMessage(ctx, "web-1", "Vendas", entity.PlatformWeb, nil)

	s := f.sessions.sessions["web-1"]
	if s.CurrentMode != "" {
		t.Errorf("ai mode must be cleared when a department is chosen, got %q", s.CurrentMode)
	}
	if s.CurrentDepartment != "Vendas" {
		t.Errorf("department not set, got %q", s.CurrentDepartment)
	}

	f.engine.ProcessMessage(ctx, "web-1", "IA", entity.PlatformWeb, nil)
	s = f.sessions.sessions["web-1"]
	if s.CurrentDepartment != "" {
		t.Errorf("department must be cleared when ai mode is chosen, got %q", s.CurrentDepartment)
	}
	if s.CurrentMode != entity.ModeAI {
		t.Errorf("ai mode not set, got %q", s.CurrentMode)
	}
}

func TestHumanDepartmentHandoff(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")

	res := f.engine.ProcessMessage(ctx, "web-1", "Projetos Customizados", entity.PlatformWeb, nil)

	want := fmt.Sprintf(humanRedirectFmt, "Projetos Customizados")
	if res.Response != want {
		t.Errorf("got %q, want %q", res.Response, want)
	}
	if !strings.HasPrefix(res.RedirectURL, "https://wa.me/5511988887777?text=") {
		t.Errorf("unexpected redirect url %q", res.RedirectURL)
	}
	s := f.sessions.sessions["web-1"]
	if s.CurrentMode != "" || s.CurrentDepartment != "" {
		t.Errorf("routing must be cleared after handoff: %+v", s)
	}
}

func TestMenuIntentIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")

	f.generator.intent = "MENU"

	first := f.engine.ProcessMessage(ctx, "web-1", "quero ver as opções", entity.PlatformWeb, nil)
	second := f.engine.ProcessMessage(ctx, "web-1", "menu de novo", entity.PlatformWeb, nil)

	if first.Response != menuHeaderText || second.Response != menuHeaderText {
		t.Errorf("menu header expected, got %q / %q", first.Response, second.Response)
	}
	if len(first.Options) != len(second.Options) {
		t.Fatalf("option lists differ: %d vs %d", len(first.Options), len(second.Options))
	}
	for i := range first.Options {
		if first.Options[i] != second.Options[i] {
			t.Errorf("option %d differs: %+v vs %+v", i, first.Options[i], second.Options[i])
		}
	}
	if first.Options[0].Value != aiOptionValue {
		t.Errorf("ai option must come first, got %+v", first.Options[0])
	}
}

func TestWhatsAppIdentityPrefill(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res := f.engine.ProcessMessage(ctx, "5511999999999@c.us", "oi", entity.PlatformWhatsApp, &Metadata{DisplayName: "João Silva"})

	s := f.sessions.sessions["5511999999999@c.us"]
	if s.FullName != "João Silva" || s.FirstName != "João" {
		t.Errorf("display name not applied: %+v", s)
	}
	if s.Phone != "5511999999999" {
		t.Errorf("phone not extracted from session id, got %q", s.Phone)
	}
	// Onboarding is bypassed entirely; the question goes straight to AI.
	if res.Response != "resposta gerada" {
		t.Errorf("got %q", res.Response)
	}
}

func TestWhatsAppIdentityPrefillWithoutDisplayName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.engine.ProcessMessage(ctx, "5511999999999@c.us", "oi", entity.PlatformWhatsApp, nil)

	s := f.sessions.sessions["5511999999999@c.us"]
	if s.FullName != "5511999999999" {
		t.Errorf("phone must stand in for the name, got %q", s.FullName)
	}
}

func TestWhatsAppNumberedReplyRemap(t *testing.T) {
	f := newFixture()
	f.generator.intent = "MENU"
	ctx := context.Background()

	f.engine.ProcessMessage(ctx, "5511999999999@c.us", "menu", entity.PlatformWhatsApp, nil)

	s := f.sessions.sessions["5511999999999@c.us"]
	if len(s.LastOptions) == 0 {
		t.Fatal("menu turn must persist offered options")
	}

	// Option 2 is Vendas (1 is the AI entry).
	f.generator.intent = "QUESTION"
	res := f.engine.ProcessMessage(ctx, "5511999999999@c.us", "2", entity.PlatformWhatsApp, nil)

	if !strings.HasPrefix(res.Response, fmt.Sprintf(departmentEnterFmt, "Vendas")) {
		t.Errorf("numbered reply not remapped: %q", res.Response)
	}
	// The raw digit is what lands in the log.
	userMsgs := f.messages.bySender(entity.SenderUser)
	if userMsgs[len(userMsgs)-1].Content != "2" {
		t.Errorf("raw text must be persisted, got %q", userMsgs[len(userMsgs)-1].Content)
	}
}

func TestWhatsAppUnmatchedDigitFallsThrough(t *testing.T) {
	f := newFixture()
	f.generator.intent = "MENU"
	ctx := context.Background()
	f.engine.ProcessMessage(ctx, "5511999999999@c.us", "menu", entity.PlatformWhatsApp, nil)

	f.generator.intent = "QUESTION"
	res := f.engine.ProcessMessage(ctx, "5511999999999@c.us", "9", entity.PlatformWhatsApp, nil)

	// "9" matches no option; it is treated as a plain question.
	if res.Response != "resposta gerada" {
		t.Errorf("got %q", res.Response)
	}
}

func TestWhatsAppMenuRenderedAsNumberedText(t *testing.T) {
	f := newFixture()
	f.generator.intent = "MENU"
	ctx := context.Background()

	res := f.engine.ProcessMessage(ctx, "5511999999999@c.us", "menu", entity.PlatformWhatsApp, nil)

	if !strings.Contains(res.Response, "1️⃣ "+aiOptionLabel) {
		t.Errorf("numbered options missing: %q", res.Response)
	}
	if !strings.Contains(res.Response, numberedInstructionText) {
		t.Errorf("instruction line missing: %q", res.Response)
	}
}

func TestWebMenuNotNumbered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.onboard(t, "web-1")

	f.generator.intent = "MENU"

	res := f.engine.ProcessMessage(ctx, "web-1", "menu", entity.PlatformWeb, nil)

	if strings.Contains(res.Response, "1️⃣") {
		t.Errorf("web responses carry structured options, not numbered text: %q", res.Response)
	}
	if len(res.Options) == 0 {
		t.Error("expected structured options")
	}
}
