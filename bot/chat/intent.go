package chat

import (
	"context"
	"fmt"
	"strings"
)

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	// IntentSelection is an exact menu selection ("IA" or a department
	// name). Resolved without any external call so menu clicks never
	// depend on a backend being available.
	IntentSelection Intent = "SELECTION"
	// IntentMenu means the user wants to see or return to the options.
	IntentMenu Intent = "MENU"
	// IntentOnboarding looks like a direct reply to an identity question.
	IntentOnboarding Intent = "ONBOARDING"
	// IntentQuestion is the default.
	IntentQuestion Intent = "QUESTION"
)

const classificationPromptFmt = `Classifique a intenção desta mensagem para um chatbot de suporte:
- "MENU": Se o usuário quer ver opções, listar departamentos, ou cancelar a ação atual. NÃO CLASSIFIQUE NOME DE DEPARTAMENTO COMO MENU.
- "QUESTION": Se o usuário tem uma dúvida ou pede informação.
- "ONBOARDING": Se a mensagem parece ser a resposta a uma pergunta de Nome ou número de celular.

Mensagem: "%s"
RETORNE APENAS UMA PALAVRA: MENU, QUESTION ou ONBOARDING.`

// classifyIntent delegates to the generation backend with a fixed prompt.
// Unrecognized labels and backend failures fall back to QUESTION; the
// gateway already degrades to fixed text on failure, which parses to no
// known label.
func (e *ChatEngine) classifyIntent(ctx context.Context, message string) Intent {
	out := e.generator.Complete(ctx, fmt.Sprintf(classificationPromptFmt, message))
	label := strings.ToUpper(strings.TrimSpace(out))

	switch {
	case strings.Contains(label, string(IntentMenu)):
		return IntentMenu
	case strings.Contains(label, string(IntentOnboarding)):
		return IntentOnboarding
	default:
		return IntentQuestion
	}
}
