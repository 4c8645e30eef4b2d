package chat

import (
	"testing"

	"AtendeBot/entity"
)

func TestStateOfPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		session entity.Session
		want    StateKind
	}{
		{
			"empty session starts onboarding",
			entity.Session{},
			StateOnboardingName,
		},
		{
			"name without phone",
			entity.Session{FullName: "Maria Souza"},
			StateOnboardingPhone,
		},
		{
			"onboarded with no routing",
			entity.Session{FullName: "Maria Souza", Phone: "11999999999"},
			StateMenu,
		},
		{
			"ai mode",
			entity.Session{FullName: "Maria Souza", Phone: "11999999999", CurrentMode: entity.ModeAI},
			StateAIMode,
		},
		{
			"ai mode stored literal",
			entity.Session{FullName: "Maria Souza", Phone: "11999999999", CurrentMode: "AI"},
			StateAIMode,
		},
		{
			"department",
			entity.Session{FullName: "Maria Souza", Phone: "11999999999", CurrentDepartment: "Vendas"},
			StateDepartment,
		},
		{
			"takeover beats everything",
			entity.Session{FullName: "Maria Souza", Phone: "11999999999", CurrentMode: entity.ModeAI, ControlledBy: entity.ControlledByAdmin},
			StateAdminControlled,
		},
		{
			"takeover beats onboarding",
			entity.Session{ControlledBy: entity.ControlledByAdmin},
			StateAdminControlled,
		},
		{
			"ai mode wins over stale department",
			entity.Session{FullName: "Maria Souza", Phone: "11999999999", CurrentMode: entity.ModeAI, CurrentDepartment: "Vendas"},
			StateAIMode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StateOf(&tc.session)
			if got.Kind != tc.want {
				t.Errorf("got kind %d, want %d", got.Kind, tc.want)
			}
		})
	}
}

func TestStateOfCarriesDepartment(t *testing.T) {
	s := entity.Session{FullName: "Maria", Phone: "11999999999", CurrentDepartment: "Suporte Técnico"}
	got := StateOf(&s)
	if got.Department != "Suporte Técnico" {
		t.Errorf("got %q", got.Department)
	}
}
