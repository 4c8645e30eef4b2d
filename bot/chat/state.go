package chat

import "AtendeBot/entity"

// StateKind is the logical conversation state. The storage schema represents
// state as a combination of nullable session fields; this tagged variant is
// derived from them so the precedence rules stay auditable in one place.
type StateKind int

const (
	// StateAdminControlled suspends all automated responses.
	StateAdminControlled StateKind = iota
	// StateOnboardingName waits for the user's full name.
	StateOnboardingName
	// StateOnboardingPhone waits for a valid phone number.
	StateOnboardingPhone
	// StateMenu has no active mode or department.
	StateMenu
	// StateAIMode routes questions to the general AI assistant.
	StateAIMode
	// StateDepartment routes questions to a department's prompt.
	StateDepartment
)

// State is the derived logical state of a session.
type State struct {
	Kind       StateKind
	Department string
}

// StateOf maps stored session fields to the logical state. Precedence:
// takeover beats onboarding beats routing; AI mode and department are
// mutually exclusive by invariant, AI mode wins if both are ever set.
func StateOf(s *entity.Session) State {
	switch {
	case s.ControlledBy == entity.ControlledByAdmin:
		return State{Kind: StateAdminControlled}
	case s.FullName == "":
		return State{Kind: StateOnboardingName}
	case s.Phone == "":
		return State{Kind: StateOnboardingPhone}
	case s.CurrentMode == entity.ModeAI:
		return State{Kind: StateAIMode}
	case s.CurrentDepartment != "":
		return State{Kind: StateDepartment, Department: s.CurrentDepartment}
	default:
		return State{Kind: StateMenu}
	}
}
