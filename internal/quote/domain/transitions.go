package domain

// Status represents quote lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusSent      Status = "sent"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusSent,
		StatusAccepted, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// TransitionTable maps a status to the statuses reachable from it. The
// table is the authority: anything not listed is an invalid transition.
type TransitionTable map[Status][]Status

// DefaultTransitions is the standard quote lifecycle. States advance one
// step at a time; rejected and cancelled are reachable from every
// non-terminal state.
func DefaultTransitions() TransitionTable {
	return TransitionTable{
		StatusDraft:    {StatusPending, StatusRejected, StatusCancelled},
		StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved: {StatusSent, StatusRejected, StatusCancelled},
		StatusSent:     {StatusAccepted, StatusRejected, StatusCancelled},
	}
}

// StateMachine validates status transitions against an injected table, so
// tests and alternate deployments can substitute their own policy.
type StateMachine struct {
	table TransitionTable
}

func NewStateMachine(table TransitionTable) StateMachine {
	if table == nil {
		table = DefaultTransitions()
	}
	return StateMachine{table: table}
}

// Validate returns nil when the transition is listed. Requesting the
// already-current status is a no-op the caller handles before validation.
func (m StateMachine) Validate(from, to Status) error {
	for _, allowed := range m.table[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}
