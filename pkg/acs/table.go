package acs

import (
	"fmt"
	"sort"
)

// Roles names the states the machine itself needs to find.
type Roles struct {
	// Initial is the state of a new or reset session.
	Initial StateID

	// UnexpectedInform receives an Inform no state expected.
	UnexpectedInform StateID

	// UnexpectedFault receives any other unexpected message. It is
	// absorbing: the host drops the session.
	UnexpectedFault StateID

	// FaultRecovery is entered after a ProtocolFault.
	FaultRecovery StateID

	// Reboot starts the reboot sequence.
	Reboot StateID

	// RebootSafe lists the states from which a requested reboot may start.
	RebootSafe []StateID
}

// DefaultRoles returns the roles used by the generic flow.
func DefaultRoles() Roles {
	return Roles{
		Initial:          StateDisconnected,
		UnexpectedInform: StateUnexpectedInform,
		UnexpectedFault:  StateUnexpectedFault,
		FaultRecovery:    StateWaitEmpty,
		Reboot:           StateReboot,
		RebootSafe:       []StateID{StateGetTransientParams, StateWaitEmpty},
	}
}

// Table is the immutable state graph of one device type.
type Table struct {
	states map[StateID]State
	roles  Roles
	safe   map[StateID]bool
}

// NewTable builds and validates a table.
func NewTable(roles Roles, states map[StateID]State) (*Table, error) {
	t := &Table{
		states: make(map[StateID]State, len(states)),
		roles:  roles,
		safe:   make(map[StateID]bool, len(roles.RebootSafe)),
	}
	for id, st := range states {
		t.states[id] = st
	}
	for _, id := range roles.RebootSafe {
		t.safe[id] = true
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every successor, timeout target and role refers to
// a defined state.
func (t *Table) Validate() error {
	if _, ok := t.states[StateNone]; ok {
		return fmt.Errorf("%w: %s cannot be defined", ErrUndefinedState, StateNone)
	}
	for _, id := range t.IDs() {
		st := t.states[id]
		if st == nil {
			return fmt.Errorf("%w: %s has no implementation", ErrUndefinedState, id)
		}
		for _, next := range st.Successors() {
			if _, ok := t.states[next]; !ok {
				return fmt.Errorf("%w: %s -> %s", ErrUndefinedState, id, next)
			}
		}
		if timed, ok := st.(TimedState); ok {
			if _, ok := t.states[timed.TimeoutTarget()]; !ok {
				return fmt.Errorf("%w: %s timeout -> %s", ErrUndefinedState, id, timed.TimeoutTarget())
			}
		}
	}

	roles := []struct {
		name string
		id   StateID
	}{
		{"initial", t.roles.Initial},
		{"unexpected inform", t.roles.UnexpectedInform},
		{"unexpected fault", t.roles.UnexpectedFault},
		{"fault recovery", t.roles.FaultRecovery},
		{"reboot", t.roles.Reboot},
	}
	for _, r := range roles {
		if _, ok := t.states[r.id]; !ok {
			return fmt.Errorf("%w: %s role -> %s", ErrUndefinedState, r.name, r.id)
		}
	}
	for _, id := range t.roles.RebootSafe {
		if _, ok := t.states[id]; !ok {
			return fmt.Errorf("%w: reboot-safe -> %s", ErrUndefinedState, id)
		}
	}
	return nil
}

// State returns the state registered under id.
func (t *Table) State(id StateID) (State, bool) {
	st, ok := t.states[id]
	return st, ok
}

// Roles returns the table's role assignment.
func (t *Table) Roles() Roles {
	return t.roles
}

// RebootSafe reports whether a reboot may start from id.
func (t *Table) RebootSafe(id StateID) bool {
	return t.safe[id]
}

// Len returns the number of states.
func (t *Table) Len() int {
	return len(t.states)
}

// IDs returns the defined state ids in ascending order.
func (t *Table) IDs() []StateID {
	ids := make([]StateID, 0, len(t.states))
	for id := range t.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
