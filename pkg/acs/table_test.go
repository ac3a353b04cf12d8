package acs

import (
	"errors"
	"testing"
	"time"

	"github.com/ranconf/enodebd-go/pkg/tr069"
)

func TestBasicTableValid(t *testing.T) {
	table, err := BasicTable()
	if err != nil {
		t.Fatalf("BasicTable() error = %v", err)
	}
	for _, id := range table.IDs() {
		st, _ := table.State(id)
		if st.Description() == "" {
			t.Errorf("%s has no description", id)
		}
	}
	if !table.RebootSafe(StateGetTransientParams) || table.RebootSafe(StateWaitSetParams) {
		t.Error("RebootSafe mismatch")
	}
	if _, ok := table.State(StateWaitPostRebootInform); !ok {
		t.Fatal("missing wait_post_reboot_inform")
	}
}

func TestTableRejectsDanglingSuccessor(t *testing.T) {
	states := BasicStates()
	states[StateWaitSetParams] = NewWaitSetParameterValues(StateEnableAdmin)

	_, err := NewTable(DefaultRoles(), states)
	if !errors.Is(err, ErrUndefinedState) {
		t.Errorf("NewTable() error = %v, want ErrUndefinedState", err)
	}
}

func TestTableRejectsDanglingRoles(t *testing.T) {
	tests := []struct {
		name  string
		roles func(r *Roles)
	}{
		{"initial", func(r *Roles) { r.Initial = StateDisableAdmin }},
		{"reboot", func(r *Roles) { r.Reboot = StateNone }},
		{"reboot safe", func(r *Roles) { r.RebootSafe = append(r.RebootSafe, StateEnableAdmin) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles := DefaultRoles()
			tt.roles(&roles)
			if _, err := NewTable(roles, BasicStates()); !errors.Is(err, ErrUndefinedState) {
				t.Errorf("NewTable() error = %v, want ErrUndefinedState", err)
			}
		})
	}
}

func TestTableRejectsDanglingTimeout(t *testing.T) {
	states := BasicStates()
	states[StateWaitPostRebootInform] = NewWaitPostRebootInform(StateWaitRebootDelay, StateWaitEnableAdmin)
	if _, err := NewTable(DefaultRoles(), states); !errors.Is(err, ErrUndefinedState) {
		t.Errorf("NewTable() error = %v, want ErrUndefinedState", err)
	}
}

func TestStateIDNames(t *testing.T) {
	for _, id := range []StateID{StateDisconnected, StateWaitGetTransientParams, StateWaitEnableAdmin} {
		got, ok := ParseStateID(id.String())
		if !ok || got != id {
			t.Errorf("ParseStateID(%q) = %s, %v", id.String(), got, ok)
		}
	}
	if _, ok := ParseStateID("none"); ok {
		t.Error("ParseStateID(none) should fail")
	}
	if StateID(200).String() != "unknown" {
		t.Errorf("StateID(200) = %s", StateID(200))
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Errorf("DefaultPolicy().Validate() = %v", err)
	}
	tests := []struct {
		name   string
		modify func(p *Policy)
	}{
		{"zero poll", func(p *Policy) { p.TransientPollInterval = 0 }},
		{"negative refetch", func(p *Policy) { p.RefetchInterval = -time.Second }},
		{"zero reboot timeout", func(p *Policy) { p.RebootInformTimeout = 0 }},
		{"negative delay", func(p *Policy) { p.RebootDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.modify(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("Validate() = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	pf := &ProtocolFault{State: StateWaitSetParams, Code: 9003, String: "Invalid arguments",
		ParameterFaults: []tr069.ParameterFault{{Name: "Device.X", Code: 9007, String: "bad"}}}
	want := "protocol fault in wait_set_params: 9003 Invalid arguments; Device.X: 9007 bad"
	if pf.Error() != want {
		t.Errorf("Error() = %q, want %q", pf.Error(), want)
	}

	ue := &UnexpectedMessageError{State: StateWaitEmpty, Got: tr069.KindFault, Expected: []tr069.Kind{tr069.KindEmpty}}
	if ue.Error() != "unexpected Fault in wait_empty (expected Empty)" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, ErrUnexpectedMessage) {
		t.Error("UnexpectedMessageError should match ErrUnexpectedMessage")
	}
}
