package acs

// BasicBranches are the reconciliation successors of the basic flow.
func BasicBranches() Branches {
	return Branches{
		Delete: StateDeleteObjs,
		Add:    StateAddObjs,
		Set:    StateSetParams,
		Skip:   StateGetTransientParams,
	}
}

// BasicStates returns a fresh copy of the state set of the basic
// reconciliation flow. Device types splice their own states into it.
//
//	disconnected -> get_transient_params <-> wait_get_transient_params
//	  -> get_params -> wait_get_params -> get_obj_params -> wait_get_obj_params
//	  -> delete_objs -> add_objs -> set_params -> wait_set_params
//	  -> get_transient_params
func BasicStates() map[StateID]State {
	b := BasicBranches()
	return map[StateID]State{
		StateDisconnected:           NewDisconnected(StateGetTransientParams),
		StateWaitEmpty:              NewWaitEmpty(StateGetTransientParams),
		StateGetTransientParams:     NewGetTransientParameters(StateWaitGetTransientParams),
		StateWaitGetTransientParams: NewWaitGetTransientParameters(TransientBranches{Get: StateGetParams, GetObj: StateGetObjParams, Branches: b}),
		StateGetParams:              NewGetParameters(StateWaitGetParams),
		StateWaitGetParams:          NewWaitGetParameters(StateGetObjParams),
		StateGetObjParams:           NewGetObjectParameters(StateWaitGetObjParams, b),
		StateWaitGetObjParams:       NewWaitGetObjectParameters(b),
		StateDeleteObjs:             NewDeleteObjects(StateAddObjs, StateSetParams),
		StateAddObjs:                NewAddObjects(StateSetParams),
		StateSetParams:              NewSetParameterValues(StateWaitSetParams, StateGetTransientParams),
		StateWaitSetParams:          NewWaitSetParameterValues(StateGetTransientParams),
		StateReboot:                 NewSendReboot(StateWaitReboot),
		StateWaitReboot:             NewWaitRebootResponse(StateWaitPostRebootInform),
		StateWaitPostRebootInform:   NewWaitPostRebootInform(StateWaitRebootDelay, StateDisconnected),
		StateWaitRebootDelay:        NewWaitRebootDelay(StateGetTransientParams),
		StateUnexpectedInform:       NewUnexpectedInform(StateWaitEmpty),
		StateUnexpectedFault:        NewErrorState(),
	}
}

// BasicTable builds the validated table of the basic flow.
func BasicTable() (*Table, error) {
	return NewTable(DefaultRoles(), BasicStates())
}
