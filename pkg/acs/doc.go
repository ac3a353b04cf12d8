// Package acs implements the per-device CWMP state machine of the
// configuration agent.
//
// A Machine is driven by one inbound message at a time. The current State
// reads the message and either rejects it or accepts it with an optional
// transition; the machine then asks the (possibly new) current state to
// produce the next outbound message. States are wired into a Table per
// device type, each constructed with the ids of its successors, so a
// device type can splice in extra states without changing the generic
// ones.
//
// The generic flow is:
//
//	disconnected
//	  -> get_transient_params -> wait_get_transient_params
//	       -> get_params -> wait_get_params
//	       -> get_obj_params -> wait_get_obj_params
//	       -> delete_objs -> add_objs -> set_params -> wait_set_params
//	       -> (back to get_transient_params)
//
// with a reboot sequence (reboot -> wait_reboot -> wait_post_reboot_inform
// -> wait_reboot_delay) entered on operator request, and unexpected_inform
// and unexpected_fault handling messages no state expected.
//
// State handlers never perform I/O. The host reads Actual after Handle
// returns to persist it, and provides the desired configuration with
// SetDesired.
package acs
