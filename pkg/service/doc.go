// Package service hosts the per-device state machines of the agent.
//
// The Service owns one session per eNodeB, keyed by serial number. Each
// session runs its own goroutine that consumes an inbox: inbound CWMP
// messages from the transport and timer expirations. The acs.Machine of a
// session is therefore only ever driven by one goroutine at a time, and all
// I/O (loading the desired configuration, persisting the actual one)
// happens in the session goroutine around Machine.Handle.
//
// A session is created on the first Inform from a device. The device type
// is resolved from the Inform's identity and firmware version. Sessions are
// dropped when their machine reaches the error state, when the device
// stops talking for longer than Config.IdleTimeout, or when an Inform
// resolves to a different device type.
package service
