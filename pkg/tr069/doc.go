// Package tr069 defines the CWMP messages exchanged between the agent and an
// eNodeB, in a transport-neutral form.
//
// The SOAP/HTTP binding is handled outside this module. Messages reach the
// agent already decoded; Encode and Decode provide a compact CBOR envelope
// for bridges and for protocol capture files.
//
// Inbound messages (CPE to ACS) are Inform, Empty, Fault and the responses
// to the ACS requests. Outbound messages are GetParameterValues,
// SetParameterValues, AddObject, DeleteObject and Reboot.
package tr069
