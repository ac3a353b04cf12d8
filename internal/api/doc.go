// Package api serves the daemon's HTTP surface.
//
// Devices post CBOR-encoded CWMP envelopes to the ingress path (default
// /cwmp). The session ID handed out with the InformResponse travels back
// in the X-CWMP-Session header or the cwmp_session cookie. An empty
// request body is an Empty message and a 204 response ends the CWMP
// session.
//
// Operators use the JSON endpoints under /api/v1:
//
//	GET  /api/v1/health
//	GET  /api/v1/devices
//	GET  /api/v1/devices/{serial}
//	POST /api/v1/devices/{serial}/reboot
//	PUT  /api/v1/devices/{serial}/intent
//
// When a username is configured the operator endpoints require HTTP basic
// auth checked against a bcrypt hash.
package api
