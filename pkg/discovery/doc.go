// Package discovery advertises the ACS endpoint over mDNS/DNS-SD so that
// eNodeBs and operator tooling on the local network can find it.
//
// # Service
//
// The service type is _enodebd-acs._tcp in the local domain. The instance
// name defaults to "enodebd-<hostname>".
//
// TXT records:
//   - txtvers: TXT record format version
//   - path: HTTP path of the CWMP endpoint (e.g. /cwmp)
//   - ver: agent version
//   - tls: "1" when the endpoint is served over TLS
package discovery
