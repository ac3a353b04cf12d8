package discovery

import (
	"errors"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of the ACS endpoint.
	ServiceType = "_enodebd-acs._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// DefaultPort is the default CWMP listen port.
	DefaultPort = 7547

	// DefaultPath is the default CWMP endpoint path.
	DefaultPath = "/cwmp"

	// DefaultTTL is the DNS record TTL used when none is configured.
	DefaultTTL = 120 * time.Second

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// TXTVersion is the TXT record format version.
	TXTVersion = "1"
)

// TXT record keys.
const (
	TXTKeyVersion  = "txtvers"
	TXTKeyPath     = "path"
	TXTKeyAgentVer = "ver"
	TXTKeyTLS      = "tls"
)

// Errors.
var (
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 bytes")
	ErrInvalidPort         = errors.New("invalid port")
	ErrNotAdvertising      = errors.New("not advertising")
)

// ACSInfo describes the advertised endpoint.
type ACSInfo struct {
	// InstanceName is the DNS-SD instance label.
	InstanceName string

	// Port is the TCP port of the HTTP listener.
	Port uint16

	// Path is the CWMP endpoint path.
	Path string

	// Version is the agent version string.
	Version string

	// TLS reports whether the endpoint requires TLS.
	TLS bool
}

// Validate checks the fields required for advertisement.
func (i *ACSInfo) Validate() error {
	if i.InstanceName == "" {
		return ErrMissingRequired
	}
	if len(i.InstanceName) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	if i.Port == 0 {
		return ErrInvalidPort
	}
	return nil
}
