package acs

import (
	"fmt"
	"time"
)

// Policy holds the timing knobs of the reconciliation cycle.
type Policy struct {
	// TransientPollInterval is the minimum time between transient
	// parameter polls. A session that has polled within the interval ends
	// without a request.
	TransientPollInterval time.Duration

	// RefetchInterval forces a full parameter load after this long even if
	// the transient poll shows nothing new. Zero disables periodic
	// refetching; the first load of a session always happens.
	RefetchInterval time.Duration

	// RebootInformTimeout bounds the wait for the "M Reboot" Inform.
	RebootInformTimeout time.Duration

	// RebootDelay is how long the device is left alone after rebooting
	// before configuration resumes.
	RebootDelay time.Duration
}

// Default policy values.
const (
	DefaultTransientPollInterval = 30 * time.Second
	DefaultRefetchInterval       = time.Hour
	DefaultRebootInformTimeout   = 5 * time.Minute
	DefaultRebootDelay           = 30 * time.Second
)

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		TransientPollInterval: DefaultTransientPollInterval,
		RefetchInterval:       DefaultRefetchInterval,
		RebootInformTimeout:   DefaultRebootInformTimeout,
		RebootDelay:           DefaultRebootDelay,
	}
}

// Validate checks the policy. A zero poll interval would let a session
// poll in a loop, so it is rejected.
func (p Policy) Validate() error {
	switch {
	case p.TransientPollInterval <= 0:
		return fmt.Errorf("%w: transient poll interval must be positive", ErrInvalidPolicy)
	case p.RefetchInterval < 0:
		return fmt.Errorf("%w: refetch interval must not be negative", ErrInvalidPolicy)
	case p.RebootInformTimeout <= 0:
		return fmt.Errorf("%w: reboot inform timeout must be positive", ErrInvalidPolicy)
	case p.RebootDelay < 0:
		return fmt.Errorf("%w: reboot delay must not be negative", ErrInvalidPolicy)
	}
	return nil
}
