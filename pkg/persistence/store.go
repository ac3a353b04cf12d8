package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

// FormatVersion is the current version of the persisted record format.
const FormatVersion = 1

// Persistence errors.
var (
	ErrNotFound      = errors.New("no stored configuration")
	ErrInvalidSerial = errors.New("invalid device serial number")
	ErrVersion       = errors.New("unsupported record version")
)

// Kind selects which snapshot of a device is addressed.
type Kind uint8

const (
	KindDesired Kind = iota
	KindActual
)

func (k Kind) String() string {
	switch k {
	case KindDesired:
		return "desired"
	case KindActual:
		return "actual"
	default:
		return "unknown"
	}
}

// Store persists device snapshots keyed by serial number.
type Store interface {
	// LoadDesired returns the desired configuration of a device, or
	// ErrNotFound if none was assigned.
	LoadDesired(ctx context.Context, serial string) (*snapshot.Snapshot, error)
	SaveDesired(ctx context.Context, serial string, s *snapshot.Snapshot) error

	// LoadActual returns the last configuration read from a device, or
	// ErrNotFound if the device never completed a load.
	LoadActual(ctx context.Context, serial string) (*snapshot.Snapshot, error)
	SaveActual(ctx context.Context, serial string, s *snapshot.Snapshot) error

	// Devices lists the serial numbers that have any stored snapshot.
	Devices(ctx context.Context) ([]string, error)

	Close() error
}

// Record is the persisted form of one snapshot.
type Record struct {
	Version  int                `json:"version"`
	Serial   string             `json:"serial"`
	Kind     string             `json:"kind"`
	SavedAt  time.Time          `json:"saved_at"`
	Snapshot *snapshot.Snapshot `json:"snapshot"`
}

func (r *Record) check() error {
	if r.Version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}
	if r.Snapshot == nil {
		r.Snapshot = snapshot.New()
	}
	return nil
}

// ValidSerial reports whether serial can be used as a storage key. Serial
// numbers come from the device and end up in file names.
func ValidSerial(serial string) error {
	if serial == "" || serial == "." || serial == ".." || len(serial) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidSerial, serial)
	}
	if strings.ContainsAny(serial, `/\`+"\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidSerial, serial)
	}
	return nil
}
