package datamodel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Name identifies a configuration attribute independent of any device's
// data model.
type Name uint16

const (
	NameUnknown Name = iota

	// Containers.
	Device
	FAPService
	PLMNList

	// Status reported by the device.
	GPSStatus
	GPSLat
	GPSLong
	SWVersion
	OpState
	RFTxStatus

	// Capabilities.
	DuplexModeCapability
	BandCapability

	// Radio.
	EARFCNDL
	EARFCNUL
	Band
	PCI
	DLBandwidth
	ULBandwidth

	// Control.
	AdminState
	CellReserved
	CellBarred

	// Core network.
	MMEIP
	MMEPort
	NumPLMNs
	TAC

	// Management.
	IPSecEnable
	PeriodicInformInterval
	PerfMgmtEnable
	PerfMgmtUploadInterval
	PerfMgmtUploadURL

	// Per-instance attributes of the PLMN list. Keys with these names carry
	// an instance index.
	PLMN
	PLMNCellReserved
	PLMNEnable
	PLMNPrimary
	PLMNID
)

var nameStrings = map[Name]string{
	Device:                 "Device",
	FAPService:             "FAPService",
	PLMNList:               "PLMN",
	GPSStatus:              "GPS status",
	GPSLat:                 "GPS lat",
	GPSLong:                "GPS long",
	SWVersion:              "SW version",
	OpState:                "Opstate",
	RFTxStatus:             "RF TX status",
	DuplexModeCapability:   "Duplex mode capability",
	BandCapability:         "Band capability",
	EARFCNDL:               "EARFCNDL",
	EARFCNUL:               "EARFCNUL",
	Band:                   "Band",
	PCI:                    "PCI",
	DLBandwidth:            "DL bandwidth",
	ULBandwidth:            "UL bandwidth",
	AdminState:             "Admin state",
	CellReserved:           "Cell reserved",
	CellBarred:             "Cell barred",
	MMEIP:                  "MME IP",
	MMEPort:                "MME port",
	NumPLMNs:               "Number of PLMNs",
	TAC:                    "TAC",
	IPSecEnable:            "IPSec enable",
	PeriodicInformInterval: "Periodic inform interval",
	PerfMgmtEnable:         "Perf mgmt enable",
	PerfMgmtUploadInterval: "Perf mgmt upload interval",
	PerfMgmtUploadURL:      "Perf mgmt upload URL",
	PLMN:                   "PLMN %d",
	PLMNCellReserved:       "PLMN %d cell reserved",
	PLMNEnable:             "PLMN %d enable",
	PLMNPrimary:            "PLMN %d primary",
	PLMNID:                 "PLMN %d PLMNID",
}

// Indexed reports whether keys with this name carry an instance index.
func (n Name) Indexed() bool {
	return n >= PLMN && n <= PLMNID
}

// String returns the attribute name. Indexed names are returned as their
// format pattern.
func (n Name) String() string {
	if s, ok := nameStrings[n]; ok {
		return s
	}
	return "unknown"
}

// Key identifies one configuration attribute. Index is zero for names that
// are not indexed and the 1-based instance number otherwise.
type Key struct {
	Name  Name
	Index int
}

// Key errors.
var (
	ErrInvalidIndex = errors.New("invalid instance index for key")
	ErrUnknownKey   = errors.New("unknown configuration key")
)

// K returns the key for a non-indexed name.
func K(n Name) Key {
	return Key{Name: n}
}

// Instance returns the key for instance i of an indexed name.
func Instance(n Name, i int) Key {
	return Key{Name: n, Index: i}
}

// Valid reports whether the index matches the name's indexing rule.
func (k Key) Valid() bool {
	if k.Name == NameUnknown {
		return false
	}
	if k.Name.Indexed() {
		return k.Index > 0
	}
	return k.Index == 0
}

// String returns the human-readable key, e.g. "EARFCNDL" or "PLMN 2 enable".
func (k Key) String() string {
	if k.Name.Indexed() {
		return fmt.Sprintf(k.Name.String(), k.Index)
	}
	return k.Name.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %v/%d", ErrInvalidIndex, k.Name, k.Index)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKey parses the string form produced by Key.String.
func ParseKey(s string) (Key, error) {
	for n, pattern := range nameStrings {
		if !n.Indexed() {
			if s == pattern {
				return K(n), nil
			}
			continue
		}
		prefix, suffix, _ := strings.Cut(pattern, "%d")
		if len(s) <= len(prefix)+len(suffix) ||
			!strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
			continue
		}
		digits := s[len(prefix) : len(s)-len(suffix)]
		i, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if i <= 0 {
			return Key{}, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
		}
		return Instance(n, i), nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
}
