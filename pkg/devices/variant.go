package devices

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// ErrUnknownDevice is returned when no variant matches a device.
var ErrUnknownDevice = errors.New("unknown device type")

// Tag identifies a device type.
type Tag uint8

const (
	TagUnknown Tag = iota
	TagCavium
	TagTR196
)

var tagNames = []string{"unknown", "cavium", "tr196"}

// String returns the tag name used in configuration.
func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// ParseTag parses a tag name.
func ParseTag(s string) (Tag, error) {
	for i, n := range tagNames {
		if i != int(TagUnknown) && strings.EqualFold(n, s) {
			return Tag(i), nil
		}
	}
	return TagUnknown, fmt.Errorf("%w: %q", ErrUnknownDevice, s)
}

// Variant is a supported device type. The embedded Model is immutable.
type Variant struct {
	Tag Tag
	acs.Model
}

// AcsModel returns the model to run a state machine with.
func (v *Variant) AcsModel() *acs.Model {
	return &v.Model
}

type cached struct {
	once    sync.Once
	variant *Variant
	err     error
}

func (c *cached) get(build func() (*Variant, error)) (*Variant, error) {
	c.once.Do(func() {
		c.variant, c.err = build()
	})
	return c.variant, c.err
}

var (
	caviumCache cached
	tr196Cache  cached
)

// Cavium returns the Cavium OcteonFemto variant.
func Cavium() (*Variant, error) {
	return caviumCache.get(buildCavium)
}

// TR196 returns the generic TR-196 variant.
func TR196() (*Variant, error) {
	return tr196Cache.get(buildTR196)
}

// Lookup returns the variant for a tag.
func Lookup(tag Tag) (*Variant, error) {
	switch tag {
	case TagCavium:
		return Cavium()
	case TagTR196:
		return TR196()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, tag)
	}
}

// All returns every supported variant.
func All() ([]*Variant, error) {
	var out []*Variant
	for _, tag := range []Tag{TagCavium, TagTR196} {
		v, err := Lookup(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Rule maps device identities to a tag. Empty fields match anything;
// SoftwarePrefix matches the start of the firmware version.
type Rule struct {
	OUI            string
	ProductClass   string
	SoftwarePrefix string
	Tag            Tag
}

func (r Rule) matches(id tr069.DeviceID, swVersion string) bool {
	if r.OUI != "" && !strings.EqualFold(r.OUI, id.OUI) {
		return false
	}
	if r.ProductClass != "" && !strings.EqualFold(r.ProductClass, id.ProductClass) {
		return false
	}
	if r.SoftwarePrefix != "" && !strings.HasPrefix(swVersion, r.SoftwarePrefix) {
		return false
	}
	return r.OUI != "" || r.ProductClass != "" || r.SoftwarePrefix != ""
}

// CaviumOUI is the organisationally unique identifier Cavium devices
// report in their Inform.
const CaviumOUI = "000FB7"

// DefaultRules are the built-in identification rules.
func DefaultRules() []Rule {
	return []Rule{
		{OUI: CaviumOUI, Tag: TagCavium},
	}
}

// Resolver identifies device types by rule. The first matching rule wins.
type Resolver struct {
	rules []Rule
}

// NewResolver returns a resolver trying extra rules before the defaults.
func NewResolver(extra ...Rule) *Resolver {
	return &Resolver{rules: append(append([]Rule(nil), extra...), DefaultRules()...)}
}

// Resolve returns the variant for the device.
func (r *Resolver) Resolve(id tr069.DeviceID, swVersion string) (*Variant, error) {
	for _, rule := range r.rules {
		if rule.matches(id, swVersion) {
			return Lookup(rule.Tag)
		}
	}
	return nil, fmt.Errorf("%w: oui=%s product class=%s sw=%s", ErrUnknownDevice, id.OUI, id.ProductClass, swVersion)
}

// Resolve identifies a device with the default rules.
func Resolve(id tr069.DeviceID, swVersion string) (*Variant, error) {
	return NewResolver().Resolve(id, swVersion)
}
