package intent

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

// Intent errors.
var (
	ErrInvalidIntent = errors.New("invalid intent")
	ErrTooManyPLMNs  = errors.New("too many PLMNs")
)

var plmnIDPattern = regexp.MustCompile(`^[0-9]{5,6}$`)

// Build parses an intent document into a desired configuration. maxPLMNs
// bounds the PLMN list; zero means no PLMNs are allowed.
func Build(doc []byte, maxPLMNs int) (*snapshot.Snapshot, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidIntent)
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidIntent)
	}

	b := builder{root: root, out: snapshot.New()}
	b.radio()
	b.integer("tac", datamodel.TAC)
	b.str("mme.ip", datamodel.MMEIP)
	b.integer("mme.port", datamodel.MMEPort)
	b.boolean("cell_reserved", datamodel.CellReserved)
	b.boolean("ipsec", datamodel.IPSecEnable)
	b.integer("periodic_inform_interval", datamodel.PeriodicInformInterval)
	b.boolean("perf_mgmt.enable", datamodel.PerfMgmtEnable)
	b.integer("perf_mgmt.upload_interval", datamodel.PerfMgmtUploadInterval)
	b.str("perf_mgmt.url", datamodel.PerfMgmtUploadURL)
	b.plmns(maxPLMNs)

	if b.err != nil {
		return nil, b.err
	}
	return b.out, nil
}

// Load reads and builds an intent file.
func Load(path string, maxPLMNs int) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Build(data, maxPLMNs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// builder records the first error and ignores later fields.
type builder struct {
	root gjson.Result
	out  *snapshot.Snapshot
	err  error
}

func (b *builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidIntent}, args...)...)
	}
}

func (b *builder) get(path string) (gjson.Result, bool) {
	r := b.root.Get(path)
	return r, r.Exists() && r.Type != gjson.Null
}

func (b *builder) integer(path string, name datamodel.Name) {
	r, ok := b.get(path)
	if !ok {
		return
	}
	if n, ok := unsigned(r); ok {
		b.out.Set(datamodel.K(name), n)
		return
	}
	b.fail("%s must be a non-negative integer, got %s", path, r.Raw)
}

func (b *builder) str(path string, name datamodel.Name) {
	r, ok := b.get(path)
	if !ok {
		return
	}
	if r.Type != gjson.String {
		b.fail("%s must be a string, got %s", path, r.Raw)
		return
	}
	b.out.Set(datamodel.K(name), r.Str)
}

func (b *builder) boolean(path string, name datamodel.Name) {
	r, ok := b.get(path)
	if !ok {
		return
	}
	if r.Type != gjson.True && r.Type != gjson.False {
		b.fail("%s must be a boolean, got %s", path, r.Raw)
		return
	}
	b.out.Set(datamodel.K(name), r.Bool())
}

// radio derives band and uplink EARFCN from the downlink EARFCN and sets
// both bandwidths.
func (b *builder) radio() {
	if r, ok := b.get("earfcndl"); ok {
		dl, ok := unsigned(r)
		if !ok {
			b.fail("earfcndl must be a non-negative integer, got %s", r.Raw)
			return
		}
		band, err := BandForEARFCN(dl)
		if err != nil {
			b.fail("%v", err)
			return
		}
		b.out.Set(datamodel.K(datamodel.EARFCNDL), dl)
		b.out.Set(datamodel.K(datamodel.Band), band.ID)
		// Downlink-only bands carry no uplink EARFCN.
		if ul, err := band.UplinkEARFCN(dl); err == nil {
			b.out.Set(datamodel.K(datamodel.EARFCNUL), ul)
		}
	}

	if r, ok := b.get("pci"); ok {
		pci, ok := unsigned(r)
		if !ok || pci > 503 {
			b.fail("pci must be in 0..503, got %s", r.Raw)
			return
		}
		b.out.Set(datamodel.K(datamodel.PCI), pci)
	}

	if r, ok := b.get("bandwidth_mhz"); ok {
		if r.Type != gjson.Number {
			b.fail("bandwidth_mhz must be a number, got %s", r.Raw)
			return
		}
		if _, err := datamodel.Bandwidth.ToDevice(r.Float()); err != nil {
			b.fail("bandwidth_mhz: %v", err)
			return
		}
		b.out.Set(datamodel.K(datamodel.DLBandwidth), r.Float())
		b.out.Set(datamodel.K(datamodel.ULBandwidth), r.Float())
	}
}

func (b *builder) plmns(maxPLMNs int) {
	r, ok := b.get("plmns")
	if !ok {
		return
	}
	if !r.IsArray() {
		b.fail("plmns must be an array")
		return
	}
	list := r.Array()
	if len(list) > maxPLMNs {
		if b.err == nil {
			b.err = fmt.Errorf("%w: %d given, device supports %d", ErrTooManyPLMNs, len(list), maxPLMNs)
		}
		return
	}

	for i, p := range list {
		n := i + 1
		id := p.Get("plmnid")
		if id.Type != gjson.String || !plmnIDPattern.MatchString(id.Str) {
			b.fail("plmns[%d].plmnid must be 5 or 6 digits, got %s", i, id.Raw)
			return
		}
		b.out.Set(datamodel.Instance(datamodel.PLMN, n), true)
		b.out.Set(datamodel.Instance(datamodel.PLMNID, n), id.Str)
		b.out.Set(datamodel.Instance(datamodel.PLMNEnable, n), boolOr(p.Get("enable"), true))
		b.out.Set(datamodel.Instance(datamodel.PLMNPrimary, n), boolOr(p.Get("primary"), n == 1))
		b.out.Set(datamodel.Instance(datamodel.PLMNCellReserved, n), boolOr(p.Get("cell_reserved"), false))
	}
	b.out.Set(datamodel.K(datamodel.NumPLMNs), len(list))
}

func unsigned(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	f := r.Float()
	n := int(r.Int())
	if f < 0 || float64(n) != f {
		return 0, false
	}
	return n, true
}

func boolOr(r gjson.Result, def bool) bool {
	if r.Type == gjson.True || r.Type == gjson.False {
		return r.Bool()
	}
	return def
}
