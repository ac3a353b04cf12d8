package devices

import (
	"fmt"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
)

// Data model roots.
const (
	DevicePath     = "Device."
	FAPServicePath = DevicePath + "Services.FAPService.1."
)

// MaxPLMNs is the number of PLMN list instances every variant describes.
const MaxPLMNs = 6

func param(path string, listed bool, t datamodel.WireType) datamodel.Param {
	return datamodel.Param{Path: path, Listed: listed, Type: t}
}

func entry(k datamodel.Key, p datamodel.Param) datamodel.Entry {
	return datamodel.Entry{Key: k, Param: p}
}

// plmnEntries describes the PLMN list instances under a FAPService and
// declares each instance as a managed object.
func plmnEntries(fapService string) ([]datamodel.Entry, []datamodel.CatalogOption) {
	var (
		entries []datamodel.Entry
		opts    []datamodel.CatalogOption
	)
	for i := 1; i <= MaxPLMNs; i++ {
		base := fmt.Sprintf("%sCellConfig.LTE.EPC.PLMNList.%d.", fapService, i)
		children := []datamodel.Entry{
			entry(datamodel.Instance(datamodel.PLMNCellReserved, i), param(base+"CellReservedForOperatorUse", true, datamodel.TypeBoolean)),
			entry(datamodel.Instance(datamodel.PLMNEnable, i), param(base+"Enable", true, datamodel.TypeBoolean)),
			entry(datamodel.Instance(datamodel.PLMNPrimary, i), param(base+"IsPrimary", true, datamodel.TypeBoolean)),
			entry(datamodel.Instance(datamodel.PLMNID, i), param(base+"PLMNID", true, datamodel.TypeString)),
		}
		obj := datamodel.Instance(datamodel.PLMN, i)
		entries = append(entries, entry(obj, param(base, true, datamodel.TypeObject)))
		entries = append(entries, children...)

		keys := make([]datamodel.Key, 0, len(children))
		for _, c := range children {
			keys = append(keys, c.Key)
		}
		opts = append(opts, datamodel.WithObject(obj, keys...))
	}
	return entries, append(opts, datamodel.WithMaxPLMNs(MaxPLMNs))
}
