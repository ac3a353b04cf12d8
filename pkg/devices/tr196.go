package devices

import (
	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

// DefaultPeriodicInformInterval is the inform interval, in seconds, the
// generic variant configures unless the desired configuration says
// otherwise.
const DefaultPeriodicInformInterval = 5

func tr196Catalog() (*datamodel.Catalog, error) {
	K := datamodel.K
	const fap = FAPServicePath
	entries := []datamodel.Entry{
		entry(K(datamodel.Device), param(DevicePath, true, datamodel.TypeObject)),
		entry(K(datamodel.FAPService), param(fap, true, datamodel.TypeObject)),
		entry(K(datamodel.SWVersion), param(DevicePath+"DeviceInfo.SoftwareVersion", true, datamodel.TypeString)),

		entry(K(datamodel.DuplexModeCapability), param(fap+"Capabilities.LTE.DuplexMode", true, datamodel.TypeString)),
		entry(K(datamodel.BandCapability), param(fap+"Capabilities.LTE.BandsSupported", true, datamodel.TypeString)),

		entry(K(datamodel.EARFCNDL), param(fap+"CellConfig.LTE.RAN.RF.EARFCNDL", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.EARFCNUL), param(fap+"CellConfig.LTE.RAN.RF.EARFCNUL", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.Band), param(fap+"CellConfig.LTE.RAN.RF.FreqBandIndicator", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.PCI), param(fap+"CellConfig.LTE.RAN.RF.PhyCellID", true, datamodel.TypeString)),
		entry(K(datamodel.DLBandwidth), param(fap+"CellConfig.LTE.RAN.RF.DLBandwidth", true, datamodel.TypeString)),
		entry(K(datamodel.ULBandwidth), param(fap+"CellConfig.LTE.RAN.RF.ULBandwidth", true, datamodel.TypeString)),

		entry(K(datamodel.AdminState), param(fap+"FAPControl.LTE.AdminState", true, datamodel.TypeBoolean)),
		entry(K(datamodel.OpState), param(fap+"FAPControl.LTE.OpState", true, datamodel.TypeBoolean)),
		entry(K(datamodel.RFTxStatus), param(fap+"FAPControl.LTE.RFTxStatus", true, datamodel.TypeBoolean)),

		entry(K(datamodel.CellReserved), param(fap+"CellConfig.LTE.RAN.CellRestriction.CellReservedForOperatorUse", true, datamodel.TypeBoolean)),
		entry(K(datamodel.CellBarred), param(fap+"CellConfig.LTE.RAN.CellRestriction.CellBarred", true, datamodel.TypeBoolean)),

		entry(K(datamodel.MMEIP), param(fap+"FAPControl.LTE.Gateway.S1SigLinkServerList", true, datamodel.TypeString)),
		entry(K(datamodel.MMEPort), param(fap+"FAPControl.LTE.Gateway.S1SigLinkPort", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.NumPLMNs), param(fap+"CellConfig.LTE.EPC.PLMNListNumberOfEntries", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.PLMNList), param(fap+"CellConfig.LTE.EPC.PLMNList.", true, datamodel.TypeObject)),
		entry(K(datamodel.TAC), param(fap+"CellConfig.LTE.EPC.TAC", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.PeriodicInformInterval), param(DevicePath+"ManagementServer.PeriodicInformInterval", true, datamodel.TypeUnsignedInt)),
	}
	plmns, opts := plmnEntries(fap)
	entries = append(entries, plmns...)

	opts = append(opts,
		datamodel.WithLoadKeys(K(datamodel.FAPService), K(datamodel.PeriodicInformInterval), K(datamodel.SWVersion)),
		datamodel.WithTransientKeys(K(datamodel.OpState), K(datamodel.RFTxStatus)),
	)
	return datamodel.NewCatalog(TagTR196.String(), entries, opts...)
}

// tr196Postprocess enables the cell and sets a default inform interval.
func tr196Postprocess(desired *snapshot.Snapshot) {
	desired.Set(datamodel.K(datamodel.AdminState), true)
	if !desired.Has(datamodel.K(datamodel.PeriodicInformInterval)) {
		desired.Set(datamodel.K(datamodel.PeriodicInformInterval), DefaultPeriodicInformInterval)
	}
}

func buildTR196() (*Variant, error) {
	cat, err := tr196Catalog()
	if err != nil {
		return nil, err
	}
	table, err := acs.BasicTable()
	if err != nil {
		return nil, err
	}
	v := &Variant{
		Tag: TagTR196,
		Model: acs.Model{
			Name:    TagTR196.String(),
			Catalog: cat,
			Transforms: datamodel.Transforms{
				datamodel.DLBandwidth: datamodel.Bandwidth,
				datamodel.ULBandwidth: datamodel.Bandwidth,
			},
			Postprocessor: snapshot.PostprocessorFunc(tr196Postprocess),
			Table:         table,
		},
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}
