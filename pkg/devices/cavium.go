package devices

import (
	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

func caviumCatalog() (*datamodel.Catalog, error) {
	K := datamodel.K
	const fap = FAPServicePath
	entries := []datamodel.Entry{
		entry(K(datamodel.Device), param(DevicePath, true, datamodel.TypeObject)),
		entry(K(datamodel.FAPService), param(fap, true, datamodel.TypeObject)),

		entry(K(datamodel.GPSStatus), param(DevicePath+"FAP.GPS.ContinuousGPSStatus.GotFix", true, datamodel.TypeBoolean)),
		entry(K(datamodel.GPSLat), param(DevicePath+"FAP.GPS.LockedLatitude", true, datamodel.TypeInt)),
		entry(K(datamodel.GPSLong), param(DevicePath+"FAP.GPS.LockedLongitude", true, datamodel.TypeInt)),
		entry(K(datamodel.SWVersion), param(DevicePath+"DeviceInfo.SoftwareVersion", true, datamodel.TypeString)),

		entry(K(datamodel.DuplexModeCapability), param(fap+"Capabilities.LTE.DuplexMode", true, datamodel.TypeString)),
		entry(K(datamodel.BandCapability), param(fap+"Capabilities.LTE.BandsSupported", true, datamodel.TypeUnsignedInt)),

		entry(K(datamodel.EARFCNDL), param(fap+"CellConfig.LTE.RAN.RF.EARFCNDL", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.EARFCNUL), param(fap+"CellConfig.LTE.RAN.RF.EARFCNUL", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.Band), param(fap+"CellConfig.LTE.RAN.RF.FreqBandIndicator", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.PCI), param(fap+"CellConfig.LTE.RAN.RF.PhyCellID", true, datamodel.TypeString)),
		entry(K(datamodel.DLBandwidth), param(fap+"CellConfig.LTE.RAN.RF.DLBandwidth", true, datamodel.TypeString)),
		entry(K(datamodel.ULBandwidth), param(fap+"CellConfig.LTE.RAN.RF.ULBandwidth", true, datamodel.TypeString)),

		entry(K(datamodel.AdminState), param(fap+"FAPControl.LTE.AdminState", false, datamodel.TypeBoolean)),
		entry(K(datamodel.OpState), param(fap+"FAPControl.LTE.OpState", true, datamodel.TypeBoolean)),
		entry(K(datamodel.RFTxStatus), param(fap+"FAPControl.LTE.RFTxStatus", true, datamodel.TypeBoolean)),

		entry(K(datamodel.CellReserved), param(fap+"CellConfig.LTE.RAN.CellRestriction.CellReservedForOperatorUse", true, datamodel.TypeBoolean)),
		entry(K(datamodel.CellBarred), param(fap+"CellConfig.LTE.RAN.CellRestriction.CellBarred", true, datamodel.TypeBoolean)),

		entry(K(datamodel.MMEIP), param(fap+"FAPControl.LTE.Gateway.S1SigLinkServerList", true, datamodel.TypeString)),
		entry(K(datamodel.MMEPort), param(fap+"FAPControl.LTE.Gateway.S1SigLinkPort", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.NumPLMNs), param(fap+"CellConfig.LTE.EPC.PLMNListNumberOfEntries", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.PLMNList), param(fap+"CellConfig.LTE.EPC.PLMNList.", true, datamodel.TypeObject)),
		entry(K(datamodel.TAC), param(fap+"CellConfig.LTE.EPC.TAC", true, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.IPSecEnable), param(DevicePath+"IPsec.Enable", false, datamodel.TypeBoolean)),
		entry(K(datamodel.PeriodicInformInterval), param(DevicePath+"ManagementServer.PeriodicInformInterval", false, datamodel.TypeUnsignedInt)),

		entry(K(datamodel.PerfMgmtEnable), param(fap+"PerfMgmt.Config.1.Enable", false, datamodel.TypeBoolean)),
		entry(K(datamodel.PerfMgmtUploadInterval), param(fap+"PerfMgmt.Config.1.PeriodicUploadInterval", false, datamodel.TypeUnsignedInt)),
		entry(K(datamodel.PerfMgmtUploadURL), param(fap+"PerfMgmt.Config.1.URL", false, datamodel.TypeString)),
	}
	plmns, opts := plmnEntries(fap)
	entries = append(entries, plmns...)

	opts = append(opts,
		datamodel.WithLoadKeys(K(datamodel.Device)),
		datamodel.WithTransientKeys(
			K(datamodel.GPSStatus),
			K(datamodel.GPSLat),
			K(datamodel.GPSLong),
			K(datamodel.OpState),
			K(datamodel.RFTxStatus),
		),
	)
	return datamodel.NewCatalog(TagCavium.String(), entries, opts...)
}

func caviumTransforms() datamodel.Transforms {
	return datamodel.Transforms{
		datamodel.DLBandwidth: datamodel.Bandwidth,
		datamodel.ULBandwidth: datamodel.Bandwidth,
		datamodel.GPSLat:      datamodel.GPSMicrodegrees,
		datamodel.GPSLong:     datamodel.GPSMicrodegrees,
	}
}

// caviumPostprocess keeps the cell barred and administratively enabled.
func caviumPostprocess(desired *snapshot.Snapshot) {
	desired.Set(datamodel.K(datamodel.CellBarred), true)
	desired.Set(datamodel.K(datamodel.AdminState), true)
}

// caviumTable is the basic flow with the cell disabled while its
// configuration changes:
//
//	wait_get_transient_params -> disable_admin -> wait_disable_admin
//	  -> delete_objs -> add_objs -> set_params -> wait_set_params
//	  -> enable_admin -> wait_enable_admin -> get_transient_params
func caviumTable() (*acs.Table, error) {
	b := acs.Branches{
		Delete: acs.StateDisableAdmin,
		Add:    acs.StateDisableAdmin,
		Set:    acs.StateDisableAdmin,
		Skip:   acs.StateGetTransientParams,

		Exclude: []datamodel.Key{datamodel.K(datamodel.AdminState)},
	}
	states := acs.BasicStates()
	states[acs.StateWaitGetTransientParams] = acs.NewWaitGetTransientParameters(acs.TransientBranches{
		Get:      acs.StateGetParams,
		GetObj:   acs.StateGetObjParams,
		Branches: b,
	})
	states[acs.StateGetObjParams] = acs.NewGetObjectParameters(acs.StateWaitGetObjParams, b)
	states[acs.StateWaitGetObjParams] = acs.NewWaitGetObjectParameters(b)
	states[acs.StateDisableAdmin] = NewSetAdminState(false, acs.StateWaitDisableAdmin)
	states[acs.StateWaitDisableAdmin] = NewWaitSetAdminState(acs.StateDeleteObjs)
	states[acs.StateSetParams] = acs.NewSetParameterValuesNotAdmin(acs.StateWaitSetParams, acs.StateEnableAdmin)
	states[acs.StateWaitSetParams] = acs.NewWaitSetParameterValues(acs.StateEnableAdmin)
	states[acs.StateEnableAdmin] = NewSetAdminState(true, acs.StateWaitEnableAdmin)
	states[acs.StateWaitEnableAdmin] = NewWaitSetAdminState(acs.StateGetTransientParams)
	return acs.NewTable(acs.DefaultRoles(), states)
}

func buildCavium() (*Variant, error) {
	cat, err := caviumCatalog()
	if err != nil {
		return nil, err
	}
	table, err := caviumTable()
	if err != nil {
		return nil, err
	}
	v := &Variant{
		Tag: TagCavium,
		Model: acs.Model{
			Name:          TagCavium.String(),
			Catalog:       cat,
			Transforms:    caviumTransforms(),
			Postprocessor: snapshot.PostprocessorFunc(caviumPostprocess),
			Table:         table,
		},
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}
