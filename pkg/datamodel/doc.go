// Package datamodel describes eNodeB configuration in device-neutral terms
// and maps it onto a device's TR-069 parameter tree.
//
// Configuration attributes are identified by a Key: a Name from a closed set,
// plus an instance index for attributes that live under a multi-instance
// object such as the PLMN list. A Catalog binds each Key supported by a
// device type to a Param describing its data model path, wire type and
// whether it is returned by a GetParameterValues on a partial path.
//
// Values crossing the device boundary go through Transforms, which convert
// between the canonical representation used in snapshots and the
// representation a particular device expects on the wire.
package datamodel
