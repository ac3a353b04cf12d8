package tr069

import "strings"

// Kind identifies a message type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInform
	KindEmpty
	KindFault
	KindGetParameterValues
	KindGetParameterValuesResponse
	KindSetParameterValues
	KindSetParameterValuesResponse
	KindAddObject
	KindAddObjectResponse
	KindDeleteObject
	KindDeleteObjectResponse
	KindReboot
	KindRebootResponse
	KindInformResponse
)

// String returns the CWMP method name.
func (k Kind) String() string {
	names := []string{
		"Unknown", "Inform", "Empty", "Fault",
		"GetParameterValues", "GetParameterValuesResponse",
		"SetParameterValues", "SetParameterValuesResponse",
		"AddObject", "AddObjectResponse",
		"DeleteObject", "DeleteObjectResponse",
		"Reboot", "RebootResponse",
		"InformResponse",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Inbound reports whether messages of this kind are sent by the device.
func (k Kind) Inbound() bool {
	switch k {
	case KindInform, KindEmpty, KindFault,
		KindGetParameterValuesResponse, KindSetParameterValuesResponse,
		KindAddObjectResponse, KindDeleteObjectResponse, KindRebootResponse:
		return true
	default:
		return false
	}
}

// Message is any CWMP message.
type Message interface {
	Kind() Kind
}

// Inform event codes.
const (
	EventBootstrap     = "0 BOOTSTRAP"
	EventBoot          = "1 BOOT"
	EventPeriodic      = "2 PERIODIC"
	EventValueChange   = "4 VALUE CHANGE"
	EventConnectionReq = "6 CONNECTION REQUEST"
	EventTransferDone  = "7 TRANSFER COMPLETE"
	EventMReboot       = "M Reboot"
)

// ParamSoftwareVersion is the Inform parameter carrying the firmware version.
const ParamSoftwareVersion = "Device.DeviceInfo.SoftwareVersion"

// DeviceID identifies the CPE sending an Inform.
type DeviceID struct {
	Manufacturer string `cbor:"1,keyasint,omitempty" json:"manufacturer,omitempty"`
	OUI          string `cbor:"2,keyasint" json:"oui"`
	ProductClass string `cbor:"3,keyasint,omitempty" json:"product_class,omitempty"`
	SerialNumber string `cbor:"4,keyasint" json:"serial_number"`
}

// ParameterValue is a CWMP ParameterValueStruct. Type holds the xsi:type,
// e.g. "xsd:string"; it may be empty on inbound values.
type ParameterValue struct {
	Name  string `cbor:"1,keyasint"`
	Type  string `cbor:"2,keyasint,omitempty"`
	Value string `cbor:"3,keyasint"`
}

// Inform opens a CWMP session.
type Inform struct {
	DeviceID   DeviceID         `cbor:"1,keyasint"`
	Events     []string         `cbor:"2,keyasint,omitempty"`
	Parameters []ParameterValue `cbor:"3,keyasint,omitempty"`
	RetryCount int              `cbor:"4,keyasint,omitempty"`
}

func (*Inform) Kind() Kind { return KindInform }

// HasEvent reports whether the Inform carries the event code.
func (m *Inform) HasEvent(code string) bool {
	for _, e := range m.Events {
		if strings.EqualFold(strings.TrimSpace(e), code) {
			return true
		}
	}
	return false
}

// Parameter returns the value of a parameter carried in the Inform.
func (m *Inform) Parameter(name string) (string, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// SoftwareVersion returns the firmware version reported in the Inform.
func (m *Inform) SoftwareVersion() string {
	v, _ := m.Parameter(ParamSoftwareVersion)
	return v
}

// Empty is the empty HTTP POST a CPE sends when it has nothing to say.
type Empty struct{}

func (*Empty) Kind() Kind { return KindEmpty }

// ParameterFault describes why one parameter of a SetParameterValues failed.
type ParameterFault struct {
	Name   string `cbor:"1,keyasint"`
	Code   int    `cbor:"2,keyasint"`
	String string `cbor:"3,keyasint,omitempty"`
}

// Fault is a CWMP SOAP fault sent by the CPE.
type Fault struct {
	Code                     int              `cbor:"1,keyasint"`
	String                   string           `cbor:"2,keyasint,omitempty"`
	SetParameterValuesFaults []ParameterFault `cbor:"3,keyasint,omitempty"`
}

func (*Fault) Kind() Kind { return KindFault }

// GetParameterValues requests values by full or partial path.
type GetParameterValues struct {
	Names []string `cbor:"1,keyasint"`
}

func (*GetParameterValues) Kind() Kind { return KindGetParameterValues }

// GetParameterValuesResponse carries the requested values.
type GetParameterValuesResponse struct {
	Values []ParameterValue `cbor:"1,keyasint"`
}

func (*GetParameterValuesResponse) Kind() Kind { return KindGetParameterValuesResponse }

// SetParameterValues writes values.
type SetParameterValues struct {
	Values       []ParameterValue `cbor:"1,keyasint"`
	ParameterKey string           `cbor:"2,keyasint,omitempty"`
}

func (*SetParameterValues) Kind() Kind { return KindSetParameterValues }

// SetParameterValuesResponse reports the outcome of a write. Status 0 means
// the values were applied.
type SetParameterValuesResponse struct {
	Status int `cbor:"1,keyasint"`
}

func (*SetParameterValuesResponse) Kind() Kind { return KindSetParameterValuesResponse }

// AddObject creates an instance under a multi-instance object. ObjectName
// ends with a dot.
type AddObject struct {
	ObjectName   string `cbor:"1,keyasint"`
	ParameterKey string `cbor:"2,keyasint,omitempty"`
}

func (*AddObject) Kind() Kind { return KindAddObject }

// AddObjectResponse returns the instance number assigned by the device.
type AddObjectResponse struct {
	InstanceNumber int `cbor:"1,keyasint"`
	Status         int `cbor:"2,keyasint"`
}

func (*AddObjectResponse) Kind() Kind { return KindAddObjectResponse }

// DeleteObject removes an object instance. ObjectName ends with the
// instance number and a dot.
type DeleteObject struct {
	ObjectName   string `cbor:"1,keyasint"`
	ParameterKey string `cbor:"2,keyasint,omitempty"`
}

func (*DeleteObject) Kind() Kind { return KindDeleteObject }

// DeleteObjectResponse reports the outcome of a delete.
type DeleteObjectResponse struct {
	Status int `cbor:"1,keyasint"`
}

func (*DeleteObjectResponse) Kind() Kind { return KindDeleteObjectResponse }

// Reboot asks the device to restart.
type Reboot struct {
	CommandKey string `cbor:"1,keyasint,omitempty"`
}

func (*Reboot) Kind() Kind { return KindReboot }

// RebootResponse acknowledges a Reboot.
type RebootResponse struct{}

func (*RebootResponse) Kind() Kind { return KindRebootResponse }

// InformResponse acknowledges an Inform. The transport sends it; the state
// machine never produces one.
type InformResponse struct {
	MaxEnvelopes int `cbor:"1,keyasint,omitempty"`
}

func (*InformResponse) Kind() Kind { return KindInformResponse }

// Compile-time interface satisfaction checks.
var (
	_ Message = (*Inform)(nil)
	_ Message = (*Empty)(nil)
	_ Message = (*Fault)(nil)
	_ Message = (*GetParameterValues)(nil)
	_ Message = (*GetParameterValuesResponse)(nil)
	_ Message = (*SetParameterValues)(nil)
	_ Message = (*SetParameterValuesResponse)(nil)
	_ Message = (*AddObject)(nil)
	_ Message = (*AddObjectResponse)(nil)
	_ Message = (*DeleteObject)(nil)
	_ Message = (*DeleteObjectResponse)(nil)
	_ Message = (*Reboot)(nil)
	_ Message = (*RebootResponse)(nil)
	_ Message = (*InformResponse)(nil)
)
