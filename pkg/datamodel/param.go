package datamodel

import "strings"

// WireType is the TR-069 type of a parameter value.
type WireType uint8

const (
	TypeUnknown WireType = iota
	TypeString
	TypeInt
	TypeUnsignedInt
	TypeBoolean
	TypeObject
)

// String returns the XML schema type name without namespace prefix.
func (t WireType) String() string {
	names := []string{"unknown", "string", "int", "unsignedInt", "boolean", "object"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// XSD returns the type as used in the xsi:type attribute of a
// ParameterValueStruct. Objects have no value type and return "".
func (t WireType) XSD() string {
	switch t {
	case TypeString, TypeInt, TypeUnsignedInt, TypeBoolean:
		return "xsd:" + t.String()
	default:
		return ""
	}
}

// ParseWireType parses an xsd type name, with or without the "xsd:" prefix.
func ParseWireType(s string) WireType {
	switch strings.TrimPrefix(s, "xsd:") {
	case "string":
		return TypeString
	case "int":
		return TypeInt
	case "unsignedInt":
		return TypeUnsignedInt
	case "boolean":
		return TypeBoolean
	case "object":
		return TypeObject
	default:
		return TypeUnknown
	}
}

// Param is the catalog entry binding a Key to a device data model path.
type Param struct {
	// Path is the full TR-069 path. Object paths end with a dot.
	Path string

	// Listed is true if the device returns this parameter when its
	// ancestor is fetched by partial path. Parameters that are not listed
	// are write-only from the agent's point of view.
	Listed bool

	// Type is the wire type of the value.
	Type WireType

	// Optional parameters may be absent on some firmware revisions.
	Optional bool
}

// IsObject reports whether the parameter is an object rather than a value.
func (p Param) IsObject() bool {
	return p.Type == TypeObject
}

// ContainerPath returns the path of the multi-instance container holding an
// object instance, e.g. "A.PLMNList.2." returns "A.PLMNList.". This is the
// ObjectName used in AddObject.
func ContainerPath(objectPath string) string {
	trimmed := strings.TrimSuffix(objectPath, ".")
	i := strings.LastIndex(trimmed, ".")
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}
