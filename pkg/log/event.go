package log

import (
	"time"

	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Event is one captured protocol event. CBOR encoding uses integer keys.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the device session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow relative to the agent.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address, when known.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceID is the serial number of the eNodeB.
	DeviceID string `cbor:"7,keyasint,omitempty"`

	// DeviceType is the resolved device variant.
	DeviceType string `cbor:"8,keyasint,omitempty"`

	// One of these is set.
	Message     *MessageEvent     `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn is a message from the device.
	DirectionIn Direction = 0
	// DirectionOut is a message to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerTransport is the HTTP/SOAP ingress.
	LayerTransport Layer = 0
	// LayerMessage is the decoded CWMP message layer.
	LayerMessage Layer = 1
	// LayerStateMachine is the per-device protocol state machine.
	LayerStateMachine Layer = 2
	// LayerService is the session host.
	LayerService Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerMessage:
		return "MESSAGE"
	case LayerStateMachine:
		return "STATE_MACHINE"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage is a CWMP message.
	CategoryMessage Category = 0
	// CategoryState is a state transition.
	CategoryState Category = 1
	// CategoryError is an error or fault.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MessageEvent captures a CWMP message.
type MessageEvent struct {
	// Kind is the CWMP method.
	Kind tr069.Kind `cbor:"1,keyasint"`

	// Parameters lists the parameter or object names the message carries.
	Parameters []string `cbor:"2,keyasint,omitempty"`

	// Status is the status or fault code, for responses and faults.
	Status *int `cbor:"3,keyasint,omitempty"`

	// Envelope is the encoded message (see tr069.Encode).
	Envelope []byte `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures a state transition.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change, if available.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityMachine is the protocol state machine of a device.
	StateEntityMachine StateEntity = 0
	// StateEntitySession is the session lifecycle in the host.
	StateEntitySession StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityMachine:
		return "MACHINE"
	case StateEntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the CWMP fault code, if any.
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context is the state the machine was in.
	Context string `cbor:"4,keyasint,omitempty"`
}

// NewMessageEvent builds the capture form of a CWMP message.
func NewMessageEvent(msg tr069.Message) *MessageEvent {
	ev := &MessageEvent{Kind: msg.Kind()}
	switch m := msg.(type) {
	case *tr069.GetParameterValues:
		ev.Parameters = append(ev.Parameters, m.Names...)
	case *tr069.GetParameterValuesResponse:
		for _, v := range m.Values {
			ev.Parameters = append(ev.Parameters, v.Name)
		}
	case *tr069.SetParameterValues:
		for _, v := range m.Values {
			ev.Parameters = append(ev.Parameters, v.Name)
		}
	case *tr069.SetParameterValuesResponse:
		ev.Status = intPtr(m.Status)
	case *tr069.AddObject:
		ev.Parameters = []string{m.ObjectName}
	case *tr069.AddObjectResponse:
		ev.Status = intPtr(m.Status)
	case *tr069.DeleteObject:
		ev.Parameters = []string{m.ObjectName}
	case *tr069.DeleteObjectResponse:
		ev.Status = intPtr(m.Status)
	case *tr069.Fault:
		ev.Status = intPtr(m.Code)
	}
	if data, err := tr069.Encode(msg); err == nil {
		ev.Envelope = data
	}
	return ev
}

func intPtr(v int) *int {
	return &v
}
