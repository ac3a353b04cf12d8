package tr069

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder mode for CWMP envelopes.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for CWMP envelopes.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Codec errors.
var (
	ErrUnknownKind = errors.New("unknown message kind")
	ErrNilMessage  = errors.New("nil message")
)

// Envelope is the wire form of a Message: the kind tag plus the encoded
// body.
type Envelope struct {
	Kind Kind            `cbor:"1,keyasint"`
	Body cbor.RawMessage `cbor:"2,keyasint,omitempty"`
}

// New returns a zero message of the given kind.
func New(k Kind) (Message, error) {
	switch k {
	case KindInform:
		return &Inform{}, nil
	case KindEmpty:
		return &Empty{}, nil
	case KindFault:
		return &Fault{}, nil
	case KindGetParameterValues:
		return &GetParameterValues{}, nil
	case KindGetParameterValuesResponse:
		return &GetParameterValuesResponse{}, nil
	case KindSetParameterValues:
		return &SetParameterValues{}, nil
	case KindSetParameterValuesResponse:
		return &SetParameterValuesResponse{}, nil
	case KindAddObject:
		return &AddObject{}, nil
	case KindAddObjectResponse:
		return &AddObjectResponse{}, nil
	case KindDeleteObject:
		return &DeleteObject{}, nil
	case KindDeleteObjectResponse:
		return &DeleteObjectResponse{}, nil
	case KindReboot:
		return &Reboot{}, nil
	case KindRebootResponse:
		return &RebootResponse{}, nil
	case KindInformResponse:
		return &InformResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
}

// Encode wraps msg in an envelope and encodes it to CBOR.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}
	body, err := encMode.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msg.Kind(), err)
	}
	return encMode.Marshal(Envelope{Kind: msg.Kind(), Body: body})
}

// Decode decodes an envelope produced by Encode.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return env.Open()
}

// ReadMessage reads one encoded envelope from r.
func ReadMessage(r io.Reader) (Message, error) {
	var env Envelope
	if err := decMode.NewDecoder(r).Decode(&env); err != nil {
		return nil, err
	}
	return env.Open()
}

// Open decodes the envelope body into a message of the tagged kind.
func (e Envelope) Open() (Message, error) {
	msg, err := New(e.Kind)
	if err != nil {
		return nil, err
	}
	if len(e.Body) > 0 {
		if err := decMode.Unmarshal(e.Body, msg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.Kind, err)
		}
	}
	return msg, nil
}
