package datamodel

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value errors.
var (
	ErrValueType   = errors.New("invalid value type")
	ErrValueSyntax = errors.New("invalid value syntax")
)

// ParseWire converts the string form of a parameter value into its natural
// Go type: string, int or bool.
func ParseWire(t WireType, raw string) (any, error) {
	switch t {
	case TypeString:
		return raw, nil
	case TypeInt, TypeUnsignedInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrValueSyntax, t, raw)
		}
		if t == TypeUnsignedInt && n < 0 {
			return nil, fmt.Errorf("%w: %s %q", ErrValueSyntax, t, raw)
		}
		return n, nil
	case TypeBoolean:
		b, err := ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: cannot parse %s value", ErrValueType, t)
	}
}

// FormatWire renders a value for a SetParameterValues request.
func FormatWire(t WireType, v any) (string, error) {
	switch t {
	case TypeString:
		return Canonical(v), nil
	case TypeInt, TypeUnsignedInt:
		n, err := ToInt(v)
		if err != nil {
			return "", err
		}
		if t == TypeUnsignedInt && n < 0 {
			return "", fmt.Errorf("%w: negative %s %d", ErrValueType, t, n)
		}
		return strconv.Itoa(n), nil
	case TypeBoolean:
		b, err := ToBool(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	default:
		return "", fmt.Errorf("%w: cannot format %s value", ErrValueType, t)
	}
}

// ParseBool accepts the boolean spellings devices use in practice.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: boolean %q", ErrValueSyntax, raw)
	}
}

// ToInt converts integral values of any numeric type, or their string form.
func ToInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: integer %q", ErrValueSyntax, x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %T is not an integer", ErrValueType, v)
	}
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %v is not integral", ErrValueType, f)
	}
	return int(f), nil
}

// ToFloat converts numeric values, or their string form, to float64.
func ToFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: number %q", ErrValueSyntax, x)
		}
		return f, nil
	default:
		n, err := ToInt(v)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
}

// ToBool converts a bool or its string form.
func ToBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return ParseBool(x)
	case int:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	}
	return false, fmt.Errorf("%w: %T %v is not a boolean", ErrValueType, v, v)
}

// Canonical returns the comparison form of a value. Integral floats and
// integers render identically, so 20, 20.0 and "20" compare equal.
func Canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		if n, err := ToInt(v); err == nil {
			return strconv.Itoa(n)
		}
		return fmt.Sprint(v)
	}
}

// ValuesEqual compares two canonical values by their comparison form.
func ValuesEqual(a, b any) bool {
	return Canonical(a) == Canonical(b)
}
