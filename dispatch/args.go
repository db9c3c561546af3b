package dispatch

import (
	"math"

	"github.com/wippyai/glproxy/errors"
)

// Args is the argument list of a Call. In-process calls carry the caller's
// Go values; calls decoded from the wire carry CBOR's generic forms
// (uint64, int64, float64, []any). The accessors accept both.
type Args []any

func (a Args) at(method Method, i int, want string) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, errors.New(errors.PhaseExecute, errors.KindInvalidArgument).
			Method(method.String()).
			Detail("argument %d: want %s, got %d arguments", i, want, len(a)).
			Build()
	}
	return a[i], nil
}

// Int returns argument i as a signed integer.
func (a Args) Int(method Method, i int) (int64, error) {
	v, err := a.at(method, i, "integer")
	if err != nil {
		return 0, err
	}
	if n, ok := toInt(v); ok {
		return n, nil
	}
	return 0, errors.InvalidArgument(method.String(), i, "integer", v)
}

// Uint32 returns argument i as an unsigned 32-bit value, as used for enums.
func (a Args) Uint32(method Method, i int) (uint32, error) {
	n, err := a.Int(method, i)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, errors.InvalidArgument(method.String(), i, "uint32", n)
	}
	return uint32(n), nil
}

// Uint64 returns argument i as an unsigned 64-bit value, as used for ids.
func (a Args) Uint64(method Method, i int) (uint64, error) {
	v, err := a.at(method, i, "uint64")
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	}
	m, ok := toInt(v)
	if !ok || m < 0 {
		return 0, errors.InvalidArgument(method.String(), i, "uint64", v)
	}
	return uint64(m), nil
}

// Float returns argument i as a float.
func (a Args) Float(method Method, i int) (float64, error) {
	v, err := a.at(method, i, "float")
	if err != nil {
		return 0, err
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return 0, errors.InvalidArgument(method.String(), i, "float", v)
}

// Bool returns argument i as a bool.
func (a Args) Bool(method Method, i int) (bool, error) {
	v, err := a.at(method, i, "bool")
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.InvalidArgument(method.String(), i, "bool", v)
	}
	return b, nil
}

// Text returns argument i as a string.
func (a Args) Text(method Method, i int) (string, error) {
	v, err := a.at(method, i, "string")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.InvalidArgument(method.String(), i, "string", v)
	}
	return s, nil
}

// Bytes returns argument i as a byte slice. A nil argument yields nil.
// The slice aliases caller memory for in-process calls; handlers must copy
// what they keep.
func (a Args) Bytes(method Method, i int) ([]byte, error) {
	v, err := a.at(method, i, "bytes")
	if err != nil {
		return nil, err
	}
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	}
	return nil, errors.InvalidArgument(method.String(), i, "bytes", v)
}

// Floats returns argument i as a float slice.
func (a Args) Floats(method Method, i int) ([]float64, error) {
	v, err := a.at(method, i, "float list")
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []float32:
		out := make([]float64, len(s))
		for j, f := range s {
			out[j] = float64(f)
		}
		return out, nil
	case []float64:
		return append([]float64(nil), s...), nil
	case []int32:
		out := make([]float64, len(s))
		for j, n := range s {
			out[j] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(s))
		for j, e := range s {
			f, ok := toFloat(e)
			if !ok {
				return nil, errors.InvalidArgument(method.String(), i, "float list", e)
			}
			out[j] = f
		}
		return out, nil
	}
	return nil, errors.InvalidArgument(method.String(), i, "float list", v)
}

// Strings returns argument i as a string slice.
func (a Args) Strings(method Method, i int) ([]string, error) {
	v, err := a.at(method, i, "string list")
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), s...), nil
	case []any:
		out := make([]string, len(s))
		for j, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, errors.InvalidArgument(method.String(), i, "string list", e)
			}
			out[j] = str
		}
		return out, nil
	}
	return nil, errors.InvalidArgument(method.String(), i, "string list", v)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	}
	if n, ok := toInt(v); ok {
		return float64(n), true
	}
	return 0, false
}
