package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// The dashboard historically posted numeric fields as strings ("1200",
// "25.5", ""). The coercion types below accept both JSON numbers and
// quoted numeric strings so old payloads keep working.

// Amount is a float64 that also unmarshals from a quoted numeric string.
// Empty strings decode to zero.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler for Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s, isString := unquote(data)
	if isString {
		if s == "" {
			*a = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*a = Amount(v)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*a = Amount(v)
	return nil
}

// Count is an int that also unmarshals from a quoted numeric string.
// Empty strings decode to zero; fractional input is truncated.
type Count int

// UnmarshalJSON implements json.Unmarshaler for Count.
func (c *Count) UnmarshalJSON(data []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = Count(int(a))
	return nil
}

// NullFloat is a nullable float64 slot. JSON null and the empty string
// both decode to nil; marshaling a nil slot emits null.
type NullFloat struct {
	Float *float64
}

// NF wraps a plain pointer in a NullFloat.
func NF(f *float64) NullFloat {
	return NullFloat{Float: f}
}

// MarshalJSON implements json.Marshaler for NullFloat.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if n.Float == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(*n.Float, 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler for NullFloat.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Float = nil
		return nil
	}
	s, isString := unquote(data)
	if isString && s == "" {
		n.Float = nil
		return nil
	}
	var a Amount
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	v := float64(a)
	n.Float = &v
	return nil
}

// NullInt is a nullable int slot with the same coercion rules.
type NullInt struct {
	Int *int
}

// NI wraps a plain pointer in a NullInt.
func NI(i *int) NullInt {
	return NullInt{Int: i}
}

// MarshalJSON implements json.Marshaler for NullInt.
func (n NullInt) MarshalJSON() ([]byte, error) {
	if n.Int == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(*n.Int)), nil
}

// UnmarshalJSON implements json.Unmarshaler for NullInt.
func (n *NullInt) UnmarshalJSON(data []byte) error {
	var f NullFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	if f.Float == nil {
		n.Int = nil
		return nil
	}
	v := int(*f.Float)
	n.Int = &v
	return nil
}

// unquote strips surrounding double quotes. The second return value
// reports whether data was a JSON string at all.
func unquote(data []byte) (string, bool) {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		return string(data[1 : len(data)-1]), true
	}
	return "", false
}
