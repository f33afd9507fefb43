package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExtraKind identifies the value kind held by an ExtraValue.
type ExtraKind int

const (
	ExtraNull ExtraKind = iota
	ExtraString
	ExtraNumber
	ExtraBool
)

// ExtraValue is one entry of an account's extra-data bag. It is a closed sum
// over string, number, bool and null so the persisted format stays
// schema-checkable instead of an open dynamic type.
type ExtraValue struct {
	Kind ExtraKind
	Str  string
	Num  float64
	Bool bool
}

// ExtraString/Number/Bool/Null constructors.

func String(s string) ExtraValue  { return ExtraValue{Kind: ExtraString, Str: s} }
func Number(n float64) ExtraValue { return ExtraValue{Kind: ExtraNumber, Num: n} }
func Bool(b bool) ExtraValue      { return ExtraValue{Kind: ExtraBool, Bool: b} }
func Null() ExtraValue            { return ExtraValue{Kind: ExtraNull} }

// MarshalJSON encodes the value as its plain JSON form.
func (v ExtraValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ExtraString:
		return json.Marshal(v.Str)
	case ExtraNumber:
		return json.Marshal(v.Num)
	case ExtraBool:
		return json.Marshal(v.Bool)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts string, number, bool or null. Anything else
// (objects, arrays) is rejected.
func (v *ExtraValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	default:
		return fmt.Errorf("mmo: unsupported extra value type %T", raw)
	}
	return nil
}

// ExtraData is the typed key/value bag persisted alongside an account.
type ExtraData map[string]ExtraValue

// Value serializes the bag to a JSON text column.
func (d ExtraData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan restores the bag from its JSON text column.
func (d *ExtraData) Scan(src any) error {
	var b []byte
	switch x := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		b = x
	case string:
		b = []byte(x)
	default:
		return fmt.Errorf("mmo: cannot scan %T into ExtraData", src)
	}
	if len(b) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(b, d)
}
