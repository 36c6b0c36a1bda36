// Package record models the loosely structured student records consumed by the
// risk engine. Field values arrive as JSON with heterogeneous types, so they are
// represented as a small tagged union instead of interface{} probing.
package record

import "encoding/json"

// Kind discriminates the variants a field value can take.
type Kind int

const (
	// Absent marks a field that is missing or explicitly null.
	Absent Kind = iota
	// Number is any JSON number.
	Number
	// Text is a JSON string.
	Text
	// Boolean is a JSON bool.
	Boolean
)

// Value is a single field value from a raw student record.
type Value struct {
	kind Kind
	num  float64
	text string
	b    bool
}

// None returns the absent value.
func None() Value { return Value{kind: Absent} }

// Num wraps a numeric value.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// Str wraps a string value.
func Str(s string) Value { return Value{kind: Text, text: s} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: Boolean, b: b} }

// Kind reports the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is missing or null.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// Float returns the numeric payload. Valid only for Number values.
func (v Value) Float() float64 { return v.num }

// Text returns the string payload. Valid only for Text values.
func (v Value) Text() string { return v.text }

// IsTrue returns the boolean payload. Valid only for Boolean values.
func (v Value) IsTrue() bool { return v.b }

// Record is a raw student record: field name to heterogeneous value. It is
// supplied per request and never mutated by the engine.
type Record map[string]Value

// Get returns the value for key, or the absent value when the key is missing.
func (r Record) Get(key string) Value {
	if v, ok := r[key]; ok {
		return v
	}
	return None()
}

// Has reports whether the key exists with a non-absent value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && !v.IsAbsent()
}

// NumberOr returns the numeric value for key, or def when the field is missing,
// null, or not a number.
func (r Record) NumberOr(key string, def float64) float64 {
	v := r.Get(key)
	if v.kind == Number {
		return v.num
	}
	return def
}

// TextOr returns the string value for key, or def otherwise.
func (r Record) TextOr(key string, def string) string {
	v := r.Get(key)
	if v.kind == Text {
		return v.text
	}
	return def
}

// FromMap converts a generic JSON-decoded map into a Record. Unsupported value
// types (nested objects, arrays) map to Absent.
func FromMap(fields map[string]any) Record {
	rec := make(Record, len(fields))
	for key, raw := range fields {
		rec[key] = fromAny(raw)
	}
	return rec
}

func fromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return None()
	case float64:
		return Num(v)
	case float32:
		return Num(float64(v))
	case int:
		return Num(float64(v))
	case int64:
		return Num(float64(v))
	case uint:
		return Num(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return Num(f)
		}
		return Str(v.String())
	case string:
		return Str(v)
	case bool:
		return Bool(v)
	default:
		return None()
	}
}

// MarshalJSON renders the value as its underlying JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Number:
		return json.Marshal(v.num)
	case Text:
		return json.Marshal(v.text)
	case Boolean:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar into the matching variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}
