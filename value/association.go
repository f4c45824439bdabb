package value

import "github.com/gobuffalo/nulls"

// Association is the capability an Object value must expose so the evaluator
// can navigate into it without reflecting into the concrete host type.
//
// A small explicit interface rather than a reflection-based property lookup:
// caller-supplied data types participate by implementing three methods, not
// by inheriting a framework base type.
type Association interface {
	// Get returns the value stored under property, and whether it was found.
	Get(property string) (Value, bool)

	// Set stores v under property.
	Set(property string, v Value)

	// Keys returns the property names currently stored, in insertion order.
	Keys() []string
}

// MapAssociation is a ready-made Association backed by a map, with deterministic
// (insertion-order) key iteration the way an edge-device context dump needs.
type MapAssociation struct {
	values map[string]Value
	keys   []string
}

// NewMapAssociation returns an empty MapAssociation.
func NewMapAssociation() *MapAssociation {
	return &MapAssociation{values: map[string]Value{}}
}

// Get implements Association.
func (m *MapAssociation) Get(property string) (Value, bool) {
	v, ok := m.values[property]
	return v, ok
}

// Set implements Association.
func (m *MapAssociation) Set(property string, v Value) {
	if m.values == nil {
		m.values = map[string]Value{}
	}
	if _, exists := m.values[property]; !exists {
		m.keys = append(m.keys, property)
	}
	m.values[property] = v
}

// Keys implements Association.
func (m *MapAssociation) Keys() []string {
	return m.keys
}

// SetNullableString stores n as String or Null depending on n.Valid. This lets a
// caller populate a Context straight from a nullable database column, the way
// gobuffalo/nulls is used elsewhere to render "value or absent" fields.
func (m *MapAssociation) SetNullableString(property string, n nulls.String) {
	if !n.Valid {
		m.Set(property, Null())
		return
	}
	m.Set(property, Str(n.String))
}

// SetNullableInt64 stores n as Integer or Null depending on n.Valid.
func (m *MapAssociation) SetNullableInt64(property string, n nulls.Int64) {
	if !n.Valid {
		m.Set(property, Null())
		return
	}
	m.Set(property, Int(n.Int64))
}

// SetNullableFloat64 stores n as Rational or Null depending on n.Valid.
func (m *MapAssociation) SetNullableFloat64(property string, n nulls.Float64) {
	if !n.Valid {
		m.Set(property, Null())
		return
	}
	m.Set(property, Rational(n.Float64))
}
