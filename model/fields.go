package model

import (
	"strconv"
)

// FieldKind is the declared type of a custom field.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldBool
	FieldInt
)

// String returns "string", "bool" or "int".
func (k FieldKind) String() string {
	switch k {
	case FieldBool:
		return "bool"
	case FieldInt:
		return "int"
	default:
		return "string"
	}
}

// FieldValue is a typed custom field value. The zero value is an empty string.
type FieldValue struct {
	kind FieldKind
	s    string
	b    bool
	i    int
}

// StringValue returns a string-typed value.
func StringValue(s string) FieldValue { return FieldValue{kind: FieldString, s: s} }

// BoolValue returns a bool-typed value.
func BoolValue(b bool) FieldValue { return FieldValue{kind: FieldBool, b: b} }

// IntValue returns an int-typed value.
func IntValue(i int) FieldValue { return FieldValue{kind: FieldInt, i: i} }

// Kind returns the declared type.
func (v FieldValue) Kind() FieldKind { return v.kind }

// Str returns the string payload. It is empty unless Kind is FieldString.
func (v FieldValue) Str() string { return v.s }

// Bool returns the bool payload. It is false unless Kind is FieldBool.
func (v FieldValue) Bool() bool { return v.b }

// Int returns the int payload. It is 0 unless Kind is FieldInt.
func (v FieldValue) Int() int { return v.i }

// Any returns the payload as string, bool or int.
func (v FieldValue) Any() any {
	switch v.kind {
	case FieldBool:
		return v.b
	case FieldInt:
		return v.i
	default:
		return v.s
	}
}

// String formats the value for display.
func (v FieldValue) String() string {
	switch v.kind {
	case FieldBool:
		return strconv.FormatBool(v.b)
	case FieldInt:
		return strconv.Itoa(v.i)
	default:
		return v.s
	}
}

// Field is one named custom field.
type Field struct {
	Name  string
	Value FieldValue
}

// Fields is an ordered custom field container. Names are unique.
type Fields []Field

// Get returns the value of the named field.
func (f Fields) Get(name string) (FieldValue, bool) {
	for _, fd := range f {
		if fd.Name == name {
			return fd.Value, true
		}
	}
	return FieldValue{}, false
}

// Has reports whether the named field is present.
func (f Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Set replaces the named field in place or appends it.
func (f *Fields) Set(name string, v FieldValue) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = v
			return
		}
	}
	*f = append(*f, Field{Name: name, Value: v})
}

// Delete removes the named field, keeping the order of the others.
func (f *Fields) Delete(name string) {
	for i := range *f {
		if (*f)[i].Name == name {
			*f = append((*f)[:i], (*f)[i+1:]...)
			return
		}
	}
}

// Names returns the field names in order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, fd := range f {
		names[i] = fd.Name
	}
	return names
}

// Flag reports whether the named field is a bool set to true.
func (f Fields) Flag(name string) bool {
	v, ok := f.Get(name)
	return ok && v.Kind() == FieldBool && v.Bool()
}
