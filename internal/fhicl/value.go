package fhicl

import (
	"strconv"
	"strings"
)

// Value is a rendered parameter value. The zero Value is Unset.
type Value struct {
	text string
	set  bool
}

// Unset marks an optional parameter as not supplied.
var Unset = Value{}

// String returns a string value.
func String(s string) Value {
	return Value{text: s, set: true}
}

// Raw returns a value holding pre-rendered text, such as a nested document.
func Raw(s string) Value {
	return Value{text: s, set: true}
}

// Int returns a base-10 integer value.
func Int(n int) Value {
	return Value{text: strconv.Itoa(n), set: true}
}

// Bool returns a value rendered as true or false.
func Bool(b bool) Value {
	return Value{text: strconv.FormatBool(b), set: true}
}

// Toggle returns onText when on is true and offText otherwise.
func Toggle(on bool, onText, offText string) Value {
	if on {
		return String(onText)
	}
	return String(offText)
}

// IntList returns a list value such as "[ 1, 2, 3]".
func IntList(items []int) Value {
	parts := make([]string, len(items))
	for i, n := range items {
		parts[i] = strconv.Itoa(n)
	}
	return Value{text: FormatList(parts), set: true}
}

// StringList returns a list value such as "[ TOY1, TOY2]". Items are not
// quoted.
func StringList(items []string) Value {
	return Value{text: FormatList(items), set: true}
}

// OptionalInt returns Int(*n), or Unset when n is nil.
func OptionalInt(n *int) Value {
	if n == nil {
		return Unset
	}
	return Int(*n)
}

// OptionalBool returns Bool(*b), or Unset when b is nil.
func OptionalBool(b *bool) Value {
	if b == nil {
		return Unset
	}
	return Bool(*b)
}

// IsUnset reports whether v is the Unset sentinel.
func (v Value) IsUnset() bool {
	return !v.set
}

// String returns the rendered text of v. Unset renders as "".
func (v Value) String() string {
	return v.text
}

// FormatList renders items as "[ a, b, c]": one space after the opening
// bracket, ", " between items and nothing before the closing bracket. An
// empty list renders as "[]".
func FormatList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	return "[ " + strings.Join(items, ", ") + "]"
}
