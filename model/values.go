package model

import "fmt"

// Scope partitions content nodes and substitution values.
type Scope uint8

const (
	ScopeHeader Scope = iota + 1
	ScopeBody
)

func (s Scope) String() string {
	switch s {
	case ScopeHeader:
		return "header"
	case ScopeBody:
		return "body"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// ValueKind tags a substitution value as text or image.
type ValueKind uint8

const (
	TextValue ValueKind = iota + 1
	ImageValue
)

func (k ValueKind) String() string {
	switch k {
	case TextValue:
		return "text"
	case ImageValue:
		return "image"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known kinds.
func (k ValueKind) Valid() bool { return k == TextValue || k == ImageValue }

// Value is one key/value substitution.
//
// For TextValue, Value is the literal replacement. For ImageValue, Value is the
// decimal index of a fragment stream holding the image bytes.
type Value struct {
	Key   string    `cbor:"1,keyasint"`
	Kind  ValueKind `cbor:"2,keyasint"`
	Value string    `cbor:"3,keyasint"`
}

// Text returns a text value.
func Text(key, value string) Value { return Value{Key: key, Kind: TextValue, Value: value} }

// Image returns an image value referring to stream.
func Image(key string, stream int) Value {
	return Value{Key: key, Kind: ImageValue, Value: fmt.Sprint(stream)}
}

// Values is an ordered set of substitutions for one scope.
type Values []Value

// OfKind returns the values of kind k in collection order.
func (vs Values) OfKind(k ValueKind) Values {
	var out Values
	for _, v := range vs {
		if v.Kind == k {
			out = append(out, v)
		}
	}
	return out
}
