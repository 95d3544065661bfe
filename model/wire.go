package model

// PrimaryStream is the fragment stream index that carries the document.
const PrimaryStream = 0

// ValueBatch carries substitutions for both scopes.
type ValueBatch struct {
	Header []Value `cbor:"1,keyasint,omitempty"`
	Body   []Value `cbor:"2,keyasint,omitempty"`
}

// Fragment is a slice of one indexed byte stream. Zero-length Data is valid
// and marks the stream as present.
type Fragment struct {
	Stream int    `cbor:"1,keyasint"`
	Data   []byte `cbor:"2,keyasint"`
}

// Request is one inbound message. Exactly one of Values or Fragment MUST be set.
type Request struct {
	Values   *ValueBatch `cbor:"1,keyasint,omitempty"`
	Fragment *Fragment   `cbor:"2,keyasint,omitempty"`
}

// Response is one outbound message.
type Response struct {
	Fragment *Fragment `cbor:"1,keyasint,omitempty"`
}
