package rpc

import (
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"

	"docustream.dev/docustream/model"
)

// CodecName is the gRPC content-subtype of the streaming methods.
const CodecName = "cbor"

// cborCodec encodes model.Request and model.Response. Unary methods keep the
// default proto codec.
type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() cborCodec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborCodec{enc: enc, dec: dec}
}

func (cborCodec) Name() string { return CodecName }

func (c cborCodec) Marshal(v any) ([]byte, error) { return c.enc.Marshal(v) }

func (c cborCodec) Unmarshal(data []byte, v any) error {
	if r, ok := v.(*rawRequest); ok {
		*r = append((*r)[:0], data...)
		return nil
	}
	return c.dec.Unmarshal(data, v)
}

// rawRequest receives an inbound message undecoded so that decode failures
// surface as MALFORMED_REQUEST instead of a transport error.
type rawRequest []byte

var wire = newCBORCodec()

func decodeRequest(b []byte) (*model.Request, error) {
	m := new(model.Request)
	if err := wire.dec.Unmarshal(b, m); err != nil {
		return nil, model.WrapError(model.KindMalformedRequest, "decode request", err)
	}
	return m, nil
}

func init() {
	encoding.RegisterCodec(wire)
}
