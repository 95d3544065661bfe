package rpc

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"docustream.dev/docustream/model"
	"docustream.dev/docustream/pack"
)

func TestSnapshot_RequestWireShape(t *testing.T) {
	c := newCBORCodec()
	cases := []struct {
		name string
		msg  *model.Request
		want string
	}{
		{
			name: "values",
			msg:  &model.Request{Values: &model.ValueBatch{Body: []model.Value{model.Text("k", "v")}}},
			want: "a101a10281a301616b0201036176",
		},
		{
			name: "fragment",
			msg:  &model.Request{Fragment: &model.Fragment{Stream: 1, Data: []byte("ab")}},
			want: "a102a2010102426162",
		},
		{
			name: "empty fragment",
			msg:  &model.Request{Fragment: &model.Fragment{Stream: 0, Data: []byte{}}},
			want: "a102a201000240",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := c.Marshal(tc.msg)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if got := hex.EncodeToString(b); got != tc.want {
				t.Fatalf("wire shape changed\nwant: %s\ngot:  %s", tc.want, got)
			}

			var back model.Request
			if err := c.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(tc.msg, &back); diff != "" {
				t.Fatalf("decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodec_FragmentOverheadBound(t *testing.T) {
	c := newCBORCodec()
	for _, n := range []int{0, 23, 24, 255, 256, 65535, 65536, 1 << 20} {
		msg := &model.Response{Fragment: &model.Fragment{Stream: math.MaxInt, Data: make([]byte, n)}}
		b, err := c.Marshal(msg)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if len(b) > n+pack.FragmentOverhead {
			t.Fatalf("%d data bytes encoded to %d, over the %d byte framing bound", n, len(b), pack.FragmentOverhead)
		}
	}
}

func TestDecodeRequest_Mistyped(t *testing.T) {
	b, err := newCBORCodec().Marshal(map[int]any{2: map[int]any{1: "not-an-int"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	_, err = decodeRequest(b)
	if !model.IsKind(err, model.KindMalformedRequest) {
		t.Fatalf("expected MALFORMED_REQUEST, got %v", err)
	}
}

func TestCodec_EmptyMessageDecodesToNoVariant(t *testing.T) {
	c := newCBORCodec()
	b, err := c.Marshal(&model.Request{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back model.Request
	if err := c.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Values != nil || back.Fragment != nil {
		t.Fatalf("expected no variant, got %+v", back)
	}
}
