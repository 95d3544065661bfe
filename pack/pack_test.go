package pack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docustream.dev/docustream/intake"
	"docustream.dev/docustream/model"
)

func TestFragments_WholeBufferByDefault(t *testing.T) {
	b := []byte("rendered document")
	frags := Fragments(0, b, 0)
	require.Len(t, frags, 1)
	assert.Equal(t, b, frags[0].Data)
	assert.Equal(t, 0, frags[0].Stream)
}

func TestFragments_SplitsBySize(t *testing.T) {
	frags := Fragments(2, []byte("abcdefg"), 3)
	require.Len(t, frags, 3)
	assert.Equal(t, "abc", string(frags[0].Data))
	assert.Equal(t, "def", string(frags[1].Data))
	assert.Equal(t, "g", string(frags[2].Data))
	for _, f := range frags {
		assert.Equal(t, 2, f.Stream)
	}
}

func TestFragments_EmptyBufferAnnouncesStream(t *testing.T) {
	frags := Fragments(4, nil, 16)
	require.Len(t, frags, 1)
	assert.Empty(t, frags[0].Data)
	assert.Equal(t, 4, frags[0].Stream)
}

func TestInterleave_ReassemblesIdentically(t *testing.T) {
	doc := bytes.Repeat([]byte("D"), 10)
	img := []byte("img")
	empty := []byte{}

	frags := Interleave([][]byte{doc, img, empty}, 4)
	assert.Equal(t, []int{0, 1, 2, 0, 0}, streamsOf(frags))

	r := intake.NewReassembler(nil, intake.Limits{})
	for _, f := range frags {
		require.NoError(t, r.Append(f.Stream, f.Data))
	}
	got := r.Streams()
	assert.Equal(t, doc, got[0])
	assert.Equal(t, img, got[1])
	b, ok := got.Get(2)
	assert.True(t, ok)
	assert.Empty(t, b)
}

func streamsOf(frags []*model.Fragment) []int {
	out := make([]int, len(frags))
	for i, f := range frags {
		out[i] = f.Stream
	}
	return out
}

type recorder struct {
	sent []*model.Response
	fail int
}

func (r *recorder) Send(m *model.Response) error {
	if r.fail > 0 && len(r.sent) == r.fail {
		return errors.New("stream closed")
	}
	r.sent = append(r.sent, m)
	return nil
}

func TestSend(t *testing.T) {
	rec := &recorder{}
	n, err := Send(rec, 0, []byte("abcdef"), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "abcd", string(rec.sent[0].Fragment.Data))
	assert.Equal(t, "ef", string(rec.sent[1].Fragment.Data))

	rec = &recorder{fail: 1}
	n, err = Send(rec, 0, []byte("abcdef"), 2)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}
