// Package pack splits byte buffers into transport fragments.
//
// A receiver that appends fragments per stream in arrival order, as
// intake.Reassembler does, reconstructs the original buffers exactly.
package pack

import "docustream.dev/docustream/model"

// FragmentOverhead bounds the encoded size of a fragment message beyond its
// data: map headers, keys, the stream index and the byte string header.
const FragmentOverhead = 32

// Fragments splits b into fragments for stream. A size of zero or less yields
// one fragment carrying the whole buffer. An empty buffer yields one empty
// fragment so the stream is still announced.
func Fragments(stream int, b []byte, size int) []*model.Fragment {
	if size <= 0 || len(b) <= size {
		return []*model.Fragment{{Stream: stream, Data: b}}
	}
	out := make([]*model.Fragment, 0, (len(b)+size-1)/size)
	for off := 0; off < len(b); off += size {
		end := min(off+size, len(b))
		out = append(out, &model.Fragment{Stream: stream, Data: b[off:end]})
	}
	return out
}

// Interleave splits several buffers, indexed by position, into fragments
// emitted round-robin: one chunk of every unfinished stream per round. Every
// stream appears at least once.
func Interleave(buffers [][]byte, size int) []*model.Fragment {
	per := make([][]*model.Fragment, len(buffers))
	rounds := 0
	for i, b := range buffers {
		per[i] = Fragments(i, b, size)
		rounds = max(rounds, len(per[i]))
	}
	var out []*model.Fragment
	for r := 0; r < rounds; r++ {
		for i := range per {
			if r < len(per[i]) {
				out = append(out, per[i][r])
			}
		}
	}
	return out
}

// ResponseSender is the outbound half of a reply stream.
type ResponseSender interface {
	Send(*model.Response) error
}

// Send writes b to s as fragments of stream and returns the number of
// messages sent.
func Send(s ResponseSender, stream int, b []byte, size int) (int, error) {
	frags := Fragments(stream, b, size)
	for i, f := range frags {
		if err := s.Send(&model.Response{Fragment: f}); err != nil {
			return i, err
		}
	}
	return len(frags), nil
}
