package intake

import (
	"bytes"
	"sort"

	"go.uber.org/zap"

	"docustream.dev/docustream/model"
)

// Limits bounds what one call may accumulate. Zero fields are unlimited.
type Limits struct {
	MaxStreams int
	MaxBytes   int64
}

// Reassembler accumulates indexed fragment streams into whole buffers.
//
// Bytes for one index are appended strictly in arrival order. Nothing is
// assumed about the relative order of different indices, so a buffer is only
// complete once the caller has seen the end of its input.
type Reassembler struct {
	logger  *zap.Logger
	limits  Limits
	buffers map[int]*bytes.Buffer
	total   int64
}

// NewReassembler returns an empty reassembler. A nil logger disables logging.
func NewReassembler(logger *zap.Logger, limits Limits) *Reassembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reassembler{
		logger:  logger,
		limits:  limits,
		buffers: make(map[int]*bytes.Buffer),
	}
}

// Append adds data to the buffer for stream, allocating it on first reference.
// Zero-length data only marks the stream as present.
func (r *Reassembler) Append(stream int, data []byte) error {
	if stream < 0 {
		return model.Errorf(model.KindMalformedRequest, "negative stream index %d", stream)
	}
	buf, ok := r.buffers[stream]
	if !ok {
		if r.limits.MaxStreams > 0 && len(r.buffers) >= r.limits.MaxStreams {
			return model.Errorf(model.KindLimitExceeded, "more than %d streams", r.limits.MaxStreams)
		}
		buf = new(bytes.Buffer)
		r.buffers[stream] = buf
		r.logger.Debug("stream opened", zap.Int("stream", stream))
	}
	if r.limits.MaxBytes > 0 && r.total+int64(len(data)) > r.limits.MaxBytes {
		return model.Errorf(model.KindLimitExceeded, "more than %d bytes", r.limits.MaxBytes)
	}
	buf.Write(data)
	r.total += int64(len(data))
	return nil
}

// Has reports whether stream has been referenced.
func (r *Reassembler) Has(stream int) bool {
	_, ok := r.buffers[stream]
	return ok
}

// Total returns the number of bytes accumulated across all streams.
func (r *Reassembler) Total() int64 { return r.total }

// Streams returns a view of every buffer. The slices alias internal storage
// and are invalidated by Release.
func (r *Reassembler) Streams() Streams {
	out := make(Streams, len(r.buffers))
	for i, buf := range r.buffers {
		out[i] = buf.Bytes()
	}
	return out
}

// Release zeroes and drops every buffer.
func (r *Reassembler) Release() {
	for i, buf := range r.buffers {
		clear(buf.Bytes())
		buf.Reset()
		delete(r.buffers, i)
	}
	r.total = 0
}

// Streams maps stream indices to reassembled bytes.
type Streams map[int][]byte

// Get returns the bytes of stream i.
func (s Streams) Get(i int) ([]byte, bool) {
	b, ok := s[i]
	return b, ok
}

// Indices returns the stream indices in ascending order.
func (s Streams) Indices() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
