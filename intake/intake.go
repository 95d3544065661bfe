package intake

import (
	"go.uber.org/zap"

	"docustream.dev/docustream/model"
)

// Options configures what an Intake accepts.
type Options struct {
	Limits Limits

	// FragmentsOnly rejects value batches. Used by calls that take a document
	// but no substitutions.
	FragmentsOnly bool
}

// Intake is the exclusive, call-scoped accumulator for one inbound stream.
type Intake struct {
	opts      Options
	values    Collector
	frags     *Reassembler
	finalized bool
}

// New returns an empty Intake.
func New(logger *zap.Logger, opts Options) *Intake {
	return &Intake{opts: opts, frags: NewReassembler(logger, opts.Limits)}
}

// Accept consumes one inbound message.
func (in *Intake) Accept(msg *model.Request) error {
	if in.finalized {
		return model.NewError(model.KindInternal, "intake already finalized")
	}
	if msg == nil || (msg.Values == nil) == (msg.Fragment == nil) {
		return model.NewError(model.KindMalformedRequest, "message must carry exactly one of values or fragment")
	}
	if msg.Fragment != nil {
		return in.frags.Append(msg.Fragment.Stream, msg.Fragment.Data)
	}
	if in.opts.FragmentsOnly {
		return model.NewError(model.KindMalformedRequest, "substitution values are not accepted by this call")
	}
	if err := checkKinds(msg.Values.Header); err != nil {
		return err
	}
	if err := checkKinds(msg.Values.Body); err != nil {
		return err
	}
	in.values.Add(msg.Values)
	return nil
}

func checkKinds(vs []model.Value) error {
	for _, v := range vs {
		if !v.Kind.Valid() {
			return model.Errorf(model.KindMalformedRequest, "value %q has unknown kind %d", v.Key, uint8(v.Kind))
		}
	}
	return nil
}

// Finalize closes the intake once the inbound stream has ended.
//
// It fails if the primary stream was never referenced. Finalize may only be
// called once.
func (in *Intake) Finalize() (*Payload, error) {
	if in.finalized {
		return nil, model.NewError(model.KindInternal, "intake already finalized")
	}
	in.finalized = true
	if !in.frags.Has(model.PrimaryStream) {
		return nil, model.NewError(model.KindMalformedRequest, "no fragments received for the document stream")
	}
	return &Payload{
		Header:  append(model.Values(nil), in.values.Scope(model.ScopeHeader)...),
		Body:    append(model.Values(nil), in.values.Scope(model.ScopeBody)...),
		Streams: in.frags.Streams(),
	}, nil
}

// Stats reports the number of values, streams and bytes accumulated so far.
func (in *Intake) Stats() (values, streams int, bytes int64) {
	return in.values.Len(), len(in.frags.buffers), in.frags.Total()
}

// Release zeroes every buffer. Payloads returned by Finalize become invalid.
func (in *Intake) Release() {
	in.frags.Release()
	in.values = Collector{}
}

// Payload is the immutable result of a drained inbound stream.
type Payload struct {
	Header  model.Values
	Body    model.Values
	Streams Streams
}

// Primary returns the document stream.
func (p *Payload) Primary() []byte { return p.Streams[model.PrimaryStream] }

// Scope returns the values collected for s.
func (p *Payload) Scope(s model.Scope) model.Values {
	switch s {
	case model.ScopeHeader:
		return p.Header
	case model.ScopeBody:
		return p.Body
	default:
		return nil
	}
}
