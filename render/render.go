// Package render runs a drained templating call: validate the container,
// parse it, substitute values and serialize the result.
package render

import (
	"context"

	"docustream.dev/docustream/cidutil"
	"docustream.dev/docustream/docx"
	"docustream.dev/docustream/engine"
	"docustream.dev/docustream/intake"
	"docustream.dev/docustream/model"
	"docustream.dev/docustream/sniff"
)

// Pipeline holds the per-process, read-only configuration of a render.
type Pipeline struct {
	Validator *sniff.Validator
}

// New returns a Pipeline accepting containers with the given extension.
func New(accepted string) *Pipeline {
	return &Pipeline{Validator: sniff.NewValidator(accepted)}
}

// Validate checks b against the accepted container format. A Pipeline
// without a Validator accepts sniff.DefaultExtension.
func (p *Pipeline) Validate(b []byte) (string, error) {
	v := p.Validator
	if v == nil {
		v = sniff.NewValidator("")
	}
	return v.Validate(b)
}

// Result is a rendered document.
type Result struct {
	Document  []byte
	CID       string
	Extension string
	Stats     engine.Stats
}

// Run renders payload. The payload must come from a finalized intake; no
// stage runs before the inbound stream has been drained.
func (p *Pipeline) Run(ctx context.Context, payload *intake.Payload) (*Result, error) {
	ext, err := p.Validate(payload.Primary())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := docx.Parse(payload.Primary())
	if err != nil {
		return nil, err
	}
	stats := engine.Apply(doc, payload, payload.Streams)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, model.NewError(model.KindOutputPersistenceFailure, "serialized document is empty")
	}
	return &Result{
		Document:  out,
		CID:       cidutil.String(out),
		Extension: ext,
		Stats:     stats,
	}, nil
}
