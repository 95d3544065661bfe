// Package sniff validates reassembled documents by content signature.
package sniff

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"docustream.dev/docustream/model"
)

// DefaultExtension is the container accepted by the docx document model.
const DefaultExtension = ".docx"

// Detector derives a file extension from content bytes.
type Detector interface {
	DetectExtension(b []byte) string
}

// Mimetype detects extensions with gabriel-vasile/mimetype.
type Mimetype struct{}

func (Mimetype) DetectExtension(b []byte) string { return mimetype.Detect(b).Extension() }

// Describe returns the detected MIME type and extension of b.
func Describe(b []byte) (mime, ext string) {
	m := mimetype.Detect(b)
	return m.String(), m.Extension()
}

// Validator accepts exactly one container extension.
//
// Validate must only be called on a fully drained buffer: a truncated prefix of
// a valid container can sniff as something else.
type Validator struct {
	Detector Detector
	Accepted string
}

// NewValidator returns a Validator for accepted using the mimetype detector.
// An empty accepted extension defaults to DefaultExtension.
func NewValidator(accepted string) *Validator {
	if accepted == "" {
		accepted = DefaultExtension
	}
	if !strings.HasPrefix(accepted, ".") {
		accepted = "." + accepted
	}
	return &Validator{Detector: Mimetype{}, Accepted: accepted}
}

// Validate returns the detected extension, or an UnsupportedContainerFormat
// error when it differs from the accepted one.
func (v *Validator) Validate(b []byte) (string, error) {
	d := v.Detector
	if d == nil {
		d = Mimetype{}
	}
	ext := d.DetectExtension(b)
	if !strings.EqualFold(ext, v.Accepted) {
		return ext, model.UnsupportedContainer(ext, v.Accepted)
	}
	return ext, nil
}
