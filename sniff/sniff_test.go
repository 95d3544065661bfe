package sniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docustream.dev/docustream/internal/docxtest"
	"docustream.dev/docustream/model"
)

type fixedDetector string

func (f fixedDetector) DetectExtension([]byte) string { return string(f) }

func TestValidator_AcceptsDocx(t *testing.T) {
	b := docxtest.Build(t, docxtest.Doc{Body: []string{docxtest.P("hello")}})

	ext, err := NewValidator("").Validate(b)
	require.NoError(t, err)
	assert.Equal(t, ".docx", ext)
}

func TestValidator_RejectsOtherContainers(t *testing.T) {
	cases := map[string][]byte{
		"pdf":   []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"),
		"text":  []byte("Dear {{name}},"),
		"empty": nil,
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			ext, err := NewValidator(".docx").Validate(b)
			require.Error(t, err)

			var e *model.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, model.KindUnsupportedContainerFormat, e.Kind)
			assert.Equal(t, ext, e.Detected)
			assert.NotEqual(t, ".docx", e.Detected)
		})
	}
}

func TestValidator_TruncatedPrefixIsNotTheContainer(t *testing.T) {
	b := docxtest.Build(t, docxtest.Doc{Body: []string{docxtest.P("hello")}})

	_, err := NewValidator("").Validate(b[:2])
	assert.True(t, model.IsKind(err, model.KindUnsupportedContainerFormat))

	_, err = NewValidator("").Validate(b)
	assert.NoError(t, err)
}

func TestValidator_InjectedDetector(t *testing.T) {
	v := &Validator{Detector: fixedDetector(".DOCX"), Accepted: ".docx"}
	_, err := v.Validate([]byte("anything"))
	assert.NoError(t, err)

	v.Detector = fixedDetector(".odt")
	ext, err := v.Validate([]byte("anything"))
	assert.Equal(t, ".odt", ext)
	assert.True(t, model.IsKind(err, model.KindUnsupportedContainerFormat))
}

func TestNewValidator_NormalizesExtension(t *testing.T) {
	assert.Equal(t, ".docx", NewValidator("docx").Accepted)
	assert.Equal(t, DefaultExtension, NewValidator("").Accepted)
}

func TestDescribe(t *testing.T) {
	mime, ext := Describe([]byte("%PDF-1.7\n"))
	assert.Equal(t, "application/pdf", mime)
	assert.Equal(t, ".pdf", ext)
}
