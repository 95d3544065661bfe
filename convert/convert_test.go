package convert

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docustream.dev/docustream/model"
)

// fakeOffice writes a shell script that mimics the converter's CLI.
func fakeOffice(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	path := filepath.Join(t.TempDir(), "fake-office")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// Arguments: --headless --convert-to pdf --outdir DIR INPUT
const copyToPDF = `outdir="$5"; in="$6"; base=$(basename "$in" .docx)
{ printf '%%PDF-1.4\n'; cat "$in"; } > "$outdir/$base.pdf"`

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory must be removed")
}

func TestLibreOffice_Convert(t *testing.T) {
	scratch := t.TempDir()
	c := &LibreOffice{Binary: fakeOffice(t, copyToPDF), ScratchDir: scratch}

	pdf, err := c.Convert(context.Background(), []byte("DOCX"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4\nDOCX", string(pdf))
	assertEmptyDir(t, scratch)
}

func TestLibreOffice_FailureCleansUp(t *testing.T) {
	scratch := t.TempDir()
	c := &LibreOffice{Binary: fakeOffice(t, `echo "source file could not be loaded" >&2; exit 3`), ScratchDir: scratch}

	_, err := c.Convert(context.Background(), []byte("DOCX"))
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindConversionFailure))
	assert.Contains(t, err.Error(), "source file could not be loaded")
	assertEmptyDir(t, scratch)
}

func TestLibreOffice_NoOutput(t *testing.T) {
	scratch := t.TempDir()
	c := &LibreOffice{Binary: fakeOffice(t, `exit 0`), ScratchDir: scratch}

	_, err := c.Convert(context.Background(), []byte("DOCX"))
	assert.True(t, model.IsKind(err, model.KindConversionFailure))
	assertEmptyDir(t, scratch)
}

func TestLibreOffice_Timeout(t *testing.T) {
	scratch := t.TempDir()
	c := &LibreOffice{Binary: fakeOffice(t, `exec sleep 5`), ScratchDir: scratch, Timeout: 100 * time.Millisecond}

	_, err := c.Convert(context.Background(), []byte("DOCX"))
	assert.True(t, model.IsKind(err, model.KindConversionFailure))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assertEmptyDir(t, scratch)
}

func TestLibreOffice_MissingBinary(t *testing.T) {
	c := &LibreOffice{Binary: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := c.Convert(context.Background(), []byte("DOCX"))
	assert.True(t, model.IsKind(err, model.KindConversionFailure))
}
