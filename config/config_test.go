package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
listen: 0.0.0.0:9000
chunk_size: 0
max_streams: 8
converter:
  binary: /usr/bin/soffice
  timeout: 30s
log:
  level: debug
  format: console
`))
	require.NoError(t, err)

	want := Defaults()
	want.Listen = "0.0.0.0:9000"
	want.ChunkSize = 0
	want.MaxStreams = 8
	want.Converter = Converter{Binary: "/usr/bin/soffice", Timeout: 30 * time.Second}
	want.Log = Log{Level: "debug", Format: "console"}
	assert.Equal(t, want, cfg)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":   "listne: x\n",
		"negative":      "max_bytes: -1\n",
		"chunk too big": "chunk_size: 100\nmax_msg_bytes: 10\n",
		"chunk fills message": "chunk_size: 4096\nmax_msg_bytes: 4096\n",
		"level":         "log:\n  level: loud\n",
		"format":        "log:\n  format: xml\n",
		"empty listen":  "listen: \"\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_ChunkLeavesRoomForFraming(t *testing.T) {
	_, err := Parse([]byte("chunk_size: 4064\nmax_msg_bytes: 4096\n"))
	assert.NoError(t, err)
	_, err = Parse([]byte("chunk_size: 4065\nmax_msg_bytes: 4096\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	_, err := LoadFile("")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "docustreamd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accepted_extension: .dotx\n"), 0o600))
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".dotx", cfg.AcceptedExtension)
}
