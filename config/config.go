// Package config loads daemon configuration from YAML.
//
// Example:
//
//	listen: 127.0.0.1:7780
//	accepted_extension: .docx
//	chunk_size: 1048576
//	max_msg_bytes: 16777216
//	max_streams: 64
//	max_bytes: 268435456
//	scratch_dir: /var/tmp/docustream
//	converter:
//	  binary: soffice
//	  timeout: 2m
//	log:
//	  level: info
//	  format: json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"docustream.dev/docustream/pack"
)

type Config struct {
	Listen            string `yaml:"listen"`
	AcceptedExtension string `yaml:"accepted_extension"`

	// ChunkSize bounds reply fragments. Zero sends one fragment per reply.
	ChunkSize   int   `yaml:"chunk_size"`
	MaxMsgBytes int   `yaml:"max_msg_bytes"`
	MaxStreams  int   `yaml:"max_streams"`
	MaxBytes    int64 `yaml:"max_bytes"`

	// ScratchDir parents per-call conversion directories. Empty uses os.TempDir.
	ScratchDir string `yaml:"scratch_dir"`

	Converter Converter `yaml:"converter"`
	Log       Log       `yaml:"log"`
}

type Converter struct {
	// Binary is the LibreOffice executable. Empty disables Convert.
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Listen:            "127.0.0.1:7780",
		AcceptedExtension: ".docx",
		ChunkSize:         1 << 20,
		MaxMsgBytes:       16 << 20,
		MaxStreams:        64,
		MaxBytes:          256 << 20,
		Converter:         Converter{Timeout: 2 * time.Minute},
		Log:               Log{Level: "info", Format: "json"},
	}
}

// LoadFile reads path over Defaults and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(b)
}

// Parse decodes YAML over Defaults and validates the result. Unknown keys
// are rejected.
func Parse(b []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen is required")
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("config: invalid chunk_size %d", c.ChunkSize)
	}
	if c.MaxMsgBytes < 0 || c.MaxStreams < 0 || c.MaxBytes < 0 {
		return errors.New("config: limits must not be negative")
	}
	if c.MaxMsgBytes > 0 && c.ChunkSize > c.MaxMsgBytes-pack.FragmentOverhead {
		return fmt.Errorf("config: chunk_size %d does not fit max_msg_bytes %d with %d bytes of framing",
			c.ChunkSize, c.MaxMsgBytes, pack.FragmentOverhead)
	}
	if c.Converter.Timeout < 0 {
		return fmt.Errorf("config: invalid converter.timeout %s", c.Converter.Timeout)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("config: invalid log.format %q", c.Log.Format)
	}
}
