// Package config holds the options of a conversion and loads them from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options tune a single conversion. They are read once per conversion and
// never mutated by the converter.
type Options struct {
	// SuppressZeroRepeatWarning silences the warning on Rept 0.
	SuppressZeroRepeatWarning bool `yaml:"suppress_zero_repeat_warning" json:"suppress_zero_repeat_warning"`
	// SuppressMissingEndAllWarning silences the warning on programs that do
	// not end with EndAll.
	SuppressMissingEndAllWarning bool `yaml:"suppress_missing_endall_warning" json:"suppress_missing_endall_warning"`
	// RenderFillerAsZero writes unused encoded columns as 0 instead of ?.
	RenderFillerAsZero bool `yaml:"render_filler_as_zero" json:"render_filler_as_zero"`
}

// Log configures the slog handler of the command-line tool.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// File is the layout of a configuration file.
type File struct {
	Options Options `yaml:"options"`
	Log     Log     `yaml:"log"`
}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{RenderFillerAsZero: true}
}

// DefaultFile returns the configuration used when no file is given.
func DefaultFile() File {
	return File{
		Options: Default(),
		Log:     Log{Level: "warn", Format: "text"},
	}
}

// Load reads a configuration file. Keys that are absent keep their default
// value. Unknown keys are an error.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document.
func Parse(data []byte) (File, error) {
	f := DefaultFile()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := f.Log.Validate(); err != nil {
		return File{}, err
	}

	return f, nil
}

// Validate checks the level and format names.
func (l Log) Validate() error {
	if _, err := l.SlogLevel(); err != nil {
		return err
	}
	_, err := l.handlerFormat()
	return err
}

// LevelAll is the threshold selected by "trace". It lets every record through,
// debug records and the per-line core.LevelTrace records included.
const LevelAll = slog.LevelDebug - 4

// SlogLevel maps the configured level name to a handler threshold. Per-line
// trace records rank above Info, so "info" shows them too and "warn" hides
// them.
func (l Log) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "trace":
		return LevelAll, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", l.Level)
}

// JSON reports whether records should be written as JSON.
func (l Log) JSON() bool {
	f, _ := l.handlerFormat()
	return f == "json"
}

func (l Log) handlerFormat() (string, error) {
	switch strings.ToLower(l.Format) {
	case "", "text":
		return "text", nil
	case "json":
		return "json", nil
	}
	return "", fmt.Errorf("unknown log format %q", l.Format)
}
