// Package output serializes extracted tables and writes them to their sink.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/hltvstats/pkg/table"
)

// Format represents output format types.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatJSON, FormatJSONL, FormatYAML}

// Writer handles output serialization.
type Writer interface {
	// Write outputs an extraction result.
	Write(res table.Result) error

	// Close flushes buffered output.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	bom    bool
	indent string
}

// WithBOM prefixes CSV output with a UTF-8 byte order mark.
func WithBOM(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.bom = enabled
	}
}

// WithIndent sets the JSON indentation string; empty disables pretty-printing.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatCSV, "":
		return NewCSVWriter(w, cfg.bom), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
