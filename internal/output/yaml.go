package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes YAML output.
type YAMLWriter struct {
	enc *yaml.Encoder
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAMLWriter{enc: enc}
}

// Write serializes data as a YAML document.
func (w *YAMLWriter) Write(data any) error {
	return w.enc.Encode(data)
}

// Flush closes the encoder, writing any buffered document.
func (w *YAMLWriter) Flush() error {
	return w.enc.Close()
}
