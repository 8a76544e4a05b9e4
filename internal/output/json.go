package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes one JSON document.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// Write serializes data as a JSON document followed by a newline.
func (w *JSONWriter) Write(data any) error {
	var output []byte
	var err error
	if w.pretty {
		output, err = json.MarshalIndent(data, "", w.indent)
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return nil
}

// Flush flushes buffered output.
func (w *JSONWriter) Flush() error {
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON: one line per anime entry so the
// document can be streamed or grepped.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write outputs a document. Documents with an anime list are split into one
// line per entry; anything else becomes a single line.
func (w *JSONLWriter) Write(data any) error {
	if doc, ok := data.(Document); ok {
		for _, anime := range doc.Anime {
			if err := w.writeLine(anime); err != nil {
				return err
			}
		}
		return nil
	}
	return w.writeLine(data)
}

func (w *JSONLWriter) writeLine(data any) error {
	output, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return nil
}

// Flush flushes buffered output.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}
