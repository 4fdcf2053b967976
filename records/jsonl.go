// Package records reads and writes local record files: JSON lines and CSV.
package records

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kezlya/solr2es/models"
)

// MaxLineSize bounds a single JSON line.
const MaxLineSize = 64 << 20

// JSONLWriter writes one JSON document per line.
type JSONLWriter struct {
	w     *bufio.Writer
	enc   *json.Encoder
	count int
}

// NewJSONLWriter wraps w; call Close to flush.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

// Add writes d as one line. The id is carried by the document itself.
func (j *JSONLWriter) Add(_ context.Context, _ string, d models.Document) error {
	if err := j.enc.Encode(d); err != nil {
		return fmt.Errorf("write line %d: %w", j.count+1, err)
	}
	j.count++
	return nil
}

// Close flushes buffered lines.
func (j *JSONLWriter) Close(context.Context) error {
	return j.w.Flush()
}

// Count is the number of lines written.
func (j *JSONLWriter) Count() int { return j.count }

// JSONLReader reads documents written by JSONLWriter.
type JSONLReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONLReader reads from r.
func NewJSONLReader(r io.Reader) *JSONLReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &JSONLReader{scanner: s}
}

// Next returns the next document, or io.EOF. Blank lines are skipped and
// numbers are kept as json.Number.
func (j *JSONLReader) Next(ctx context.Context) (models.Document, error) {
	for j.scanner.Scan() {
		j.line++
		line := bytes.TrimSpace(j.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var d models.Document
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("line %d: %w", j.line, err)
		}
		if d == nil {
			return nil, fmt.Errorf("line %d: not a JSON object", j.line)
		}
		return d, nil
	}
	if err := j.scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", j.line+1, err)
	}
	return nil, io.EOF
}
