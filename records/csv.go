package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/kezlya/solr2es/models"
)

// CSVReader yields one document per CSV row, keyed by the header row.
type CSVReader struct {
	r      *csv.Reader
	header []string
}

// NewCSVReader reads the header row from r.
func NewCSVReader(r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header row")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return &CSVReader{r: cr, header: append([]string(nil), header...)}, nil
}

// Header returns the column names.
func (c *CSVReader) Header() []string { return c.header }

// Next returns the next row, or io.EOF.
func (c *CSVReader) Next(ctx context.Context) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := c.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	row := make(models.Document, len(c.header))
	for i, name := range c.header {
		row[name] = rec[i]
	}
	return row, nil
}
