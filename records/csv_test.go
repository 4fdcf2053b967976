package records

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kezlya/solr2es/models"
)

func TestCSVReader(t *testing.T) {
	r, err := NewCSVReader(strings.NewReader("id,sha1sum\ndoc-1,abc\n\"doc,2\",def\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "sha1sum"}, r.Header())

	ctx := context.Background()
	d, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Document{"id": "doc-1", "sha1sum": "abc"}, d)

	d, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Document{"id": "doc,2", "sha1sum": "def"}, d)

	_, err = r.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestCSVReader_WrongFieldCount(t *testing.T) {
	r, err := NewCSVReader(strings.NewReader("id,sha1sum\ndoc-1\n"))
	require.NoError(t, err)

	_, err = r.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVReader_Empty(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader(""))
	assert.Error(t, err)
}
