package records

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kezlya/solr2es/models"
)

func TestJSONL_RoundTrip(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	w := NewJSONLWriter(&buf)
	require.NoError(t, w.Add(ctx, "a", models.Document{"id": "a", "n": 1}))
	require.NoError(t, w.Add(ctx, "b", models.Document{"id": "b", "url": "http://x/?a=1&b=2"}))
	require.NoError(t, w.Close(ctx))
	assert.Equal(t, 2, w.Count())
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "a=1&b=2")

	r := NewJSONLReader(&buf)
	d, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Document{"id": "a", "n": json.Number("1")}, d)

	d, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", d["id"])

	_, err = r.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestJSONLReader_SkipsBlankLines(t *testing.T) {
	r := NewJSONLReader(strings.NewReader("\n{\"id\":\"a\"}\n   \n{\"id\":\"b\"}\n"))

	var ids []interface{}
	for {
		d, err := r.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, d["id"])
	}
	assert.Equal(t, []interface{}{"a", "b"}, ids)
}

func TestJSONLReader_ReportsLine(t *testing.T) {
	r := NewJSONLReader(strings.NewReader("{\"id\":\"a\"}\n{broken\n"))

	_, err := r.Next(context.Background())
	require.NoError(t, err)

	_, err = r.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestJSONLReader_RejectsNonObjects(t *testing.T) {
	_, err := NewJSONLReader(strings.NewReader("null\n")).Next(context.Background())
	assert.Error(t, err)

	_, err = NewJSONLReader(strings.NewReader("[1,2]\n")).Next(context.Background())
	assert.Error(t, err)
}

func TestJSONLReader_LongLine(t *testing.T) {
	content := strings.Repeat("x", 200*1024)
	r := NewJSONLReader(strings.NewReader(`{"id":"a","content":"` + content + "\"}\n"))

	d, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, content, d["content"])

	_, err = r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}
