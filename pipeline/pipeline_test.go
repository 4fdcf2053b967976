package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kezlya/solr2es/models"
)

type sliceSource struct {
	docs []models.Document
	err  error
	pos  int
}

func (s *sliceSource) Next(context.Context) (models.Document, error) {
	if s.pos >= len(s.docs) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	d := s.docs[s.pos]
	s.pos++
	return d, nil
}

type memorySink struct {
	ids    []string
	docs   []models.Document
	closed bool
	failAt int
}

func (m *memorySink) Add(_ context.Context, id string, d models.Document) error {
	if m.failAt > 0 && len(m.ids)+1 == m.failAt {
		return errors.New("sink full")
	}
	m.ids = append(m.ids, id)
	m.docs = append(m.docs, d)
	return nil
}

func (m *memorySink) Close(context.Context) error {
	m.closed = true
	return nil
}

func docs(n int) []models.Document {
	out := make([]models.Document, n)
	for i := range out {
		out[i] = models.Document{"id": fmt.Sprintf("doc-%d", i)}
	}
	return out
}

func TestRun_PreservesOrder(t *testing.T) {
	src := &sliceSource{docs: docs(50)}
	sink := &memorySink{}

	stats, err := Run(context.Background(), src, nil, sink, Options{Name: "test"})
	require.NoError(t, err)

	assert.Equal(t, 50, stats.Read)
	assert.Equal(t, 50, stats.Written)
	assert.True(t, sink.closed)
	for i, id := range sink.ids {
		assert.Equal(t, fmt.Sprintf("doc-%d", i), id)
	}
}

func TestRun_SkipsAndFailures(t *testing.T) {
	src := &sliceSource{docs: docs(6)}
	sink := &memorySink{}

	fn := func(d models.Document) (string, models.Document, error) {
		id, _ := d.StringField("id")
		switch id {
		case "doc-1":
			return "", nil, ErrSkip
		case "doc-2", "doc-4":
			return "", nil, errors.New("bad record")
		}
		return id, models.Document{"copy": id}, nil
	}

	stats, err := Run(context.Background(), src, fn, sink, Options{})
	require.NoError(t, err)

	assert.Equal(t, Stats{Read: 6, Written: 3, Skipped: 1, Failed: 2, Elapsed: stats.Elapsed}, stats)
	assert.Equal(t, []string{"doc-0", "doc-3", "doc-5"}, sink.ids)
	assert.Equal(t, models.Document{"copy": "doc-3"}, sink.docs[1])
}

func TestRun_MaxFailures(t *testing.T) {
	src := &sliceSource{docs: docs(10)}
	sink := &memorySink{}

	fn := func(models.Document) (string, models.Document, error) {
		return "", nil, errors.New("bad record")
	}

	_, err := Run(context.Background(), src, fn, sink, Options{MaxFailures: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 records failed")
	assert.False(t, sink.closed)
}

func TestRun_SourceError(t *testing.T) {
	boom := errors.New("solr down")
	src := &sliceSource{docs: docs(3), err: boom}
	sink := &memorySink{}

	_, err := Run(context.Background(), src, nil, sink, Options{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, sink.closed)
}

func TestRun_SinkError(t *testing.T) {
	src := &sliceSource{docs: docs(100)}
	sink := &memorySink{failAt: 5}

	stats, err := Run(context.Background(), src, nil, sink, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc-4")
	assert.Equal(t, 4, stats.Written)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &sliceSource{docs: docs(10)}, nil, &memorySink{}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIdentity(t *testing.T) {
	id, out, err := Identity("_id")(models.Document{"_id": "x", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, "x", id)
	assert.Equal(t, models.Document{"_id": "x", "a": 1}, out)
}
