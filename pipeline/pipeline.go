// Package pipeline moves records from a source to a sink through a
// transform, one producer and one consumer, in source order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kezlya/solr2es/models"
)

// ErrSkip tells the pipeline to drop a record without counting it as failed.
var ErrSkip = errors.New("skip record")

// Source yields records until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (models.Document, error)
}

// Sink receives transformed records. Close flushes anything buffered.
type Sink interface {
	Add(ctx context.Context, id string, d models.Document) error
	Close(ctx context.Context) error
}

// TransformFunc maps a source record to its id and output document.
type TransformFunc func(models.Document) (string, models.Document, error)

// Identity passes records through, taking the id from idField.
func Identity(idField string) TransformFunc {
	return func(d models.Document) (string, models.Document, error) {
		id, _ := d.StringField(idField)
		return id, d, nil
	}
}

// Options tunes a run.
type Options struct {
	// Name labels log lines.
	Name string
	// LogDelay is the minimum time between progress lines.
	LogDelay time.Duration
	// MaxFailures aborts the run once more records than this failed to
	// transform. Zero means never.
	MaxFailures int
	// Buffer is the channel capacity between producer and consumer.
	Buffer int
}

// Stats summarizes a run.
type Stats struct {
	Read    int
	Written int
	Skipped int
	Failed  int
	Elapsed time.Duration
}

// Run drains src through fn into sink. The sink is closed on success; a
// failure on either side cancels the other and is returned.
func Run(ctx context.Context, src Source, fn TransformFunc, sink Sink, opts Options) (Stats, error) {
	if fn == nil {
		fn = Identity("id")
	}
	g, ctx := errgroup.WithContext(ctx)

	docs := make(chan models.Document, opts.Buffer)
	progress := newProgress(opts.Name, opts.LogDelay, sink)
	var stats Stats

	// Goroutine to read the source
	g.Go(func() error {
		defer close(docs)
		for {
			d, err := src.Next(ctx)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			select {
			case docs <- d:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// Second goroutine transforms what the first sends and feeds the sink
	g.Go(func() error {
		for d := range docs {
			stats.Read++
			id, out, err := fn(d)
			switch {
			case errors.Is(err, ErrSkip):
				stats.Skipped++
				continue
			case err != nil:
				stats.Failed++
				slog.Warn("transform failed",
					slog.String("job", opts.Name),
					slog.Int("record", stats.Read),
					slog.String("error", err.Error()))
				if opts.MaxFailures > 0 && stats.Failed > opts.MaxFailures {
					return fmt.Errorf("%d records failed to transform, last: %w", stats.Failed, err)
				}
				continue
			}

			if err := sink.Add(ctx, id, out); err != nil {
				return fmt.Errorf("write %s: %w", id, err)
			}
			stats.Written++
			progress.tick(stats.Written, id)

			select {
			default:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return sink.Close(ctx)
	})

	err := g.Wait()
	stats.Elapsed = progress.elapsed()
	progress.done(stats, err)
	return stats, err
}
