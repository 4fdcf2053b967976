package pipeline

import (
	"log/slog"
	"time"
)

type batchCounter interface {
	Batches() int
}

type progress struct {
	name  string
	delay time.Duration
	sink  interface{}
	begin time.Time
	last  time.Time
}

func newProgress(name string, delay time.Duration, sink interface{}) *progress {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	now := time.Now()
	return &progress{name: name, delay: delay, sink: sink, begin: now, last: now}
}

func (p *progress) elapsed() time.Duration { return time.Since(p.begin) }

func (p *progress) batches() int {
	if bc, ok := p.sink.(batchCounter); ok {
		return bc.Batches()
	}
	return 0
}

// tick logs at most once per delay.
func (p *progress) tick(count int, lastID string) {
	now := time.Now()
	if now.Sub(p.last) < p.delay {
		return
	}
	p.last = now
	dur := now.Sub(p.begin).Seconds()
	slog.Info("progress",
		slog.String("job", p.name),
		slog.Int("docs", count),
		slog.Int("batches", p.batches()),
		slog.String("last_id", lastID),
		slog.Int64("docs_per_sec", int64(float64(count)/dur)))
}

func (p *progress) done(s Stats, err error) {
	attrs := []any{
		slog.String("job", p.name),
		slog.Int("read", s.Read),
		slog.Int("written", s.Written),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed),
		slog.Int("batches", p.batches()),
		slog.Duration("elapsed", s.Elapsed.Round(time.Millisecond)),
	}
	if err != nil {
		slog.Error("job stopped", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	slog.Info("job done", attrs...)
}
