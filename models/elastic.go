package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	elastic "github.com/olivere/elastic/v7"
)

// ElasticConfig describes how to reach the destination cluster.
type ElasticConfig struct {
	URL      string
	Username string
	Password string
	// Retries is the number of backoff retries olivere makes per request.
	Retries    int
	HTTPClient *http.Client
}

// Elastic wraps an olivere client.
type Elastic struct {
	client *elastic.Client
}

// BulkError reports the items a bulk commit rejected.
type BulkError struct {
	Failed      int
	Total       int
	FirstID     string
	FirstReason string
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk commit failed for %d of %d docs (first %s: %s)",
		e.Failed, e.Total, e.FirstID, e.FirstReason)
}

// ConnectElastic builds a client without sniffing; the cluster is usually
// reached through a proxy that hides the node addresses.
func ConnectElastic(cfg ElasticConfig) (*Elastic, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
		elastic.SetURL(cfg.URL),
	}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.Retries > 0 {
		backoff := elastic.NewExponentialBackoff(100*time.Millisecond, 10*time.Second)
		opts = append(opts, elastic.SetRetrier(elastic.NewBackoffRetrier(&maxRetries{backoff: backoff, max: cfg.Retries})))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, elastic.SetHttpClient(cfg.HTTPClient))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to elastic at %s: %w", cfg.URL, err)
	}
	return &Elastic{client: client}, nil
}

type maxRetries struct {
	backoff elastic.Backoff
	max     int
}

func (b *maxRetries) Next(retry int) (time.Duration, bool) {
	if retry > b.max {
		return 0, false
	}
	return b.backoff.Next(retry)
}

// Stop releases the client's background resources.
func (e *Elastic) Stop() { e.client.Stop() }

// BulkIndexer queues index requests and commits them in batches.
type BulkIndexer struct {
	bulk     *elastic.BulkService
	index    string
	bulkSize int
	count    int
	batches  int
}

// NewBulkIndexer returns a sink writing into index, committing every bulkSize docs.
func (e *Elastic) NewBulkIndexer(index string, bulkSize int) *BulkIndexer {
	if bulkSize <= 0 {
		bulkSize = 200
	}
	return &BulkIndexer{
		bulk:     e.client.Bulk().Index(index),
		index:    index,
		bulkSize: bulkSize,
	}
}

// Add enqueues the document and commits once the batch is full.
func (b *BulkIndexer) Add(ctx context.Context, id string, d Document) error {
	b.bulk.Add(elastic.NewBulkIndexRequest().Index(b.index).Id(id).Doc(d))
	if b.bulk.NumberOfActions() >= b.bulkSize {
		return b.commit(ctx)
	}
	return nil
}

// Close commits the final batch.
func (b *BulkIndexer) Close(ctx context.Context) error {
	if b.bulk.NumberOfActions() == 0 {
		return nil
	}
	return b.commit(ctx)
}

func (b *BulkIndexer) commit(ctx context.Context) error {
	n := b.bulk.NumberOfActions()
	res, err := b.bulk.Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk commit of %d docs: %w", n, err)
	}
	// "bulk" is reset after Do, so it can be reused
	b.batches++
	if res.Errors {
		failed := res.Failed()
		berr := &BulkError{Failed: len(failed), Total: n}
		if len(failed) > 0 {
			berr.FirstID = failed[0].Id
			if failed[0].Error != nil {
				berr.FirstReason = failed[0].Error.Reason
			}
		}
		return berr
	}
	b.count += n
	return nil
}

// Count is the number of documents committed so far.
func (b *BulkIndexer) Count() int { return b.count }

// Batches is the number of bulk requests sent so far.
func (b *BulkIndexer) Batches() int { return b.batches }

// Dump scrolls through every document of index, size hits per page, and hands
// each one to fn in the order the cluster returns them.
func (e *Elastic) Dump(ctx context.Context, index string, size int, fn func(id string, source Document) error) (int, error) {
	if size <= 0 {
		size = 100
	}
	scroll := e.client.Scroll(index).Query(elastic.NewMatchAllQuery()).Size(size)
	defer func() {
		if err := scroll.Clear(context.Background()); err != nil {
			slog.Debug("clear scroll", slog.String("error", err.Error()))
		}
	}()

	var total int
	for {
		res, err := scroll.Do(ctx)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("scroll %s: %w", index, err)
		}
		for _, hit := range res.Hits.Hits {
			d, err := decodeSource(hit)
			if err != nil {
				return total, err
			}
			if err := fn(d.id, d.object); err != nil {
				return total, err
			}
			total++
		}
	}
}

func decodeSource(hit *elastic.SearchHit) (doc, error) {
	source := Document{}
	if len(hit.Source) > 0 {
		dec := json.NewDecoder(bytes.NewReader(hit.Source))
		dec.UseNumber()
		if err := dec.Decode(&source); err != nil {
			return doc{}, fmt.Errorf("decode hit %s: %w", hit.Id, err)
		}
	}
	return doc{id: hit.Id, object: source}, nil
}
