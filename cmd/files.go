package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kezlya/solr2es/records"
)

// jsonlFile is a JSONL sink that owns its file.
type jsonlFile struct {
	*records.JSONLWriter
	f *os.File
}

func createJSONL(path string) (*jsonlFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &jsonlFile{JSONLWriter: records.NewJSONLWriter(f), f: f}, nil
}

func (j *jsonlFile) Close(ctx context.Context) error {
	if err := j.JSONLWriter.Close(ctx); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}

// abort closes the file after a failed run; the flush error is irrelevant then.
func (j *jsonlFile) abort() {
	_ = j.f.Close()
}
