package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/models"
	"github.com/kezlya/solr2es/pipeline"
	"github.com/kezlya/solr2es/transform"
)

func newSyncCmd(o *rootOptions) *cobra.Command {
	var (
		query string
		index string
		batch int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Copy documents from Solr (EDR) into Elasticsearch (CDR)",
		Long: `Query Solr page by page, map every document to the CDR schema and
bulk index it into Elasticsearch.

Fields are renamed by transform.mapping, *_md dynamic fields are nested
under extracted_metadata, obj_stored_url is derived from the id and every
document is stamped with imported_at.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := o.cfg
			if query != "" {
				cfg.Solr.Query = query
			}
			if index != "" {
				cfg.Elastic.Index = index
			}
			if batch > 0 {
				cfg.Elastic.Batch = batch
			}
			if cfg.Elastic.Index == "" {
				return fmt.Errorf("elastic index not set")
			}

			cdr, err := transform.NewCDR(cfg.Transform)
			if err != nil {
				return err
			}
			solr, err := o.newSolr()
			if err != nil {
				return err
			}
			es, err := o.newElastic()
			if err != nil {
				return err
			}
			defer es.Stop()

			sink := es.NewBulkIndexer(cfg.Elastic.Index, cfg.Elastic.Batch)
			stats, err := pipeline.Run(cmd.Context(), solr.Query(o.solrQuery()), importedAt(cdr.Transform, time.Now), sink, o.pipelineOptions("sync"))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Total docs imported=%d\n", stats.Written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Solr query (default from config)")
	cmd.Flags().StringVar(&index, "index", "", "Destination index (default from config)")
	cmd.Flags().IntVar(&batch, "batch", 0, "Documents per bulk request (default from config)")
	return cmd
}

// importedAt stamps the import time on every transformed document.
func importedAt(fn pipeline.TransformFunc, now func() time.Time) pipeline.TransformFunc {
	return func(d models.Document) (string, models.Document, error) {
		id, out, err := fn(d)
		if err != nil {
			return id, out, err
		}
		out["imported_at"] = now().UTC().Format(time.RFC3339)
		return id, out, nil
	}
}
