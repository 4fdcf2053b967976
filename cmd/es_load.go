package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/models"
	"github.com/kezlya/solr2es/pipeline"
	"github.com/kezlya/solr2es/records"
)

func newESLoadCmd(o *rootOptions) *cobra.Command {
	var (
		index   string
		idField string
		batch   int
	)

	cmd := &cobra.Command{
		Use:   "es-load FILE",
		Short: "Bulk index a JSON lines file into Elasticsearch",
		Long: `Read one document per line and bulk index it. The document id is taken
from --id-field and removed from the body; lines without it are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if index == "" {
				index = o.cfg.Elastic.Index
			}
			if index == "" {
				return fmt.Errorf("index not set")
			}
			if batch <= 0 {
				batch = o.cfg.Elastic.Batch
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			es, err := o.newElastic()
			if err != nil {
				return err
			}
			defer es.Stop()

			sink := es.NewBulkIndexer(index, batch)
			stats, err := pipeline.Run(cmd.Context(), records.NewJSONLReader(f), popID(idField), sink, o.pipelineOptions("es-load"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d docs (%d skipped)\n", sink.Count(), stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&index, "index", "", "Destination index (default from config)")
	cmd.Flags().StringVar(&idField, "id-field", "_id", "Field holding the document id")
	cmd.Flags().IntVar(&batch, "batch", 0, "Documents per bulk request (default from config)")
	return cmd
}

// popID moves idField out of the document body and into the bulk action.
func popID(idField string) pipeline.TransformFunc {
	return func(d models.Document) (string, models.Document, error) {
		id, ok := d.StringField(idField)
		if !ok {
			slog.Warn("no id set to document, skipped", slog.String("id_field", idField))
			return "", nil, pipeline.ErrSkip
		}
		out := d.Clone()
		delete(out, idField)
		return id, out, nil
	}
}
