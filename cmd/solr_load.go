package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/models"
	"github.com/kezlya/solr2es/pipeline"
	"github.com/kezlya/solr2es/records"
	"github.com/kezlya/solr2es/schema"
	"github.com/kezlya/solr2es/transform"
)

func newSolrLoadCmd(o *rootOptions) *cobra.Command {
	var (
		eval   bool
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "solr-load FILE",
		Short: "Index a JSON lines file into Solr using dynamic field names",
		Long: `Read one document per line and index it into Solr. Field names are
rewritten to dynamic-field names from the value type (title -> title_t,
width -> width_i, tags -> tags_ts ...) following schema: in the config.
With --eval, textual numbers and booleans are converted first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("commit") {
				commit = o.cfg.Solr.Commit
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			solr, err := o.newSolr()
			if err != nil {
				return err
			}
			updater := solr.NewUpdater(o.cfg.Solr.BufferSize, commit)
			mapper := schema.NewFieldMapper(o.cfg.Schema)

			stats, err := pipeline.Run(cmd.Context(), records.NewJSONLReader(f), dynamicFields(mapper, eval), updater, o.pipelineOptions("solr-load"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d docs (%d failed)\n", updater.Count(), stats.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&eval, "eval", true, "Convert numeric and boolean text before naming fields")
	cmd.Flags().BoolVar(&commit, "commit", true, "Commit after the last batch (default from config)")
	return cmd
}

func dynamicFields(mapper *schema.FieldMapper, eval bool) pipeline.TransformFunc {
	return func(d models.Document) (string, models.Document, error) {
		id, ok := d.StringField("id")
		if !ok {
			return "", nil, transform.ErrNoID
		}
		fields, err := mapper.MapFields(d, eval)
		if err != nil {
			return "", nil, err
		}
		return id, models.Document(fields), nil
	}
}
