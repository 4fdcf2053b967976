package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/pipeline"
	"github.com/kezlya/solr2es/records"
	"github.com/kezlya/solr2es/transform"
)

func newIngestCSVCmd(o *rootOptions) *cobra.Command {
	var (
		profile  string
		idColumn string
		fields   map[string]string
		coerce   bool
		commit   bool
		buffer   int
	)

	cmd := &cobra.Command{
		Use:   "ingest-csv FILE",
		Short: "Set Solr fields from the columns of a CSV file",
		Long: `Read a CSV file with a header row and send one atomic update per row,
setting Solr fields from CSV columns.

The column layout comes from a named profile (built in: sha1sum, smqtk;
more under ingest: in the config file) or from --id-column and --field.`,
		Example: `  solr2es ingest-csv --profile sha1sum sha1sums.csv
  solr2es ingest-csv --id-column path --field md5=md5_s_md hashes.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p transform.CSVProfile
			if profile != "" {
				var err error
				if p, err = o.cfg.Profile(profile); err != nil {
					return err
				}
			}
			if idColumn != "" {
				p.IDColumn = idColumn
			}
			if len(fields) > 0 {
				p.Fields = fields
			}
			if cmd.Flags().Changed("coerce") {
				p.Coerce = coerce
			}
			if p.IDColumn == "" || len(p.Fields) == 0 {
				return fmt.Errorf("set --profile or --id-column and --field")
			}
			if !cmd.Flags().Changed("commit") {
				commit = o.cfg.Solr.Commit
			}
			if buffer <= 0 {
				buffer = o.cfg.Solr.BufferSize
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			src, err := records.NewCSVReader(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := p.CheckHeader(src.Header()); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			solr, err := o.newSolr()
			if err != nil {
				return err
			}
			updater := solr.NewUpdater(buffer, commit)
			stats, err := pipeline.Run(cmd.Context(), src, p.Transform, updater, o.pipelineOptions("ingest-csv"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %d updates (%d rows failed)\n", updater.Count(), stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Named column layout")
	cmd.Flags().StringVar(&idColumn, "id-column", "", "Column holding the Solr document id")
	cmd.Flags().StringToStringVar(&fields, "field", nil, "column=solr_field mapping (repeatable)")
	cmd.Flags().BoolVar(&coerce, "coerce", false, "Convert numeric and boolean text before sending")
	cmd.Flags().BoolVar(&commit, "commit", true, "Commit after the last update (default from config)")
	cmd.Flags().IntVar(&buffer, "buffer", 0, "Updates per request (default from config)")
	return cmd
}
