package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/pipeline"
	"github.com/kezlya/solr2es/records"
	"github.com/kezlya/solr2es/transform"
)

func newUnsetFieldsCmd(o *rootOptions) *cobra.Command {
	var (
		query  string
		fields []string
		file   string
		commit bool
	)

	cmd := &cobra.Command{
		Use:   "unset-fields",
		Short: "Remove fields from every Solr document matching a query",
		Long: `Store the ids matching --query in a JSON lines file, then read the file
back and send one atomic update per document setting each --field to null.

Keeping the ids on disk first means the update does not change the result
set being paged through, and a failed run can be inspected.`,
		Example: `  solr2es unset-fields -q 'lastModified:[1960-01-01T00:00:00Z TO 2005-12-31T00:00:00Z]'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(fields) == 0 {
				return fmt.Errorf("no fields to unset")
			}
			solr, err := o.newSolr()
			if err != nil {
				return err
			}

			o.cfg.Solr.Query = query
			o.cfg.Solr.Fl = "id"
			out, err := createJSONL(file)
			if err != nil {
				return err
			}
			defer out.abort()
			dumped, err := pipeline.Run(cmd.Context(), solr.Query(o.solrQuery()), pipeline.Identity("id"), out, o.pipelineOptions("unset-fields:dump"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d docs to %s\n", dumped.Written, file)

			in, err := os.Open(file)
			if err != nil {
				return err
			}
			defer in.Close()

			updater := solr.NewUpdater(o.cfg.Solr.BufferSize, commit)
			stats, err := pipeline.Run(cmd.Context(), records.NewJSONLReader(in), transform.Unset(fields), updater, o.pipelineOptions("unset-fields:update"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d docs\n", stats.Written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Solr query selecting the documents")
	cmd.Flags().StringSliceVarP(&fields, "field", "f", []string{"lastModified", "dates"}, "Field to unset (repeatable)")
	cmd.Flags().StringVar(&file, "file", "docs.jsonl", "Intermediate id file")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit after the last update")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}
