package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/pipeline"
)

func newSolrDumpCmd(o *rootOptions) *cobra.Command {
	var (
		query string
		fl    string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "solr-dump",
		Short: "Write the documents matching a Solr query to a JSON lines file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if query != "" {
				o.cfg.Solr.Query = query
			}
			if fl != "" {
				o.cfg.Solr.Fl = fl
			}
			solr, err := o.newSolr()
			if err != nil {
				return err
			}

			file, err := createJSONL(out)
			if err != nil {
				return err
			}
			defer file.abort()

			stats, err := pipeline.Run(cmd.Context(), solr.Query(o.solrQuery()), pipeline.Identity("id"), file, o.pipelineOptions("solr-dump"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d docs to %s\n", stats.Written, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Solr query (default from config)")
	cmd.Flags().StringVar(&fl, "fl", "", "Fields to return (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "docs.jsonl", "Output file")
	return cmd
}
