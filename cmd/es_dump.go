package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/models"
)

func newESDumpCmd(o *rootOptions) *cobra.Command {
	var (
		index   string
		out     string
		size    int
		idField string
	)

	cmd := &cobra.Command{
		Use:   "es-dump",
		Short: "Write every document of an Elasticsearch index to a JSON lines file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if index == "" {
				index = o.cfg.Elastic.Index
			}
			if index == "" {
				return fmt.Errorf("index not set")
			}
			es, err := o.newElastic()
			if err != nil {
				return err
			}
			defer es.Stop()

			file, err := createJSONL(out)
			if err != nil {
				return err
			}
			defer file.abort()

			ctx := cmd.Context()
			n, err := es.Dump(ctx, index, size, func(id string, source models.Document) error {
				if idField != "" {
					source[idField] = id
				}
				return file.Add(ctx, id, source)
			})
			if err != nil {
				return err
			}
			if err := file.Close(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d docs to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&index, "index", "", "Index to dump (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "docs.jsonl", "Output file")
	cmd.Flags().IntVar(&size, "size", 100, "Hits per scroll page")
	cmd.Flags().StringVar(&idField, "id-field", "_id", "Store the document id under this key; empty to omit")
	return cmd
}
