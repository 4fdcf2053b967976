// Package cmd provides the CLI commands for solr2es.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kezlya/solr2es/config"
	"github.com/kezlya/solr2es/logging"
	"github.com/kezlya/solr2es/models"
	"github.com/kezlya/solr2es/pipeline"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
	solrURL    string
	elasticURL string

	cfg            *config.Config
	loggingCleanup func()
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "solr2es",
		Short: "Batch jobs moving documents between Solr and Elasticsearch",
		Long: `solr2es runs one-shot ETL jobs: copy a Solr index into Elasticsearch,
push CSV columns into Solr as atomic updates, unset fields on a query's
matches, and dump or load either store as JSON lines.

Settings come from a YAML file (--config), SOLR2ES_* environment
variables and command flags, in increasing order of precedence.`,
		SilenceUsage:       true,
		PersistentPreRunE:  o.setup,
		PersistentPostRunE: o.teardown,
	}

	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format: text or json")
	cmd.PersistentFlags().StringVar(&o.logFile, "log-file", "", "Also write logs to this file")
	cmd.PersistentFlags().StringVar(&o.solrURL, "solr", "", "Solr core URL")
	cmd.PersistentFlags().StringVar(&o.elasticURL, "elastic", "", "Elasticsearch cluster URL")

	cmd.AddCommand(newSyncCmd(o))
	cmd.AddCommand(newSolrDumpCmd(o))
	cmd.AddCommand(newUnsetFieldsCmd(o))
	cmd.AddCommand(newIngestCSVCmd(o))
	cmd.AddCommand(newSolrLoadCmd(o))
	cmd.AddCommand(newESDumpCmd(o))
	cmd.AddCommand(newESLoadCmd(o))

	return cmd
}

// Execute runs the root command, cancelling the running job on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.solrURL != "" {
		cfg.Solr.URL = o.solrURL
	}
	if o.elasticURL != "" {
		cfg.Elastic.Cluster = o.elasticURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}

	logger, cleanup, err := logging.Setup(logging.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		FilePath: cfg.Log.File,
		Output:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	o.loggingCleanup = cleanup
	return nil
}

func (o *rootOptions) teardown(*cobra.Command, []string) error {
	if o.loggingCleanup != nil {
		o.loggingCleanup()
	}
	return nil
}

func (o *rootOptions) newSolr() (*models.Solr, error) {
	retry := models.DefaultRetryConfig()
	retry.MaxRetries = o.cfg.Solr.Retries
	return models.NewSolr(o.cfg.Solr.URL, models.SolrOptions{
		Timeout: o.cfg.Solr.Timeout,
		Retry:   retry,
	})
}

func (o *rootOptions) newElastic() (*models.Elastic, error) {
	return models.ConnectElastic(models.ElasticConfig{
		URL:      o.cfg.Elastic.Cluster,
		Username: o.cfg.Elastic.Username,
		Password: o.cfg.Elastic.Password,
		Retries:  o.cfg.Elastic.Retries,
	})
}

func (o *rootOptions) solrQuery() models.SolrQuery {
	return models.SolrQuery{
		Query:  o.cfg.Solr.Query,
		Start:  o.cfg.Solr.Start,
		Rows:   o.cfg.Solr.Rows,
		Params: o.cfg.SolrParams(),
	}
}

func (o *rootOptions) pipelineOptions(name string) pipeline.Options {
	return pipeline.Options{
		Name:        name,
		LogDelay:    o.cfg.Import.LogDelay,
		MaxFailures: o.cfg.Import.MaxFailures,
	}
}
