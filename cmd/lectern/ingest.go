package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/cliout"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/pipeline"
)

var ingestQuiet bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a PDF file or a directory of PDFs",
	Long: `Ingest a PDF file or a directory of PDFs into the vector index.

Each document is extracted, cleaned, chunked, embedded, and indexed.
When a directory is given, every PDF in it is processed; failures on
individual documents are reported but do not stop the batch.

Examples:
  lectern ingest book.pdf
  lectern ingest ~/books/
  lectern ingest book.pdf -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg := cfgMgr.Get()
		h, err := getHome()
		if err != nil {
			return err
		}

		var onProgress pipeline.ProgressFunc
		if !ingestQuiet {
			onProgress = func(p pipeline.Progress) {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", p.Percent, p.Message)
			}
		}

		p, err := buildPipeline(ctx, cfg, h, onProgress)
		if err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			// Directory runs can take a while; config edits to embedding
			// pacing apply to subsequent batches without a restart.
			cfgMgr.OnChange(func(c *config.Config) {
				p.ApplyRateLimit(c.Embedding.RequestsPerMinute)
			})
			cfgMgr.WatchConfig()

			batch, err := p.IngestDir(ctx, path)
			if batch != nil {
				if outErr := cliout.Output(batch); outErr != nil {
					return outErr
				}
			}
			return err
		}

		report, err := p.Ingest(ctx, path)
		if err != nil {
			return err
		}
		return cliout.Output(report)
	},
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.AddCommand(ingestCmd)
}
