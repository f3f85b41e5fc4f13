package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lectern-ai/lectern/internal/cliout"
	"github.com/lectern-ai/lectern/internal/vecstore"
)

var (
	queryTopK    int
	queryType    string
	queryChapter string
	querySection string
	querySource  string
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search the index for semantically similar chunks",
	Long: `Search the index for chunks semantically similar to the query text.

The query is embedded with the configured provider and matched against
the index by cosine similarity. Results are returned best-first.

Examples:
  lectern query "how does garbage collection work"
  lectern query "binary trees" --top-k 10
  lectern query "recursion" --type definition
  lectern query "sorting" --chapter "Chapter 3: Algorithms"
  lectern query "quicksort" --section "Divide and Conquer"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		text := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		h, err := getHome()
		if err != nil {
			return err
		}

		p, err := buildPipeline(ctx, cfg, h, nil)
		if err != nil {
			return err
		}

		var filter *vecstore.Filter
		if queryType != "" || queryChapter != "" || querySection != "" || querySource != "" {
			filter = &vecstore.Filter{
				Type:         queryType,
				ChapterTitle: queryChapter,
				SectionTitle: querySection,
				Source:       querySource,
			}
		}

		matches, err := p.Query(ctx, text, queryTopK, filter)
		if err != nil {
			return err
		}
		return cliout.Output(matches)
	},
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 5, "Number of results to return")
	queryCmd.Flags().StringVar(&queryType, "type", "", "Filter by chunk type (content, definition, example, exercise)")
	queryCmd.Flags().StringVar(&queryChapter, "chapter", "", "Filter by chapter title")
	queryCmd.Flags().StringVar(&querySection, "section", "", "Filter by section title")
	queryCmd.Flags().StringVar(&querySource, "source", "", "Filter by source document filename")
	rootCmd.AddCommand(queryCmd)
}
