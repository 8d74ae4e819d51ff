package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/catalog"
)

var (
	ingestUser         string
	ingestCollection   string
	ingestDocumentType string
	ingestCaseNumber   string
	ingestOrderDate    string
	ingestAct          string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pattern>...",
	Short: "Ingest text documents into the catalog and vector index",
	Long: `Reads the files matching the given glob patterns (** is supported),
chunks and embeds them, and registers each file as a document. Metadata
flags apply to every matched file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		paths, err := expandPatterns(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files matched")
		}

		bar := progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Ingesting"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		var failed int
		for _, path := range paths {
			text, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nskipping %s: %v\n", path, err)
				failed++
				bar.Add(1)
				continue
			}

			doc := &catalog.Document{
				Filename:     filepath.Base(path),
				UserID:       ingestUser,
				CollectionID: ingestCollection,
				Attributes: catalog.Attributes{
					DocumentType: ingestDocumentType,
					CaseNumber:   ingestCaseNumber,
					OrderDate:    ingestOrderDate,
					Act:          ingestAct,
				},
			}
			if err := rt.ingestor.IngestText(cmd.Context(), doc, string(text)); err != nil {
				fmt.Fprintf(os.Stderr, "\ningest %s failed: %v\n", path, err)
				failed++
			}
			bar.Add(1)
		}

		fmt.Printf("Ingested %d of %d files\n", len(paths)-failed, len(paths))
		if failed > 0 {
			return fmt.Errorf("%d files failed", failed)
		}
		return nil
	},
}

// expandPatterns resolves glob patterns to a sorted, deduplicated list
// of regular files.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "local", "owner of the ingested documents")
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "collection ID to assign documents to")
	ingestCmd.Flags().StringVar(&ingestDocumentType, "type", "", "document type metadata")
	ingestCmd.Flags().StringVar(&ingestCaseNumber, "case", "", "case number metadata")
	ingestCmd.Flags().StringVar(&ingestOrderDate, "order-date", "", "order date metadata")
	ingestCmd.Flags().StringVar(&ingestAct, "act", "", "act metadata")
	rootCmd.AddCommand(ingestCmd)
}
