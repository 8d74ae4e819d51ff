package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askUser       string
	askDocument   string
	askCollection string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against a document or a collection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (askDocument == "") == (askCollection == "") {
			return fmt.Errorf("exactly one of --document or --collection is required")
		}
		question := strings.Join(args, " ")

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()

		if askDocument != "" {
			ans, err := rt.engine.AnswerDocument(ctx, question, askDocument, askUser)
			if err != nil {
				return err
			}
			fmt.Println(ans)
			return nil
		}

		result, err := rt.engine.AnswerCollection(ctx, question, askCollection, askUser)
		if err != nil {
			return err
		}
		fmt.Println(result.Answer)
		if verbose {
			if len(result.ContributingDocuments) > 0 {
				fmt.Printf("\nSources: %s\n", strings.Join(result.ContributingDocuments, ", "))
			}
			if result.SkippedDocuments > 0 {
				fmt.Printf("Skipped documents: %d\n", result.SkippedDocuments)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askUser, "user", "local", "owner scope for the question")
	askCmd.Flags().StringVar(&askDocument, "document", "", "document ID to ask against")
	askCmd.Flags().StringVar(&askCollection, "collection", "", "collection ID to ask against")
	rootCmd.AddCommand(askCmd)
}
