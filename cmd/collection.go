package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/catalog"
)

var collectionUser string

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage document collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		col, err := rt.catalog.CreateCollection(cmd.Context(), args[0], collectionUser)
		if err != nil {
			return err
		}
		fmt.Printf("Created collection %s (%s)\n", col.Name, col.ID)
		return nil
	},
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		cols, err := rt.catalog.ListCollections(cmd.Context(), collectionUser)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			fmt.Println("No collections")
			return nil
		}
		for _, col := range cols {
			n, err := rt.catalog.CountDocuments(cmd.Context(), catalog.Scope{UserID: collectionUser, CollectionID: col.ID})
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s  (%d documents)\n", col.ID, col.Name, n)
		}
		return nil
	},
}

func init() {
	collectionCmd.PersistentFlags().StringVar(&collectionUser, "user", "local", "owner scope")
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	rootCmd.AddCommand(collectionCmd)
}
