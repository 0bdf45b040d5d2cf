package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var taxonomyFormat string

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "List every known category pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseOutputFormat(taxonomyFormat)
		if err != nil {
			return err
		}
		store, err := current.openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		pairs, err := store.Taxonomy(newContext(cmd))
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return writeJSON(os.Stdout, pairs)
		}
		if len(pairs) == 0 {
			fmt.Println("No categories yet")
			return nil
		}
		for _, p := range pairs {
			fmt.Printf("%4d  %s\n", p.ID, p.Label())
		}
		return nil
	},
}

func init() {
	taxonomyCmd.Flags().StringVar(&taxonomyFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(taxonomyCmd)
}
