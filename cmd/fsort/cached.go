package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fsort/internal/maintenance"
	"fsort/internal/paths"
)

var (
	cachedRecursive bool
	cachedFormat    string
)

var cachedCmd = &cobra.Command{
	Use:   "cached <dir>",
	Short: "Show cached categories for a directory",
	Long: `List the categorization cache for <dir>. With -r, entries of every
subdirectory are included.

Examples:
  fsort cached ~/Downloads
  fsort cached ~/Downloads -r --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCached(cmd, args[0], false)
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <dir>",
	Short: "List entries waiting for a manual category",
	Long: `List the entries of <dir> that the classifier could not resolve.
Resolve them with "fsort assign".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCached(cmd, args[0], true)
	},
}

func init() {
	for _, c := range []*cobra.Command{cachedCmd, reviewCmd} {
		c.Flags().BoolVarP(&cachedRecursive, "recursive", "r", false, "Include subdirectories")
		c.Flags().StringVar(&cachedFormat, "format", "human", "Output format (human, json)")
		rootCmd.AddCommand(c)
	}
}

func runCached(cmd *cobra.Command, arg string, pendingOnly bool) error {
	format, err := parseOutputFormat(cachedFormat)
	if err != nil {
		return err
	}
	dir := paths.CleanDir(arg)

	store, err := current.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := maintenance.LoadCachedEntries(newContext(cmd), store, dir, cachedRecursive)
	if err != nil {
		return err
	}
	if pendingOnly {
		entries = maintenance.PendingReview(entries)
	}

	if format == FormatJSON {
		if entries == nil {
			entries = []maintenance.CachedEntry{}
		}
		return writeJSON(os.Stdout, entries)
	}
	fmt.Print(formatCachedHuman(dir, entries, cachedRecursive))
	return nil
}
