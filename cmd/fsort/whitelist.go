package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	fserrors "fsort/internal/errors"
	"fsort/internal/paths"
	"fsort/internal/taxonomy"
	"fsort/internal/whitelist"
)

var (
	whitelistFormat        string
	whitelistCategories    []string
	whitelistSubcategories []string
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage named category whitelists",
	Long: `Whitelists restrict the categories the classifier is asked to choose from.
They live in whitelists.toml inside the data directory.`,
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelist names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseOutputFormat(whitelistFormat)
		if err != nil {
			return err
		}
		f, err := whitelist.Load(paths.WhitelistPath(current.dataDir))
		if err != nil {
			return err
		}
		names := f.Names()
		if format == FormatJSON {
			return writeJSON(os.Stdout, names)
		}
		if len(names) == 0 {
			fmt.Println("No whitelists defined")
			return nil
		}
		for _, n := range names {
			marker := " "
			if strings.EqualFold(n, current.cfg.Prompt.Whitelist) {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, n)
		}
		return nil
	},
}

var whitelistShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseOutputFormat(whitelistFormat)
		if err != nil {
			return err
		}
		f, err := whitelist.Load(paths.WhitelistPath(current.dataDir))
		if err != nil {
			return err
		}
		wl, err := f.Get(args[0])
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return writeJSON(os.Stdout, wl)
		}
		fmt.Print(formatWhitelistHuman(wl))
		return nil
	},
}

var whitelistSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or replace a whitelist",
	Example: `  fsort whitelist set media --categories Images,Video,Audio
  fsort whitelist set work --categories Documents --subcategories Invoices,Contracts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wl := taxonomy.NewWhitelist(args[0], whitelistCategories, whitelistSubcategories)
		if wl.Name == "" {
			return fserrors.New(fserrors.InvalidInput, "whitelist name must not be empty", nil)
		}
		if wl.Empty() {
			return fserrors.New(fserrors.InvalidInput, "give at least one of --categories or --subcategories", nil)
		}

		path := paths.WhitelistPath(current.dataDir)
		f, err := whitelist.Load(path)
		if err != nil {
			return err
		}
		f.Set(wl)
		if err := f.Save(path); err != nil {
			return fserrors.New(fserrors.InternalError, "failed to save whitelists", err)
		}
		current.logger.Info("whitelist saved", "name", wl.Name, "categories", len(wl.Categories), "subcategories", len(wl.Subcategories))
		fmt.Printf("Saved whitelist %s\n", wl.Name)
		return nil
	},
}

var whitelistDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a whitelist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := paths.WhitelistPath(current.dataDir)
		f, err := whitelist.Load(path)
		if err != nil {
			return err
		}
		if !f.Delete(args[0]) {
			return fserrors.New(fserrors.WhitelistNotFound, fmt.Sprintf("whitelist %q not found", args[0]), nil)
		}
		if err := f.Save(path); err != nil {
			return fserrors.New(fserrors.InternalError, "failed to save whitelists", err)
		}
		fmt.Printf("Deleted whitelist %s\n", args[0])
		return nil
	},
}

func init() {
	whitelistCmd.PersistentFlags().StringVar(&whitelistFormat, "format", "human", "Output format (human, json)")
	whitelistSetCmd.Flags().StringSliceVar(&whitelistCategories, "categories", nil, "Allowed categories (comma separated)")
	whitelistSetCmd.Flags().StringSliceVar(&whitelistSubcategories, "subcategories", nil, "Allowed subcategories (comma separated)")

	whitelistCmd.AddCommand(whitelistListCmd, whitelistShowCmd, whitelistSetCmd, whitelistDeleteCmd)
	rootCmd.AddCommand(whitelistCmd)
}

func formatWhitelistHuman(wl taxonomy.Whitelist) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Whitelist: %s\n", wl.Name)
	fmt.Fprintf(&b, "  Categories:    %s\n", joinOrAny(wl.Categories))
	fmt.Fprintf(&b, "  Subcategories: %s\n", joinOrAny(wl.Subcategories))
	return b.String()
}

func joinOrAny(list []string) string {
	if len(list) == 0 {
		return "(any)"
	}
	return strings.Join(list, ", ")
}
