package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fsort/internal/categorize"
	fserrors "fsort/internal/errors"
	"fsort/internal/paths"
	"fsort/internal/storage"
	"fsort/internal/taxonomy"
)

var (
	assignKind   string
	assignRename string
)

var assignCmd = &cobra.Command{
	Use:   "assign <path> <category> <subcategory>",
	Short: "Record a category for one entry by hand",
	Long: `Store a manual decision for a file or folder. The entry is taken off the
review list and will be answered from the cache from now on.

Examples:
  fsort assign ~/Downloads/IMG_0001.png Images Photos
  fsort assign ~/Downloads/old-invoices Documents Invoices --kind directory
  fsort assign ~/Downloads/IMG_0001.png Images Photos --rename beach.png`,
	Args: cobra.ExactArgs(3),
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().StringVar(&assignKind, "kind", "", "Entry kind (file, directory); detected from disk when omitted")
	assignCmd.Flags().StringVar(&assignRename, "rename", "", "Suggested new name to keep with the entry")
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	path := paths.CleanDir(args[0])
	cat, sub := categorize.Sanitize(args[1]), categorize.Sanitize(args[2])
	if cat == "" || sub == "" {
		return fserrors.New(fserrors.InvalidInput, "category and subcategory must not be empty", nil)
	}

	kind, err := detectKind(path, assignKind)
	if err != nil {
		return err
	}

	store, err := current.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := newContext(cmd)
	dir, name := filepath.Dir(path), filepath.Base(path)

	suggested := assignRename
	if suggested == "" {
		if row, err := store.Lookup(ctx, dir, name, kind); err == nil && row != nil {
			suggested = row.SuggestedName
		}
	}
	if err := assign(ctx, store, dir, name, kind, cat, sub, suggested); err != nil {
		return err
	}

	current.logger.Info("Manual assignment", "path", path, "category", cat, "subcategory", sub)
	fmt.Printf("Assigned: %s -> %s : %s\n", displayName(name, kind), cat, sub)
	return nil
}

// assign writes a resolved, reviewed row for the entry.
func assign(ctx context.Context, store storage.TaxonomyStore, dir, name string, kind taxonomy.EntryKind, cat, sub, suggested string) error {
	id, err := store.Resolve(ctx, cat, sub)
	if err != nil {
		return fserrors.New(fserrors.StorageFailed, "failed to resolve category", err)
	}
	if err := store.UpsertFile(ctx, dir, name, kind, id, false, suggested); err != nil {
		return fserrors.New(fserrors.StorageFailed, "failed to save assignment", err)
	}
	return nil
}

// detectKind parses flag, or stats path when flag is empty.
func detectKind(path, flag string) (taxonomy.EntryKind, error) {
	if flag != "" {
		kind, ok := taxonomy.ParseEntryKind(flag)
		if !ok {
			return "", fserrors.New(fserrors.InvalidInput, fmt.Sprintf("unknown kind %q (want file or directory)", flag), nil)
		}
		return kind, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fserrors.New(fserrors.InvalidInput, fmt.Sprintf("cannot detect the kind of %s; pass --kind", path), err)
	}
	if info.IsDir() {
		return taxonomy.Directory, nil
	}
	return taxonomy.File, nil
}
