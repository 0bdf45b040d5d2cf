package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"fsort/internal/maintenance"
	"fsort/internal/paths"
	"fsort/internal/storage"
)

var (
	pruneWatch     bool
	pruneRecursive bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune <dir>",
	Short: "Remove cached entries whose files are gone",
	Long: `Delete cache rows of <dir> for files and folders that no longer exist.

With --watch, keep running and prune as soon as entries are deleted or
renamed. Add -r to cover subdirectories too.

Examples:
  fsort prune ~/Downloads
  fsort prune ~/Downloads --watch -r`,
	Args: cobra.ExactArgs(1),
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneWatch, "watch", false, "Keep watching and prune on deletes and renames")
	pruneCmd.Flags().BoolVarP(&pruneRecursive, "recursive", "r", false, "Include subdirectories")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	dir := paths.CleanDir(args[0])

	store, err := current.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := newContext(cmd)
	dirs := []string{dir}
	if pruneRecursive {
		if dirs, err = cachedDirs(ctx, store, dir); err != nil {
			return err
		}
	}

	total := 0
	for _, d := range dirs {
		removed, err := maintenance.PruneEmptyCachedEntries(ctx, store, d)
		if err != nil {
			return err
		}
		printPruned(d, removed)
		total += len(removed)
	}
	fmt.Printf("Pruned %d cached entries\n", total)

	if !pruneWatch {
		return nil
	}

	cfg := maintenance.DefaultWatchConfig()
	cfg.DebounceMs = current.cfg.Watch.DebounceMs
	w, err := maintenance.NewWatcher(store, cfg, current.logger, printPruned)
	if err != nil {
		return err
	}
	defer w.Close()

	watchDirs, err := watchTargets(dir, pruneRecursive)
	if err != nil {
		return err
	}
	for _, d := range watchDirs {
		if err := w.Watch(d); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Printf("Watching %d directories; press Ctrl-C to stop\n", len(watchDirs))
	return w.Run(ctx)
}

func printPruned(dir string, removed []maintenance.CachedEntry) {
	for _, e := range removed {
		fmt.Printf("Pruned: %s\n", displayName(e.FullPath(), e.Kind))
	}
}

// cachedDirs returns dir and every directory below it that has cache rows.
func cachedDirs(ctx context.Context, store storage.TaxonomyStore, dir string) ([]string, error) {
	entries, err := maintenance.LoadCachedEntries(ctx, store, dir, true)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{dir: true}
	dirs := []string{dir}
	for _, e := range entries {
		if !seen[e.FilePath] {
			seen[e.FilePath] = true
			dirs = append(dirs, e.FilePath)
		}
	}
	return dirs, nil
}

// watchTargets returns dir and, when recursive, its visible subdirectories.
func watchTargets(dir string, recursive bool) ([]string, error) {
	if !recursive {
		return []string{dir}, nil
	}
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
