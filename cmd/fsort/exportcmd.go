package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	fserrors "fsort/internal/errors"
	"fsort/internal/export"
	"fsort/internal/maintenance"
	"fsort/internal/paths"
)

var (
	exportFormat    string
	exportZstd      bool
	exportOutput    string
	exportRecursive bool
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Export the cached categorization plan of a directory",
	Long: `Write the cached categories of <dir> as a plan other tools can consume.

Formats: json, yaml, toml and md (a readable report). Add --zstd to
compress the output. Without -o the plan goes to stdout.

Examples:
  fsort export ~/Downloads
  fsort export ~/Downloads --format yaml -o plan.yaml
  fsort export ~/Downloads -r --format json --zstd -o plan`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Plan format (json, yaml, toml, md)")
	exportCmd.Flags().BoolVar(&exportZstd, "zstd", false, "Compress the plan with zstd")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().BoolVarP(&exportRecursive, "recursive", "r", false, "Include subdirectories")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	if exportZstd && exportOutput == "" {
		return fserrors.New(fserrors.InvalidInput, "--zstd needs --output; compressed plans are not written to a terminal", nil)
	}

	dir := paths.CleanDir(args[0])
	store, err := current.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := maintenance.LoadCachedEntries(newContext(cmd), store, dir, exportRecursive)
	if err != nil {
		return err
	}
	plan := export.NewPlan(dir, exportRecursive, entries, time.Now())

	var w io.Writer = os.Stdout
	target := outputPath(exportOutput, format, exportZstd)
	if target != "" {
		f, err := os.Create(target)
		if err != nil {
			return fserrors.New(fserrors.InvalidInput, "failed to create output file", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, plan, format, exportZstd); err != nil {
		return fserrors.New(fserrors.InternalError, "failed to write plan", err)
	}

	current.logger.Info("plan exported",
		"dir", dir,
		"format", string(format),
		"entries", len(plan.Entries),
		"pending", plan.Pending,
		"duration", time.Since(start).Milliseconds(),
	)
	if target != "" {
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(plan.Entries), target)
	}
	return nil
}

// outputPath appends the format extension when out has none.
func outputPath(out string, format export.Format, compressed bool) string {
	if out == "" || filepath.Ext(out) != "" && !strings.HasSuffix(out, ".") {
		return out
	}
	return strings.TrimSuffix(out, ".") + export.Extension(format, compressed)
}
