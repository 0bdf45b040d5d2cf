package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fsort/internal/config"
	fserrors "fsort/internal/errors"
	"fsort/internal/paths"
	"fsort/internal/slogutil"
	"fsort/internal/storage"
	"fsort/internal/version"
)

var (
	dataDirFlag string
	verbosity   int
	quietFlag   bool
)

// app holds what every command needs once flags are parsed.
type app struct {
	dataDir string
	cfg     *config.Config
	logger  *slog.Logger
	factory *slogutil.LoggerFactory
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "fsort",
	Short: "fsort - cache-first file categorization",
	Long: `fsort sorts the entries of a directory into "Category : Subcategory" pairs.

Every decision is cached in a local database, so a file that was categorized
once is never sent to the language model again.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil && current.factory != nil {
			_ = current.factory.Close()
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate("fsort version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		fmt.Sprintf("Data directory (default: $%s or ~/%s)", paths.HomeEnvVar, paths.DefaultHome))
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase console log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Silence console logs and progress")
}

func setupApp(cmd *cobra.Command, args []string) error {
	dataDir, err := paths.EnsureHome(dataDirFlag)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return fserrors.New(fserrors.ConfigInvalid, "failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return fserrors.New(fserrors.ConfigInvalid, "configuration is invalid", err)
	}

	var cliLevel *slog.Level
	if quietFlag || verbosity > 0 {
		level := slogutil.LevelFromVerbosity(verbosity, quietFlag)
		cliLevel = &level
	}
	factory := slogutil.NewLoggerFactory(dataDir, cfg, cliLevel)

	current = &app{
		dataDir: dataDir,
		cfg:     cfg,
		logger:  factory.CLILogger(),
		factory: factory,
	}
	current.logger.Debug("fsort starting", "version", version.Version, "dataDir", dataDir, "command", cmd.Name())
	return nil
}

// openStore opens the configured taxonomy store.
func (a *app) openStore() (storage.TaxonomyStore, error) {
	store, err := storage.OpenStore(a.cfg.Storage.Backend, a.dataDir, a.logger)
	if err != nil {
		return nil, fserrors.New(fserrors.StorageFailed, "failed to open the categorization cache", err)
	}
	return store, nil
}

func newContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
