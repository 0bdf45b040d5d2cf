package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fsort/internal/categorize"
	"fsort/internal/classifier"
	"fsort/internal/jobs"
	"fsort/internal/taxonomy"
)

var (
	catWhitelist   string
	catLanguage    string
	catNoHints     bool
	catMetricsAddr string
	catFormat      string
	catInteractive bool
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize <dir>",
	Short: "Categorize the entries of a directory",
	Long: `Resolve every visible file and folder directly inside <dir> to a
"Category : Subcategory" pair. Cached entries are answered from the local
database; only misses are sent to the configured classifier.

Press Ctrl-C to stop after the current entry; results so far are kept.

Examples:
  fsort categorize ~/Downloads
  fsort categorize ~/Downloads --whitelist media --language fr
  fsort categorize ~/Downloads --format json --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runCategorize,
}

func init() {
	categorizeCmd.Flags().StringVar(&catWhitelist, "whitelist", "", "Named whitelist to steer categories (default: prompt.whitelist)")
	categorizeCmd.Flags().StringVar(&catLanguage, "language", "", "Language for category names (default: prompt.language)")
	categorizeCmd.Flags().BoolVar(&catNoHints, "no-cache-hints", false, "Do not hint earlier categories of the same folder")
	categorizeCmd.Flags().StringVar(&catMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	categorizeCmd.Flags().StringVar(&catFormat, "format", "human", "Output format (human, json)")
	categorizeCmd.Flags().BoolVarP(&catInteractive, "interactive", "i", false, "Ask for a category when an entry cannot be resolved")
	rootCmd.AddCommand(categorizeCmd)
}

func runCategorize(cmd *cobra.Command, args []string) error {
	a := current
	format, err := parseOutputFormat(catFormat)
	if err != nil {
		return err
	}
	dir, err := requireDir(args[0])
	if err != nil {
		return err
	}
	entries, err := listEntries(dir)
	if err != nil {
		return err
	}

	opts, err := a.engineOptions(catWhitelist, catLanguage, !catNoHints)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	engine := categorize.NewEngine(store, opts)
	batch := categorize.Batch{
		IsLocalClassifier: classifier.IsLocal(a.cfg.Classifier.Provider),
		ClassifierFactory: a.classifierFactory(),
	}
	if !quietFlag {
		batch.Progress = func(status string) { fmt.Fprintln(os.Stderr, status) }
	}
	if catInteractive {
		batch.Recategorize = promptRecategorizer(store, os.Stdin, os.Stderr)
	}

	runner := jobs.NewRunner(a.logger, jobs.DefaultRunnerConfig())
	runner.Start()
	defer func() { _ = runner.Stop(10 * time.Second) }()

	var results []categorize.ResolvedEntry
	job, err := runner.Submit(jobs.JobTypeCategorize, dir, func(ctx context.Context, token *categorize.CancelToken, progress func(int, int)) error {
		b := batch
		b.Cancel = token
		queued := 0
		b.Queued = func(taxonomy.Entry) {
			queued++
			progress(queued, len(entries))
		}
		var rerr error
		results, rerr = engine.ResolveBatch(ctx, entries, b)
		return rerr
	})
	if err != nil {
		return err
	}

	final, err := superviseJob(newContext(cmd), a, runner, job.ID)
	if err != nil {
		return err
	}

	resp := newCategorizeResponse(dir, final.ID, string(final.Status), len(entries), results)
	if format == FormatJSON {
		if err := writeJSON(os.Stdout, resp); err != nil {
			return err
		}
	} else {
		fmt.Print(formatCategorizeHuman(resp))
	}

	if final.Status == jobs.JobFailed {
		return errors.New(final.Error)
	}
	return nil
}

// superviseJob waits for the job while forwarding SIGINT/SIGTERM to
// Runner.Cancel and, when configured, serving metrics. The first signal
// cancels the batch; the job still finishes its current entry.
func superviseJob(ctx context.Context, a *app, runner *jobs.Runner, jobID string) (jobs.Job, error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var final jobs.Job
	g.Go(func() error {
		defer cancel()
		job, err := runner.Wait(gctx, jobID)
		final = job
		return err
	})

	g.Go(func() error {
		forwardFirstSignal(gctx, sigCh, signal.Stop, func(sig os.Signal) {
			a.logger.Warn("Received signal, stopping after the current entry; repeat to quit now", "signal", sig.String())
			if err := runner.Cancel(jobID); err != nil {
				a.logger.Debug("Cancel ignored", "error", err)
			}
		})
		return nil
	})

	if catMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: catMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			a.logger.Info("Serving metrics", "addr", catMetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		_ = runner.Cancel(jobID)
		return final, err
	}
	return final, nil
}

// forwardFirstSignal hands the first signal on sigCh to onSignal after
// releasing sigCh, so a second signal gets the default handling and
// terminates the process.
func forwardFirstSignal(ctx context.Context, sigCh chan os.Signal, release func(chan<- os.Signal), onSignal func(os.Signal)) {
	select {
	case sig := <-sigCh:
		release(sigCh)
		onSignal(sig)
	case <-ctx.Done():
	}
}
