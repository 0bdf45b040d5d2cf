// Package categorize resolves filesystem entries to categories, consulting
// the taxonomy cache first and the classifier only on a miss.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"fsort/internal/classifier"
	fserrors "fsort/internal/errors"
	"fsort/internal/prompt"
	"fsort/internal/slogutil"
	"fsort/internal/storage"
	"fsort/internal/taxonomy"
)

// Source records how an entry was resolved.
type Source string

const (
	SourceCache      Source = "cache"
	SourceClassifier Source = "classifier"
	SourceManual     Source = "manual"
	SourceReview     Source = "review"
	sourceSkipped    Source = "skipped"
)

// ResolvedEntry is one result of ResolveBatch. When NeedsReview is set the
// category is empty and Reason says why.
type ResolvedEntry struct {
	Entry         taxonomy.Entry            `json:"entry"`
	Category      taxonomy.ResolvedCategory `json:"category"`
	Source        Source                    `json:"source"`
	NeedsReview   bool                      `json:"needsReview"`
	SuggestedName string                    `json:"suggestedName,omitempty"`
	Reason        string                    `json:"reason,omitempty"`
}

// Options configure an Engine for its whole lifetime.
type Options struct {
	Logger           *slog.Logger
	Whitelist        taxonomy.Whitelist
	Language         prompt.Language
	ConsistencyHints bool
	MaxHints         int
	// EnforceWhitelist sends answers outside the whitelist to manual review
	// instead of only steering the classifier through the prompt.
	EnforceWhitelist bool
	Retry            RetryPolicy
	LocalTimeout     time.Duration
	RemoteTimeout    time.Duration
	PromptLogging    bool
}

// Batch carries per-call collaborators. Every callback is optional.
type Batch struct {
	IsLocalClassifier bool
	Cancel            *CancelToken
	Progress          func(status string)
	Queued            func(entry taxonomy.Entry)
	// Recategorize is told about entries that need a manual decision. It may
	// resolve the row synchronously through the store; the engine re-reads
	// the row afterwards.
	Recategorize func(row taxonomy.CacheRow, reason string)
	// ClassifierFactory is called at most once per batch, on the first miss.
	ClassifierFactory func() (classifier.Classifier, error)
}

// Engine runs batches sequentially against one store.
type Engine struct {
	store  storage.TaxonomyStore
	opts   Options
	logger *slog.Logger

	whitelistContext string
	languageContext  string
}

// NewEngine creates an engine. Zero-valued options take defaults.
func NewEngine(store storage.TaxonomyStore, opts Options) *Engine {
	opts.Retry = opts.Retry.withDefaults()
	if opts.LocalTimeout <= 0 {
		opts.LocalTimeout = 60 * time.Second
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = 10 * time.Second
	}
	if opts.ConsistencyHints && opts.MaxHints <= 0 {
		opts.MaxHints = 5
	}
	opts.Whitelist = opts.Whitelist.Normalized()

	return &Engine{
		store:            store,
		opts:             opts,
		logger:           slogutil.OrDiscard(opts.Logger),
		whitelistContext: prompt.BuildWhitelistContext(opts.Whitelist),
		languageContext:  prompt.BuildLanguageContext(opts.Language),
	}
}

// batchRun holds the state of one ResolveBatch call.
type batchRun struct {
	*Engine
	b       Batch
	results []ResolvedEntry
	hints   *hintTracker
	cls     classifier.Classifier
	timeout time.Duration
}

// errCancelled stops the batch; it never escapes ResolveBatch.
var errCancelled = errors.New("batch cancelled")

// ResolveBatch resolves entries in order and returns one result per entry
// that was not skipped. Cancellation returns the results so far with a nil
// error. An error is returned only when the store is missing or the
// classifier cannot be built, together with the results so far.
func (e *Engine) ResolveBatch(ctx context.Context, entries []taxonomy.Entry, b Batch) ([]ResolvedEntry, error) {
	if e == nil || e.store == nil {
		return nil, fserrors.New(fserrors.InvalidInput, "resolution engine has no taxonomy store", nil)
	}

	run := &batchRun{
		Engine:  e,
		b:       b,
		results: make([]ResolvedEntry, 0, len(entries)),
		hints:   newHintTracker(),
		timeout: e.opts.RemoteTimeout,
	}
	if b.IsLocalClassifier {
		run.timeout = e.opts.LocalTimeout
	}

	start := time.Now()
	for _, entry := range entries {
		if err := run.resolveOne(ctx, entry); err != nil {
			if errors.Is(err, errCancelled) {
				e.logger.Info("Batch cancelled", "resolved", len(run.results), "total", len(entries))
				return run.results, nil
			}
			return run.results, err
		}
	}

	e.logger.Debug("Batch finished", "entries", len(entries), "results", len(run.results), "duration", time.Since(start))
	return run.results, nil
}

func (r *batchRun) cancelled(ctx context.Context) bool {
	return r.b.Cancel.Cancelled() || ctx.Err() != nil
}

func (r *batchRun) progress(format string, args ...any) {
	if r.b.Progress != nil {
		r.b.Progress(fmt.Sprintf(format, args...))
	}
}

func (r *batchRun) resolveOne(ctx context.Context, entry taxonomy.Entry) error {
	if entry.Name == "" && entry.FullPath != "" {
		entry.Name = filepath.Base(entry.FullPath)
	}
	if r.b.Queued != nil {
		r.b.Queued(entry)
	}
	if entry.FullPath == "" || !entry.Kind.Valid() {
		r.skip(entry, fmt.Errorf("invalid entry %q (kind %q)", entry.FullPath, entry.Kind))
		return nil
	}
	dir := entry.Dir()

	row, err := r.store.Lookup(ctx, dir, entry.Name, entry.Kind)
	if err != nil {
		r.skip(entry, err)
		return nil
	}
	if row != nil && row.Resolved() {
		r.accept(entry, row.ResolvedCategory(), SourceCache, row.SuggestedName)
		return nil
	}

	// hits above are still served after a cancel; only misses stop here
	if r.cancelled(ctx) {
		return errCancelled
	}
	if err := r.ensureClassifier(); err != nil {
		return err
	}

	suggested := ""
	if row != nil {
		suggested = row.SuggestedName
	}

	response, reason, err := r.classify(ctx, entry)
	if err != nil {
		return err
	}
	if reason == "" {
		cat, sub, perr := ParseResponse(response)
		switch {
		case perr != nil:
			reason = fmt.Sprintf("could not read a category from the classifier response %q", truncate(response, 120))
		case r.opts.EnforceWhitelist && !r.opts.Whitelist.AllowsCategory(cat):
			reason = fmt.Sprintf("category %q is not in whitelist %q", cat, r.opts.Whitelist.Name)
		case r.opts.EnforceWhitelist && !r.opts.Whitelist.AllowsSubcategory(sub):
			reason = fmt.Sprintf("subcategory %q is not in whitelist %q", sub, r.opts.Whitelist.Name)
		default:
			return r.writeResolved(ctx, entry, cat, sub, suggested)
		}
	}
	return r.writeReview(ctx, entry, reason, suggested)
}

func (r *batchRun) ensureClassifier() error {
	if r.cls != nil {
		return nil
	}
	if r.b.ClassifierFactory == nil {
		return fserrors.New(fserrors.InvalidInput, "cache miss but no classifier factory was provided", nil)
	}
	cls, err := r.b.ClassifierFactory()
	if err == nil && cls == nil {
		err = errors.New("factory returned no classifier")
	}
	if err != nil {
		return fserrors.New(fserrors.ClassifierUnavailable, "failed to create classifier", err)
	}
	cls.SetPromptLogging(r.opts.PromptLogging)
	r.cls = cls
	return nil
}

// classify calls the classifier with retries. It returns either a response
// or a non-empty reason for manual review; the error is errCancelled only.
func (r *batchRun) classify(ctx context.Context, entry taxonomy.Entry) (string, string, error) {
	promptContext := r.promptContext(entry.Dir())
	policy := r.opts.Retry

	for attempt := 1; ; attempt++ {
		if !r.pace(ctx) {
			return "", "", errCancelled
		}
		response, err := r.callOnce(ctx, entry, promptContext)
		if err == nil {
			return response, "", nil
		}
		if ctx.Err() != nil {
			return "", "", errCancelled
		}

		kind := classifier.KindOf(err)
		advised := classifier.RetryAfterOf(err)
		if errors.Is(err, context.DeadlineExceeded) {
			kind, advised = classifier.KindTransient, 0
		}
		if kind != classifier.KindTransient {
			r.logger.Warn("Classifier failed", "path", entry.FullPath, "error", err)
			return "", fmt.Sprintf("classifier error: %v", err), nil
		}
		if attempt >= policy.MaxAttempts {
			r.logger.Warn("Classifier retries exhausted", "path", entry.FullPath, "attempts", attempt, "error", err)
			return "", fmt.Sprintf("classifier unavailable after %d attempts: %v", attempt, err), nil
		}

		delay := policy.Delay(attempt-1, advised)
		r.logger.Info("Transient classifier failure, retrying", "path", entry.FullPath, "attempt", attempt, "delay", delay, "error", err)
		r.progress("Waiting %s before retrying %s", delay.Round(time.Millisecond), entry.Name)
		retriesTotal.Inc()
		if !sleep(ctx, r.b.Cancel, delay) {
			return "", "", errCancelled
		}
	}
}

// pace waits for a rate-limited classifier's next slot under the batch
// context, so the wait is not charged to the call timeout. It reports false
// when the batch was cancelled while waiting.
func (r *batchRun) pace(ctx context.Context) bool {
	p, ok := r.cls.(classifier.Pacer)
	if !ok {
		return true
	}
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if done := r.b.Cancel.Done(); done != nil {
		go func() {
			select {
			case <-done:
				cancel()
			case <-waitCtx.Done():
			}
		}()
	}
	if err := p.Pace(waitCtx); err != nil {
		if r.cancelled(ctx) {
			return false
		}
		// the call itself will report the limiter
		r.logger.Debug("Classifier pacing failed", "error", err)
	}
	return true
}

func (r *batchRun) callOnce(ctx context.Context, entry taxonomy.Entry, promptContext string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.cls.Categorize(callCtx, entry.Name, entry.FullPath, entry.Kind, promptContext)
}

func (r *batchRun) promptContext(dir string) string {
	hint := ""
	if r.opts.ConsistencyHints {
		hint = prompt.BuildConsistencyHint(r.hints.siblings(dir), r.opts.MaxHints)
	}
	return prompt.Join(r.whitelistContext, r.languageContext, hint)
}

func (r *batchRun) writeResolved(ctx context.Context, entry taxonomy.Entry, cat, sub, suggested string) error {
	id, err := r.store.Resolve(ctx, cat, sub)
	if err != nil {
		r.skip(entry, err)
		return nil
	}
	if err := r.store.UpsertFile(ctx, entry.Dir(), entry.Name, entry.Kind, id, false, suggested); err != nil {
		r.skip(entry, err)
		return nil
	}
	r.accept(entry, taxonomy.ResolvedCategory{ID: id, Category: cat, Subcategory: sub}, SourceClassifier, suggested)
	return nil
}

func (r *batchRun) writeReview(ctx context.Context, entry taxonomy.Entry, reason, suggested string) error {
	dir := entry.Dir()
	if err := r.store.UpsertFile(ctx, dir, entry.Name, entry.Kind, taxonomy.Uncategorized, true, suggested); err != nil {
		r.skip(entry, err)
		return nil
	}

	if r.b.Recategorize != nil {
		r.b.Recategorize(taxonomy.CacheRow{
			Dir:           dir,
			FileName:      entry.Name,
			Kind:          entry.Kind,
			TaxonomyID:    taxonomy.Uncategorized,
			SuggestedName: suggested,
			NeedsReview:   true,
			UpdatedAt:     time.Now().UTC(),
		}, reason)

		row, err := r.store.Lookup(ctx, dir, entry.Name, entry.Kind)
		if err != nil {
			r.logger.Warn("Failed to re-read row after recategorization", "path", entry.FullPath, "error", err)
		} else if row != nil && row.Resolved() {
			r.accept(entry, row.ResolvedCategory(), SourceManual, row.SuggestedName)
			return nil
		}
	}

	r.results = append(r.results, ResolvedEntry{
		Entry:         entry,
		Source:        SourceReview,
		NeedsReview:   true,
		SuggestedName: suggested,
		Reason:        reason,
	})
	resolutionsTotal.WithLabelValues(string(SourceReview)).Inc()
	r.progress("Needs review: %s (%s)", entry.Name, reason)
	return nil
}

func (r *batchRun) accept(entry taxonomy.Entry, rc taxonomy.ResolvedCategory, source Source, suggested string) {
	r.results = append(r.results, ResolvedEntry{
		Entry:         entry,
		Category:      rc,
		Source:        source,
		SuggestedName: suggested,
	})
	r.hints.add(entry.Dir(), rc)
	resolutionsTotal.WithLabelValues(string(source)).Inc()
	r.progress("%s: %s -> %s", progressVerb(source), entry.Name, rc.Label())
}

// skip drops an entry after a storage or input failure; the batch goes on.
func (r *batchRun) skip(entry taxonomy.Entry, err error) {
	r.logger.Error("Skipping entry", "path", entry.FullPath, "error", err)
	resolutionsTotal.WithLabelValues(string(sourceSkipped)).Inc()
	r.progress("Skipped: %s (%v)", entry.Name, err)
}

func progressVerb(s Source) string {
	switch s {
	case SourceCache:
		return "Cached"
	case SourceManual:
		return "Assigned"
	default:
		return "Categorized"
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
