package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fsort/internal/categorize"
	"fsort/internal/classifier"
	"fsort/internal/config"
	"fsort/internal/paths"
	"fsort/internal/prompt"
	"fsort/internal/storage"
	"fsort/internal/taxonomy"
	"fsort/internal/whitelist"
)

// engineOptions maps configuration onto engine options. whitelistName and
// languageCode override the configured ones when non-empty.
func (a *app) engineOptions(whitelistName, languageCode string, hints bool) (categorize.Options, error) {
	cfg := a.cfg

	if languageCode == "" {
		languageCode = cfg.Prompt.Language
	}
	lang, err := prompt.ParseLanguage(languageCode)
	if err != nil {
		return categorize.Options{}, err
	}

	wl, err := a.loadWhitelist(whitelistName)
	if err != nil {
		return categorize.Options{}, err
	}

	return categorize.Options{
		Logger:           a.logger,
		Whitelist:        wl,
		Language:         lang,
		ConsistencyHints: hints && cfg.Prompt.ConsistencyHints,
		MaxHints:         cfg.Prompt.MaxHints,
		EnforceWhitelist: cfg.Resolution.EnforceWhitelist,
		Retry:            retryPolicy(cfg.Resolution),
		LocalTimeout:     time.Duration(cfg.Resolution.LocalTimeoutSeconds) * time.Second,
		RemoteTimeout:    time.Duration(cfg.Resolution.RemoteTimeoutSeconds) * time.Second,
		PromptLogging:    cfg.Prompt.PromptLogging,
	}, nil
}

func retryPolicy(r config.ResolutionConfig) categorize.RetryPolicy {
	return categorize.RetryPolicy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   time.Duration(r.BaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(r.MaxDelayMs) * time.Millisecond,
	}
}

// loadWhitelist returns the named whitelist, the configured default when
// name is empty, or an empty whitelist when neither is set.
func (a *app) loadWhitelist(name string) (taxonomy.Whitelist, error) {
	if name == "" {
		name = a.cfg.Prompt.Whitelist
	}
	if name == "" {
		return taxonomy.Whitelist{}, nil
	}
	f, err := whitelist.Load(paths.WhitelistPath(a.dataDir))
	if err != nil {
		return taxonomy.Whitelist{}, err
	}
	return f.Get(name)
}

func (a *app) classifierFactory() func() (classifier.Classifier, error) {
	return func() (classifier.Classifier, error) {
		return classifier.New(a.cfg.Classifier, a.logger)
	}
}

// listEntries returns the visible entries directly inside dir, sorted by
// name. Hidden entries (leading dot) are skipped.
func listEntries(dir string) ([]taxonomy.Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	entries := make([]taxonomy.Entry, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		kind := taxonomy.File
		if de.IsDir() {
			kind = taxonomy.Directory
		}
		entries = append(entries, taxonomy.Entry{
			FullPath: filepath.Join(dir, name),
			Name:     name,
			Kind:     kind,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// requireDir resolves dir to an absolute path and checks it is a directory.
func requireDir(dir string) (string, error) {
	dir = paths.CleanDir(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}

// promptRecategorizer asks on in/out for a category whenever the engine
// cannot resolve an entry. An empty answer leaves the entry for review.
func promptRecategorizer(store storage.TaxonomyStore, in io.Reader, out io.Writer) func(taxonomy.CacheRow, string) {
	reader := bufio.NewReader(in)
	return func(row taxonomy.CacheRow, reason string) {
		fmt.Fprintf(out, "\n%s needs a category: %s\n", displayName(row.FullPath(), row.Kind), reason)
		for {
			fmt.Fprint(out, "Category : Subcategory (empty to skip)> ")
			line, err := reader.ReadString('\n')
			line = strings.TrimSpace(line)
			if line == "" {
				return
			}
			cat, sub, perr := categorize.ParseResponse(line)
			if perr != nil {
				fmt.Fprintln(out, "Please answer in the form \"Category : Subcategory\".")
				if err != nil {
					return
				}
				continue
			}
			if aerr := assign(context.Background(), store, row.Dir, row.FileName, row.Kind, cat, sub, row.SuggestedName); aerr != nil {
				fmt.Fprintf(out, "Failed to save: %v\n", aerr)
			}
			return
		}
	}
}
