// Package whitelist persists named category whitelists in whitelists.toml.
package whitelist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	fserrors "fsort/internal/errors"
	"fsort/internal/taxonomy"
)

// File is the decoded whitelists.toml:
//
//	[[whitelist]]
//	name = "media"
//	categories = ["Images", "Video"]
//	subcategories = []
type File struct {
	Whitelists []taxonomy.Whitelist `toml:"whitelist"`
}

// Load reads path. A missing file yields an empty set.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fserrors.New(fserrors.ConfigInvalid, fmt.Sprintf("failed to parse %s", path), err)
	}

	out := &File{}
	for _, wl := range f.Whitelists {
		wl = wl.Normalized()
		if wl.Name == "" {
			return nil, fserrors.New(fserrors.ConfigInvalid, fmt.Sprintf("%s: whitelist without a name", path), nil)
		}
		out.Set(wl)
	}
	return out, nil
}

// Get returns the whitelist called name. Names match case-insensitively.
func (f *File) Get(name string) (taxonomy.Whitelist, error) {
	if i := f.index(name); i >= 0 {
		return f.Whitelists[i], nil
	}
	return taxonomy.Whitelist{}, fserrors.New(fserrors.WhitelistNotFound, fmt.Sprintf("whitelist %q not found", name), nil)
}

// Set adds wl or replaces the whitelist with the same name.
func (f *File) Set(wl taxonomy.Whitelist) {
	wl = wl.Normalized()
	if i := f.index(wl.Name); i >= 0 {
		f.Whitelists[i] = wl
		return
	}
	f.Whitelists = append(f.Whitelists, wl)
}

// Delete removes the whitelist called name and reports whether it existed.
func (f *File) Delete(name string) bool {
	i := f.index(name)
	if i < 0 {
		return false
	}
	f.Whitelists = append(f.Whitelists[:i], f.Whitelists[i+1:]...)
	return true
}

// Names returns the whitelist names, sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Whitelists))
	for _, wl := range f.Whitelists {
		names = append(names, wl.Name)
	}
	sort.Strings(names)
	return names
}

func (f *File) index(name string) int {
	name = strings.TrimSpace(name)
	for i, wl := range f.Whitelists {
		if strings.EqualFold(wl.Name, name) {
			return i
		}
	}
	return -1
}

// Save writes the file atomically (write temp + rename).
func (f *File) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create whitelist directory: %w", err)
	}

	tmp := path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create whitelist file: %w", err)
	}

	if err := toml.NewEncoder(out).Encode(f); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode whitelists: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write whitelist file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace whitelist file: %w", err)
	}
	return nil
}
