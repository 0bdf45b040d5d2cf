package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGetHome(t *testing.T) {
	customHome := "/custom/fsort/home"
	t.Setenv(HomeEnvVar, customHome)

	home, err := GetHome()
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if home != customHome {
		t.Errorf("Expected %s, got %s", customHome, home)
	}

	t.Setenv(HomeEnvVar, "")
	home, err = GetHome()
	if err != nil {
		t.Fatalf("GetHome failed: %v", err)
	}
	if !strings.HasSuffix(home, DefaultHome) {
		t.Errorf("Expected path to end with %s, got %s", DefaultHome, home)
	}
}

func TestEnsureHome(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	got, err := EnsureHome(dir)
	if err != nil {
		t.Fatalf("EnsureHome failed: %v", err)
	}
	if got != dir {
		t.Errorf("EnsureHome = %s, want %s", got, dir)
	}

	logPath, err := LogPath(dir)
	if err != nil {
		t.Fatalf("LogPath failed: %v", err)
	}
	if filepath.Dir(logPath) != filepath.Join(dir, "logs") {
		t.Errorf("LogPath = %s, want it under %s/logs", logPath, dir)
	}
}

func TestIsWithinDir(t *testing.T) {
	tests := []struct {
		dir    string
		parent string
		want   bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b/c", "/a/b", true},
		{"/a/b/c/d", "/a/b/", true},
		{"/a/bc", "/a/b", false},
		{"/a", "/a/b", false},
		{"/x/y", "/a", false},
	}

	for _, tt := range tests {
		t.Run(tt.dir+"_in_"+tt.parent, func(t *testing.T) {
			if got := IsWithinDir(tt.dir, tt.parent); got != tt.want {
				t.Errorf("IsWithinDir(%q, %q) = %v, want %v", tt.dir, tt.parent, got, tt.want)
			}
		})
	}
}

func TestCleanDir(t *testing.T) {
	got := CleanDir("/tmp/photos/")
	if got != filepath.Clean("/tmp/photos") {
		t.Errorf("CleanDir trailing slash = %q", got)
	}
	if CleanDir("") != "" {
		t.Error("CleanDir(\"\") should stay empty")
	}
	if !filepath.IsAbs(CleanDir("relative/dir")) {
		t.Error("CleanDir should make relative paths absolute")
	}
}
