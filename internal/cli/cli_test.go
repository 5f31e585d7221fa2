package cli

import (
	"context"
	"io"
	"testing"

	"github.com/lablink-dev/figgen/pkg/cache"
)

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "figgen" {
		t.Errorf("root.Use = %q, want %q", root.Use, "figgen")
	}

	want := []string{"cache", "collect", "completion", "depgraph", "diagram", "plot", "process", "run", "serve"}
	got := make(map[string]bool)
	for _, cmd := range root.Commands() {
		got[cmd.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandVersion(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Version == "" {
		t.Error("root command should carry a version")
	}
}

func TestSplitPackages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "torch", []string{"torch"}},
		{"multiple", "torch,jax,cupy", []string{"torch", "jax", "cupy"}},
		{"whitespace", " torch , jax ", []string{"torch", "jax"}},
		{"trailing comma", "torch,", []string{"torch"}},
		{"only commas", ",,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPackages(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitPackages(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitPackages(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewCacheDisabled(t *testing.T) {
	backend, err := newCache(context.Background(), true, "")
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer backend.Close()

	if _, ok := backend.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache=true) = %T, want *cache.NullCache", backend)
	}
}

func TestNewCacheFileDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	backend, err := newCache(context.Background(), false, "")
	if err != nil {
		t.Fatalf("newCache() error: %v", err)
	}
	defer backend.Close()

	if _, ok := backend.(*cache.FileCache); !ok {
		t.Errorf("newCache(noCache=false) = %T, want *cache.FileCache", backend)
	}
}
