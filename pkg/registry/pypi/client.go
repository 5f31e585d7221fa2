package pypi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lablink-dev/figgen/pkg/cache"
	"github.com/lablink-dev/figgen/pkg/registry"
)

// DefaultTTL is how long PyPI responses stay cached.
const DefaultTTL = 24 * time.Hour

// ReleaseFile describes one uploaded distribution file of a release.
type ReleaseFile struct {
	Filename    string `json:"filename"`
	UploadTime  string `json:"upload_time"`
	PackageType string `json:"packagetype"`
}

// PackageInfo holds package-level metadata from PyPI including the full
// release index. Releases maps version strings to their uploaded files;
// versions without files exist in the map but carry an empty slice.
type PackageInfo struct {
	Name           string                   `json:"name"`
	Version        string                   `json:"version"` // Latest published version
	Summary        string                   `json:"summary"`
	RequiresDist   []string                 `json:"requires_dist"`
	RequiresPython string                   `json:"requires_python"`
	Releases       map[string][]ReleaseFile `json:"releases"`
}

// VersionInfo holds metadata for a single published version.
type VersionInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	RequiresDist []string `json:"requires_dist"`
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
// Pass nil for backend to disable caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  registry.NewClient(backend, "pypi:", cacheTTL, nil),
		baseURL: "https://pypi.org/pypi",
	}
}

// FetchPackage retrieves package metadata including the release index.
//
// The pkg parameter is normalized automatically (case-insensitive,
// underscores become hyphens). If refresh is true, the cache is bypassed.
//
// Returns [registry.ErrNotFound] if the package doesn't exist and
// [registry.ErrNetwork] for HTTP failures.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = registry.NormalizePkgName(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetchPackage(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchVersion retrieves metadata for one published version of a package.
// Used by the collectors to read historical requires_dist metadata.
func (c *Client) FetchVersion(ctx context.Context, pkg, version string, refresh bool) (*VersionInfo, error) {
	pkg = registry.NormalizePkgName(pkg)
	key := pkg + "@" + version

	var info VersionInfo
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetchVersion(ctx, pkg, version, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetchPackage(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{
		Name:           data.Info.Name,
		Version:        data.Info.Version,
		Summary:        data.Info.Summary,
		RequiresDist:   data.Info.RequiresDist,
		RequiresPython: data.Info.RequiresPython,
		Releases:       data.Releases,
	}
	return nil
}

func (c *Client) fetchVersion(ctx context.Context, pkg, version string, info *VersionInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/%s/json", c.baseURL, pkg, version), &data); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s version %s", err, pkg, version)
		}
		return err
	}

	*info = VersionInfo{
		Name:         data.Info.Name,
		Version:      version,
		RequiresDist: data.Info.RequiresDist,
	}
	return nil
}

// SortedVersions returns the versions that have at least one uploaded file,
// ordered by earliest upload time with ties broken by version string.
// Versions without files are skipped since they carry no usable date.
func (p *PackageInfo) SortedVersions() []string {
	type dated struct {
		version string
		date    time.Time
	}
	var versions []dated
	for v, files := range p.Releases {
		if len(files) == 0 {
			continue
		}
		versions = append(versions, dated{version: v, date: ReleaseDate(files)})
	}
	sort.Slice(versions, func(i, j int) bool {
		if !versions[i].date.Equal(versions[j].date) {
			return versions[i].date.Before(versions[j].date)
		}
		return versions[i].version < versions[j].version
	})

	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.version
	}
	return out
}

// ReleaseDate returns the earliest upload time across a release's files.
// Returns the zero time when the release has no files or no parseable dates.
func ReleaseDate(files []ReleaseFile) time.Time {
	var earliest time.Time
	for _, f := range files {
		t, err := ParseUploadTime(f.UploadTime)
		if err != nil {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// DepName extracts the bare package name from a requires_dist entry,
// cutting at the first extras bracket, environment marker, or version
// operator. "numpy>=1.19 ; python_version < '3.9'" yields "numpy".
func DepName(req string) string {
	name := req
	for _, sep := range []string{"[", ";", ">=", "==", "<", ">"} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	return strings.TrimSpace(name)
}

// ParseUploadTime parses a PyPI upload timestamp.
// PyPI serves both bare timestamps (2020-01-15T10:30:00) and RFC 3339.
func ParseUploadTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty upload time")
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type apiResponse struct {
	Info     apiInfo                  `json:"info"`
	Releases map[string][]ReleaseFile `json:"releases"`
}

type apiInfo struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Summary        string   `json:"summary"`
	RequiresDist   []string `json:"requires_dist"`
	RequiresPython string   `json:"requires_python"`
}
