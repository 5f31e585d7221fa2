package feedstock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lablink-dev/figgen/pkg/cache"
	"github.com/lablink-dev/figgen/pkg/registry"
)

// DefaultTTL is how long GitHub responses stay cached.
const DefaultTTL = 24 * time.Hour

// Tag is a git tag on a feedstock repository. conda-forge tags feedstock
// updates, so each tag corresponds to one published package version.
type Tag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Client provides access to conda-forge feedstock repositories through
// the GitHub API and raw content host.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	apiBase string
	rawBase string
}

// NewClient creates a feedstock client with the given cache backend.
// A non-empty token is sent as a Bearer authorization header, which
// raises the GitHub API rate limit from 60 to 5000 requests per hour.
func NewClient(backend cache.Cache, cacheTTL time.Duration, token string) *Client {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}
	return &Client{
		Client:  registry.NewClient(backend, "github:", cacheTTL, headers),
		apiBase: "https://api.github.com",
		rawBase: "https://raw.githubusercontent.com",
	}
}

// ListTags retrieves the tags of a feedstock repository, newest first.
// Returns [registry.ErrNotFound] if the feedstock doesn't exist.
func (c *Client) ListTags(ctx context.Context, repo string, refresh bool) ([]Tag, error) {
	var tags []Tag
	err := c.Cached(ctx, "tags:"+repo, refresh, &tags, func() error {
		url := fmt.Sprintf("%s/repos/conda-forge/%s/tags?per_page=100", c.apiBase, repo)
		if err := c.Get(ctx, url, &tags); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return fmt.Errorf("%w: feedstock %s", err, repo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// CommitDate retrieves the committer date of a commit on a feedstock
// repository. This is the closest thing to a release date a feedstock tag has.
func (c *Client) CommitDate(ctx context.Context, repo, sha string, refresh bool) (time.Time, error) {
	var resp commitResponse
	err := c.Cached(ctx, "commit:"+repo+"@"+sha, refresh, &resp, func() error {
		url := fmt.Sprintf("%s/repos/conda-forge/%s/commits/%s", c.apiBase, repo, sha)
		return c.Get(ctx, url, &resp)
	})
	if err != nil {
		return time.Time{}, err
	}
	return resp.Commit.Committer.Date, nil
}

// FetchRecipe retrieves the raw recipe/meta.yaml of a feedstock at the
// given ref (commit SHA or branch name).
func (c *Client) FetchRecipe(ctx context.Context, repo, ref string, refresh bool) (string, error) {
	var content string
	err := c.Cached(ctx, "recipe:"+repo+"@"+ref, refresh, &content, func() error {
		url := fmt.Sprintf("%s/conda-forge/%s/%s/recipe/meta.yaml", c.rawBase, repo, ref)
		text, err := c.GetText(ctx, url)
		if err != nil {
			return err
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// RepoName returns the conda-forge feedstock repository name for a package.
// Overrides map package names to feedstock names when they differ
// (e.g. "matplotlib" publishes from the "matplotlib-base" feedstock).
func RepoName(pkg string, overrides map[string]string) string {
	name := pkg
	if o, ok := overrides[pkg]; ok && o != "" {
		name = o
	}
	return name + "-feedstock"
}

// SampleTags thins a tag list to at most max entries by keeping every Nth
// tag. Feedstocks with long histories would otherwise exhaust the GitHub
// rate limit, since every sampled tag costs two additional requests.
func SampleTags(tags []Tag, max int) []Tag {
	if max <= 0 || len(tags) <= max {
		return tags
	}
	interval := len(tags) / max
	if interval < 1 {
		interval = 1
	}
	var out []Tag
	for i := 0; i < len(tags); i += interval {
		out = append(out, tags[i])
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

type commitResponse struct {
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}
