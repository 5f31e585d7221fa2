// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Overview
//
// This package fetches historical package metadata from PyPI
// (https://pypi.org) for the dependency and GPU-reliance collectors.
// Two endpoints are used:
//
//   - /pypi/{name}/json for package metadata and the release index
//   - /pypi/{name}/{version}/json for per-version requires_dist metadata
//
// # Usage
//
//	client := pypi.NewClient(backend, pypi.DefaultTTL)
//
//	pkg, err := client.FetchPackage(ctx, "numpy", false)  // false = use cache
//	if err != nil {
//	    return err
//	}
//
//	for _, version := range pkg.SortedVersions() {
//	    info, err := client.FetchVersion(ctx, "numpy", version, false)
//	    ...
//	}
//
// # Release Dates
//
// PyPI has no first-class release date; the convention is to use the
// upload time of a release's distribution files. [ReleaseDate] takes the
// earliest upload across files so re-uploads of wheels don't shift the
// date. Releases without files are skipped entirely since they carry no
// usable date.
//
// # Caching
//
// Responses are cached under the "pypi:" scope to reduce load on PyPI
// across repeated collection runs. The TTL is set when creating the
// client; pass refresh=true to bypass the cache.
//
// Package names are normalized following PEP 503.
package pypi
