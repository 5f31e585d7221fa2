// Package feedstock provides an HTTP client for conda-forge feedstock
// repositories.
//
// # Overview
//
// conda-forge packages are built from per-package "feedstock" git
// repositories on GitHub (e.g. numpy-feedstock). Each published version
// corresponds to a tag, and the recipe/meta.yaml at that tag declares
// the package's run requirements. This gives dependency history for
// compiled scientific packages whose PyPI metadata is incomplete.
//
// # Collection flow
//
//	repo := feedstock.RepoName("numpy", nil)          // "numpy-feedstock"
//	tags, err := client.ListTags(ctx, repo, false)     // newest first
//	for _, tag := range feedstock.SampleTags(tags, 50) {
//	    recipe, err := client.FetchRecipe(ctx, repo, tag.Commit.SHA, false)
//	    date, err := client.CommitDate(ctx, repo, tag.Commit.SHA, false)
//	    parsed := feedstock.ParseRecipe(recipe)
//	    ...
//	}
//
// Tags are sampled to at most 50 per feedstock because each one costs two
// extra requests (recipe + commit date) against the GitHub rate limit.
//
// # Recipe parsing
//
// meta.yaml files are Jinja templates. [ParseRecipe] renders the template
// subset feedstocks actually use and YAML-decodes the result, falling back
// to a line scanner over the run: section for recipes that resist decoding.
//
// # Authentication
//
// Unauthenticated GitHub API access is limited to 60 requests per hour.
// Pass a token to [NewClient] (typically from GITHUB_TOKEN) to raise the
// limit to 5000.
package feedstock
