// Package pkg provides the core libraries behind the figgen figure pipeline.
//
// # Overview
//
// Figgen turns package registry metadata and infrastructure definitions into
// the publication figures of the LabLink paper. The pkg directory is
// organized into four main areas:
//
//  1. Collection - registry clients and collection runs
//  2. Processing - raw JSON flattened into analysis-ready CSVs
//  3. Rendering - charts, diagrams, and output format conversion
//  4. Infrastructure - caching, configuration, errors, observability
//
// # Architecture
//
// The typical data flow through figgen:
//
//	PyPI / conda-forge / Terraform
//	         ↓
//	    [collect] package (fetch + score, one raw JSON file per package)
//	         ↓
//	    [process] package (aggregate variants, dedup sources, exclude sparse packages)
//	         ↓
//	    [chart] and [diagram] packages (SVG generation)
//	         ↓
//	    SVG/PNG/PDF output with metadata sidecars
//
// # Quick Start
//
// Collect release metadata and render a figure:
//
//	import (
//	    "context"
//	    "github.com/lablink-dev/figgen/pkg/cache"
//	    "github.com/lablink-dev/figgen/pkg/chart"
//	    "github.com/lablink-dev/figgen/pkg/collect"
//	    "github.com/lablink-dev/figgen/pkg/dataset"
//	    "github.com/lablink-dev/figgen/pkg/figure"
//	    "github.com/lablink-dev/figgen/pkg/gpuscore"
//	    "github.com/lablink-dev/figgen/pkg/registry/pypi"
//	    "github.com/lablink-dev/figgen/pkg/render"
//	)
//
//	// 1. Collect raw release history
//	client := pypi.NewClient(cache.NewNullCache(), pypi.DefaultTTL)
//	collector := collect.NewGPUCollector(client, gpuscore.NewScorer(), nil)
//	collector.Run(context.Background(), []string{"torch"}, "data/raw/gpu_reliance", false)
//
//	// 2. Plot the processed timeseries
//	records, _ := dataset.ImportGPUCSV("data/processed/gpu_reliance/gpu_timeseries.csv")
//	svg := chart.Timeseries(records, chart.WithPreset(figure.Default()))
//
//	// 3. Convert to publication formats
//	render.WriteAll("figures", "gpu_reliance_paper", svg, figure.Default().DPI)
//
// # Main Packages
//
// ## Collection
//
// [registry] - HTTP clients for PyPI and conda-forge feedstocks, with
// response caching, retries, and rate limit handling.
//
// [collect] - Collection runs that walk release histories and write raw
// per-package JSON. Failures are skip-and-continue, never fatal.
//
// [gpuscore] - GPU reliance scoring over package metadata and wheel
// filenames, plus version ordering.
//
// ## Processing
//
// [process] - Flattens raw JSON into timeseries CSVs: variant aggregation,
// cross-source dedup, minimum data point exclusion, and quality reports.
//
// [dataset] - CSV schemas and import/export for every figure input.
//
// [hardware] - The GPU price dataset: loading, validation, and summary
// statistics.
//
// ## Rendering
//
// [chart] - SVG chart generation (timeseries, facets, pie, timeline, cost
// trend) sized by figure presets.
//
// [diagram] - Architecture diagrams generated from parsed Terraform via
// Graphviz.
//
// [terraform] - HCL parsing of Terraform directories into a resource model.
//
// [depgraph] - Transitive dependency graph walks rendered as network
// diagrams.
//
// [figure] - Format presets (paper, poster, presentation), output naming,
// and metadata sidecars.
//
// [render] - Format conversion from generated SVG to PNG and PDF.
//
// [fonts] - The font stack embedded in generated SVGs.
//
// ## Infrastructure
//
// [cache] - Caching backends for HTTP responses: file, Redis, and null.
//
// [config] - figgen.toml loading with defaults, plus .env support.
//
// [archive] - Optional MongoDB archival of collection runs.
//
// [pipeline] - Full-run orchestration used by `figgen run`: ordered stages
// under a single run ID.
//
// [httputil] - Shared HTTP plumbing: retry with backoff and response
// caching.
//
// [errors] - Structured error codes shared across the pipeline.
//
// [observability] - Process-wide hooks for HTTP and cache events.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/process/...     # Specific package
//	go test -run Example          # Examples only
//
// [registry]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/registry
// [collect]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/collect
// [gpuscore]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/gpuscore
// [process]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/process
// [dataset]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/dataset
// [hardware]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/hardware
// [chart]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/chart
// [diagram]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/diagram
// [terraform]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/terraform
// [depgraph]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/depgraph
// [figure]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/figure
// [render]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/render
// [fonts]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/fonts
// [cache]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/cache
// [config]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/config
// [archive]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/archive
// [pipeline]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/pipeline
// [httputil]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/errors
// [observability]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/lablink-dev/figgen/pkg/buildinfo
package pkg
