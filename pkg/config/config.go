// Package config holds the pipeline configuration: which packages the
// collectors track, the GPU scoring keyword lists, variant normalization,
// processing thresholds, and the category groupings charts use for legends.
//
// Built-in defaults reproduce the published figure pipeline. An optional
// figgen.toml can override any section; sections left out keep their
// defaults.
package config

import (
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/gpuscore"
)

// DefaultFile is the config file name looked up in the working directory
// when no explicit --config path is given.
const DefaultFile = "figgen.toml"

// Config is the full pipeline configuration.
type Config struct {
	Collection Collection `toml:"collection"`
	Scoring    Scoring    `toml:"scoring"`
	Processing Processing `toml:"processing"`
	Charts     Charts     `toml:"charts"`
}

// Collection selects the packages each collector tracks.
type Collection struct {
	// GPUPackages are the PyPI names scored for GPU reliance, including
	// CUDA-suffixed variants that normalize onto their base package during
	// processing.
	GPUPackages []string `toml:"gpu_packages"`

	// DependencyPackages are tracked for dependency-count growth.
	DependencyPackages []string `toml:"dependency_packages"`

	// FeedstockOverrides maps a package to its conda-forge feedstock name
	// when that differs from the package name.
	FeedstockOverrides map[string]string `toml:"feedstock_overrides"`

	// MaxFeedstockTags caps how many tags are collected per feedstock;
	// longer tag lists are sampled evenly.
	MaxFeedstockTags int `toml:"max_feedstock_tags"`
}

// Scoring overrides the GPU scoring keyword lists.
type Scoring struct {
	GPUFirst    []string `toml:"gpu_first"`
	BundledCUDA []string `toml:"bundled_cuda"`
	OptionalGPU []string `toml:"optional_gpu"`
	MDGPU       []string `toml:"md_gpu"`
	Keywords    []string `toml:"keywords"`
}

// Processing controls how raw collection data becomes clean time series.
type Processing struct {
	// MinDataPoints excludes packages with fewer records from the output.
	MinDataPoints int `toml:"min_data_points"`

	// Variants maps alternate distribution names onto their base package.
	Variants map[string]string `toml:"variants"`

	// SourcePriority orders sources for dedup; earlier wins on a
	// (package, version) collision.
	SourcePriority []string `toml:"source_priority"`
}

// Charts groups packages under legend headings.
type Charts struct {
	GPUCategories        []Category `toml:"gpu_categories"`
	DependencyCategories []Category `toml:"dependency_categories"`
}

// Category is one legend group.
type Category struct {
	Name     string   `toml:"name"`
	Packages []string `toml:"packages"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Collection: Collection{
			GPUPackages: []string{
				"tensorflow", "tensorflow-gpu", "torch", "jax", "jaxlib", "numba",
				"cupy", "cupy-cuda102", "cupy-cuda110", "cupy-cuda11x", "cupy-cuda12x",
				"cudf", "scikit-image",
				"openmm", "alphafold",
			},
			DependencyPackages: []string{
				"numpy", "scipy", "matplotlib", "pandas", "scikit-learn", "astropy",
				"tensorflow", "torch", "jupyter",
			},
			FeedstockOverrides: map[string]string{},
			MaxFeedstockTags:   50,
		},
		Scoring: Scoring{
			GPUFirst:    slices.Clone(gpuscore.DefaultGPUFirst),
			BundledCUDA: slices.Clone(gpuscore.DefaultBundledCUDA),
			OptionalGPU: slices.Clone(gpuscore.DefaultOptionalGPU),
			MDGPU:       slices.Clone(gpuscore.DefaultMDGPU),
			Keywords:    slices.Clone(gpuscore.DefaultKeywords),
		},
		Processing: Processing{
			MinDataPoints: 5,
			Variants: map[string]string{
				"cupy-cuda102":   "cupy",
				"cupy-cuda110":   "cupy",
				"cupy-cuda11x":   "cupy",
				"cupy-cuda12x":   "cupy",
				"tensorflow-gpu": "tensorflow",
			},
			SourcePriority: []string{"conda-forge", "pypi"},
		},
		Charts: Charts{
			GPUCategories: []Category{
				{Name: "ML/Deep Learning", Packages: []string{"tensorflow", "torch", "jax", "jaxlib", "numba"}},
				{Name: "Scientific Computing", Packages: []string{"cupy", "cudf", "scikit-image"}},
				{Name: "Biology/Molecular Dynamics", Packages: []string{"openmm", "alphafold"}},
			},
			DependencyCategories: []Category{
				{Name: "Core Scientific", Packages: []string{"numpy", "scipy", "matplotlib", "pandas"}},
				{Name: "Machine Learning", Packages: []string{"tensorflow", "torch", "scikit-learn"}},
				{Name: "Domain/Workflow", Packages: []string{"astropy", "jupyter"}},
			},
		},
	}
}

// Load reads the configuration, overlaying any figgen.toml on the defaults.
//
// With an empty path, figgen.toml in the working directory is used when
// present; its absence is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse %s", path)
	}
	cfg.overlay(&file)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay replaces each default with the corresponding file value when the
// file set one. Sections replace wholesale, they do not merge entry by
// entry.
func (c *Config) overlay(o *Config) {
	if len(o.Collection.GPUPackages) > 0 {
		c.Collection.GPUPackages = o.Collection.GPUPackages
	}
	if len(o.Collection.DependencyPackages) > 0 {
		c.Collection.DependencyPackages = o.Collection.DependencyPackages
	}
	if len(o.Collection.FeedstockOverrides) > 0 {
		c.Collection.FeedstockOverrides = o.Collection.FeedstockOverrides
	}
	if o.Collection.MaxFeedstockTags > 0 {
		c.Collection.MaxFeedstockTags = o.Collection.MaxFeedstockTags
	}

	if len(o.Scoring.GPUFirst) > 0 {
		c.Scoring.GPUFirst = o.Scoring.GPUFirst
	}
	if len(o.Scoring.BundledCUDA) > 0 {
		c.Scoring.BundledCUDA = o.Scoring.BundledCUDA
	}
	if len(o.Scoring.OptionalGPU) > 0 {
		c.Scoring.OptionalGPU = o.Scoring.OptionalGPU
	}
	if len(o.Scoring.MDGPU) > 0 {
		c.Scoring.MDGPU = o.Scoring.MDGPU
	}
	if len(o.Scoring.Keywords) > 0 {
		c.Scoring.Keywords = o.Scoring.Keywords
	}

	if o.Processing.MinDataPoints > 0 {
		c.Processing.MinDataPoints = o.Processing.MinDataPoints
	}
	if len(o.Processing.Variants) > 0 {
		c.Processing.Variants = o.Processing.Variants
	}
	if len(o.Processing.SourcePriority) > 0 {
		c.Processing.SourcePriority = o.Processing.SourcePriority
	}

	if len(o.Charts.GPUCategories) > 0 {
		c.Charts.GPUCategories = o.Charts.GPUCategories
	}
	if len(o.Charts.DependencyCategories) > 0 {
		c.Charts.DependencyCategories = o.Charts.DependencyCategories
	}
}

func (c *Config) validate() error {
	if c.Processing.MinDataPoints < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "min_data_points must be at least 1, got %d", c.Processing.MinDataPoints)
	}
	if len(c.Processing.SourcePriority) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "source_priority must not be empty")
	}
	for _, cat := range append(slices.Clone(c.Charts.GPUCategories), c.Charts.DependencyCategories...) {
		if cat.Name == "" {
			return errors.New(errors.ErrCodeInvalidInput, "chart category with empty name")
		}
	}
	return nil
}

// Scorer builds a GPU scorer from the configured keyword lists.
func (c *Config) Scorer() *gpuscore.Scorer {
	return &gpuscore.Scorer{
		GPUFirst:    c.Scoring.GPUFirst,
		BundledCUDA: c.Scoring.BundledCUDA,
		OptionalGPU: c.Scoring.OptionalGPU,
		MDGPU:       c.Scoring.MDGPU,
		Keywords:    c.Scoring.Keywords,
	}
}
