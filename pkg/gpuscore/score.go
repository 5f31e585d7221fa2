// Package gpuscore classifies package versions by GPU reliance on an
// ordinal 0-5 scale:
//
//	0: No GPU support
//	1: Optional GPU (in extras)
//	2: Recommended GPU (performance degradation without)
//	3: Practical Required (bundled CUDA, unusable without GPU)
//	4: Hard Required (installation fails without CUDA)
//	5: GPU-First (designed exclusively for GPU)
//
// Scoring is a heuristic over PyPI requires_dist metadata plus curated
// package lists, since many packages bundle CUDA without declaring it.
package gpuscore

import (
	"regexp"
	"strings"
)

// Curated package lists. Substring matching against package names, since
// variants like cupy-cuda112 share the base package's GPU profile.
var (
	// DefaultGPUFirst are packages designed exclusively for GPU execution (score 5).
	// They bundle CUDA and may not declare it in PyPI metadata.
	DefaultGPUFirst = []string{"cupy", "cucim", "cudf", "rapids", "cuml", "cugraph"}

	// DefaultMDGPU are molecular dynamics packages where GPU is a practical
	// requirement (score 4) despite absent CUDA declarations.
	DefaultMDGPU = []string{"openmm"}

	// DefaultOptionalGPU are packages with optional GPU support not visible
	// in PyPI metadata (score 2).
	DefaultOptionalGPU = []string{"numba"}

	// DefaultBundledCUDA are packages that ship CUDA inside their wheels.
	DefaultBundledCUDA = []string{"tensorflow", "torch", "jax"}

	// DefaultKeywords mark a dependency name as GPU-related.
	DefaultKeywords = []string{"cuda", "cudnn", "gpu", "nvidia", "cupy", "opencl", "rocm"}
)

// Packages that bundle CUDA in wheels, so no external install is needed.
var bundledExternal = []string{"tensorflow", "torch"}

// Packages that always require an external CUDA toolkit.
var externalCUDA = []string{"jax", "numba", "cupy"}

var cudaVersionRE = regexp.MustCompile(`(?i)cuda.*?([0-9]+\.[0-9]+)`)

// Scorer classifies package versions by GPU reliance.
// The list fields default from the package-level Default* variables and
// can be overridden through configuration.
type Scorer struct {
	GPUFirst    []string
	MDGPU       []string
	OptionalGPU []string
	BundledCUDA []string
	Keywords    []string
}

// NewScorer creates a Scorer with the default package lists.
func NewScorer() *Scorer {
	return &Scorer{
		GPUFirst:    DefaultGPUFirst,
		MDGPU:       DefaultMDGPU,
		OptionalGPU: DefaultOptionalGPU,
		BundledCUDA: DefaultBundledCUDA,
		Keywords:    DefaultKeywords,
	}
}

// Result holds the classification of one package version.
type Result struct {
	Score                int      // 0-5 GPU reliance score
	CUDAVersion          string   // Minimum CUDA version from deps, empty if none
	GPUDeps              []string // GPU-related dependency names, declaration order
	RequiresExternalCUDA bool     // True when CUDA must be installed separately
}

// Score classifies one package version from its requires_dist metadata.
// It never fails: versions that cannot be classified fall back to the
// rubric's defaults.
func (s *Scorer) Score(pkg, version string, requiresDist []string) Result {
	return Result{
		Score:                s.score(pkg, version, requiresDist),
		CUDAVersion:          ExtractCUDAVersion(requiresDist),
		GPUDeps:              s.GPUDeps(requiresDist),
		RequiresExternalCUDA: s.requiresExternalCUDA(pkg, version, requiresDist),
	}
}

// score applies the rubric. Order matters: curated lists are checked
// before keyword heuristics because GPU-first packages often declare no
// CUDA dependencies at all.
func (s *Scorer) score(pkg, version string, requiresDist []string) int {
	name := strings.ToLower(pkg)
	allDeps := joinLower(requiresDist)

	// Score 5: GPU-first packages. Match on the base name so
	// cupy-cuda112 style variants classify like cupy.
	base := strings.Split(name, "-")[0]
	if containsAny(base, s.GPUFirst) {
		return 5
	}

	// Score 4: MD packages with GPU as practical requirement
	if containsAny(name, s.MDGPU) {
		return 4
	}

	// Score 2: optional GPU support invisible in PyPI metadata
	if containsAny(name, s.OptionalGPU) {
		return 2
	}

	// Score 0: no GPU keywords anywhere in the dependencies
	if !containsAny(allDeps, s.Keywords) {
		return 0
	}

	// Score 4: hard CUDA requirement outside extras
	if strings.Contains(allDeps, "cudatoolkit") || strings.Contains(allDeps, "nvidia-cuda") {
		if !strings.Contains(allDeps, "extra") {
			return 4
		}
	}

	// Score 3: bundled CUDA. TensorFlow unified GPU support in 2.1.0;
	// earlier versions fall through to the remaining checks.
	if containsAny(name, s.BundledCUDA) {
		if strings.Contains(name, "tensorflow") && !strings.Contains(name, "tensorflow-gpu") {
			if CompareVersions(version, "2.1.0") >= 0 {
				return 3
			}
		} else if strings.Contains(name, "torch") || strings.Contains(name, "jax") {
			return 3
		}
	}

	// Score 3: the separate tensorflow-gpu package
	if strings.Contains(name, "tensorflow-gpu") {
		return 3
	}

	// Score 1: GPU only through extras
	if strings.Contains(allDeps, "extra") || strings.Contains(allDeps, "optional") {
		return 1
	}

	// GPU mentioned but unclear
	return 1
}

// GPUDeps extracts GPU-related dependency names from requires_dist.
// Names are deduplicated and kept in declaration order.
func (s *Scorer) GPUDeps(requiresDist []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range requiresDist {
		if req == "" {
			continue
		}
		name := depName(req)
		if !containsAny(strings.ToLower(name), s.Keywords) {
			continue
		}
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	return deps
}

// ExtractCUDAVersion pulls a minimum CUDA version out of requirements
// like "cudatoolkit >=11.2" or "nvidia-cuda-runtime-cu11==11.7.99".
// Returns the first match, empty string if none.
func ExtractCUDAVersion(requiresDist []string) string {
	for _, req := range requiresDist {
		if m := cudaVersionRE.FindStringSubmatch(req); m != nil {
			return m[1]
		}
	}
	return ""
}

// requiresExternalCUDA reports whether the version needs a separately
// installed CUDA toolkit rather than a bundled one.
func (s *Scorer) requiresExternalCUDA(pkg, version string, requiresDist []string) bool {
	name := strings.ToLower(pkg)

	if containsAny(name, bundledExternal) {
		if strings.Contains(name, "tensorflow") {
			// TensorFlow started bundling CUDA with 2.0
			if CompareVersions(version, "2.0.0") >= 0 {
				return false
			}
		} else {
			return false // PyTorch bundles CUDA
		}
	}

	if containsAny(name, externalCUDA) {
		return true
	}

	allDeps := joinLower(requiresDist)
	return strings.Contains(allDeps, "cudatoolkit") || strings.Contains(allDeps, "nvidia-cuda")
}

// depName extracts the package name from a requirement spec, cutting at
// the first extras bracket, marker, or version operator.
func depName(req string) string {
	name := req
	for _, sep := range []string{"[", ";", ">=", "==", "<", ">"} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
		}
	}
	return strings.TrimSpace(name)
}

func joinLower(reqs []string) string {
	lower := make([]string, len(reqs))
	for i, r := range reqs {
		lower[i] = strings.ToLower(r)
	}
	return strings.Join(lower, " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
