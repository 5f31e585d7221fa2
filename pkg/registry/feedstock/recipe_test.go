package feedstock

import (
	"reflect"
	"testing"
)

const numpyRecipe = `{% set version = "1.26.0" %}

package:
  name: numpy
  version: {{ version }}

source:
  url: https://pypi.io/packages/source/n/numpy/numpy-{{ version }}.tar.gz

requirements:
  build:
    - {{ compiler('c') }}
  host:
    - python
    - pip
  run:
    - python >=3.9
    - libblas
    - libcblas
    - python  # deduplicated

test:
  requires:
    - pytest
`

func TestParseRecipe(t *testing.T) {
	recipe := ParseRecipe(numpyRecipe)

	if recipe.Name != "numpy" {
		t.Errorf("Name = %q, want numpy", recipe.Name)
	}
	if recipe.Version != "1.26.0" {
		t.Errorf("Version = %q, want 1.26.0 (from jinja set)", recipe.Version)
	}
	want := []string{"python", "libblas", "libcblas"}
	if !reflect.DeepEqual(recipe.RunRequirements, want) {
		t.Errorf("RunRequirements = %v, want %v", recipe.RunRequirements, want)
	}
}

func TestParseRecipeLowerFilter(t *testing.T) {
	content := `{% set name = "SciPy" %}

package:
  name: {{ name|lower }}
  version: "1.11.0"

requirements:
  run:
    - numpy >=1.21
`
	recipe := ParseRecipe(content)

	if recipe.Name != "scipy" {
		t.Errorf("Name = %q, want scipy (lower filter applied)", recipe.Name)
	}
	if len(recipe.RunRequirements) != 1 || recipe.RunRequirements[0] != "numpy" {
		t.Errorf("RunRequirements = %v, want [numpy]", recipe.RunRequirements)
	}
}

func TestParseRecipeTemplateEntriesSkipped(t *testing.T) {
	content := `package:
  name: pandas
  version: "2.0.0"

requirements:
  run:
    - python >=3.9
    - numpy
`
	recipe := ParseRecipe(content)

	// pin_compatible style entries never make it through renderJinja;
	// simulate the decoded list path directly as well.
	deps := cleanDeps([]string{"python >=3.9", "{{ pin_compatible('numpy') }}", "numpy"})
	want := []string{"python", "numpy"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("cleanDeps = %v, want %v", deps, want)
	}
	if len(recipe.RunRequirements) != 2 {
		t.Errorf("RunRequirements = %v, want 2 entries", recipe.RunRequirements)
	}
}

func TestParseRecipeFallbackScanner(t *testing.T) {
	// Broken YAML (unclosed flow sequence) forces the line scanner.
	content := `package:
  name: [unclosed
requirements:
  run:
    - python >=3.8
    - openblas=0.3
    - {{ pin_compatible('libgfortran') }}
  host:
    - pip
`
	recipe := ParseRecipe(content)

	want := []string{"python", "openblas"}
	if !reflect.DeepEqual(recipe.RunRequirements, want) {
		t.Errorf("RunRequirements = %v, want %v via fallback scanner", recipe.RunRequirements, want)
	}
}

func TestCleanDep(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"python >=3.9", "python"},
		{"numpy=1.26", "numpy"},
		{"openblas<0.4", "openblas"},
		{"scipy>1.0", "scipy"},
		{"plain", "plain"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := cleanDep(tt.input); got != tt.want {
			t.Errorf("cleanDep(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScanRunDepsSectionBoundary(t *testing.T) {
	content := `requirements:
  run:
    - python
    - numpy
test:
  requires:
    - pytest
`
	deps := scanRunDeps(content)

	want := []string{"python", "numpy"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("scanRunDeps = %v, want %v (test section excluded)", deps, want)
	}
}
