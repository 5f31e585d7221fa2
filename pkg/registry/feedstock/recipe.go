package feedstock

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	jinjaSetRE = regexp.MustCompile(`\{%\s*set\s+(\w+)\s*=\s*["']([^"']*)["']\s*%\}`)
	jinjaVarRE = regexp.MustCompile(`\{\{\s*(\w+)\s*(\|\s*lower\s*)?\}\}`)
)

// Recipe holds the fields the collectors need from a conda recipe.
type Recipe struct {
	Name            string   // Package name (may be empty for heavily templated recipes)
	Version         string   // Recipe version (may be empty; tags are authoritative)
	RunRequirements []string // Cleaned run dependency names, deduplicated, recipe order
}

// ParseRecipe extracts package metadata from a conda-forge meta.yaml.
//
// Recipes are Jinja templates, not plain YAML. ParseRecipe renders the
// subset feedstocks actually use ({% set k = "v" %} definitions, {{ k }}
// substitution with an optional lower filter), drops remaining template
// lines, and decodes the result. When the rendered document still fails
// to decode, a line scanner recovers the run requirements.
func ParseRecipe(content string) *Recipe {
	rendered := renderJinja(content)

	var meta metaYAML
	if err := yaml.Unmarshal([]byte(rendered), &meta); err == nil {
		if meta.Package.Name != "" || meta.Package.Version != "" || len(meta.Requirements.Run) > 0 {
			return &Recipe{
				Name:            meta.Package.Name,
				Version:         meta.Package.Version,
				RunRequirements: cleanDeps(meta.Requirements.Run),
			}
		}
	}

	return &Recipe{RunRequirements: scanRunDeps(content)}
}

// renderJinja applies the Jinja-lite subset and strips what it cannot
// resolve, leaving a plain YAML document.
func renderJinja(content string) string {
	vars := make(map[string]string)
	for _, m := range jinjaSetRE.FindAllStringSubmatch(content, -1) {
		vars[m[1]] = m[2]
	}

	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "{%") {
			// Template logic lines carry no YAML content
			continue
		}
		line = jinjaVarRE.ReplaceAllStringFunc(line, func(s string) string {
			m := jinjaVarRE.FindStringSubmatch(s)
			v, ok := vars[m[1]]
			if !ok {
				return s
			}
			if m[2] != "" {
				v = strings.ToLower(v)
			}
			return v
		})
		if strings.Contains(line, "{{") {
			// Unresolved template expression would break the YAML decoder
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// scanRunDeps is the fallback parser: walk the run: section line by line
// and collect dependency names.
func scanRunDeps(content string) []string {
	seen := make(map[string]bool)
	var deps []string
	inRun := false

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.Contains(stripped, "run:") {
			inRun = true
			continue
		}
		if inRun && stripped != "" && !strings.HasPrefix(stripped, "-") && !strings.HasPrefix(stripped, "#") {
			inRun = false
		}
		if inRun && strings.HasPrefix(stripped, "-") {
			dep := strings.TrimSpace(stripped[1:])
			if strings.HasPrefix(dep, "{{") {
				continue
			}
			if name := cleanDep(dep); name != "" && !seen[name] {
				seen[name] = true
				deps = append(deps, name)
			}
		}
	}
	return deps
}

// cleanDeps cleans a decoded requirement list: template leftovers are
// skipped, version specifiers stripped, duplicates removed.
func cleanDeps(reqs []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, req := range reqs {
		if strings.HasPrefix(strings.TrimSpace(req), "{{") {
			continue
		}
		if name := cleanDep(req); name != "" && !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	return deps
}

// cleanDep extracts the bare package name from a conda requirement spec
// like "python >=3.9" or "numpy=1.26".
func cleanDep(dep string) string {
	fields := strings.Fields(dep)
	if len(fields) == 0 {
		return ""
	}
	name := fields[0]
	if i := strings.IndexAny(name, "=<>"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

type metaYAML struct {
	Package struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"package"`
	Requirements struct {
		Build []string `yaml:"build"`
		Host  []string `yaml:"host"`
		Run   []string `yaml:"run"`
	} `yaml:"requirements"`
}
