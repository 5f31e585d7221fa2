// Package terraform parses Terraform configurations into typed
// resource records for diagram generation.
//
// Parsing uses the HCL toolchain rather than text scraping. Attribute
// values that evaluate to literals come back as plain strings; anything
// referencing unresolved state keeps its source text, so diagram labels
// stay readable either way.
package terraform

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/lablink-dev/figgen/pkg/errors"
)

// Resource is one resource block from a configuration. Count holds the
// raw count expression when present; Conditional marks the
// enable/disable idiom `cond ? 1 : 0`, with the condition text in
// Condition.
type Resource struct {
	Type        string
	Name        string
	Attributes  map[string]string
	Count       string
	Conditional bool
	Condition   string
	File        string
}

// Address returns the Terraform-style "type.name" identifier.
func (r Resource) Address() string { return r.Type + "." + r.Name }

// Config is the merged content of one or more .tf files. Variables,
// Outputs, Providers, and Modules carry block names only; diagrams need
// their presence, not their bodies.
type Config struct {
	Resources []Resource
	Locals    map[string]string
	Variables []string
	Outputs   []string
	Providers []string
	Modules   []string
}

// ByType returns the resources of one type in parse order.
func (c *Config) ByType(typ string) []Resource {
	var out []Resource
	for _, r := range c.Resources {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

// ParseFile parses a single .tf file.
func ParseFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.New(errors.ErrCodeFileNotFound, "terraform file not found: %s", path)
	}
	cfg := newConfig()
	if err := parseInto(hclparse.NewParser(), path, cfg); err != nil {
		return nil, err
	}
	resolveLocals(cfg)
	return cfg, nil
}

// ParseDirectory parses every .tf file in dir, in lexical order, into
// one merged configuration. A directory without .tf files yields an
// empty configuration rather than an error, so diagrams can still
// render their static nodes.
func ParseDirectory(dir string) (*Config, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeFileNotFound, "terraform directory not found: %s", dir)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.tf"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list %s", dir)
	}
	sort.Strings(paths)

	parser := hclparse.NewParser()
	cfg := newConfig()
	for _, path := range paths {
		if err := parseInto(parser, path, cfg); err != nil {
			return nil, err
		}
	}
	resolveLocals(cfg)
	return cfg, nil
}

func newConfig() *Config {
	return &Config{Locals: make(map[string]string)}
}

func parseInto(parser *hclparse.Parser, path string, cfg *Config) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "read %s", path)
	}
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return errors.Wrap(errors.ErrCodeParse, diags, "parse %s", path)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return errors.New(errors.ErrCodeParse, "parse %s: unexpected body type", path)
	}

	for _, block := range body.Blocks {
		switch block.Type {
		case "resource":
			if len(block.Labels) != 2 {
				return errors.New(errors.ErrCodeParse, "parse %s: resource block needs a type and a name", path)
			}
			cfg.Resources = append(cfg.Resources, newResource(block, src, path))
		case "locals":
			// Later files override earlier definitions, matching
			// Terraform's merge order for our flat use.
			for name, attr := range block.Body.Attributes {
				cfg.Locals[name] = exprString(attr.Expr, src)
			}
		case "variable":
			cfg.Variables = appendLabel(cfg.Variables, block)
		case "output":
			cfg.Outputs = appendLabel(cfg.Outputs, block)
		case "provider":
			cfg.Providers = appendLabel(cfg.Providers, block)
		case "module":
			cfg.Modules = appendLabel(cfg.Modules, block)
		}
	}
	return nil
}

func appendLabel(dst []string, block *hclsyntax.Block) []string {
	if len(block.Labels) > 0 {
		dst = append(dst, block.Labels[0])
	}
	return dst
}

func newResource(block *hclsyntax.Block, src []byte, path string) Resource {
	r := Resource{
		Type:       block.Labels[0],
		Name:       block.Labels[1],
		Attributes: make(map[string]string),
		File:       filepath.Base(path),
	}
	for name, attr := range block.Body.Attributes {
		if name == "count" {
			r.Count = exprString(attr.Expr, src)
			if cond, ok := conditionalCount(attr.Expr, src); ok {
				r.Conditional = true
				r.Condition = cond
			}
			continue
		}
		r.Attributes[name] = exprString(attr.Expr, src)
	}
	// Nested blocks flatten to "block.attr" keys; repeated blocks like
	// multiple ingress rules accumulate comma-joined values.
	for _, nested := range block.Body.Blocks {
		for name, attr := range nested.Body.Attributes {
			key := nested.Type + "." + name
			v := exprString(attr.Expr, src)
			if prev, ok := r.Attributes[key]; ok {
				v = prev + ", " + v
			}
			r.Attributes[key] = v
		}
	}
	return r
}

// conditionalCount reports whether a count expression is the
// enable/disable idiom `cond ? 1 : 0` and returns the condition text.
func conditionalCount(expr hclsyntax.Expression, src []byte) (string, bool) {
	cond, ok := expr.(*hclsyntax.ConditionalExpr)
	if !ok {
		return "", false
	}
	if !literalInt(cond.TrueResult, 1) || !literalInt(cond.FalseResult, 0) {
		return "", false
	}
	return rawSource(cond.Condition, src), true
}

func literalInt(expr hclsyntax.Expression, want int64) bool {
	lit, ok := expr.(*hclsyntax.LiteralValueExpr)
	if !ok || !lit.Val.Type().Equals(cty.Number) {
		return false
	}
	n, acc := lit.Val.AsBigFloat().Int64()
	return acc == 0 && n == want
}

// exprString renders an expression as its value when literal and as its
// source text otherwise.
func exprString(expr hclsyntax.Expression, src []byte) string {
	if v, diags := expr.Value(nil); !diags.HasErrors() && v.IsKnown() && !v.IsNull() {
		if s, ok := valueString(v); ok {
			return s
		}
	}
	return rawSource(expr, src)
}

func valueString(v cty.Value) (string, bool) {
	t := v.Type()
	switch {
	case t.Equals(cty.String):
		return v.AsString(), true
	case t.Equals(cty.Number):
		return v.AsBigFloat().Text('f', -1), true
	case t.Equals(cty.Bool):
		if v.True() {
			return "true", true
		}
		return "false", true
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			s, ok := valueString(ev)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), true
	}
	return "", false
}

func rawSource(expr hclsyntax.Expression, src []byte) string {
	return strings.TrimSpace(string(expr.Range().SliceBytes(src)))
}

// resolveLocals substitutes local.X references in attribute values,
// count expressions, and conditions with their definitions. Longer
// names substitute first so shared prefixes cannot corrupt each other.
func resolveLocals(cfg *Config) {
	if len(cfg.Locals) == 0 {
		return
	}
	names := make([]string, 0, len(cfg.Locals))
	for name := range cfg.Locals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "local."+name, cfg.Locals[name])
	}
	rep := strings.NewReplacer(pairs...)

	for i := range cfg.Resources {
		r := &cfg.Resources[i]
		for k, v := range r.Attributes {
			if strings.Contains(v, "local.") {
				r.Attributes[k] = rep.Replace(v)
			}
		}
		if r.Count != "" {
			r.Count = rep.Replace(r.Count)
		}
		if r.Condition != "" {
			r.Condition = rep.Replace(r.Condition)
		}
	}
}
