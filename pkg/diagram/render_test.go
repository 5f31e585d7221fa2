package diagram

import (
	"bytes"
	"testing"
)

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>
<svg width="100pt" height="50pt" viewBox="0.00 0.00 720.75 360.25" xmlns="http://www.w3.org/2000/svg">
<g></g></svg>`)
	out := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 720.75 360.25" width="721" height="360">`
	if !bytes.Contains(out, []byte(want)) {
		t.Fatalf("normalized tag missing:\n%s", out)
	}
}

func TestNormalizeViewBoxNoViewBox(t *testing.T) {
	in := []byte("<svg><g/></svg>")
	if out := normalizeViewBox(in); !bytes.Equal(out, in) {
		t.Fatalf("unexpected rewrite: %s", out)
	}
}

func TestRenderSVG(t *testing.T) {
	dot, err := DOT(KindMain, nil, "paper")
	if err != nil {
		t.Fatalf("DOT: %v", err)
	}
	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("</svg>")) {
		t.Fatal("output is not SVG")
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Fatal("viewBox should be normalized to zero origin")
	}
}
