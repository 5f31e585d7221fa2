package diagram

import (
	"strings"
	"testing"

	"github.com/lablink-dev/figgen/pkg/errors"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{"main", "detailed", "network-flow", "vm-provisioning", "all"} {
		k, err := ParseKind(s)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", s, err)
		}
		if string(k) != s {
			t.Errorf("ParseKind(%q) = %q", s, k)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	_, err := ParseKind("sequence")
	if !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Fatalf("err = %v, want INVALID_DIAGRAM", err)
	}
	for _, want := range []string{"main", "detailed", "network-flow", "vm-provisioning", "all"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should list %q: %v", want, err)
		}
	}
}

func TestExpand(t *testing.T) {
	if got := Expand(KindAll); len(got) != 4 {
		t.Fatalf("Expand(all) = %v", got)
	}
	got := Expand(KindDetailed)
	if len(got) != 1 || got[0] != KindDetailed {
		t.Fatalf("Expand(detailed) = %v", got)
	}
}

func TestName(t *testing.T) {
	cases := map[Kind]string{
		KindMain:           "lablink-architecture",
		KindDetailed:       "lablink-architecture-detailed",
		KindNetworkFlow:    "lablink-network-flow",
		KindVMProvisioning: "lablink-vm-provisioning",
	}
	for kind, want := range cases {
		if got := Name(kind); got != want {
			t.Errorf("Name(%s) = %q, want %q", kind, got, want)
		}
	}
}

func TestTemplateFallback(t *testing.T) {
	if got := templateFor("aws_instance"); got.shape != "box3d" {
		t.Errorf("aws_instance shape = %q", got.shape)
	}
	got := templateFor("aws_quantum_widget")
	if got.shape != "box" || got.color != genericColor {
		t.Errorf("unknown type template = %+v", got)
	}
}

func TestFontsFor(t *testing.T) {
	if f := fontsFor("poster"); f.title != 48 || f.node != 20 || f.edge != 20 {
		t.Errorf("poster fonts = %+v", f)
	}
	if f := fontsFor("unheard-of"); f.title != 32 {
		t.Errorf("fallback fonts = %+v", f)
	}
}
