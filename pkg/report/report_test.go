package report_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-managed/pkg/report"
)

func personSummary() report.Summary {
	return report.Summary{
		Type:    "Person",
		Managed: true,
		Properties: []report.PropertySummary{
			{Name: "name", Type: "string", Writable: true, Abstract: true, DeclaredIn: []string{"Person", "Named"}, Annotations: []string{"required"}},
			{Name: "address", Type: "Address", Abstract: true, DeclaredIn: []string{"Person"}},
		},
		Aspects: []string{"constraints"},
	}
}

func TestEngine_Markdown(t *testing.T) {
	engine, err := report.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	var buf bytes.Buffer
	out, err := engine.Markdown(personSummary(), &buf)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if out != buf.String() {
		t.Fatalf("expected writer to receive the rendered output")
	}

	for _, want := range []string{
		"# Person (managed)",
		"| name | `string` | yes | yes | Person, Named | required |",
		"| address | `Address` | no | yes | Person |  |",
		"Aspects: constraints",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unimplemented") {
		t.Fatalf("unexpected unimplemented section:\n%s", out)
	}
}

func TestEngine_HTML(t *testing.T) {
	engine, err := report.New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out, err := engine.HTML(personSummary())
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{"<h1", "Person (managed)", "<table>", "<code>string</code>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEngine_ToHTMLSanitizes(t *testing.T) {
	engine, _ := report.New()
	out := string(engine.ToHTML([]byte("hello <script>alert(1)</script>")))
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be stripped, got %s", out)
	}
}

func TestEngine_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"short.tpl": &fstest.MapFile{Data: []byte("{{ title }}: {{ summary.type }}")},
	}
	engine, err := report.New(report.WithTemplatesFS(files), report.WithGlobalData(map[string]any{"title": "Schema"}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	out, err := engine.Render("short", map[string]any{"summary": personSummary()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Schema: Person" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := engine.Render("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}
