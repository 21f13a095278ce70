package lint

import (
	"strings"
	"testing"
	"text/template"

	"github.com/google/go-cmp/cmp"

	"github.com/cpcf/weftgen/templates"
	gogentest "github.com/cpcf/weftgen/testing"
)

const lintArchive = `-- java/pojo.tmpl --
public class {{ .className }} {}
-- java/dangling.tmpl --
class {{ .className }} {{ template "body" . }}
-- java/local.tmpl --
{{ define "body" }}{}{{ end }}class {{ .className }} {{ template "body" . }}
-- java/broken.tmpl --
class {{ .className

-- java/README.md --
notes
-- shared/_header.tmpl --
// header
`

func kinds(findings []Finding) []Kind {
	var out []Kind
	for _, f := range findings {
		out = append(out, f.Kind)
	}
	return out
}

func TestCheckAll(t *testing.T) {
	c := NewChecker(gogentest.ParseTxtar(lintArchive))
	results := c.CheckAll()

	got := make(map[string]string)
	for _, r := range results {
		got[r.File] = r.Summary()
	}
	want := map[string]string{
		"java/README.md":     "1 warning(s)",
		"java/broken.tmpl":   "2 error(s)",
		"java/dangling.tmpl": "1 error(s)",
		"java/local.tmpl":    "ok",
		"java/pojo.tmpl":     "ok",
		"scala":              "1 warning(s)",
		"shared":             "1 warning(s)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i < len(results); i++ {
		if results[i-1].File > results[i].File {
			t.Fatalf("results not sorted: %s before %s", results[i-1].File, results[i].File)
		}
	}
}

func TestCheckTemplateDanglingReference(t *testing.T) {
	c := NewChecker(gogentest.ParseTxtar(lintArchive))
	r := c.CheckTemplate("java/dangling.tmpl")

	if r.OK() || len(r.Errors) != 1 {
		t.Fatalf("expected one error, got %+v", r.Errors)
	}
	f := r.Errors[0]
	if f.Kind != KindUndefinedTemplate || f.Line != 1 || f.Column != 24 {
		t.Errorf("unexpected finding %+v", f)
	}
	if !strings.Contains(f.String(), `java/dangling.tmpl:1:24: undefined_template: template "body" is not defined`) {
		t.Errorf("String() = %q", f.String())
	}
}

func TestCheckTemplateSyntax(t *testing.T) {
	c := NewChecker(gogentest.ParseTxtar(lintArchive))
	r := c.CheckTemplate("java/broken.tmpl")

	if diff := cmp.Diff([]Kind{KindSyntax, KindBraceMismatch}, kinds(r.Errors)); diff != "" {
		t.Errorf("error kinds (-want +got):\n%s", diff)
	}
	if r.Errors[0].Line == 0 {
		t.Error("syntax error should carry a line")
	}
	if r.Errors[0].Suggestion == "" {
		t.Error("expected a suggestion for an unclosed action")
	}
}

func TestCheckTemplateFunctions(t *testing.T) {
	fsys := gogentest.ParseTxtar(`-- java/shout.tmpl --
{{ shout .className }}
`)

	r := NewChecker(fsys).CheckTemplate("java/shout.tmpl")
	if r.OK() || r.Errors[0].Kind != KindSyntax {
		t.Fatalf("undefined function should be a syntax error, got %+v", r)
	}

	r = NewChecker(fsys, WithFuncs(template.FuncMap{"shout": strings.ToUpper})).CheckTemplate("java/shout.tmpl")
	if !r.OK() {
		t.Errorf("registered function should pass, got %+v", r.Errors)
	}
}

func TestCheckTemplateStrict(t *testing.T) {
	fsys := gogentest.ParseTxtar("-- java/ws.tmpl --\nclass {{ .className }} \n{}\n")

	if r := NewChecker(fsys).CheckTemplate("java/ws.tmpl"); len(r.Warnings) != 0 {
		t.Errorf("non-strict mode should not warn: %+v", r.Warnings)
	}
	r := NewChecker(fsys, WithStrict(true)).CheckTemplate("java/ws.tmpl")
	if len(r.Warnings) != 1 || r.Warnings[0].Kind != KindTrailingSpace || r.Warnings[0].Line != 1 {
		t.Errorf("unexpected warnings %+v", r.Warnings)
	}
}

func TestCheckTemplateUnreadable(t *testing.T) {
	r := NewChecker(gogentest.NewMemoryFS()).CheckTemplate("java/none.tmpl")
	if r.OK() || r.Errors[0].Kind != KindUnreadable {
		t.Errorf("expected unreadable error, got %+v", r)
	}
}

func TestBuiltinTemplatesAreClean(t *testing.T) {
	for _, r := range NewChecker(templates.FS, WithStrict(true)).CheckAll() {
		if !r.OK() || len(r.Warnings) > 0 {
			t.Errorf("%s: %s %v %v", r.File, r.Summary(), r.Errors, r.Warnings)
		}
	}
}
