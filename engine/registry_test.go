package engine

import (
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"text/template"

	"github.com/cpcf/weftgen/lang"
	gogentest "github.com/cpcf/weftgen/testing"
	"github.com/cpcf/weftgen/templates"
)

const registryArchive = `-- java/pojo.tmpl --
class {{ .className }} {}
-- scala/pojo.tmpl --
case class {{ .className }}()
-- java/broken.tmpl --
class {{ .className
-- java/shout.tmpl --
{{ shout .className }}
`

func TestTemplateRegistryResolvesByLanguageNamespace(t *testing.T) {
	reg := NewTemplateRegistry(gogentest.ParseTxtar(registryArchive))

	tests := []struct {
		lang lang.Language
		want string
	}{
		{lang.Java, "class User {}\n"},
		{lang.Scala, "case class User()\n"},
	}

	for _, tt := range tests {
		tmpl, err := reg.Get(tt.lang, "pojo")
		if err != nil {
			t.Fatalf("%s: Get failed: %v", tt.lang, err)
		}
		var buf strings.Builder
		if err := tmpl.Execute(&buf, map[string]any{"className": "User"}); err != nil {
			t.Fatal(err)
		}
		if buf.String() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.lang, buf.String(), tt.want)
		}
	}

	if reg.Len() != 2 {
		t.Errorf("expected 2 cached templates, got %d", reg.Len())
	}
}

func TestTemplateRegistryCachesParsedTemplate(t *testing.T) {
	mfs := gogentest.ParseTxtar(registryArchive)
	reg := NewTemplateRegistry(mfs)

	first, err := reg.Get(lang.Java, "pojo")
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.Get(lang.Java, "pojo")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("repeated lookups should return the cached template")
	}
	if reg.Parses() != 1 {
		t.Errorf("expected 1 parse, got %d", reg.Parses())
	}
	if reads := mfs.Reads("java/pojo.tmpl"); reads != 1 {
		t.Errorf("expected template source read once, got %d", reads)
	}
}

func TestTemplateRegistryConcurrentFirstAccess(t *testing.T) {
	mfs := gogentest.ParseTxtar(registryArchive)
	reg := NewTemplateRegistry(mfs)

	const callers = 32
	var wg sync.WaitGroup
	got := make([]*template.Template, callers)
	errs := make([]error, callers)
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got[i], errs[i] = reg.Get(lang.Scala, "pojo")
		}()
	}
	close(start)
	wg.Wait()

	for i := range got {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if got[i] != got[0] {
			t.Fatalf("caller %d received a different template instance", i)
		}
	}
	if reg.Parses() != 1 {
		t.Errorf("expected exactly one parse, got %d", reg.Parses())
	}
	if reads := mfs.Reads("scala/pojo.tmpl"); reads != 1 {
		t.Errorf("expected one source read, got %d", reads)
	}
}

func TestTemplateRegistryErrors(t *testing.T) {
	reg := NewTemplateRegistry(gogentest.ParseTxtar(registryArchive))

	tests := []struct {
		name   string
		lang   lang.Language
		tmpl   string
		reason ResolutionReason
	}{
		{"unknown language", lang.Language(99), "pojo", ReasonUnknownLanguage},
		{"missing template", lang.Java, "enum", ReasonNotFound},
		{"missing for language", lang.Scala, "broken", ReasonNotFound},
		{"empty name", lang.Java, "", ReasonNotFound},
		{"nested name", lang.Java, "../scala/pojo", ReasonNotFound},
		{"malformed", lang.Java, "broken", ReasonMalformed},
		{"undefined function", lang.Java, "shout", ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Get(tt.lang, tt.tmpl)
			var resErr *TemplateResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("expected TemplateResolutionError, got %v", err)
			}
			if resErr.Reason != tt.reason {
				t.Errorf("reason = %v, want %v", resErr.Reason, tt.reason)
			}
			if resErr.Name != tt.tmpl || resErr.Language != tt.lang {
				t.Errorf("error does not identify the lookup: %+v", resErr)
			}
		})
	}

	if reg.Len() != 0 {
		t.Errorf("failed lookups must not be cached, found %d entries", reg.Len())
	}
}

func TestTemplateRegistryNotFoundWrapsFSError(t *testing.T) {
	reg := NewTemplateRegistry(gogentest.NewMemoryFS())
	_, err := reg.Get(lang.Java, "pojo")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "java/pojo.tmpl") {
		t.Errorf("error should name the source path: %v", err)
	}
}

func TestTemplateRegistryWithFuncs(t *testing.T) {
	reg := NewTemplateRegistry(gogentest.ParseTxtar(registryArchive), WithFuncs(template.FuncMap{
		"shout": strings.ToUpper,
	}))

	tmpl, err := reg.Get(lang.Java, "shout")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, map[string]any{"className": "quiet"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "QUIET\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestTemplateRegistryClear(t *testing.T) {
	reg := NewTemplateRegistry(gogentest.ParseTxtar(registryArchive))
	if _, err := reg.Get(lang.Java, "pojo"); err != nil {
		t.Fatal(err)
	}
	reg.Clear()
	if reg.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", reg.Len())
	}
}

func TestBuiltinTemplatesParse(t *testing.T) {
	reg := NewTemplateRegistry(nil)

	for _, l := range lang.All() {
		entries, err := fs.ReadDir(templates.FS, l.Namespace())
		if err != nil {
			t.Fatalf("%s: %v", l, err)
		}
		if len(entries) == 0 {
			t.Fatalf("%s: no built-in templates", l)
		}
		for _, entry := range entries {
			name := strings.TrimSuffix(entry.Name(), templateExt)
			if _, err := reg.Get(l, name); err != nil {
				t.Errorf("%s/%s: %v", l, name, err)
			}
		}
	}
}
