package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"sync"
	"text/template"

	"golang.org/x/sync/singleflight"

	"github.com/cpcf/weftgen/lang"
	"github.com/cpcf/weftgen/render"
	"github.com/cpcf/weftgen/templates"
)

const templateExt = ".tmpl"

// Templates resolves a parsed template for a language and logical name.
type Templates interface {
	Get(language lang.Language, name string) (*template.Template, error)
}

type registryKey struct {
	language lang.Language
	name     string
}

func (k registryKey) String() string {
	return fmt.Sprintf("%d/%s", int(k.language), k.name)
}

// TemplateRegistry loads templates from <namespace>/<name>.tmpl and keeps
// each parsed template for the registry's lifetime. One registry serves
// one generation run.
type TemplateRegistry struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu        sync.RWMutex
	templates map[registryKey]*template.Template
	loads     singleflight.Group
	parses    int
}

type RegistryOption func(*TemplateRegistry)

// WithFuncs makes extra functions available to every template, overriding
// built-ins of the same name.
func WithFuncs(funcs template.FuncMap) RegistryOption {
	return func(r *TemplateRegistry) {
		maps.Copy(r.funcs, funcs)
	}
}

// NewTemplateRegistry returns a registry reading from fsys, or from the
// built-in templates when fsys is nil.
func NewTemplateRegistry(fsys fs.FS, opts ...RegistryOption) *TemplateRegistry {
	if fsys == nil {
		fsys = templates.FS
	}
	r := &TemplateRegistry{
		fsys:      fsys,
		funcs:     render.DefaultFuncMap(),
		templates: make(map[registryKey]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the cached template for (language, name), parsing it on first
// use. Concurrent first lookups of one key share a single parse. Failures are
// not cached.
func (r *TemplateRegistry) Get(language lang.Language, name string) (*template.Template, error) {
	key := registryKey{language: language, name: name}

	if tmpl, ok := r.cached(key); ok {
		return tmpl, nil
	}

	v, err, _ := r.loads.Do(key.String(), func() (any, error) {
		if tmpl, ok := r.cached(key); ok {
			return tmpl, nil
		}

		tmpl, err := r.load(key)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.templates[key] = tmpl
		r.parses++
		r.mu.Unlock()
		return tmpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*template.Template), nil
}

func (r *TemplateRegistry) cached(key registryKey) (*template.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.templates[key]
	return tmpl, ok
}

func (r *TemplateRegistry) load(key registryKey) (*template.Template, error) {
	resErr := &TemplateResolutionError{Language: key.language, Name: key.name}

	namespace := key.language.Namespace()
	if namespace == "" {
		resErr.Reason = ReasonUnknownLanguage
		return nil, resErr
	}

	resErr.Path = path.Join(namespace, key.name+templateExt)
	if key.name == "" || !fs.ValidPath(resErr.Path) || path.Dir(resErr.Path) != namespace {
		resErr.Reason = ReasonNotFound
		resErr.Err = fs.ErrInvalid
		return nil, resErr
	}

	content, err := fs.ReadFile(r.fsys, resErr.Path)
	if err != nil {
		resErr.Reason = ReasonUnreadable
		if errors.Is(err, fs.ErrNotExist) {
			resErr.Reason = ReasonNotFound
		}
		resErr.Err = err
		return nil, resErr
	}

	tmpl, err := template.New(key.name).Funcs(r.funcs).Parse(string(content))
	if err != nil {
		resErr.Reason = ReasonMalformed
		resErr.Err = err
		return nil, resErr
	}
	return tmpl, nil
}

// Len returns the number of cached templates.
func (r *TemplateRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// Parses returns how many times a template source has been parsed.
func (r *TemplateRegistry) Parses() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parses
}

func (r *TemplateRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = make(map[registryKey]*template.Template)
}
