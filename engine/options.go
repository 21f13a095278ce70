package engine

import (
	"io/fs"
	"log/slog"
	"text/template"
)

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithFailureMode(mode FailureMode) Option {
	return func(e *Engine) {
		e.failMode = mode
	}
}

// WithTemplateFS replaces the built-in templates.
func WithTemplateFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.templateFS = fsys
	}
}

func WithTemplateFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		e.funcs = funcs
	}
}

// WithWorkers bounds how many files are emitted concurrently. Values below
// one mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithKeepPartialFiles(keep bool) Option {
	return func(e *Engine) {
		e.keepPartial = keep
	}
}

// WithManifest records every emitted file in a manifest saved under the
// output root when the run finishes.
func WithManifest(enabled bool) Option {
	return func(e *Engine) {
		e.manifest = enabled
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(e *Engine) {
		e.runID = id
	}
}
