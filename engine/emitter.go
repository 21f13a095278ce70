package engine

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cpcf/weftgen/lang"
	"github.com/cpcf/weftgen/model"
	"github.com/cpcf/weftgen/postprocess"
	"github.com/cpcf/weftgen/write"
)

// Emitter turns one data model into one file. It is safe for concurrent use
// as long as each call targets a distinct path.
type Emitter struct {
	logger         *slog.Logger
	templates      Templates
	postprocessors *postprocess.Chain
	keepPartial    bool
}

type EmitterOption func(*Emitter)

func WithEmitterLogger(logger *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// WithPostProcessors renders into memory and passes the content through
// chain before it is written.
func WithPostProcessors(chain *postprocess.Chain) EmitterOption {
	return func(e *Emitter) {
		e.postprocessors = chain
	}
}

// WithKeepPartial leaves a file on disk when rendering into it fails.
// By default such files are removed.
func WithKeepPartial(keep bool) EmitterOption {
	return func(e *Emitter) {
		e.keepPartial = keep
	}
}

func NewEmitter(templates Templates, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		logger:         slog.Default(),
		templates:      templates,
		postprocessors: postprocess.NewChain(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateFile renders templateName against dm into
// outputRoot/<package dirs>/<className><ext> and returns that path.
// The target must not exist; an existing file is reported as a collision
// wrapping write.ErrAlreadyExists and is left untouched. Every failure is
// returned as a *FileCreationError.
func (e *Emitter) GenerateFile(mctx model.MappingContext, templateName string, dm model.DataModel, outputRoot string) (string, error) {
	language := mctx.GeneratedLanguage

	fileName, err := ResolveFileName(dm, language)
	if err != nil {
		return "", &FileCreationError{Path: outputRoot, Err: err}
	}

	dir, err := ResolveDirectory(dm, outputRoot)
	if err != nil {
		return "", &FileCreationError{Path: filepath.Join(outputRoot, fileName), Err: err}
	}

	target := filepath.Join(dir, fileName)
	if err := e.emit(language, templateName, dm, target); err != nil {
		e.logger.Debug("file generation failed", "template", templateName, "language", language, "path", target, "error", err)
		return "", &FileCreationError{Path: target, Err: err}
	}

	e.logger.Info("generated file", "template", templateName, "language", language, "path", target)
	return target, nil
}

func (e *Emitter) emit(language lang.Language, templateName string, dm model.DataModel, target string) (err error) {
	f, err := write.CreateExclusive(target)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil && !e.keepPartial {
			if rmErr := os.Remove(target); rmErr != nil {
				e.logger.Warn("failed to remove partial file", "path", target, "error", rmErr)
			}
		}
	}()

	tmpl, err := e.templates.Get(language, templateName)
	if err != nil {
		return err
	}

	e.logger.Debug("rendering template", "template", templateName, "path", target)

	if e.postprocessors == nil || !e.postprocessors.HasProcessors() {
		w := bufio.NewWriter(f)
		if err := tmpl.Execute(w, dm); err != nil {
			return fmt.Errorf("failed to execute template %s: %w", templateName, err)
		}
		return w.Flush()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, dm); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	content := buf.Bytes()
	processed, err := e.postprocessors.Process(target, content)
	if err != nil {
		e.logger.Warn("post-processing failed", "path", target, "error", err)
	} else {
		content = processed
	}

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", target, err)
	}
	return nil
}
