// Package engine turns prepared data models into generated source files.
//
// A generation run clears the output root once, then emits one file per
// data model through an Emitter backed by a run-scoped TemplateRegistry.
package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/cpcf/weftgen/model"
	"github.com/cpcf/weftgen/postprocess"
	"github.com/cpcf/weftgen/state"
)

type FailureMode int

const (
	FailFast FailureMode = iota
	FailAtEnd
	BestEffort
)

func (m FailureMode) String() string {
	switch m {
	case FailFast:
		return "fail_fast"
	case FailAtEnd:
		return "fail_at_end"
	case BestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// Job asks for one file: a template rendered against one data model.
type Job struct {
	TemplateName string
	Data         model.DataModel
}

func (j Job) label() string {
	if name := j.Data.ClassName(); name != "" {
		return j.TemplateName + ":" + name
	}
	return j.TemplateName
}

type JobResult struct {
	Job     Job
	Path    string
	Err     error
	Skipped bool
}

// Report summarises a finished run.
type Report struct {
	RunID      string
	OutputRoot string
	Files      []string
	Failed     []JobResult
	Skipped    int
	Duration   time.Duration
}

type Engine struct {
	logger      *slog.Logger
	runID       string
	failMode    FailureMode
	workers     int
	templateFS  fs.FS
	funcs       template.FuncMap
	keepPartial bool
	manifest    bool

	registry       *TemplateRegistry
	emitter        *Emitter
	postprocessors *postprocess.Chain
}

// New builds the state for one generation run. The engine and its template
// cache should be discarded when the run ends.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:         slog.Default(),
		runID:          uuid.NewString(),
		failMode:       FailFast,
		workers:        1,
		postprocessors: postprocess.NewChain(),
	}

	for _, opt := range opts {
		opt(e)
	}

	var regOpts []RegistryOption
	if e.funcs != nil {
		regOpts = append(regOpts, WithFuncs(e.funcs))
	}
	e.registry = NewTemplateRegistry(e.templateFS, regOpts...)
	e.emitter = NewEmitter(e.registry,
		WithEmitterLogger(e.logger.With("run_id", e.runID)),
		WithPostProcessors(e.postprocessors),
		WithKeepPartial(e.keepPartial),
	)

	return e
}

func (e *Engine) RunID() string {
	return e.runID
}

func (e *Engine) Registry() *TemplateRegistry {
	return e.registry
}

// Emitter exposes the run's emitter for callers that drive the per-entity
// loop themselves after calling PrepareOutputDir.
func (e *Engine) Emitter() *Emitter {
	return e.emitter
}

// AddPostProcessor adds a post-processor to the processing chain.
// Processors are applied in the order they are added. The chain must not be
// changed while a run is in progress.
func (e *Engine) AddPostProcessor(processor postprocess.Processor) {
	e.postprocessors.Add(processor)
}

// AddPostProcessorFunc adds a function as a post-processor to the processing chain.
func (e *Engine) AddPostProcessorFunc(fn func(filePath string, content []byte) ([]byte, error)) {
	e.postprocessors.AddFunc(fn)
}

// Run prepares outputRoot and emits every job into it. A PrepareError aborts
// the run before any file is written. Per-job failures are handled according
// to the failure mode; the report is returned in every case except a failed
// preparation.
func (e *Engine) Run(ctx context.Context, mctx model.MappingContext, outputRoot string, jobs []Job) (*Report, error) {
	start := time.Now()
	logger := e.logger.With("run_id", e.runID)

	if err := PrepareOutputDir(outputRoot); err != nil {
		logger.Error("failed to prepare output directory", "path", outputRoot, "error", err)
		return nil, err
	}
	logger.Info("starting generation run", "language", mctx.GeneratedLanguage, "output", outputRoot, "jobs", len(jobs), "workers", e.workers)

	results := e.dispatch(ctx, mctx, outputRoot, jobs)

	report := &Report{RunID: e.runID, OutputRoot: outputRoot}
	var multiErr MultiError
	for _, res := range results {
		switch {
		case res.Skipped:
			report.Skipped++
		case res.Err != nil:
			report.Failed = append(report.Failed, res)
			multiErr.Add(res.Job.label(), "generation failed", res.Err)
		default:
			report.Files = append(report.Files, res.Path)
		}
	}
	sort.Strings(report.Files)

	if e.manifest {
		if err := e.saveManifest(mctx, outputRoot, results); err != nil {
			logger.Warn("failed to save manifest", "error", err)
		}
	}

	report.Duration = time.Since(start)
	logger.Info("generation run finished",
		"files", len(report.Files), "failed", len(report.Failed), "skipped", report.Skipped, "duration", report.Duration)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	if !multiErr.HasErrors() {
		return report, nil
	}
	switch e.failMode {
	case FailFast:
		return report, multiErr.Errors[0].Err
	case FailAtEnd:
		return report, &multiErr
	default:
		return report, nil
	}
}

func (e *Engine) saveManifest(mctx model.MappingContext, outputRoot string, results []JobResult) error {
	mm := state.NewManifestManager(outputRoot)
	manifest := mm.NewManifest(e.runID, mctx.GeneratedLanguage.String())
	for _, res := range results {
		if res.Skipped || res.Err != nil {
			continue
		}
		rel, err := filepath.Rel(outputRoot, res.Path)
		if err != nil {
			return fmt.Errorf("file %s is outside output root: %w", res.Path, err)
		}
		if err := mm.AddEntry(manifest, rel, res.Job.TemplateName, nil); err != nil {
			return err
		}
	}
	return mm.SaveManifest(manifest)
}

// ParseFailureMode accepts the names produced by FailureMode.String.
func ParseFailureMode(s string) (FailureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail_fast", "failfast":
		return FailFast, nil
	case "fail_at_end", "failatend":
		return FailAtEnd, nil
	case "best_effort", "besteffort":
		return BestEffort, nil
	default:
		return FailFast, fmt.Errorf("unknown failure mode %q", s)
	}
}
