package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cpcf/weftgen/model"
)

// dispatch emits jobs on a bounded set of goroutines and returns one result
// per job in input order. In FailFast mode the first failure stops jobs that
// have not started yet; they come back marked Skipped.
func (e *Engine) dispatch(ctx context.Context, mctx model.MappingContext, outputRoot string, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	for i, job := range jobs {
		results[i] = JobResult{Job: job, Skipped: true}
	}

	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			path, err := e.emitter.GenerateFile(mctx, job.TemplateName, job.Data, outputRoot)
			results[i] = JobResult{Job: job, Path: path, Err: err}
			if err != nil && e.failMode == FailFast {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
