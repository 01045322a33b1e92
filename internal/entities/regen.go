// Package entities regenerates the service's database entity code by
// delegating to an external schema-introspection generator.
package entities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"subtool/internal/config"
	"subtool/internal/run"
)

// Regenerator deletes previously generated entity files and re-runs the
// external generator against the live schema.
//
// The delete happens before the generator is invoked and is not validated
// or backed up: if generation fails, the entity directory is left empty.
type Regenerator struct {
	dir     string
	pattern string
	bin     string
	args    []string
	runner  run.Runner
	log     run.Logger
}

// New creates a Regenerator from generator config.
func New(cfg config.GeneratorConfig, runner run.Runner, log run.Logger) *Regenerator {
	if log == nil {
		log = run.NewNopLogger()
	}
	return &Regenerator{
		dir:     cfg.EntityDir,
		pattern: cfg.Pattern,
		bin:     cfg.Bin,
		args:    cfg.Args,
		runner:  runner,
		log:     log,
	}
}

// Regenerate removes all direct children of the entity directory matching
// the configured glob, then invokes the generator with the entity directory
// as its working directory. Returns the number of files removed.
//
// Any failing step aborts immediately; a generator failure surfaces as
// *run.ExitError with the generator's exit code.
func (r *Regenerator) Regenerate(ctx context.Context) (int, error) {
	removed, err := r.clean()
	if err != nil {
		return removed, err
	}

	r.log.Info("regenerating entities", "dir", r.dir, "removed", removed)

	if err := r.runner.Run(ctx, run.Command{
		Name: r.bin,
		Args: r.args,
		Dir:  r.dir,
	}); err != nil {
		return removed, err
	}

	return removed, nil
}

// clean removes direct children of the entity directory matching the glob.
// Subdirectories and non-matching files are untouched.
func (r *Regenerator) clean() (int, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, r.pattern))
	if err != nil {
		return 0, fmt.Errorf("bad pattern %q: %w", r.pattern, err)
	}

	removed := 0
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return removed, fmt.Errorf("stat %s: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		if err := os.Remove(m); err != nil {
			return removed, fmt.Errorf("removing %s: %w", m, err)
		}
		r.log.Debug("removed generated file", "path", m)
		removed++
	}

	return removed, nil
}
