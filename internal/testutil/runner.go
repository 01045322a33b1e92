package testutil

import (
	"context"

	"subtool/internal/run"
)

// FakeRunner records every command it is asked to run and returns scripted
// errors for selected invocations.
type FakeRunner struct {
	Calls []run.Command
	errs  map[int]error
}

// NewFakeRunner creates a FakeRunner where every command succeeds.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{errs: map[int]error{}}
}

// FailAt makes the n-th invocation (0-based) return err.
func (f *FakeRunner) FailAt(n int, err error) {
	f.errs[n] = err
}

func (f *FakeRunner) Run(_ context.Context, cmd run.Command) error {
	idx := len(f.Calls)
	f.Calls = append(f.Calls, cmd)
	return f.errs[idx]
}
