package run_test

import (
	"context"
	"errors"
	"testing"

	"subtool/internal/run"
	"subtool/internal/testutil"
)

func TestOSRunner_Run(t *testing.T) {
	runner := run.NewOSRunner(nil)

	t.Run("successful command", func(t *testing.T) {
		err := runner.Run(context.Background(), run.Command{Name: "true"})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	})

	t.Run("non-zero exit carries the exit code", func(t *testing.T) {
		err := runner.Run(context.Background(), run.Command{
			Name: "sh",
			Args: []string{"-c", "exit 3"},
		})

		var exitErr *run.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("Run() error = %v, want *run.ExitError", err)
		}
		if exitErr.Code != 3 {
			t.Errorf("exit code = %d, want 3", exitErr.Code)
		}
	})

	t.Run("stderr is captured in the error", func(t *testing.T) {
		err := runner.Run(context.Background(), run.Command{
			Name: "sh",
			Args: []string{"-c", "echo boom >&2; exit 1"},
		})

		var exitErr *run.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("Run() error = %v, want *run.ExitError", err)
		}
		if exitErr.Stderr != "boom" {
			t.Errorf("Stderr = %q, want %q", exitErr.Stderr, "boom")
		}
	})

	t.Run("missing binary is not an ExitError", func(t *testing.T) {
		err := runner.Run(context.Background(), run.Command{Name: "definitely-not-a-binary-xyz"})
		if err == nil {
			t.Fatal("Run() expected error for missing binary, got nil")
		}

		var exitErr *run.ExitError
		if errors.As(err, &exitErr) {
			t.Errorf("Run() error = %v, want plain error, got *run.ExitError", err)
		}
	})

	t.Run("runs in the given working directory", func(t *testing.T) {
		dir := t.TempDir()
		err := runner.Run(context.Background(), run.Command{
			Name: "sh",
			Args: []string{"-c", "test \"$(pwd)\" = \"$0\"", dir},
			Dir:  dir,
		})
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
}

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *run.ExitError
		want string
	}{
		{
			name: "with stderr",
			err:  &run.ExitError{Cmd: "xo schema", Code: 2, Stderr: "no such table"},
			want: "xo schema: exit status 2: no such table",
		},
		{
			name: "without stderr",
			err:  &run.ExitError{Cmd: "tailscale serve", Code: 1},
			want: "tailscale serve: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAll(t *testing.T) {
	cmds := []run.Command{
		{Name: "a"},
		{Name: "b"},
		{Name: "c"},
	}

	t.Run("runs every command in order", func(t *testing.T) {
		fake := testutil.NewFakeRunner()

		if err := run.All(context.Background(), fake, cmds...); err != nil {
			t.Fatalf("All() error = %v", err)
		}

		if len(fake.Calls) != 3 {
			t.Fatalf("len(Calls) = %d, want 3", len(fake.Calls))
		}
		for i, want := range []string{"a", "b", "c"} {
			if fake.Calls[i].Name != want {
				t.Errorf("Calls[%d].Name = %q, want %q", i, fake.Calls[i].Name, want)
			}
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		fake := testutil.NewFakeRunner()
		wantErr := &run.ExitError{Cmd: "b", Code: 7}
		fake.FailAt(1, wantErr)

		err := run.All(context.Background(), fake, cmds...)
		if !errors.Is(err, wantErr) {
			t.Fatalf("All() error = %v, want %v", err, wantErr)
		}

		if len(fake.Calls) != 2 {
			t.Errorf("len(Calls) = %d, want 2 (third command must not run)", len(fake.Calls))
		}
	})
}

func TestCommand_String(t *testing.T) {
	cmd := run.Command{Name: "tailscale", Args: []string{"funnel", "status"}}
	if got := cmd.String(); got != "tailscale funnel status" {
		t.Errorf("String() = %q, want %q", got, "tailscale funnel status")
	}

	bare := run.Command{Name: "true"}
	if got := bare.String(); got != "true" {
		t.Errorf("String() = %q, want %q", got, "true")
	}
}
