package tunnel_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"subtool/internal/config"
	"subtool/internal/run"
	"subtool/internal/testutil"
	"subtool/internal/tunnel"
)

func newExposer(runner run.Runner) *tunnel.Exposer {
	return tunnel.New(config.TunnelConfig{
		Bin:        "tailscale",
		Port:       8080,
		FunnelPath: "/pubsub",
	}, runner, nil)
}

func TestExposer_Up(t *testing.T) {
	t.Run("runs serve, funnel, status in order", func(t *testing.T) {
		fake := testutil.NewFakeRunner()

		if err := newExposer(fake).Up(context.Background()); err != nil {
			t.Fatalf("Up() error = %v", err)
		}

		if len(fake.Calls) != 3 {
			t.Fatalf("len(Calls) = %d, want 3", len(fake.Calls))
		}

		want := []string{
			"tailscale serve --bg 8080",
			"tailscale funnel --bg --set-path /pubsub 8080",
			"tailscale funnel status",
		}
		for i, w := range want {
			if got := fake.Calls[i].String(); got != w {
				t.Errorf("Calls[%d] = %q, want %q", i, got, w)
			}
		}
	})

	t.Run("status command inherits stdout", func(t *testing.T) {
		fake := testutil.NewFakeRunner()

		if err := newExposer(fake).Up(context.Background()); err != nil {
			t.Fatalf("Up() error = %v", err)
		}

		if !fake.Calls[2].InheritStdout {
			t.Error("status command should inherit stdout")
		}
		if fake.Calls[0].InheritStdout || fake.Calls[1].InheritStdout {
			t.Error("background registrations should not inherit stdout")
		}
	})

	t.Run("funnel failure stops the sequence before status", func(t *testing.T) {
		fake := testutil.NewFakeRunner()
		funnelErr := &run.ExitError{Cmd: "tailscale funnel", Code: 2, Stderr: "funnel not enabled"}
		fake.FailAt(1, funnelErr)

		err := newExposer(fake).Up(context.Background())

		var exitErr *run.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("Up() error = %v, want *run.ExitError", err)
		}
		if exitErr.Code != 2 {
			t.Errorf("exit code = %d, want 2", exitErr.Code)
		}

		if len(fake.Calls) != 2 {
			t.Errorf("len(Calls) = %d, want 2 (status must not run)", len(fake.Calls))
		}
	})

	t.Run("serve failure stops the sequence immediately", func(t *testing.T) {
		fake := testutil.NewFakeRunner()
		fake.FailAt(0, &run.ExitError{Cmd: "tailscale serve", Code: 1})

		if err := newExposer(fake).Up(context.Background()); err == nil {
			t.Fatal("Up() expected error, got nil")
		}

		if len(fake.Calls) != 1 {
			t.Errorf("len(Calls) = %d, want 1", len(fake.Calls))
		}
	})
}

func TestExposer_Status(t *testing.T) {
	fake := testutil.NewFakeRunner()

	if err := newExposer(fake).Status(context.Background()); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if len(fake.Calls) != 1 {
		t.Fatalf("len(Calls) = %d, want 1", len(fake.Calls))
	}
	if got := fake.Calls[0].String(); !strings.HasSuffix(got, "funnel status") {
		t.Errorf("Calls[0] = %q, want funnel status query", got)
	}
}
