// Package tunnel exposes the running service through an external tunnel
// client. Three client operations are used: serving the local port inside
// the private overlay, funneling a sub-path to the public internet, and
// reporting funnel status.
package tunnel

import (
	"context"
	"strconv"

	"subtool/internal/config"
	"subtool/internal/run"
)

// Exposer drives the external tunnel client.
type Exposer struct {
	bin    string
	port   int
	path   string
	runner run.Runner
	log    run.Logger
}

// New creates an Exposer from tunnel config.
func New(cfg config.TunnelConfig, runner run.Runner, log run.Logger) *Exposer {
	if log == nil {
		log = run.NewNopLogger()
	}
	return &Exposer{
		bin:    cfg.Bin,
		port:   cfg.Port,
		path:   cfg.FunnelPath,
		runner: runner,
		log:    log,
	}
}

// Up registers the local port with the tunnel client and prints the
// resulting funnel status: serve the port at the root path in the
// background, funnel the configured sub-path publicly in the background,
// then query status. The first failing command aborts the sequence.
func (e *Exposer) Up(ctx context.Context) error {
	e.log.Info("exposing service", "port", e.port, "funnel_path", e.path)

	return run.All(ctx, e.runner,
		e.serveCmd(),
		e.funnelCmd(),
		e.statusCmd(),
	)
}

// Status queries and prints the tunnel client's current funnel status.
func (e *Exposer) Status(ctx context.Context) error {
	return e.runner.Run(ctx, e.statusCmd())
}

func (e *Exposer) serveCmd() run.Command {
	return run.Command{
		Name: e.bin,
		Args: []string{"serve", "--bg", strconv.Itoa(e.port)},
	}
}

func (e *Exposer) funnelCmd() run.Command {
	return run.Command{
		Name: e.bin,
		Args: []string{"funnel", "--bg", "--set-path", e.path, strconv.Itoa(e.port)},
	}
}

func (e *Exposer) statusCmd() run.Command {
	return run.Command{
		Name:          e.bin,
		Args:          []string{"funnel", "status"},
		InheritStdout: true,
	}
}
