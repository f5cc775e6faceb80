// Package cli implements the perfroute command-line interface.
//
// Commands are built with cobra and log with charmbracelet/log. Routing goes
// through a [pipeline.Runner], so an unchanged project is never routed twice.
//
// # Commands
//
//   - route: route a project and write, show, check or store the layout
//   - nets: print a project's netlist as text, JSON, DOT or SVG
//   - view: browse a routed layout interactively
//   - serve: expose routing as a JSON HTTP API
//   - layouts: list, export and delete stored layouts
//   - cache: manage the local result cache
//
// Logs go to stderr and command output to stdout, so
//
//	perfroute nets board.toml -f dot | dot -Tpng > nets.png
//
// works with logging on. --verbose (-v) enables debug logs, which include
// per-edge routing failures and rip-up exchanges.
//
// [pipeline.Runner]: github.com/matzehuels/perfroute/pkg/pipeline.Runner
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a step took once it finishes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs "msg (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

// withLogger attaches l to ctx. The API uses it to tag request logs.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the attached logger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
