// Package pipeline runs the resolve → plan → route pipeline for a project.
//
// The CLI and the API server both go through a [Runner], so caching,
// logging and hooks behave the same everywhere.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Resolve: turn the project's net source into a netlist
//  2. Plan: decompose the nets into prioritized two-terminal edges
//  3. Route: realize the edges as bridges, traces and jumpers
//
// Resolve and Route results are cached. Routing is deterministic, so a
// cached result is exactly what a fresh run would produce.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	p, err := project.Load("astable.toml")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, p, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Layout.Result.FailedNetNames)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/cache"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/project"
)

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Precision is the schematic coordinate rounding step.
	Precision float64

	// Routing overrides the project's [routing] table when Override is set.
	Routing  autoroute.Options
	Override bool

	// Refresh skips cache reads. Results are still written.
	Refresh bool

	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Precision <= 0 {
		o.Precision = netlist.DefaultPrecision
	}
}

// routing returns the effective routing options for p.
func (o *Options) routing(p *project.Project) autoroute.Options {
	opts := p.Routing
	if o.Override {
		opts = o.Routing
	}
	opts.Logger = o.Logger
	opts.SetDefaults()
	return opts
}

// routeKeyOpts converts routing options into their cache key form.
func routeKeyOpts(o autoroute.Options) cache.RouteKeyOpts {
	return cache.RouteKeyOpts{
		PrimarySurface:     string(o.PrimarySurface),
		ClearExisting:      o.ClearExisting,
		MaxPasses:          o.MaxPasses,
		TurnPenalty:        o.TurnPenalty,
		RelaxedTurnPenalty: o.RelaxedTurnPenalty,
		MaxIterations:      o.MaxIterations,
		RipUpMargin:        o.RipUpMargin,
		CongestionRadius:   o.CongestionRadius,
		CongestionWeight:   o.CongestionWeight,
		Weights:            [4]int{o.Weights.Adjacent, o.Weights.PowerPenalty, o.Weights.ShortBonus, o.Weights.ShortMaxDistance},
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of [Runner.Execute].
type Result struct {
	Layout *project.Layout

	// Warnings are recoverable input problems: unknown footprints, unknown
	// schematic symbols, duplicate references.
	Warnings []string

	// InputHash identifies the routing input (board, footprints, nets and
	// existing connections).
	InputHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records pipeline timings and sizes.
type Stats struct {
	ResolveTime time.Duration
	RouteTime   time.Duration
	NetCount    int
	EdgeCount   int
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	NetsHit  bool
	RouteHit bool
}

func warningStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
