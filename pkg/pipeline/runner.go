package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/cache"
	"github.com/matzehuels/perfroute/pkg/decompose"
	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/observability"
	"github.com/matzehuels/perfroute/pkg/project"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → plan → route pipeline with caching.
func (r *Runner) Execute(ctx context.Context, p *project.Project, opts Options) (*Result, error) {
	opts.SetDefaults()
	r.applyLogger(&opts)

	board, warnings, err := p.Board()
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	result := &Result{Warnings: warningStrings(warnings)}

	// Stage 1: Resolve
	resolveStart := time.Now()
	nets, netWarnings, netsHit, err := r.ResolveNetsWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Warnings = append(result.Warnings, netWarnings...)
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.NetCount = len(nets)
	result.CacheInfo.NetsHit = netsHit

	r.Logger.Info("resolved nets",
		"nets", len(nets),
		"pins", nets.PinCount(),
		"duration", result.Stats.ResolveTime)

	// Stages 2 and 3: Plan and Route
	routing := opts.routing(p)
	in := autoroute.Input{Board: board, Nets: nets, Existing: p.Existing}

	routeStart := time.Now()
	res, inputHash, routeHit, err := r.RouteWithCacheInfo(ctx, in, routing, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.InputHash = inputHash
	result.Stats.RouteTime = time.Since(routeStart)
	result.Stats.EdgeCount = len(res.Edges)
	result.CacheInfo.RouteHit = routeHit
	result.Layout = project.NewLayout(p.Name, board, nets, res)

	r.Logger.Info("routed board",
		"routed_nets", res.RoutedNets,
		"failed_nets", res.FailedNets,
		"connections", len(res.Connections),
		"cached", routeHit,
		"duration", result.Stats.RouteTime)

	return result, nil
}

// cachedNets is the cache payload of a resolved netlist.
type cachedNets struct {
	Nets     netlist.Netlist `json:"nets"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ResolveNetsWithCacheInfo builds the project's netlist with caching and
// returns cache hit info.
func (r *Runner) ResolveNetsWithCacheInfo(ctx context.Context, p *project.Project, opts Options) (netlist.Netlist, []string, bool, error) {
	opts.SetDefaults()
	r.applyLogger(&opts)

	source := p.NetSource()
	if source == "" {
		return netlist.Netlist{}, nil, false, nil
	}

	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, source)
	start := time.Now()

	sourceHash, err := netSourceHash(p)
	if err != nil {
		hooks.OnResolveComplete(ctx, source, 0, time.Since(start), err)
		return nil, nil, false, err
	}
	cacheKey := r.Keyer.NetsKey(sourceHash, cache.NetsKeyOpts{Precision: opts.Precision})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cachedNets
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "nets")
				hooks.OnResolveComplete(ctx, source, len(cached.Nets), time.Since(start), nil)
				return cached.Nets, cached.Warnings, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "nets")
	}

	nets, warnings, err := p.Netlist(netlist.Options{Precision: opts.Precision, Logger: opts.Logger})
	if err != nil {
		hooks.OnResolveComplete(ctx, source, 0, time.Since(start), err)
		return nil, nil, false, err
	}
	for _, w := range warnings {
		r.Logger.Warn("netlist", "warning", w)
	}

	payload := cachedNets{Nets: nets, Warnings: warningStrings(warnings)}
	if data, err := json.Marshal(payload); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLNets) == nil {
			observability.Cache().OnCacheSet(ctx, "nets", len(data))
		}
	}

	hooks.OnResolveComplete(ctx, source, len(nets), time.Since(start), nil)
	return nets, payload.Warnings, false, nil
}

// ResolveNets is a convenience wrapper that calls ResolveNetsWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ResolveNets(ctx context.Context, p *project.Project, opts Options) (netlist.Netlist, []string, error) {
	nets, warnings, _, err := r.ResolveNetsWithCacheInfo(ctx, p, opts)
	return nets, warnings, err
}

// netSourceHash identifies a project's net source by content.
func netSourceHash(p *project.Project) (string, error) {
	switch p.NetSource() {
	case project.SourceSchematic:
		return cache.HashJSON(p.Schematic)
	case project.SourceNetfile:
		data, err := os.ReadFile(p.NetfilePath())
		if err != nil {
			return "", fmt.Errorf("read netfile: %w", err)
		}
		return cache.Hash(data), nil
	default:
		return cache.HashJSON(p.Nets)
	}
}

// Plan decomposes nets into prioritized edges for the board.
func (r *Runner) Plan(board *grid.Board, nets netlist.Netlist, opts autoroute.Options) []decompose.Edge {
	opts.SetDefaults()
	edges := decompose.Plan(nets, decompose.BoardLocator(board), opts.Weights)
	r.Logger.Debug("planned edges", "edges", len(edges))
	return edges
}

// routeInput is the canonical form of everything a routing result depends
// on besides the options.
type routeInput struct {
	Layout   *project.Layout        `json:"layout"`
	Existing []autoroute.Connection `json:"existing"`
}

// InputHash identifies a routing input by content.
func InputHash(in autoroute.Input) (string, error) {
	return cache.HashJSON(routeInput{
		Layout:   project.NewLayout("", in.Board, in.Nets, nil),
		Existing: in.Existing,
	})
}

// RouteWithCacheInfo routes with caching and returns the input hash and
// cache hit info.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, in autoroute.Input, opts autoroute.Options, refresh bool) (*autoroute.Result, string, bool, error) {
	if in.Board == nil {
		return nil, "", false, errors.New(errors.ErrCodeInvalidBoard, "board is required")
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()

	inputHash, err := InputHash(in)
	if err != nil {
		return nil, "", false, err
	}
	cacheKey := r.Keyer.RouteKey(inputHash, routeKeyOpts(opts))

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached autoroute.Result
			if json.Unmarshal(data, &cached) == nil {
				observability.Cache().OnCacheHit(ctx, "route")
				return &cached, inputHash, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "route")
	}

	edges := r.Plan(in.Board, in.Nets, opts)

	hooks := observability.Pipeline()
	hooks.OnRouteStart(ctx, len(edges))
	start := time.Now()
	res, err := autoroute.RouteEdges(in, edges, opts)
	if err != nil {
		hooks.OnRouteComplete(ctx, 0, 0, time.Since(start), err)
		return nil, inputHash, false, err
	}
	hooks.OnRouteComplete(ctx, res.RoutedNets, res.FailedNets, time.Since(start), nil)

	if data, err := json.Marshal(res); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLRoute) == nil {
			observability.Cache().OnCacheSet(ctx, "route", len(data))
		}
	}
	return res, inputHash, false, nil
}

// Route is a convenience wrapper that calls RouteWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Route(ctx context.Context, in autoroute.Input, opts autoroute.Options) (*autoroute.Result, error) {
	res, _, _, err := r.RouteWithCacheInfo(ctx, in, opts, false)
	return res, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
