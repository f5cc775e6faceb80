// Package router finds rectilinear wire paths between two holes of a
// perfboard.
//
// [Route] is the entry point. It escalates from cheap to expensive
// strategies and stops at the first that succeeds:
//
//  1. a direct straight line between collinear holes
//  2. an L-route with one corner (both variants)
//  3. a Z-route with two corners inside the endpoints' bounding box
//  4. a direction-aware A* search ([Search])
//
// The shortcuts only ever return paths that A* would also consider optimal,
// so they are skipped when a per-hole congestion cost is supplied. A* tracks
// the direction a hole was entered from, so a high turn penalty yields paths
// with the fewest corners rather than just the shortest ones.
//
// Paths are returned as corner waypoints: the start, every change of
// direction, and the end. [Cells] expands them back to every hole crossed.
//
// [Straight] is the restricted mode for jumper wires on the component side,
// which cannot bend.
//
// The start and end holes are always exempt from the blocked check, so a
// route may begin and end on component pads.
package router

import (
	"errors"
	"fmt"

	"github.com/matzehuels/perfroute/pkg/grid"
)

const (
	// DefaultTurnPenalty is the cost of one change of direction, in holes.
	DefaultTurnPenalty = 5.0

	// DefaultMaxIterations caps A* expansions per search.
	DefaultMaxIterations = 50000
)

var (
	// ErrNoPath is returned when no path exists under the request's
	// constraints.
	ErrNoPath = errors.New("no path")

	// ErrSearchLimit is returned when A* gives up after MaxIterations
	// expansions. It matches ErrNoPath under errors.Is.
	ErrSearchLimit = fmt.Errorf("%w: search limit reached", ErrNoPath)
)

// Request describes one two-terminal routing problem.
type Request struct {
	Start, End grid.Position

	// Width and Height bound the board. Holes outside are never used.
	Width, Height int

	// Blocked reports holes the path may not cross. Nil blocks nothing.
	// Start and End are never checked.
	Blocked func(grid.Position) bool

	// TurnPenalty is added for every change of direction. Zero selects
	// DefaultTurnPenalty; pass a small positive value to relax it.
	TurnPenalty float64

	// Cost optionally adds a non-negative weight for entering a hole.
	// Negative weights are treated as zero.
	Cost func(grid.Position) float64

	// MaxIterations caps A* expansions. Zero selects DefaultMaxIterations.
	MaxIterations int
}

// SetDefaults fills unset tunables.
func (r *Request) SetDefaults() {
	if r.TurnPenalty <= 0 {
		r.TurnPenalty = DefaultTurnPenalty
	}
	if r.MaxIterations <= 0 {
		r.MaxIterations = DefaultMaxIterations
	}
}

func (r *Request) inBounds(p grid.Position) bool {
	return p.Col >= 0 && p.Row >= 0 && p.Col < r.Width && p.Row < r.Height
}

// free reports whether the path may use hole p.
func (r *Request) free(p grid.Position) bool {
	if !r.inBounds(p) {
		return false
	}
	if p == r.Start || p == r.End {
		return true
	}
	return r.Blocked == nil || !r.Blocked(p)
}

// clear reports whether every hole on the axis-aligned segment a..b is free.
func (r *Request) clear(a, b grid.Position) bool {
	for _, p := range segment(a, b) {
		if !r.free(p) {
			return false
		}
	}
	return true
}

func (r *Request) check() error {
	if !r.inBounds(r.Start) || !r.inBounds(r.End) {
		return fmt.Errorf("%w: endpoint outside %dx%d board", ErrNoPath, r.Width, r.Height)
	}
	return nil
}

// Route finds a path from req.Start to req.End, trying the shortcut
// strategies before falling back to A*. Coincident endpoints yield a single
// waypoint.
func Route(req Request) ([]grid.Position, error) {
	req.SetDefaults()
	if err := req.check(); err != nil {
		return nil, err
	}
	if req.Start == req.End {
		return []grid.Position{req.Start}, nil
	}
	if req.Cost == nil {
		for _, try := range []func(*Request) []grid.Position{direct, lRoute, zRoute} {
			if path := try(&req); path != nil {
				return path, nil
			}
		}
	}
	return search(&req)
}

// Straight returns a single straight segment between collinear endpoints, or
// ErrNoPath when they are not collinear or any hole between them is blocked.
func Straight(req Request) ([]grid.Position, error) {
	if err := req.check(); err != nil {
		return nil, err
	}
	if req.Start == req.End || !req.Start.Collinear(req.End) {
		return nil, fmt.Errorf("%w: %v and %v are not on one line", ErrNoPath, req.Start, req.End)
	}
	if path := direct(&req); path != nil {
		return path, nil
	}
	return nil, fmt.Errorf("%w: straight run %v-%v is blocked", ErrNoPath, req.Start, req.End)
}
