// Package autoroute realizes a netlist as physical connections on a placed
// perfboard.
//
// [Route] decomposes every net into two-terminal edges, then walks the edges
// in priority order. Each edge ends in one of three ways:
//
//   - adjacent endpoints become a solder bridge
//   - otherwise the grid router looks for a bottom-side trace around the
//     component holes and earlier traces
//   - failing that, collinear endpoints may get a straight top-side jumper
//
// Edges still unrouted after the first pass get up to MaxPasses-1 rip-up
// passes. Each pass builds a congestion map from the current traces, then
// for every failed edge tries displacing nearby routed connections one at a
// time: the displaced connection is released, the failed edge is routed, and
// the displaced edge is routed again. If either step fails the exchange is
// rolled back from a snapshot. An edge that survives every exchange gets one
// last attempt with a relaxed turn penalty.
//
// Unroutable edges are not errors. They are reported in [Result] and the
// owning nets are listed as failed.
//
// Routing is synchronous and deterministic: the same input yields the same
// connections and IDs.
package autoroute

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perfroute/pkg/decompose"
	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/router"
)

// Input is everything a routing run reads. Board components must already be
// bound to their footprints (see grid.Board.Bind). Route never modifies it.
type Input struct {
	Board    *grid.Board
	Nets     netlist.Netlist
	Existing []Connection
}

// EdgeStatus is the state of one routing edge.
type EdgeStatus string

const (
	Pending EdgeStatus = "pending"
	Routed  EdgeStatus = "routed"
	Failed  EdgeStatus = "failed"
)

// EdgeResult is the final state of one edge. ConnectionID names the
// connection realizing it, which may be a pre-existing one.
type EdgeResult struct {
	decompose.Edge
	Status       EdgeStatus `json:"status"`
	ConnectionID string     `json:"connection_id,omitempty"`
}

// Result is the outcome of a routing run.
type Result struct {
	// Connections lists kept pre-existing connections first, then new ones
	// in edge priority order.
	Connections []Connection `json:"connections"`

	// RoutedNets counts nets whose every edge was routed. FailedNets counts
	// nets with at least one failed edge. Nets without edges count as
	// neither.
	RoutedNets     int      `json:"routed_nets"`
	FailedNets     int      `json:"failed_nets"`
	FailedNetNames []string `json:"failed_net_names,omitempty"`

	Edges []EdgeResult `json:"edges"`
	Stats Stats        `json:"stats"`
}

// Complete reports whether every net was routed.
func (r *Result) Complete() bool { return r.FailedNets == 0 }

// Route plans and routes every net of the input.
func Route(in Input, opts Options) (*Result, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	edges := decompose.Plan(in.Nets, decompose.BoardLocator(in.Board), opts.Weights)
	return RouteEdges(in, edges, opts)
}

// RouteEdges routes an already planned edge list. Edges are taken in the
// order given; [decompose.Plan] returns them sorted by priority.
func RouteEdges(in Input, edges []decompose.Edge, opts Options) (*Result, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := newRun(in, edges, opts)
	r.execute()
	return r.result(in.Nets), nil
}

func checkInput(in Input) error {
	if in.Board == nil {
		return errors.New(errors.ErrCodeInvalidBoard, "board is required")
	}
	return errors.ValidateBoardSize(in.Board.Width, in.Board.Height)
}

// state is everything a rip-up exchange may change. It is copied whole
// before an exchange and restored whole on failure.
type state struct {
	occ    *Occupancy
	conn   []*Connection
	status []EdgeStatus
}

func (s state) clone() state {
	return state{
		occ:    s.occ.Clone(),
		conn:   slices.Clone(s.conn),
		status: slices.Clone(s.status),
	}
}

// run holds one routing run. Nothing in it is shared with other runs.
type run struct {
	board *grid.Board
	opts  Options
	log   *log.Logger

	edges []decompose.Edge
	fixed []Connection
	st    state

	passes    int
	exchanges int
}

func newRun(in Input, edges []decompose.Edge, opts Options) *run {
	r := &run{
		board: in.Board,
		opts:  opts,
		log:   opts.Logger,
		edges: slices.DeleteFunc(slices.Clone(edges), func(e decompose.Edge) bool { return e.From == e.To }),
	}
	r.st = state{
		occ:    NewOccupancy(in.Board.StaticHoles()),
		conn:   make([]*Connection, len(r.edges)),
		status: make([]EdgeStatus, len(r.edges)),
	}
	for i := range r.st.status {
		r.st.status[i] = Pending
	}
	if !opts.ClearExisting {
		for _, c := range in.Existing {
			c.Fixed = true
			if c.ID == "" {
				c.ID = connectionID(c)
			}
			r.fixed = append(r.fixed, c)
			r.st.occ.Claim(c)
		}
	}
	return r
}

func (r *run) execute() {
	r.log.Debug("routing", "edges", len(r.edges), "existing", len(r.fixed), "passes", r.opts.MaxPasses)

	for i := range r.edges {
		if r.satisfy(i) {
			continue
		}
		if c, ok := r.attempt(r.edges[i], r.opts.TurnPenalty, nil); ok {
			r.commit(i, c)
			continue
		}
		r.st.status[i] = Failed
		r.log.Debug("edge failed", "pass", 1, "edge", r.edges[i].String())
	}
	r.passes = 1

	for pass := 2; pass <= r.opts.MaxPasses; pass++ {
		failed := r.failed()
		if len(failed) == 0 {
			break
		}
		r.passes = pass
		r.log.Debug("rip-up pass", "pass", pass, "failed", len(failed))

		cost := newCongestion(r.board.Width, r.board.Height, r.routed(), r.opts.CongestionRadius, r.opts.CongestionWeight).Cost
		last := pass == r.opts.MaxPasses
		for _, i := range failed {
			r.retry(i, cost, last)
		}
	}
}

// satisfy marks an edge routed when a pre-existing connection of the same
// net already joins its endpoints.
func (r *run) satisfy(i int) bool {
	e := r.edges[i]
	for k := range r.fixed {
		if f := &r.fixed[k]; f.Net == e.Net && f.Joins(e.From, e.To) {
			r.st.conn[i] = f
			r.st.status[i] = Routed
			return true
		}
	}
	return false
}

// attempt finds a connection for e under the current occupancy without
// changing any state.
func (r *run) attempt(e decompose.Edge, turnPenalty float64, cost func(grid.Position) float64) (Connection, bool) {
	if e.Adjacent() {
		return Connection{Type: Bridge, Surface: Bottom, From: e.From, To: e.To, Net: e.Net}, true
	}

	surfaces := []Surface{Bottom, Top}
	if r.opts.PrimarySurface == Top {
		surfaces = []Surface{Top, Bottom}
	}
	for _, s := range surfaces {
		req := router.Request{
			Start:         e.From,
			End:           e.To,
			Width:         r.board.Width,
			Height:        r.board.Height,
			Blocked:       r.st.occ.Blocker(s),
			TurnPenalty:   turnPenalty,
			Cost:          cost,
			MaxIterations: r.opts.MaxIterations,
		}
		if s == Top {
			if !e.From.Collinear(e.To) {
				continue
			}
			if path, err := router.Straight(req); err == nil {
				return newConnection(Jumper, Top, e.Net, path), true
			}
			continue
		}
		if path, err := router.Route(req); err == nil {
			return newConnection(Trace, Bottom, e.Net, path), true
		}
	}
	return Connection{}, false
}

func newConnection(t ConnectionType, s Surface, net string, path []grid.Position) Connection {
	return Connection{
		Type:      t,
		Surface:   s,
		From:      path[0],
		To:        path[len(path)-1],
		Waypoints: slices.Clone(path[1 : len(path)-1]),
		Net:       net,
	}
}

// commit records c as the realization of edge i and claims its holes.
func (r *run) commit(i int, c Connection) {
	c.ID = connectionID(c)
	r.st.occ.Claim(c)
	r.st.conn[i] = &c
	r.st.status[i] = Routed
}

// release undoes commit for edge i.
func (r *run) release(i int) {
	if c := r.st.conn[i]; c != nil && !c.Fixed {
		r.st.occ.Release(*c)
	}
	r.st.conn[i] = nil
	r.st.status[i] = Pending
}

func (r *run) failed() []int {
	var out []int
	for i, s := range r.st.status {
		if s == Failed {
			out = append(out, i)
		}
	}
	return out
}

// routed returns every connection currently on the board.
func (r *run) routed() []Connection {
	out := slices.Clone(r.fixed)
	for _, c := range r.st.conn {
		if c != nil && !c.Fixed {
			out = append(out, *c)
		}
	}
	return out
}

// retry gives failed edge i another chance: first as is under congestion
// costs, then by displacing nearby connections, and on the last pass with a
// relaxed turn penalty.
func (r *run) retry(i int, cost func(grid.Position) float64, last bool) {
	e := r.edges[i]
	if c, ok := r.attempt(e, r.opts.TurnPenalty, cost); ok {
		r.commit(i, c)
		r.log.Debug("edge routed on retry", "edge", e.String())
		return
	}

	for _, j := range r.candidates(i) {
		snapshot := r.st.clone()
		displaced := r.edges[j]

		r.release(j)
		ci, ok := r.attempt(e, r.opts.TurnPenalty, cost)
		if !ok {
			r.st = snapshot
			continue
		}
		r.commit(i, ci)

		cj, ok := r.attempt(displaced, r.opts.TurnPenalty, cost)
		if !ok {
			r.st = snapshot
			continue
		}
		r.commit(j, cj)
		r.exchanges++
		r.log.Debug("rip-up exchange", "routed", e.String(), "rerouted", displaced.String())
		return
	}

	if last {
		if c, ok := r.attempt(e, r.opts.RelaxedTurnPenalty, nil); ok {
			r.commit(i, c)
			r.log.Debug("edge routed with relaxed turn penalty", "edge", e.String())
			return
		}
	}
	r.log.Debug("edge still failed", "edge", e.String())
}

// candidates lists routed edges whose connection crosses the failed edge's
// bounding box grown by RipUpMargin, nearest first. Pre-existing connections
// and bridges are never displaced.
func (r *run) candidates(i int) []int {
	e := r.edges[i]
	box := grid.Bounds(e.From, e.To).Grow(r.opts.RipUpMargin)

	type candidate struct{ edge, dist int }
	var out []candidate
	for j, c := range r.st.conn {
		if j == i || c == nil || c.Fixed || r.st.status[j] != Routed {
			continue
		}
		best := -1
		for _, p := range c.Interior() {
			if !box.Contains(p) {
				continue
			}
			if d := min(p.Manhattan(e.From), p.Manhattan(e.To)); best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 {
			out = append(out, candidate{j, best})
		}
	}
	slices.SortStableFunc(out, func(a, b candidate) int { return cmp.Compare(a.dist, b.dist) })

	idx := make([]int, len(out))
	for k, c := range out {
		idx[k] = c.edge
	}
	return idx
}

func (r *run) result(nets netlist.Netlist) *Result {
	res := &Result{
		Connections: r.routed(),
		Edges:       make([]EdgeResult, len(r.edges)),
	}

	perNet := make(map[string][]EdgeStatus)
	for i, e := range r.edges {
		er := EdgeResult{Edge: e, Status: r.st.status[i]}
		if c := r.st.conn[i]; c != nil {
			er.ConnectionID = c.ID
		}
		res.Edges[i] = er
		perNet[e.Net] = append(perNet[e.Net], er.Status)
	}

	for _, n := range nets {
		statuses, ok := perNet[n.Name]
		if !ok {
			continue
		}
		delete(perNet, n.Name)
		if slices.Contains(statuses, Failed) {
			res.FailedNets++
			res.FailedNetNames = append(res.FailedNetNames, n.Name)
		} else {
			res.RoutedNets++
		}
	}

	res.Stats = computeStats(res.Connections, len(r.edges))
	res.Stats.Passes = r.passes
	res.Stats.Exchanges = r.exchanges

	r.log.Info("routing complete",
		"routed_nets", res.RoutedNets,
		"failed_nets", res.FailedNets,
		"connections", len(res.Connections),
		"exchanges", r.exchanges,
	)
	return res
}
