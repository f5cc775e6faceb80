package router

import (
	"container/heap"
	"fmt"

	"github.com/matzehuels/perfroute/pkg/grid"
)

// direction is the way a hole was entered. none marks the start state.
type direction int8

const (
	north direction = iota
	east
	south
	west
	none
	numDirs
)

// step is the offset for each direction, matching grid.Position.Neighbors.
var step = [4]grid.Position{{Col: 0, Row: -1}, {Col: 1, Row: 0}, {Col: 0, Row: 1}, {Col: -1, Row: 0}}

func (d direction) opposite() direction {
	if d == none {
		return none
	}
	return (d + 2) % 4
}

// node is the search record for one (hole, direction) state. Records are
// created on first reach, so memory follows the explored area rather than
// the board.
type node struct {
	state  int
	parent *node
	g, f   float64
	h      int
	seq    int
	index  int // in the open list; -1 once popped
	closed bool
}

type openList []*node

func (o openList) Len() int { return len(o) }

func (o openList) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].h != o[j].h {
		return o[i].h < o[j].h
	}
	return o[i].seq < o[j].seq
}

func (o openList) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openList) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}

func (o *openList) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	n.index = -1
	*o = old[:len(old)-1]
	return n
}

// Search runs the full A* search without trying the shortcuts first.
func Search(req Request) ([]grid.Position, error) {
	req.SetDefaults()
	if err := req.check(); err != nil {
		return nil, err
	}
	if req.Start == req.End {
		return []grid.Position{req.Start}, nil
	}
	return search(&req)
}

func search(r *Request) ([]grid.Position, error) {
	w := r.Width
	encode := func(p grid.Position, d direction) int { return (p.Row*w+p.Col)*int(numDirs) + int(d) }
	decode := func(s int) (grid.Position, direction) {
		cell := s / int(numDirs)
		return grid.Pos(cell%w, cell/w), direction(s % int(numDirs))
	}

	seen := make(map[int]*node)

	// Plain Manhattan distance. Adding a turn estimate would make the
	// heuristic inconsistent, and closed states are never reopened.
	heuristic := func(p grid.Position) (float64, int) {
		h := p.Manhattan(r.End)
		return float64(h), h
	}

	var pq openList
	seq := 0
	relax := func(s int, gs float64, p grid.Position, from *node) {
		hf, hi := heuristic(p)
		n, ok := seen[s]
		switch {
		case !ok:
			n = &node{state: s, parent: from, g: gs, f: gs + hf, h: hi, seq: seq}
			seq++
			seen[s] = n
			heap.Push(&pq, n)
		case n.closed || gs >= n.g:
			// no improvement
		default:
			n.parent, n.g, n.f = from, gs, gs+hf
			heap.Fix(&pq, n.index)
		}
	}

	relax(encode(r.Start, none), 0, r.Start, nil)

	for expanded := 0; pq.Len() > 0; expanded++ {
		if expanded >= r.MaxIterations {
			return nil, fmt.Errorf("%w after %d expansions (%v-%v)", ErrSearchLimit, expanded, r.Start, r.End)
		}
		cur := heap.Pop(&pq).(*node)
		cur.closed = true

		p, d := decode(cur.state)
		if p == r.End {
			return Simplify(reconstruct(cur, decode)), nil
		}

		for nd := north; nd < none; nd++ {
			if nd == d.opposite() {
				continue
			}
			q := p.Add(step[nd])
			if !r.free(q) {
				continue
			}
			cost := 1.0
			if d != none && nd != d {
				cost += r.TurnPenalty
			}
			if r.Cost != nil && q != r.End {
				cost += max(r.Cost(q), 0)
			}
			relax(encode(q, nd), cur.g+cost, q, cur)
		}
	}
	return nil, fmt.Errorf("%w: %v-%v", ErrNoPath, r.Start, r.End)
}

func reconstruct(n *node, decode func(int) (grid.Position, direction)) []grid.Position {
	var rev []grid.Position
	for ; n != nil; n = n.parent {
		p, _ := decode(n.state)
		rev = append(rev, p)
	}
	out := make([]grid.Position, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}
