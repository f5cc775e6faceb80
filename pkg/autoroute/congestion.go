package autoroute

import "github.com/matzehuels/perfroute/pkg/grid"

// congestion is a per-hole cost field built from the routed connections.
// Every interior hole of a trace or jumper adds weight/(d+1) to each hole
// within Manhattan distance radius, d being the distance to that hole.
type congestion struct {
	width, height int
	field         []float64
}

func newCongestion(width, height int, conns []Connection, radius int, weight float64) *congestion {
	c := &congestion{width: width, height: height, field: make([]float64, width*height)}
	for _, conn := range conns {
		for _, p := range conn.Interior() {
			c.spread(p, radius, weight)
		}
	}
	return c
}

func (c *congestion) spread(center grid.Position, radius int, weight float64) {
	for dr := -radius; dr <= radius; dr++ {
		span := radius - abs(dr)
		for dc := -span; dc <= span; dc++ {
			p := grid.Pos(center.Col+dc, center.Row+dr)
			if !c.inBounds(p) {
				continue
			}
			c.field[p.Row*c.width+p.Col] += weight / float64(abs(dr)+abs(dc)+1)
		}
	}
}

func (c *congestion) inBounds(p grid.Position) bool {
	return p.Col >= 0 && p.Row >= 0 && p.Col < c.width && p.Row < c.height
}

// Cost is the router's per-hole cost hook.
func (c *congestion) Cost(p grid.Position) float64 {
	if !c.inBounds(p) {
		return 0
	}
	return c.field[p.Row*c.width+p.Col]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
