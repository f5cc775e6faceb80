package autoroute

import (
	"fmt"

	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/router"
)

// Verify checks a result against the board and returns every violation
// found. It checks that:
//
//   - each connection runs in axis-aligned segments inside the board
//   - bridges join adjacent holes and jumpers are single straight runs
//   - no interior hole sits on a component hole
//   - no interior hole is used twice on the same surface
//
// An empty slice means the layout is physically consistent.
func Verify(res *Result, board *grid.Board) []error {
	var problems []error
	static := board.StaticHoles()
	used := map[Surface]map[grid.Position]string{Bottom: {}, Top: {}}

	for _, c := range res.Connections {
		path := c.Path()
		if c.From == c.To {
			problems = append(problems, fmt.Errorf("%s: coincident endpoints %v", c.ID, c.From))
			continue
		}
		if !router.Valid(path) {
			problems = append(problems, fmt.Errorf("%s: path %v has a diagonal segment", c.ID, path))
			continue
		}
		for _, p := range path {
			if !board.InBounds(p) {
				problems = append(problems, fmt.Errorf("%s: waypoint %v outside board", c.ID, p))
			}
		}

		surfaces := []Surface{c.Surface}
		switch c.Type {
		case Bridge:
			if !c.From.Adjacent(c.To) || len(c.Waypoints) > 0 {
				problems = append(problems, fmt.Errorf("%s: bridge %v-%v is not between adjacent holes", c.ID, c.From, c.To))
			}
			continue
		case Jumper:
			if len(c.Waypoints) > 0 || c.Surface != Top {
				problems = append(problems, fmt.Errorf("%s: jumper must be one straight top-side run", c.ID))
			}
			surfaces = []Surface{Bottom, Top}
		case Trace:
			if c.Surface != Bottom {
				problems = append(problems, fmt.Errorf("%s: trace on %s surface", c.ID, c.Surface))
			}
		default:
			problems = append(problems, fmt.Errorf("%s: unknown connection type %q", c.ID, c.Type))
			continue
		}

		for _, p := range c.Interior() {
			if static.Has(p) {
				problems = append(problems, fmt.Errorf("%s: crosses component hole %v", c.ID, p))
			}
			for _, s := range surfaces {
				if other, ok := used[s][p]; ok {
					problems = append(problems, fmt.Errorf("%s: hole %v on %s already used by %s", c.ID, p, s, other))
					continue
				}
				used[s][p] = c.ID
			}
		}
	}
	return problems
}
