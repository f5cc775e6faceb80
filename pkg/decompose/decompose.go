// Package decompose reduces multi-pin nets to two-terminal routing edges.
//
// Each net becomes a minimum spanning tree over its pin holes (Prim's
// algorithm on Manhattan distance). Pins of the same physical component are
// never joined directly: the component is assumed to connect them internally.
// Edges are then given a priority and the edges of every net are sorted
// together, lowest priority first, ready for the router.
package decompose

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netlist"
)

// Edge is one point-to-point routing obligation.
type Edge struct {
	Net      string         `json:"net"`
	From     grid.Position  `json:"from"`
	To       grid.Position  `json:"to"`
	FromPin  netlist.PinRef `json:"from_pin"`
	ToPin    netlist.PinRef `json:"to_pin"`
	Distance int            `json:"distance"`
	Priority int            `json:"priority"`
}

// Adjacent reports whether the endpoints are orthogonal neighbours and can
// be joined by a solder bridge.
func (e Edge) Adjacent() bool { return e.From.Adjacent(e.To) }

func (e Edge) String() string {
	return fmt.Sprintf("%s %s%v-%s%v", e.Net, e.FromPin, e.From, e.ToPin, e.To)
}

// Weights are the priority biases added to an edge's Manhattan distance.
// Only their ordering matters: bridges first, power and ground last.
type Weights struct {
	Adjacent         int `json:"adjacent" toml:"adjacent"`
	PowerPenalty     int `json:"power_penalty" toml:"power_penalty"`
	ShortBonus       int `json:"short_bonus" toml:"short_bonus"`
	ShortMaxDistance int `json:"short_max_distance" toml:"short_max_distance"`
}

// DefaultWeights returns the stock priority biases.
func DefaultWeights() Weights {
	return Weights{
		Adjacent:         -1000,
		PowerPenalty:     100,
		ShortBonus:       -10,
		ShortMaxDistance: 4,
	}
}

// IsZero reports whether no bias is set.
func (w Weights) IsZero() bool { return w == Weights{} }

// Locator maps a pin to its absolute board hole.
type Locator func(netlist.PinRef) (grid.Position, bool)

// BoardLocator locates pins through the pads of the board's bound components.
func BoardLocator(b *grid.Board) Locator {
	return func(p netlist.PinRef) (grid.Position, bool) {
		c, ok := b.Component(p.Ref)
		if !ok {
			return grid.Position{}, false
		}
		return c.PadHole(p.Pin)
	}
}

var (
	powerNames = map[string]bool{
		"GND": true, "GROUND": true, "AGND": true, "DGND": true, "PGND": true,
		"VCC": true, "VDD": true, "VSS": true, "VEE": true, "VIN": true, "VBAT": true,
	}
	voltageName = regexp.MustCompile(`^[+-]?\d+(\.\d+)?V\d*$`)
)

// IsPowerNet reports whether a net name looks like a supply or ground rail
// (GND, VCC, +5V, 3V3, V+ ...). Matching is case-insensitive.
func IsPowerNet(name string) bool {
	n := strings.ToUpper(strings.TrimSpace(name))
	if powerNames[n] {
		return true
	}
	if strings.HasPrefix(n, "V+") || strings.HasPrefix(n, "V-") {
		return true
	}
	return voltageName.MatchString(n)
}

type located struct {
	pin netlist.PinRef
	at  grid.Position
}

// Tree returns the spanning-tree edges of one net without priorities.
//
// Pins that cannot be located are skipped. Two located pins always yield one
// edge. Larger nets run Prim's algorithm from the first located pin,
// considering only edges between different components; a pin reachable only
// through its own component joins the tree without an edge. Edges whose
// endpoints coincide need no wire and are dropped.
func Tree(net netlist.Net, locate Locator) []Edge {
	var pins []located
	for _, p := range net.Pins {
		if at, ok := locate(p); ok {
			pins = append(pins, located{p, at})
		}
	}

	var edges []Edge
	emit := func(a, b located) {
		if a.at == b.at {
			return
		}
		edges = append(edges, Edge{
			Net:      net.Name,
			From:     a.at,
			To:       b.at,
			FromPin:  a.pin,
			ToPin:    b.pin,
			Distance: a.at.Manhattan(b.at),
		})
	}

	switch len(pins) {
	case 0, 1:
		return nil
	case 2:
		emit(pins[0], pins[1])
		return edges
	}

	in := make([]bool, len(pins))
	in[0] = true
	for remaining := len(pins) - 1; remaining > 0; {
		bi, bj, best := -1, -1, 0
		for j := range pins {
			if in[j] {
				continue
			}
			for i := range pins {
				if !in[i] || pins[i].pin.Ref == pins[j].pin.Ref {
					continue
				}
				if d := pins[i].at.Manhattan(pins[j].at); bj < 0 || d < best {
					bi, bj, best = i, j, d
				}
			}
		}
		if bj >= 0 {
			emit(pins[bi], pins[bj])
			in[bj] = true
			remaining--
			continue
		}
		// Only same-component pairs are left: every remaining pin sits on a
		// component already in the tree.
		for j := range pins {
			if !in[j] {
				in[j] = true
				remaining--
			}
		}
	}
	return edges
}

// Priority returns the routing priority of an edge belonging to a net with
// pinCount located pins. Lower routes first.
func (w Weights) Priority(e Edge, pinCount int) int {
	p := e.Distance
	if e.Adjacent() {
		p += w.Adjacent
	}
	if IsPowerNet(e.Net) {
		p += w.PowerPenalty
	}
	if pinCount == 2 && e.Distance <= w.ShortMaxDistance {
		p += w.ShortBonus
	}
	return p
}

// Plan decomposes every net and returns all edges sorted ascending by
// priority. Equal priorities keep net order, then tree order.
func Plan(nets netlist.Netlist, locate Locator, w Weights) []Edge {
	var all []Edge
	for _, n := range nets {
		count := 0
		for _, p := range n.Pins {
			if _, ok := locate(p); ok {
				count++
			}
		}
		for _, e := range Tree(n, locate) {
			e.Priority = w.Priority(e, count)
			all = append(all, e)
		}
	}
	slices.SortStableFunc(all, func(a, b Edge) int { return a.Priority - b.Priority })
	return all
}
