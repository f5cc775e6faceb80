// Package netlist turns a schematic into nets: named groups of component pins
// that must end up electrically identical.
//
// A schematic is a loose collection of parts, wires, junctions and labels.
// [Resolve] treats every connection point (pin, wire vertex, junction, label)
// as a node keyed by its rounded coordinates and merges nodes with a
// union-find. Every resulting group that touches at least one pin becomes a
// [Net]. Nets carry no identity between resolutions; callers re-resolve
// whenever the schematic changes.
package netlist

import (
	"fmt"
	"slices"
	"strings"
)

// Point is a schematic coordinate. Schematic units are arbitrary; only the
// rounding precision in [Options] gives them meaning.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Symbol is a library symbol: the pin layout shared by every part that uses it.
type Symbol struct {
	Name string      `json:"name" toml:"name"`
	Pins []SymbolPin `json:"pins" toml:"pins"`
}

// SymbolPin is a pin connection point relative to the symbol origin.
type SymbolPin struct {
	Name   string `json:"name" toml:"name"`
	Offset Point  `json:"offset" toml:"offset"`
}

// Part is a symbol instance. Ref names the physical component and must match
// the reference of the placed footprint on the board.
type Part struct {
	Ref      string `json:"ref" toml:"ref"`
	Symbol   string `json:"symbol" toml:"symbol"`
	Position Point  `json:"position" toml:"position"`
	Rotation int    `json:"rotation,omitempty" toml:"rotation,omitempty"`
	Mirror   bool   `json:"mirror,omitempty" toml:"mirror,omitempty"`
}

// Wire is a polyline; consecutive points are electrically joined.
type Wire struct {
	Points []Point `json:"points" toml:"points"`
}

// Junction is an explicit connection dot.
type Junction struct {
	Position Point `json:"position" toml:"position"`
}

// Label attaches a net name at a point. Labels sharing the same text are
// joined even when no wire connects them.
type Label struct {
	Text     string `json:"text" toml:"text"`
	Position Point  `json:"position" toml:"position"`
}

// Schematic is the complete resolver input.
type Schematic struct {
	Symbols   []Symbol   `json:"symbols,omitempty" toml:"symbols"`
	Parts     []Part     `json:"parts,omitempty" toml:"parts"`
	Wires     []Wire     `json:"wires,omitempty" toml:"wires"`
	Junctions []Junction `json:"junctions,omitempty" toml:"junctions"`
	Labels    []Label    `json:"labels,omitempty" toml:"labels"`
}

// Symbol returns the named symbol.
func (s *Schematic) Symbol(name string) (*Symbol, bool) {
	for i := range s.Symbols {
		if s.Symbols[i].Name == name {
			return &s.Symbols[i], true
		}
	}
	return nil, false
}

// PinRef identifies one pin of one component.
type PinRef struct {
	Ref string `json:"ref" toml:"ref"`
	Pin string `json:"pin" toml:"pin"`
}

func (p PinRef) String() string { return p.Ref + "." + p.Pin }

// ParsePinRef parses the "REF.PIN" form produced by [PinRef.String]. The
// reference ends at the last dot, so pin names may not contain dots.
func ParsePinRef(s string) (PinRef, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return PinRef{}, fmt.Errorf("invalid pin reference %q: want REF.PIN", s)
	}
	return PinRef{Ref: s[:i], Pin: s[i+1:]}, nil
}

// Net is a named set of pins that must be joined.
type Net struct {
	Name string   `json:"name" toml:"name"`
	Pins []PinRef `json:"pins" toml:"pins"`
}

// Netlist is an ordered list of nets.
type Netlist []Net

// ByName returns the net with the given name.
func (nl Netlist) ByName(name string) (Net, bool) {
	for _, n := range nl {
		if n.Name == name {
			return n, true
		}
	}
	return Net{}, false
}

// PinCount returns the total number of pins across all nets.
func (nl Netlist) PinCount() int {
	total := 0
	for _, n := range nl {
		total += len(n.Pins)
	}
	return total
}

// Components returns the sorted, deduplicated component references used by
// the netlist.
func (nl Netlist) Components() []string {
	var refs []string
	for _, n := range nl {
		for _, p := range n.Pins {
			refs = append(refs, p.Ref)
		}
	}
	slices.Sort(refs)
	return slices.Compact(refs)
}
