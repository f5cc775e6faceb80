package autoroute

import "github.com/matzehuels/perfroute/pkg/grid"

// Occupancy tracks which holes are consumed on each surface.
//
// Static holds component pads and bodies and is never modified once routing
// starts. Bottom and Top hold the interior holes of routed connections; a
// connection's endpoints are never claimed, so several connections of one
// net can share a pad. A jumper passes through the board and claims its
// interior on both surfaces.
//
// An Occupancy belongs to one routing run. Runs that explore alternatives in
// parallel must each work on their own [Occupancy.Clone].
type Occupancy struct {
	Static grid.HoleSet
	Bottom grid.HoleSet
	Top    grid.HoleSet
}

// NewOccupancy returns empty surfaces over the given static holes.
func NewOccupancy(static grid.HoleSet) *Occupancy {
	if static == nil {
		static = grid.NewHoleSet()
	}
	return &Occupancy{
		Static: static,
		Bottom: grid.NewHoleSet(),
		Top:    grid.NewHoleSet(),
	}
}

// Claim marks the connection's interior holes as used.
func (o *Occupancy) Claim(c Connection) {
	for _, p := range c.Interior() {
		for _, s := range o.surfaces(c) {
			s.Add(p)
		}
	}
}

// Release frees the connection's interior holes.
func (o *Occupancy) Release(c Connection) {
	for _, p := range c.Interior() {
		for _, s := range o.surfaces(c) {
			s.Remove(p)
		}
	}
}

func (o *Occupancy) surfaces(c Connection) []grid.HoleSet {
	switch {
	case c.Type == Jumper:
		return []grid.HoleSet{o.Bottom, o.Top}
	case c.Surface == Top:
		return []grid.HoleSet{o.Top}
	default:
		return []grid.HoleSet{o.Bottom}
	}
}

// Clone returns a copy whose surface sets can be modified independently.
// The static set is shared.
func (o *Occupancy) Clone() *Occupancy {
	return &Occupancy{
		Static: o.Static,
		Bottom: o.Bottom.Clone(),
		Top:    o.Top.Clone(),
	}
}

// Blocker returns the blocked-hole test for routing on a surface. Bottom
// traces avoid static holes and other bottom traces. Top jumpers go through
// the board, so they also avoid everything on the bottom.
func (o *Occupancy) Blocker(s Surface) func(grid.Position) bool {
	if s == Top {
		return func(p grid.Position) bool {
			return o.Static.Has(p) || o.Top.Has(p) || o.Bottom.Has(p)
		}
	}
	return func(p grid.Position) bool {
		return o.Static.Has(p) || o.Bottom.Has(p)
	}
}
