package netlist

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/log"
)

// DefaultPrecision is the coordinate rounding step used when
// Options.Precision is zero.
const DefaultPrecision = 1.0

// Options configures [Resolve].
type Options struct {
	// Precision is the grid step coordinates are rounded to before points are
	// compared. Two points closer than half a step coincide.
	Precision float64

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Result is the outcome of resolving a schematic.
type Result struct {
	Nets Netlist `json:"nets"`

	// Warnings lists recoverable problems such as parts with unknown
	// symbols. Affected pins are left out of every net.
	Warnings []error `json:"-"`
}

// key is a rounded coordinate.
type key struct{ x, y int64 }

type segment struct{ a, b key }

// Resolve groups the schematic's pins into nets.
//
// Nets are returned in discovery order (parts in schematic order, pins in
// symbol order). A net takes the text of the first label, in schematic order,
// attached to it; unlabelled nets are named Net_1, Net_2, ... in the same
// order, skipping names already taken by labels. Groups without any pin are
// dropped. Resolve never fails: unknown symbols and duplicate references
// become warnings.
func Resolve(s *Schematic, opts Options) *Result {
	opts.SetDefaults()
	res := &Result{}
	uf := newUnionFind[key]()
	round := func(p Point) key {
		return key{
			x: int64(math.Round(p.X / opts.Precision)),
			y: int64(math.Round(p.Y / opts.Precision)),
		}
	}

	type pinAt struct {
		ref PinRef
		at  key
	}
	var pins []pinAt
	seenRef := make(map[string]bool)
	for _, part := range s.Parts {
		if seenRef[part.Ref] {
			res.Warnings = append(res.Warnings, fmt.Errorf("%s: duplicate reference, part ignored", part.Ref))
			continue
		}
		seenRef[part.Ref] = true

		sym, ok := s.Symbol(part.Symbol)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Errorf("%s: unknown symbol %q, pins skipped", part.Ref, part.Symbol))
			continue
		}
		for _, sp := range sym.Pins {
			k := round(PinPosition(part, sp.Offset))
			uf.add(k)
			pins = append(pins, pinAt{PinRef{part.Ref, sp.Name}, k})
		}
	}

	var segs []segment
	var endpoints []key
	for _, w := range s.Wires {
		for i, p := range w.Points {
			k := round(p)
			uf.add(k)
			if i > 0 {
				prev := round(w.Points[i-1])
				uf.union(prev, k)
				segs = append(segs, segment{prev, k})
			}
		}
		if n := len(w.Points); n > 0 {
			endpoints = append(endpoints, round(w.Points[0]), round(w.Points[n-1]))
		}
	}
	for _, j := range s.Junctions {
		k := round(j.Position)
		uf.add(k)
		endpoints = append(endpoints, k)
	}

	firstLabel := make(map[string]key)
	for _, l := range s.Labels {
		k := round(l.Position)
		uf.add(k)
		endpoints = append(endpoints, k)
		if first, ok := firstLabel[l.Text]; ok {
			uf.union(first, k)
		} else {
			firstLabel[l.Text] = k
		}
	}

	// T-connections: a point landing in the middle of a straight segment
	// joins it.
	for _, p := range endpoints {
		for _, sg := range segs {
			if onSegmentInterior(p, sg) {
				uf.union(p, sg.a)
			}
		}
	}

	labelOf := make(map[key]string)
	used := make(map[string]bool)
	for _, l := range s.Labels {
		root := uf.find(round(l.Position))
		if _, ok := labelOf[root]; !ok {
			labelOf[root] = l.Text
		}
		used[l.Text] = true
	}

	index := make(map[key]int)
	seenPin := make(map[PinRef]bool)
	for _, p := range pins {
		if seenPin[p.ref] {
			continue
		}
		seenPin[p.ref] = true
		root := uf.find(p.at)
		i, ok := index[root]
		if !ok {
			i = len(res.Nets)
			index[root] = i
			res.Nets = append(res.Nets, Net{Name: labelOf[root]})
		}
		res.Nets[i].Pins = append(res.Nets[i].Pins, p.ref)
	}

	next := 1
	for i := range res.Nets {
		if res.Nets[i].Name != "" {
			continue
		}
		name := "Net_" + strconv.Itoa(next)
		for used[name] {
			next++
			name = "Net_" + strconv.Itoa(next)
		}
		used[name] = true
		next++
		res.Nets[i].Name = name
	}

	opts.Logger.Debug("resolved netlist", "nets", len(res.Nets), "pins", res.Nets.PinCount(), "warnings", len(res.Warnings))
	return res
}

// PinPosition returns the absolute schematic position of a pin offset on a
// part: mirrored about the vertical axis first, then rotated, then translated.
// Rotation follows the screen convention (Y down, positive angles clockwise).
func PinPosition(part Part, off Point) Point {
	if part.Mirror {
		off.X = -off.X
	}
	deg := part.Rotation % 360
	if deg < 0 {
		deg += 360
	}
	var r Point
	switch deg {
	case 0:
		r = off
	case 90:
		r = Point{-off.Y, off.X}
	case 180:
		r = Point{-off.X, -off.Y}
	case 270:
		r = Point{off.Y, -off.X}
	default:
		sin, cos := math.Sincos(float64(deg) * math.Pi / 180)
		r = Point{off.X*cos - off.Y*sin, off.X*sin + off.Y*cos}
	}
	return Point{part.Position.X + r.X, part.Position.Y + r.Y}
}

func onSegmentInterior(p key, s segment) bool {
	switch {
	case s.a.x == s.b.x && p.x == s.a.x:
		lo, hi := min(s.a.y, s.b.y), max(s.a.y, s.b.y)
		return p.y > lo && p.y < hi
	case s.a.y == s.b.y && p.y == s.a.y:
		lo, hi := min(s.a.x, s.b.x), max(s.a.x, s.b.x)
		return p.x > lo && p.x < hi
	default:
		return false
	}
}
