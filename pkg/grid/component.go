package grid

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownFootprint is reported by [Board.Bind] when a component names a
	// footprint the library does not contain.
	ErrUnknownFootprint = errors.New("unknown footprint")

	// ErrInvalidRotation is returned by [ParseRotation] for angles that are not
	// a multiple of 90 degrees.
	ErrInvalidRotation = errors.New("rotation must be a multiple of 90 degrees")
)

// Rotation is a component rotation in degrees: 0, 90, 180 or 270.
type Rotation int

const (
	Rot0   Rotation = 0
	Rot90  Rotation = 90
	Rot180 Rotation = 180
	Rot270 Rotation = 270
)

// ParseRotation normalizes any multiple of 90 (negative values included)
// into the range [0, 360).
func ParseRotation(deg int) (Rotation, error) {
	if deg%90 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRotation, deg)
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return Rotation(deg), nil
}

// Apply rotates an offset about the component anchor.
func (r Rotation) Apply(off Position) Position {
	switch r {
	case Rot90:
		return Position{-off.Row, off.Col}
	case Rot180:
		return Position{-off.Col, -off.Row}
	case Rot270:
		return Position{off.Row, -off.Col}
	default:
		return off
	}
}

// Pad is a named pin hole relative to the component anchor.
type Pad struct {
	Name   string   `json:"name" toml:"name"`
	Offset Position `json:"offset" toml:"offset"`
}

// Footprint describes the physical hole pattern of a component. Body is the
// rectangle (in anchor-relative offsets) the component covers even where no pad
// exists; a zero Body means the bounding box of the pads.
type Footprint struct {
	Name string `json:"name" toml:"name"`
	Pads []Pad  `json:"pads" toml:"pads"`
	Body Rect   `json:"body,omitzero" toml:"body,omitempty"`
}

// Pad returns the pad with the given name.
func (f *Footprint) Pad(name string) (Pad, bool) {
	for _, p := range f.Pads {
		if p.Name == name {
			return p, true
		}
	}
	return Pad{}, false
}

// Library maps footprint names to footprints.
type Library map[string]*Footprint

// NewLibrary indexes the given footprints by name. Later duplicates win.
func NewLibrary(fps ...*Footprint) Library {
	lib := make(Library, len(fps))
	for _, f := range fps {
		lib[f.Name] = f
	}
	return lib
}

// Lookup returns the named footprint.
func (l Library) Lookup(name string) (*Footprint, bool) {
	f, ok := l[name]
	return f, ok && f != nil
}

// PlacedComponent is a footprint instance on the board.
//
// HoleSpan, when positive on a two-pad footprint, overrides the distance
// between the pads (a stretchable part such as an axial resistor or a wire
// link): the second pad is moved along the first→second axis so that it sits
// HoleSpan holes from the first.
type PlacedComponent struct {
	Ref           string     `json:"ref" toml:"ref"`
	FootprintName string     `json:"footprint" toml:"footprint"`
	Anchor        Position   `json:"anchor" toml:"anchor"`
	Rotation      Rotation   `json:"rotation,omitempty" toml:"rotation,omitempty"`
	HoleSpan      int        `json:"hole_span,omitempty" toml:"hole_span,omitempty"`
	Footprint     *Footprint `json:"-" toml:"-"`
}

// offsets returns the effective (unrotated) pad offsets and body rectangle.
func (c *PlacedComponent) offsets() ([]Pad, Rect) {
	if c.Footprint == nil {
		return nil, Rect{}
	}
	pads := slices.Clone(c.Footprint.Pads)
	body := c.Footprint.Body

	if c.HoleSpan > 0 && len(pads) == 2 {
		d := pads[1].Offset.Sub(pads[0].Offset)
		step := Position{sign(d.Col), sign(d.Row)}
		if step == (Position{}) {
			step = Position{Col: 1}
		}
		if step.Col != 0 && step.Row != 0 {
			// Diagonal pad pairs stretch along their dominant axis.
			if abs(d.Col) >= abs(d.Row) {
				step.Row = 0
			} else {
				step.Col = 0
			}
		}
		pads[1].Offset = pads[0].Offset.Add(Position{step.Col * c.HoleSpan, step.Row * c.HoleSpan})
		body = Rect{}
	}

	if body.IsZero() {
		pts := make([]Position, len(pads))
		for i, p := range pads {
			pts[i] = p.Offset
		}
		body = Bounds(pts...)
	}
	return pads, body
}

// PadHole returns the absolute hole of the named pad.
func (c *PlacedComponent) PadHole(name string) (Position, bool) {
	pads, _ := c.offsets()
	for _, p := range pads {
		if p.Name == name {
			return c.Anchor.Add(c.Rotation.Apply(p.Offset)), true
		}
	}
	return Position{}, false
}

// PadHoles returns the absolute pad holes in footprint order.
func (c *PlacedComponent) PadHoles() []Position {
	pads, _ := c.offsets()
	out := make([]Position, len(pads))
	for i, p := range pads {
		out[i] = c.Anchor.Add(c.Rotation.Apply(p.Offset))
	}
	return out
}

// Holes returns every hole the component occupies: its pads plus the rotated
// body rectangle, deduplicated and row-major.
func (c *PlacedComponent) Holes() []Position {
	pads, body := c.offsets()
	set := NewHoleSet()
	for _, p := range pads {
		set.Add(c.Anchor.Add(c.Rotation.Apply(p.Offset)))
	}
	if !body.IsZero() || len(pads) > 0 {
		corners := []Position{
			c.Anchor.Add(c.Rotation.Apply(body.Min)),
			c.Anchor.Add(c.Rotation.Apply(body.Max)),
		}
		for _, h := range Bounds(corners...).Holes() {
			set.Add(h)
		}
	}
	return set.Sorted()
}

// Board is the routing area with its placed components.
type Board struct {
	Width      int               `json:"width" toml:"width"`
	Height     int               `json:"height" toml:"height"`
	Components []PlacedComponent `json:"components" toml:"components"`
}

// InBounds reports whether p is a hole on the board.
func (b *Board) InBounds(p Position) bool {
	return p.Col >= 0 && p.Row >= 0 && p.Col < b.Width && p.Row < b.Height
}

// Component returns the placed component with the given reference.
func (b *Board) Component(ref string) (*PlacedComponent, bool) {
	for i := range b.Components {
		if b.Components[i].Ref == ref {
			return &b.Components[i], true
		}
	}
	return nil, false
}

// Bind resolves every component's FootprintName against lib. Components whose
// footprint is missing keep a nil Footprint (they occupy no holes and expose no
// pads) and are reported as wrapped ErrUnknownFootprint errors; binding never
// fails as a whole.
func (b *Board) Bind(lib Library) []error {
	var warnings []error
	for i := range b.Components {
		c := &b.Components[i]
		if c.Footprint != nil {
			continue
		}
		f, ok := lib.Lookup(c.FootprintName)
		if !ok {
			warnings = append(warnings, fmt.Errorf("%s: %w %q", c.Ref, ErrUnknownFootprint, c.FootprintName))
			continue
		}
		c.Footprint = f
	}
	return warnings
}

// StaticHoles returns the union of every component's holes, clipped to the
// board. The result is the fixed blockage the router works around.
func (b *Board) StaticHoles() HoleSet {
	set := NewHoleSet()
	for i := range b.Components {
		for _, h := range b.Components[i].Holes() {
			if b.InBounds(h) {
				set.Add(h)
			}
		}
	}
	return set
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
