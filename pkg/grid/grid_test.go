package grid

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestPositionGeometry(t *testing.T) {
	a, b := Pos(1, 2), Pos(4, 0)

	if got := a.Manhattan(b); got != 5 {
		t.Errorf("Manhattan = %d, want 5", got)
	}
	if got := b.Sub(a); got != Pos(3, -2) {
		t.Errorf("Sub = %v, want (3,-2)", got)
	}
	if !Pos(2, 2).Adjacent(Pos(2, 3)) {
		t.Error("(2,2) and (2,3) should be adjacent")
	}
	if Pos(2, 2).Adjacent(Pos(3, 3)) {
		t.Error("diagonal holes are not adjacent")
	}
	if !Pos(0, 5).Collinear(Pos(0, 9)) || Pos(0, 5).Collinear(Pos(1, 9)) {
		t.Error("Collinear mismatch")
	}

	want := [4]Position{{5, 4}, {6, 5}, {5, 6}, {4, 5}}
	if got := Pos(5, 5).Neighbors(); got != want {
		t.Errorf("Neighbors = %v, want %v", got, want)
	}
	if s := Pos(3, 7).String(); s != "(3,7)" {
		t.Errorf("String = %q", s)
	}
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		in      int
		want    Rotation
		wantErr bool
	}{
		{0, Rot0, false},
		{90, Rot90, false},
		{-90, Rot270, false},
		{450, Rot90, false},
		{-360, Rot0, false},
		{45, 0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, err := ParseRotation(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRotation) {
					t.Fatalf("err = %v, want ErrInvalidRotation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRotation(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRotationApply(t *testing.T) {
	off := Pos(1, 2)
	tests := []struct {
		rot  Rotation
		want Position
	}{
		{Rot0, Pos(1, 2)},
		{Rot90, Pos(-2, 1)},
		{Rot180, Pos(-1, -2)},
		{Rot270, Pos(2, -1)},
	}
	for _, tt := range tests {
		if got := tt.rot.Apply(off); got != tt.want {
			t.Errorf("Rot%d.Apply(%v) = %v, want %v", tt.rot, off, got, tt.want)
		}
	}

	// Four quarter turns are the identity.
	p := off
	for range 4 {
		p = Rot90.Apply(p)
	}
	if p != off {
		t.Errorf("four quarter turns = %v, want %v", p, off)
	}
}

func TestPlacedComponentBodyAndRotation(t *testing.T) {
	fp := &Footprint{
		Name: "CAP",
		Pads: []Pad{{"1", Pos(0, 0)}, {"2", Pos(2, 0)}},
		Body: Rect{Min: Pos(0, -1), Max: Pos(2, 1)},
	}
	c := PlacedComponent{Ref: "C1", Anchor: Pos(5, 5), Rotation: Rot90, Footprint: fp}

	if h, _ := c.PadHole("2"); h != Pos(5, 7) {
		t.Errorf("pad 2 = %v, want (5,7)", h)
	}
	if _, ok := c.PadHole("3"); ok {
		t.Error("pad 3 should not exist")
	}

	holes := c.Holes()
	if len(holes) != 9 {
		t.Fatalf("Holes() = %d holes, want 9: %v", len(holes), holes)
	}
	if holes[0] != Pos(4, 5) || holes[8] != Pos(6, 7) {
		t.Errorf("body corners = %v..%v, want (4,5)..(6,7)", holes[0], holes[8])
	}
}

func TestPlacedComponentHoleSpan(t *testing.T) {
	fp := &Footprint{Name: "R", Pads: []Pad{{"1", Pos(0, 0)}, {"2", Pos(0, 2)}}}

	c := PlacedComponent{Ref: "R1", Anchor: Pos(3, 3), Footprint: fp, HoleSpan: 4}
	got := c.PadHoles()
	want := []Position{Pos(3, 3), Pos(3, 7)}
	if !slices.Equal(got, want) {
		t.Errorf("PadHoles = %v, want %v", got, want)
	}
	if n := len(c.Holes()); n != 5 {
		t.Errorf("stretched body = %d holes, want 5", n)
	}

	// The footprint itself must not change.
	if fp.Pads[1].Offset != Pos(0, 2) {
		t.Errorf("footprint mutated: %v", fp.Pads[1].Offset)
	}
}

func TestBoardStaticHoles(t *testing.T) {
	lib := NewLibrary(
		&Footprint{Name: "EDGE", Pads: []Pad{{"1", Pos(-1, 0)}, {"2", Pos(0, 0)}}},
		&Footprint{Name: "PAIR", Pads: []Pad{{"1", Pos(0, 0)}, {"2", Pos(0, 2)}}},
	)
	b := &Board{
		Width:  10,
		Height: 10,
		Components: []PlacedComponent{
			{Ref: "J1", FootprintName: "EDGE", Anchor: Pos(0, 0)},
			{Ref: "U1", FootprintName: "PAIR", Anchor: Pos(5, 5)},
			{Ref: "X1", FootprintName: "MISSING", Anchor: Pos(8, 8)},
		},
	}

	warnings := b.Bind(lib)
	if len(warnings) != 1 || !errors.Is(warnings[0], ErrUnknownFootprint) {
		t.Fatalf("warnings = %v, want one ErrUnknownFootprint", warnings)
	}

	static := b.StaticHoles()
	want := []Position{Pos(0, 0), Pos(5, 5), Pos(5, 6), Pos(5, 7)}
	if got := static.Sorted(); !slices.Equal(got, want) {
		t.Errorf("StaticHoles = %v, want %v", got, want)
	}

	if c, ok := b.Component("U1"); !ok || c.Footprint == nil {
		t.Error("U1 should be bound")
	}
	if c, _ := b.Component("X1"); c.Footprint != nil || len(c.Holes()) != 0 {
		t.Error("unbound component should occupy nothing")
	}
}

func TestHoleSet(t *testing.T) {
	a := NewHoleSet(Pos(1, 1), Pos(0, 2))
	b := NewHoleSet(Pos(3, 0))

	u := a.Union(b)
	if u.Len() != 3 || a.Len() != 2 {
		t.Fatalf("Union len = %d (a=%d)", u.Len(), a.Len())
	}
	want := []Position{Pos(3, 0), Pos(1, 1), Pos(0, 2)}
	if got := u.Sorted(); !slices.Equal(got, want) {
		t.Errorf("Sorted = %v, want %v", got, want)
	}

	c := u.Clone()
	c.Remove(Pos(3, 0))
	if !u.Has(Pos(3, 0)) || c.Has(Pos(3, 0)) {
		t.Error("Clone should be independent")
	}

	var nilSet HoleSet
	if nilSet.Has(Pos(0, 0)) {
		t.Error("nil set should be empty")
	}
}

func TestRect(t *testing.T) {
	r := Bounds(Pos(2, 3), Pos(0, 5), Pos(1, 4))
	if r.Min != Pos(0, 3) || r.Max != Pos(2, 5) {
		t.Fatalf("Bounds = %+v", r)
	}
	if !r.Contains(Pos(1, 4)) || r.Contains(Pos(3, 4)) {
		t.Error("Contains mismatch")
	}
	g := r.Grow(1)
	if len(g.Holes()) != 25 {
		t.Errorf("Grow(1) holes = %d, want 25", len(g.Holes()))
	}
	if !Bounds().IsZero() {
		t.Error("Bounds() of nothing should be zero")
	}
}

func ExamplePlacedComponent_PadHoles() {
	dip := &Footprint{
		Name: "DIP4",
		Pads: []Pad{{"1", Pos(0, 0)}, {"2", Pos(0, 1)}, {"3", Pos(3, 1)}, {"4", Pos(3, 0)}},
	}
	u1 := PlacedComponent{Ref: "U1", Anchor: Pos(4, 4), Rotation: Rot180, Footprint: dip}
	fmt.Println(u1.PadHoles())
	// Output: [(4,4) (4,3) (1,3) (1,4)]
}
