package boardtext

import (
	"strings"
	"testing"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/grid"
)

var pad = &grid.Footprint{Name: "PAD", Pads: []grid.Pad{{Name: "1"}}}

func at(ref string, col, row int) grid.PlacedComponent {
	return grid.PlacedComponent{Ref: ref, FootprintName: "PAD", Footprint: pad, Anchor: grid.Pos(col, row)}
}

func fixture() (*grid.Board, *autoroute.Result) {
	b := &grid.Board{
		Width:  5,
		Height: 3,
		Components: []grid.PlacedComponent{
			at("J1", 0, 0), at("J2", 4, 0),
			at("J3", 0, 2), at("J4", 1, 2),
			at("J5", 2, 2), at("J6", 4, 2),
		},
	}
	res := &autoroute.Result{Connections: []autoroute.Connection{
		{Type: autoroute.Trace, Surface: autoroute.Bottom, From: grid.Pos(0, 0), To: grid.Pos(4, 0), Net: "A"},
		{Type: autoroute.Bridge, Surface: autoroute.Bottom, From: grid.Pos(0, 2), To: grid.Pos(1, 2), Net: "B"},
		{Type: autoroute.Jumper, Surface: autoroute.Top, From: grid.Pos(2, 2), To: grid.Pos(4, 2), Net: "C"},
	}}
	return b, res
}

func lines(s ...string) string { return strings.Join(s, "\n") + "\n" }

func TestRender(t *testing.T) {
	b, res := fixture()
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "all layers",
			want: lines(
				"o-+-+-+-o",
				"",
				". . . . .",
				"",
				"o=o o~~~o",
			),
		},
		{
			name: "parts only",
			opts: Options{Layers: LayerParts},
			want: lines(
				"o . . . o",
				"",
				". . . . .",
				"",
				"o o o . o",
			),
		},
		{
			name: "top layer without parts",
			opts: Options{Layers: LayerTop},
			want: lines(
				". . . . .",
				"",
				". . . . .",
				"",
				". . .~~~.",
			),
		},
		{
			name: "holes only",
			opts: Options{Layers: LayerHoles},
			want: lines(
				". . . . .",
				"",
				". . . . .",
				"",
				". . . . .",
			),
		},
		{
			name: "single net",
			opts: Options{Net: "B"},
			want: lines(
				"o . . . o",
				"",
				". . . . .",
				"",
				"o=o o . o",
			),
		},
		{
			name: "rulers",
			opts: Options{Rulers: true},
			want: lines(
				"   0 1 2 3 4",
				" 0 o-+-+-+-o",
				"",
				" 1 . . . . .",
				"",
				" 2 o=o o~~~o",
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(b, res, tt.opts); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderBentTraceAndBody(t *testing.T) {
	block := &grid.Footprint{
		Name: "BLK",
		Pads: []grid.Pad{{Name: "1"}},
		Body: grid.Rect{Min: grid.Pos(0, 0), Max: grid.Pos(1, 1)},
	}
	b := &grid.Board{
		Width:  4,
		Height: 3,
		Components: []grid.PlacedComponent{
			at("J1", 0, 0), at("J2", 3, 2),
			{Ref: "U1", FootprintName: "BLK", Footprint: block, Anchor: grid.Pos(2, 0)},
		},
	}
	res := &autoroute.Result{Connections: []autoroute.Connection{{
		Type: autoroute.Trace, Surface: autoroute.Bottom, Net: "X",
		From: grid.Pos(0, 0), Waypoints: []grid.Position{grid.Pos(0, 2)}, To: grid.Pos(3, 2),
	}}}

	want := lines(
		"o . o #",
		"|",
		"+ . # #",
		"|",
		"+-+-+-o",
	)
	if got := Render(b, res, Options{}); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(&grid.Board{}, nil, Options{}); got != "" {
		t.Errorf("zero board rendered %q", got)
	}
	if got := Render(&grid.Board{Width: 2, Height: 1}, nil, Options{}); got != ". .\n" {
		t.Errorf("bare board = %q", got)
	}
}

func TestRenderColorKeepsGlyphs(t *testing.T) {
	b, res := fixture()
	got := Render(b, res, Options{Color: true})
	for _, g := range []string{"o", "+", "=", "~"} {
		if !strings.Contains(got, g) {
			t.Errorf("colored output lost %q", g)
		}
	}
}
