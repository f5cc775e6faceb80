package netgraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/perfroute/pkg/netlist"
)

var divider = netlist.Netlist{
	{Name: "VIN", Pins: []netlist.PinRef{{Ref: "R1", Pin: "1"}}},
	{Name: "MID", Pins: []netlist.PinRef{{Ref: "R1", Pin: "2"}, {Ref: "R2", Pin: "1"}}},
	{Name: "GND", Pins: []netlist.PinRef{{Ref: "R2", Pin: "2"}}},
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "plain",
			want: []string{
				`"c:R1" [shape=box`,
				`"n:MID" [label="MID"`,
				`"c:R1" -- "n:MID";`,
				`"c:R2" -- "n:GND";`,
			},
			notWant: []string{"[label=\"2\"]", "#f4a6a6"},
		},
		{
			name: "pin labels",
			opts: Options{PinLabels: true},
			want: []string{`"c:R1" -- "n:MID" [label="2"];`},
		},
		{
			name: "failed nets",
			opts: Options{Failed: []string{"MID"}},
			want: []string{`label="MID", shape=ellipse, style=filled, fillcolor="#f4a6a6"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(divider, tt.opts)
			if !strings.HasPrefix(dot, "graph G {") {
				t.Fatalf("not an undirected graph:\n%s", dot)
			}
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("missing %q in\n%s", w, dot)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dot, w) {
					t.Errorf("unexpected %q in\n%s", w, dot)
				}
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(divider, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("svg header not normalized: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte("MID")) {
		t.Error("svg lacks net label")
	}
}

func TestRenderSVGBadDOT(t *testing.T) {
	if _, err := RenderSVG("graph {"); err == nil {
		t.Error("expected a parse error")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}
