package autoroute_test

import (
	"fmt"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netlist"
)

func ExampleRoute() {
	pad := &grid.Footprint{Name: "PAD", Pads: []grid.Pad{{Name: "1"}}}
	at := func(ref string, col, row int) grid.PlacedComponent {
		return grid.PlacedComponent{Ref: ref, FootprintName: "PAD", Footprint: pad, Anchor: grid.Pos(col, row)}
	}

	in := autoroute.Input{
		Board: &grid.Board{
			Width:      8,
			Height:     4,
			Components: []grid.PlacedComponent{at("D1", 1, 1), at("D2", 1, 2), at("R1", 3, 1), at("R2", 7, 1)},
		},
		Nets: netlist.Netlist{
			{Name: "A", Pins: []netlist.PinRef{{Ref: "D1", Pin: "1"}, {Ref: "D2", Pin: "1"}}},
			{Name: "B", Pins: []netlist.PinRef{{Ref: "R1", Pin: "1"}, {Ref: "R2", Pin: "1"}}},
		},
	}

	res, err := autoroute.Route(in, autoroute.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, c := range res.Connections {
		fmt.Println(c)
	}
	fmt.Println("routed", res.RoutedNets, "failed", res.FailedNets)
	// Output:
	// A solder_bridge/bottom (1,1)-(1,2)
	// B trace/bottom (3,1)-(7,1)
	// routed 2 failed 0
}
