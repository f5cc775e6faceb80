// Package render draws netlists and routed boards.
//
// # Board Text
//
// The [boardtext] subpackage draws a routed layout as a character grid, one
// cell per hole. The CLI prints it with --show and the interactive viewer
// redraws it as layers are toggled.
//
//	out := boardtext.Render(&layout.Board, layout.Result, boardtext.Options{Layers: boardtext.AllLayers})
//
// # Net Graphs
//
// The [netgraph] subpackage renders the connectivity of a netlist with
// Graphviz: components and nets as nodes, pins as edges.
//
//	dot := netgraph.ToDOT(nets, netgraph.Options{})
//	svg, err := netgraph.RenderSVG(dot)
//
// [boardtext]: github.com/matzehuels/perfroute/pkg/render/boardtext
// [netgraph]: github.com/matzehuels/perfroute/pkg/render/netgraph
package render
