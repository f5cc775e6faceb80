// Package pkg provides the libraries behind perfroute, an autorouter for
// perfboard (stripless protoboard) layouts.
//
// # Overview
//
// perfroute takes a board with placed components and a list of nets, and
// finds a way to wire every net with the three things a perfboard offers:
// solder bridges between adjacent holes, bare-wire traces on the solder
// side, and straight jumpers on the component side.
//
// # Architecture
//
// The typical data flow:
//
//	Project file (TOML/JSON) + netlist or schematic
//	         ↓
//	    [project] package (load, validate, bind footprints)
//	         ↓
//	    [netlist] / [netfile] packages (resolve nets)
//	         ↓
//	    [decompose] package (nets → prioritized two-pin edges)
//	         ↓
//	    [autoroute] package (bridge → L → Z → A*, rip-up passes)
//	         ↓
//	    Layout JSON, text board, net graph
//
// # Quick Start
//
// Route a project with caching:
//
//	p, _ := project.Load("astable.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(ctx, p, pipeline.Options{})
//	fmt.Print(boardtext.Render(&result.Layout.Board, result.Layout.Result, boardtext.Options{}))
//
// # Main Packages
//
// ## Geometry and Routing
//
// [grid] - Hole positions, footprints, rotations, and placed components.
//
// [router] - Single-connection path search: straight, L and Z shortcuts, then
// A* with a turn penalty and a pluggable congestion cost.
//
// [decompose] - Minimum spanning trees per net and the edge priority order.
//
// [autoroute] - The multi-net router: surface occupancy, rip-up and retry,
// statistics, and layout verification.
//
// ## Nets
//
// [netlist] - Nets, pin references, and schematic wire resolution.
//
// [netfile] - The text netlist format.
//
// ## Orchestration and Infrastructure
//
// [project] - Project and footprint library files, routed layouts.
//
// [pipeline] - Resolve → plan → route with result caching, shared by the CLI
// and the HTTP API.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [store] - Persistent layout storage: memory, files, MongoDB.
//
// [render/boardtext] - Text drawings of a routed board.
//
// [render/netgraph] - Graphviz drawings of a netlist.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/autoroute/...   # Specific package
//	go test -run Example ./...    # Examples only
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/grid
// [router]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/router
// [decompose]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/decompose
// [autoroute]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/autoroute
// [netlist]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/netlist
// [netfile]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/netfile
// [project]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/project
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/store
// [render/boardtext]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/render/boardtext
// [render/netgraph]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/render/netgraph
// [observability]: https://pkg.go.dev/github.com/matzehuels/perfroute/pkg/observability
package pkg
