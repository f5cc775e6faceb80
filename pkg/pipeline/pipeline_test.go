package pipeline

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/cache"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/observability"
	"github.com/matzehuels/perfroute/pkg/project"
)

const dividerTOML = `
name = "divider"

[board]
width = 10
height = 6

[[footprints]]
name = "AXIAL"
pads = [{ name = "1", offset = { col = 0, row = 0 } }, { name = "2", offset = { col = 3, row = 0 } }]

[[components]]
ref = "R1"
footprint = "AXIAL"
anchor = { col = 1, row = 1 }

[[components]]
ref = "R2"
footprint = "AXIAL"
anchor = { col = 1, row = 4 }

[[nets]]
name = "MID"
pins = ["R1.2", "R2.2"]

[[nets]]
name = "GND"
pins = ["R1.1", "R2.1"]
`

func loadDivider(t *testing.T, extra string) *project.Project {
	t.Helper()
	p, err := project.Decode(strings.NewReader(dividerTOML+extra), project.FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return p
}

func quietRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, c)
	defer r.Close()
	p := loadDivider(t, "")

	first, err := r.Execute(ctx, p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res := first.Layout.Result
	if !res.Complete() || res.RoutedNets != 2 || len(res.Connections) != 2 {
		t.Fatalf("result = %+v, want both nets routed", res)
	}
	if first.CacheInfo.NetsHit || first.CacheInfo.RouteHit {
		t.Errorf("first run should miss the cache: %+v", first.CacheInfo)
	}
	if first.Stats.NetCount != 2 || first.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if first.Layout.Name != "divider" || len(first.Layout.Footprints) != 1 {
		t.Errorf("layout = %+v", first.Layout)
	}

	second, err := r.Execute(ctx, p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.NetsHit || !second.CacheInfo.RouteHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if second.InputHash != first.InputHash {
		t.Errorf("input hash changed between runs")
	}
	for i, c := range second.Layout.Result.Connections {
		if c.ID != res.Connections[i].ID {
			t.Errorf("cached connection %d = %v, want %v", i, c, res.Connections[i])
		}
	}

	refreshed, err := r.Execute(ctx, p, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.NetsHit || refreshed.CacheInfo.RouteHit {
		t.Errorf("refresh should skip cache reads: %+v", refreshed.CacheInfo)
	}
}

func TestExecuteRoutingOverride(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, c)
	p := loadDivider(t, "\n[routing]\nmax_passes = 2\n")

	if _, err := r.Execute(ctx, p, Options{}); err != nil {
		t.Fatal(err)
	}
	over, err := r.Execute(ctx, p, Options{Override: true, Routing: autoroute.Options{MaxPasses: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if over.CacheInfo.RouteHit {
		t.Error("different routing options must not share a cached result")
	}
	if !over.CacheInfo.NetsHit {
		t.Error("routing options do not affect the netlist cache")
	}
}

func TestExecuteWarnings(t *testing.T) {
	p := loadDivider(t, `
[[components]]
ref = "U9"
footprint = "MISSING"
anchor = { col = 8, row = 0 }
`)
	res, err := quietRunner(t, nil).Execute(context.Background(), p, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "MISSING") {
		t.Errorf("warnings = %v, want the unknown footprint", res.Warnings)
	}
	if !res.Layout.Result.Complete() {
		t.Errorf("a component without footprint should not block routing")
	}
}

func TestInputHash(t *testing.T) {
	p := loadDivider(t, "")
	b, _, err := p.Board()
	if err != nil {
		t.Fatal(err)
	}
	nets, _, err := p.Netlist(netlist.Options{})
	if err != nil {
		t.Fatal(err)
	}

	h1, err := InputHash(autoroute.Input{Board: b, Nets: nets})
	if err != nil {
		t.Fatal(err)
	}

	// Same placement, different footprint geometry.
	b.Components[0].Footprint.Pads[1].Offset.Col = 2
	h2, _ := InputHash(autoroute.Input{Board: b, Nets: nets})
	if h1 == h2 {
		t.Error("input hash must cover footprint geometry")
	}

	h3, _ := InputHash(autoroute.Input{Board: b, Nets: nets[:1]})
	if h2 == h3 {
		t.Error("input hash must cover the nets")
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	mu       sync.Mutex
	resolves int
	routes   int
	routed   int
}

func (h *countingHooks) OnResolveComplete(_ context.Context, _ string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolves++
}

func (h *countingHooks) OnRouteComplete(_ context.Context, routed, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes++
	h.routed += routed
}

func TestExecuteHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	if _, err := quietRunner(t, nil).Execute(context.Background(), loadDivider(t, ""), Options{}); err != nil {
		t.Fatal(err)
	}
	if hooks.resolves != 1 || hooks.routes != 1 || hooks.routed != 2 {
		t.Errorf("hooks = %d resolves, %d routes, %d routed nets", hooks.resolves, hooks.routes, hooks.routed)
	}
}

func TestRouteKeyOptsCoversOptions(t *testing.T) {
	base := autoroute.Options{}
	base.SetDefaults()
	k := cache.NewDefaultKeyer()

	changed := base
	changed.CongestionWeight = 3
	if k.RouteKey("x", routeKeyOpts(base)) == k.RouteKey("x", routeKeyOpts(changed)) {
		t.Error("congestion weight must be part of the route key")
	}
	changed = base
	changed.Weights.PowerPenalty = 1
	if k.RouteKey("x", routeKeyOpts(base)) == k.RouteKey("x", routeKeyOpts(changed)) {
		t.Error("priority weights must be part of the route key")
	}
}

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Precision != netlist.DefaultPrecision {
		t.Errorf("Precision = %v, want %v", o.Precision, netlist.DefaultPrecision)
	}
}

func TestResolveNetsWithoutSource(t *testing.T) {
	p, err := project.Decode(strings.NewReader("[board]\nwidth = 4\nheight = 4\n"), project.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	nets, _, hit, err := quietRunner(t, nil).ResolveNetsWithCacheInfo(context.Background(), p, Options{})
	if err != nil || hit || len(nets) != 0 {
		t.Errorf("got %v, %v, %v; want an empty netlist", nets, hit, err)
	}
}
