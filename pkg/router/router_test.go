package router

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"testing"

	"github.com/matzehuels/perfroute/pkg/grid"
)

func blocked(holes ...grid.Position) func(grid.Position) bool {
	set := grid.NewHoleSet(holes...)
	return set.Has
}

func TestRouteShortcuts(t *testing.T) {
	tests := []struct {
		name    string
		start   grid.Position
		end     grid.Position
		blocked []grid.Position
		want    []grid.Position
	}{
		{
			name:  "direct",
			start: grid.Pos(1, 1), end: grid.Pos(6, 1),
			want: []grid.Position{grid.Pos(1, 1), grid.Pos(6, 1)},
		},
		{
			name:  "horizontal first",
			start: grid.Pos(0, 2), end: grid.Pos(5, 5),
			want: []grid.Position{grid.Pos(0, 2), grid.Pos(5, 2), grid.Pos(5, 5)},
		},
		{
			name:  "vertical first",
			start: grid.Pos(0, 2), end: grid.Pos(5, 5),
			blocked: []grid.Position{grid.Pos(3, 2)},
			want:    []grid.Position{grid.Pos(0, 2), grid.Pos(0, 5), grid.Pos(5, 5)},
		},
		{
			name:  "z through middle column",
			start: grid.Pos(0, 0), end: grid.Pos(6, 4),
			blocked: []grid.Position{grid.Pos(5, 0), grid.Pos(0, 3)},
			want:    []grid.Position{grid.Pos(0, 0), grid.Pos(3, 0), grid.Pos(3, 4), grid.Pos(6, 4)},
		},
		{
			name:  "endpoints exempt",
			start: grid.Pos(2, 2), end: grid.Pos(2, 7),
			blocked: []grid.Position{grid.Pos(2, 2), grid.Pos(2, 7)},
			want:    []grid.Position{grid.Pos(2, 2), grid.Pos(2, 7)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Route(Request{
				Start: tt.start, End: tt.end,
				Width: 10, Height: 10,
				Blocked: blocked(tt.blocked...),
			})
			if err != nil {
				t.Fatalf("Route: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Route = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRouteMinimalCorners(t *testing.T) {
	// A wall across the straight run. Detours hugging the wall and detours
	// swinging wide are equally long; the turn penalty picks the wide one.
	var wall []grid.Position
	for row := 3; row <= 7; row++ {
		wall = append(wall, grid.Pos(5, row))
	}
	path, err := Route(Request{
		Start: grid.Pos(0, 5), End: grid.Pos(9, 5),
		Width: 10, Height: 10,
		Blocked: blocked(wall...),
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if Length(path) != 15 || Turns(path) != 2 {
		t.Errorf("path %v: length %d turns %d, want 15 and 2", path, Length(path), Turns(path))
	}
	for _, p := range Interior(path) {
		if slices.Contains(wall, p) {
			t.Errorf("path crosses wall at %v", p)
		}
	}
}

func TestRouteCongestion(t *testing.T) {
	cost := func(p grid.Position) float64 {
		if p.Row == 0 {
			return 10
		}
		return 0
	}
	path, err := Route(Request{
		Start: grid.Pos(0, 0), End: grid.Pos(5, 0),
		Width: 10, Height: 10,
		Cost: cost,
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	want := []grid.Position{grid.Pos(0, 0), grid.Pos(0, 1), grid.Pos(5, 1), grid.Pos(5, 0)}
	if !slices.Equal(path, want) {
		t.Errorf("Route = %v, want detour %v", path, want)
	}
	if c := PathCost(path, DefaultTurnPenalty, cost); c != 17 {
		t.Errorf("PathCost = %v, want 17", c)
	}
}

func TestSearchMemoryFollowsExploredArea(t *testing.T) {
	req := Request{
		Start: grid.Pos(500, 500), End: grid.Pos(510, 503),
		Width: 1000, Height: 1000,
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	path, err := Search(req)
	runtime.ReadMemStats(&after)

	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if path[0] != req.Start || path[len(path)-1] != req.End {
		t.Errorf("Search = %v", path)
	}
	// A dense state table for this board would be tens of megabytes.
	if n := after.TotalAlloc - before.TotalAlloc; n > 4<<20 {
		t.Errorf("short search on a 1000x1000 board allocated %d bytes", n)
	}
}

func TestRouteFailures(t *testing.T) {
	boxed := blocked(grid.Pos(4, 3), grid.Pos(5, 4), grid.Pos(4, 5), grid.Pos(3, 4))

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "enclosed start",
			req:     Request{Start: grid.Pos(4, 4), End: grid.Pos(0, 0), Width: 10, Height: 10, Blocked: boxed},
			wantErr: ErrNoPath,
		},
		{
			name:    "outside board",
			req:     Request{Start: grid.Pos(-1, 0), End: grid.Pos(3, 3), Width: 10, Height: 10},
			wantErr: ErrNoPath,
		},
		{
			name: "search limit",
			req: Request{
				Start: grid.Pos(0, 0), End: grid.Pos(9, 9), Width: 10, Height: 10,
				Cost: func(grid.Position) float64 { return 1 }, MaxIterations: 3,
			},
			wantErr: ErrSearchLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Route(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrNoPath) {
				t.Errorf("every routing failure must match ErrNoPath, got %v", err)
			}
		})
	}
}

func TestStraight(t *testing.T) {
	req := Request{Start: grid.Pos(1, 3), End: grid.Pos(1, 8), Width: 10, Height: 10}
	path, err := Straight(req)
	if err != nil || !slices.Equal(path, []grid.Position{grid.Pos(1, 3), grid.Pos(1, 8)}) {
		t.Errorf("Straight = %v, %v", path, err)
	}

	req.Blocked = blocked(grid.Pos(1, 5))
	if _, err := Straight(req); !errors.Is(err, ErrNoPath) {
		t.Errorf("blocked run: err = %v", err)
	}

	req = Request{Start: grid.Pos(1, 3), End: grid.Pos(2, 8), Width: 10, Height: 10}
	if _, err := Straight(req); !errors.Is(err, ErrNoPath) {
		t.Errorf("bent run: err = %v", err)
	}
}

func TestPathHelpers(t *testing.T) {
	cells := []grid.Position{
		grid.Pos(0, 0), grid.Pos(1, 0), grid.Pos(1, 0), grid.Pos(2, 0),
		grid.Pos(2, 1), grid.Pos(2, 2), grid.Pos(3, 2),
	}
	corners := Simplify(cells)
	want := []grid.Position{grid.Pos(0, 0), grid.Pos(2, 0), grid.Pos(2, 2), grid.Pos(3, 2)}
	if !slices.Equal(corners, want) {
		t.Fatalf("Simplify = %v, want %v", corners, want)
	}

	if got := Cells(corners); len(got) != 6 || got[3] != grid.Pos(2, 1) {
		t.Errorf("Cells = %v", got)
	}
	if got := Interior(corners); len(got) != 4 || got[0] != grid.Pos(1, 0) || got[3] != grid.Pos(2, 2) {
		t.Errorf("Interior = %v", got)
	}
	if Interior([]grid.Position{grid.Pos(0, 0), grid.Pos(0, 1)}) != nil {
		t.Error("adjacent holes have no interior")
	}
	if Length(corners) != 5 || Turns(corners) != 2 {
		t.Errorf("Length %d Turns %d", Length(corners), Turns(corners))
	}
	if !Valid(corners) || Valid([]grid.Position{grid.Pos(0, 0), grid.Pos(1, 1)}) || Valid(nil) {
		t.Error("Valid mismatch")
	}
}

// TestShortcutsAgreeWithSearch checks on random boards that the escalating
// router and the bare A* search agree on routability and path cost.
func TestShortcutsAgreeWithSearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	const size = 12
	for trial := range 300 {
		obstacles := grid.NewHoleSet()
		for range size * size / 4 {
			obstacles.Add(grid.Pos(rng.IntN(size), rng.IntN(size)))
		}
		req := Request{
			Start:   grid.Pos(rng.IntN(size), rng.IntN(size)),
			End:     grid.Pos(rng.IntN(size), rng.IntN(size)),
			Width:   size,
			Height:  size,
			Blocked: obstacles.Has,
		}

		fast, errFast := Route(req)
		full, errFull := Search(req)
		if (errFast == nil) != (errFull == nil) {
			t.Fatalf("trial %d: Route err %v, Search err %v", trial, errFast, errFull)
		}
		if errFast != nil {
			continue
		}

		cf := PathCost(fast, DefaultTurnPenalty, nil)
		cs := PathCost(full, DefaultTurnPenalty, nil)
		if cf != cs {
			t.Fatalf("trial %d %v-%v: Route %v cost %v, Search %v cost %v",
				trial, req.Start, req.End, fast, cf, full, cs)
		}
		for _, path := range [][]grid.Position{fast, full} {
			if !Valid(path) {
				t.Fatalf("trial %d: invalid path %v", trial, path)
			}
			for _, p := range Interior(path) {
				if obstacles.Has(p) {
					t.Fatalf("trial %d: path %v crosses obstacle %v", trial, path, p)
				}
			}
		}
	}
}

func ExampleRoute() {
	path, err := Route(Request{
		Start:   grid.Pos(0, 2),
		End:     grid.Pos(5, 5),
		Width:   10,
		Height:  10,
		Blocked: func(p grid.Position) bool { return p == grid.Pos(3, 2) },
	})
	fmt.Println(path, err)
	// Output: [(0,2) (0,5) (5,5)] <nil>
}
