package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netlist"
	"github.com/matzehuels/perfroute/pkg/project"
)

func testLayout(name string) *project.Layout {
	pad := &grid.Footprint{Name: "PAD", Pads: []grid.Pad{{Name: "1"}}}
	b := &grid.Board{
		Width:  6,
		Height: 4,
		Components: []grid.PlacedComponent{
			{Ref: "J1", FootprintName: "PAD", Footprint: pad, Anchor: grid.Pos(0, 1)},
			{Ref: "J2", FootprintName: "PAD", Footprint: pad, Anchor: grid.Pos(5, 1)},
		},
	}
	nets := netlist.Netlist{{Name: "LINK", Pins: []netlist.PinRef{{Ref: "J1", Pin: "1"}, {Ref: "J2", Pin: "1"}}}}
	res, err := autoroute.Route(autoroute.Input{Board: b, Nets: nets}, autoroute.Options{})
	if err != nil {
		panic(err)
	}
	return project.NewLayout(name, b, nets, res)
}

// exerciseStore runs the shared contract every backend must satisfy.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	older := NewDocument(testLayout("older"))
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := NewDocument(testLayout("newer"))
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	for _, d := range []*Document{older, newer} {
		if err := st.Save(ctx, d); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := st.Load(ctx, newer.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "newer" || got.Layout == nil || got.Layout.Result.RoutedNets != 1 {
		t.Errorf("Load = %+v", got)
	}
	if c, ok := got.Layout.Board.Component("J1"); !ok || c.Footprint == nil {
		t.Errorf("loaded layout footprints are not bound")
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("List = %+v, want newest first", list)
	}
	if list[0].RoutedNets != 1 || list[0].FailedNets != 0 {
		t.Errorf("summary counts = %+v", list[0])
	}

	if err := st.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Load(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete: err = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	exerciseStore(t, st)
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	exerciseStore(t, st)
}

func TestFileStoreRejectsEscapingIDs(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(filepath.Join(dir, "layouts"))
	if err != nil {
		t.Fatal(err)
	}

	doc := NewDocument(testLayout("x"))
	doc.ID = "../outside"
	if err := st.Save(context.Background(), doc); err == nil {
		t.Error("Save accepted an escaping ID")
	}
	if _, err := os.Stat(filepath.Join(dir, "outside.json")); !os.IsNotExist(err) {
		t.Error("document written outside the store directory")
	}
	if _, err := st.Load(context.Background(), "../outside"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: err = %v, want ErrNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"", "*store.MemoryStore", false},
		{"memory:", "*store.MemoryStore", false},
		{"file://" + dir, "*store.FileStore", false},
		{filepath.Join(dir, "plain"), "*store.FileStore", false},
		{"postgres://localhost/db", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			st, err := Open(ctx, tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) err = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer st.Close()
			if got := typeName(st); got != tt.want {
				t.Errorf("Open(%q) = %s, want %s", tt.uri, got, tt.want)
			}
		})
	}
}

func typeName(st Store) string {
	switch st.(type) {
	case *MemoryStore:
		return "*store.MemoryStore"
	case *FileStore:
		return "*store.FileStore"
	case *MongoStore:
		return "*store.MongoStore"
	}
	return "unknown"
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("PERFROUTE_TEST_MONGO")
	if uri == "" {
		t.Skip("PERFROUTE_TEST_MONGO not set")
	}
	ctx := context.Background()
	st, err := NewMongoStore(ctx, MongoConfig{URI: uri, Collection: "layouts_test_" + time.Now().Format("150405.000")})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		st.coll.Drop(ctx)
		st.Close()
	}()
	exerciseStore(t, st)
}
