package project

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netlist"
)

// Layout is a routed board: everything needed to draw or check the result
// without the original project. It is the format of result files, API
// responses and stored documents.
type Layout struct {
	Name       string            `json:"name,omitempty" bson:"name,omitempty"`
	Board      grid.Board        `json:"board" bson:"board"`
	Footprints []*grid.Footprint `json:"footprints" bson:"footprints"`
	Nets       netlist.Netlist   `json:"nets" bson:"nets"`
	Result     *autoroute.Result `json:"result" bson:"result"`
}

// NewLayout packages a routing result with the board it was routed on. Only
// the footprints the board uses are kept.
func NewLayout(name string, b *grid.Board, nets netlist.Netlist, res *autoroute.Result) *Layout {
	l := &Layout{Name: name, Board: *b, Nets: nets, Result: res}
	l.Board.Components = slices.Clone(b.Components)

	seen := make(map[string]bool)
	for _, c := range b.Components {
		if c.Footprint == nil || seen[c.Footprint.Name] {
			continue
		}
		seen[c.Footprint.Name] = true
		l.Footprints = append(l.Footprints, c.Footprint)
	}
	slices.SortFunc(l.Footprints, func(a, b *grid.Footprint) int { return cmp.Compare(a.Name, b.Name) })
	return l
}

// Bind attaches the layout's footprints to its components after decoding.
func (l *Layout) Bind() []error {
	return l.Board.Bind(grid.NewLibrary(l.Footprints...))
}

// WriteLayout encodes l as indented JSON.
func WriteLayout(w io.Writer, l *Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// SaveLayout writes l to a JSON file.
func SaveLayout(path string, l *Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayout(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLayout decodes a layout and binds its footprints.
func ReadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if l.Result == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "layout has no routing result")
	}
	if err := errors.ValidateBoardSize(l.Board.Width, l.Board.Height); err != nil {
		return nil, err
	}
	if warnings := l.Bind(); len(warnings) > 0 {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, warnings[0], "layout footprints")
	}
	return &l, nil
}

// LoadLayout reads a layout file.
func LoadLayout(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}
