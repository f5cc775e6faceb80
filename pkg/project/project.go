// Package project reads perfroute project files and writes routed layouts.
//
// A project describes one board: its size, the footprints in use, where each
// component is placed, how its pins are connected, and how to route it.
// Projects are written in TOML or JSON; the format follows the extension.
//
//	name = "astable"
//	library = "parts.toml"   # optional, relative to the project file
//	netfile = "astable.net"  # or a [schematic] table, or [[nets]]
//
//	[board]
//	width = 24
//	height = 16
//
//	[[components]]
//	ref = "U1"
//	footprint = "DIP8"
//	anchor = { col = 6, row = 5 }
//	rotation = 90
//
//	[routing]
//	max_passes = 4
//
// Connections soldered before routing go in [[existing]] and are kept unless
// routing.clear_existing is set.
//
// Exactly one net source is allowed: a schematic resolved with
// [netlist.Resolve], a text netlist read by [netfile.ParseFile], or inline
// [[nets]] entries.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/netfile"
	"github.com/matzehuels/perfroute/pkg/netlist"
)

// =============================================================================
// Formats
// =============================================================================

// Format is a project file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported project file %q: want .toml or .json", path)
	}
}

// =============================================================================
// Project
// =============================================================================

// BoardSize is the drilled area in holes.
type BoardSize struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// NetSpec is an inline net: a name and REF.PIN references.
type NetSpec struct {
	Name string   `json:"name" toml:"name"`
	Pins []string `json:"pins" toml:"pins"`
}

// Project is a decoded project file.
type Project struct {
	Name string    `json:"name,omitempty" toml:"name"`
	Size BoardSize `json:"board" toml:"board"`

	// Library is a footprint file with a top-level footprints list. Inline
	// Footprints take precedence over library entries of the same name.
	Library    string                 `json:"library,omitempty" toml:"library"`
	Footprints []grid.Footprint       `json:"footprints,omitempty" toml:"footprints"`
	Components []grid.PlacedComponent `json:"components" toml:"components"`

	Schematic *netlist.Schematic `json:"schematic,omitempty" toml:"schematic"`
	Netfile   string             `json:"netfile,omitempty" toml:"netfile"`
	Nets      []NetSpec          `json:"nets,omitempty" toml:"nets"`

	Routing  autoroute.Options      `json:"routing" toml:"routing"`
	Existing []autoroute.Connection `json:"existing,omitempty" toml:"existing"`

	// dir is where relative paths are resolved. Empty means the working
	// directory.
	dir string
}

// Load reads and validates a project file.
func Load(path string) (*Project, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "project %s not found", path)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	p, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Decode reads and validates a project. Relative paths inside it resolve
// against the working directory; see [Project.SetDir].
func Decode(r io.Reader, format Format) (*Project, error) {
	var p Project
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode toml")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", format)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetDir sets the directory relative paths resolve against.
func (p *Project) SetDir(dir string) { p.dir = dir }

// Validate checks the project and normalizes component rotations.
func (p *Project) Validate() error {
	if err := errors.ValidateBoardSize(p.Size.Width, p.Size.Height); err != nil {
		return err
	}

	seen := make(map[string]bool, len(p.Components))
	for i := range p.Components {
		c := &p.Components[i]
		if err := errors.ValidateRef(c.Ref); err != nil {
			return err
		}
		if seen[c.Ref] {
			return errors.New(errors.ErrCodeInvalidProject, "duplicate component %q", c.Ref)
		}
		seen[c.Ref] = true
		if c.FootprintName == "" {
			return errors.New(errors.ErrCodeInvalidProject, "component %s has no footprint", c.Ref)
		}
		rot, err := grid.ParseRotation(int(c.Rotation))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidProject, err, "component %s", c.Ref)
		}
		c.Rotation = rot
		if c.HoleSpan < 0 {
			return errors.New(errors.ErrCodeInvalidProject, "component %s: hole span cannot be negative", c.Ref)
		}
	}

	sources := 0
	for _, set := range []bool{p.Schematic != nil, p.Netfile != "", len(p.Nets) > 0} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return errors.New(errors.ErrCodeInvalidProject, "use only one of schematic, netfile and nets")
	}

	for _, rel := range []string{p.Library, p.Netfile} {
		if rel == "" {
			continue
		}
		if err := errors.ValidatePath(rel); err != nil {
			return err
		}
	}

	for i := range p.Existing {
		c := &p.Existing[i]
		switch c.Type {
		case autoroute.Bridge, autoroute.Trace, autoroute.Jumper:
		default:
			return errors.New(errors.ErrCodeInvalidProject, "existing connection %s: unknown type %q", c.Net, c.Type)
		}
		if c.Surface == "" {
			c.Surface = autoroute.Bottom
			if c.Type == autoroute.Jumper {
				c.Surface = autoroute.Top
			}
		}
		if !c.Surface.Valid() {
			return errors.New(errors.ErrCodeInvalidProject, "existing connection %s: unknown surface %q", c.Net, c.Surface)
		}
	}

	opts := p.Routing
	opts.SetDefaults()
	return opts.Validate()
}

func (p *Project) path(rel string) string {
	if p.dir == "" {
		return rel
	}
	return filepath.Join(p.dir, rel)
}

// =============================================================================
// Assembly
// =============================================================================

// FootprintLibrary collects the library file and the inline footprints.
func (p *Project) FootprintLibrary() (grid.Library, error) {
	var fps []*grid.Footprint
	if p.Library != "" {
		lib, err := LoadLibrary(p.path(p.Library))
		if err != nil {
			return nil, err
		}
		for _, f := range lib {
			fps = append(fps, f)
		}
	}
	for i := range p.Footprints {
		fps = append(fps, &p.Footprints[i])
	}
	return grid.NewLibrary(fps...), nil
}

// Board builds the placed board with footprints bound. Components whose
// footprint is unknown are returned as warnings and occupy no holes.
func (p *Project) Board() (*grid.Board, []error, error) {
	lib, err := p.FootprintLibrary()
	if err != nil {
		return nil, nil, err
	}
	b := &grid.Board{
		Width:      p.Size.Width,
		Height:     p.Size.Height,
		Components: make([]grid.PlacedComponent, len(p.Components)),
	}
	copy(b.Components, p.Components)
	return b, b.Bind(lib), nil
}

// Net sources.
const (
	SourceSchematic = "schematic"
	SourceNetfile   = "netfile"
	SourceInline    = "inline"
)

// NetSource names where the project's nets come from, or "" if it has none.
func (p *Project) NetSource() string {
	switch {
	case p.Schematic != nil:
		return SourceSchematic
	case p.Netfile != "":
		return SourceNetfile
	case len(p.Nets) > 0:
		return SourceInline
	}
	return ""
}

// NetfilePath returns the netfile path resolved against the project
// directory.
func (p *Project) NetfilePath() string { return p.path(p.Netfile) }

// Netlist builds the project's nets from whichever source it has. A project
// with no source has no nets.
func (p *Project) Netlist(opts netlist.Options) (netlist.Netlist, []error, error) {
	switch {
	case p.Schematic != nil:
		res := netlist.Resolve(p.Schematic, opts)
		return res.Nets, res.Warnings, nil
	case p.Netfile != "":
		nl, err := netfile.ParseFile(p.NetfilePath())
		return nl, nil, err
	default:
		nl := make(netlist.Netlist, 0, len(p.Nets))
		for _, n := range p.Nets {
			if err := errors.ValidateNetName(n.Name); err != nil {
				return nil, nil, err
			}
			net := netlist.Net{Name: n.Name}
			for _, s := range n.Pins {
				ref, err := netlist.ParsePinRef(s)
				if err != nil {
					return nil, nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "net %s", n.Name)
				}
				net.Pins = append(net.Pins, ref)
			}
			nl = append(nl, net)
		}
		return nl, nil, nil
	}
}

// =============================================================================
// Footprint libraries
// =============================================================================

type libraryFile struct {
	Footprints []*grid.Footprint `json:"footprints" toml:"footprints"`
}

// LoadLibrary reads a footprint library file (TOML or JSON).
func LoadLibrary(path string) (grid.Library, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "footprint library %s not found", path)
		}
		return nil, fmt.Errorf("open library: %w", err)
	}
	defer f.Close()
	return ReadLibrary(f, format)
}

// ReadLibrary decodes a footprint library.
func ReadLibrary(r io.Reader, format Format) (grid.Library, error) {
	var lf libraryFile
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&lf)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&lf)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported library format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode footprint library")
	}
	for _, fp := range lf.Footprints {
		if fp.Name == "" || len(fp.Pads) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidProject, "footprint %q needs a name and at least one pad", fp.Name)
		}
	}
	return grid.NewLibrary(lf.Footprints...), nil
}
