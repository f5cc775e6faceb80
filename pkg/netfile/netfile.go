// Package netfile reads and writes the plain-text netlist format.
//
// A netlist file lists one net per declaration. Each declaration names the
// net and the pins it joins as REF.PIN pairs, separated by spaces or commas:
//
//	# power
//	net GND: R1.2, C1.2 U1.GND
//	net "+5V": U1.VCC C2.1
//
// Names that are not plain words, or that collide with the keyword net,
// must be quoted. Comments run from # to the end of the line.
//
// The format is an alternative to a schematic when the nets are already
// known, for example when they were exported from another tool.
package netfile

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/netlist"
)

// File is the syntax tree of a netlist file.
type File struct {
	Nets []*NetDecl `parser:"@@*"`
}

// NetDecl is one net declaration.
type NetDecl struct {
	Pos lexer.Position

	Name string   `parser:"'net' @(Name | String | Pin) ':'"`
	Pins []string `parser:"@Pin ( ','? @Pin )*"`
}

var parser = participle.MustBuild[File](
	participle.Lexer(netLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse reads a netlist from r. The filename is only used in error
// positions.
func Parse(r io.Reader, filename string) (netlist.Netlist, error) {
	f, err := parser.Parse(filename, r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse netlist")
	}
	return f.Netlist()
}

// ParseString reads a netlist from a string.
func ParseString(filename, src string) (netlist.Netlist, error) {
	f, err := parser.ParseString(filename, src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse netlist")
	}
	return f.Netlist()
}

// ParseFile reads a netlist file from disk.
func ParseFile(path string) (netlist.Netlist, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "netlist %s not found", path)
		}
		return nil, fmt.Errorf("open netlist: %w", err)
	}
	defer file.Close()
	return Parse(file, path)
}

// Netlist checks the declarations and converts them to nets in file order.
// A net name may be declared once and a pin may belong to one net only;
// a pin repeated within its own net is kept once.
func (f *File) Netlist() (netlist.Netlist, error) {
	owner := make(map[netlist.PinRef]string)
	declared := make(map[string]lexer.Position)

	out := make(netlist.Netlist, 0, len(f.Nets))
	for _, d := range f.Nets {
		if err := errors.ValidateNetName(d.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", d.Pos)
		}
		if first, ok := declared[d.Name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: net %q already declared at %s", d.Pos, d.Name, first)
		}
		declared[d.Name] = d.Pos

		n := netlist.Net{Name: d.Name}
		for _, s := range d.Pins {
			ref, err := netlist.ParsePinRef(s)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", d.Pos)
			}
			if prev, ok := owner[ref]; ok {
				if prev == d.Name {
					continue
				}
				return nil, errors.New(errors.ErrCodeInvalidFormat, "%s: pin %s is already on net %q", d.Pos, ref, prev)
			}
			owner[ref] = d.Name
			n.Pins = append(n.Pins, ref)
		}
		out = append(out, n)
	}
	return out, nil
}
