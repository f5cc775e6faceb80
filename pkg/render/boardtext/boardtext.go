// Package boardtext draws a routed board as text.
//
// Holes sit on even columns and rows of the output; the characters between
// them show what links neighboring holes. A 3×2 board with a bent trace and
// a solder bridge looks like:
//
//	o-+-+
//	    |
//	o=o o
//
// Glyphs:
//
//	.  free hole          o  pad
//	#  component body     +  trace hole
//	- |  trace            = "  solder bridge
//	~ :  jumper (top side)
package boardtext

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/perfroute/pkg/autoroute"
	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/router"
)

// Layer selects what is drawn.
type Layer uint8

const (
	LayerParts Layer = 1 << iota
	LayerBottom
	LayerTop

	// LayerHoles draws the bare hole grid. Holes are always drawn, so this
	// is only useful alone.
	LayerHoles

	AllLayers = LayerParts | LayerBottom | LayerTop
)

// Options configures rendering.
type Options struct {
	// Layers to draw. Zero means AllLayers.
	Layers Layer

	// Net restricts connections to one net. Empty draws every net.
	Net string

	// Rulers prints column numbers above and row numbers to the left.
	Rulers bool

	// Color styles the glyphs with lipgloss. Leave off for plain text.
	Color bool
}

type class uint8

const (
	classGap class = iota
	classHole
	classBody
	classPad
	classTrace
	classBridge
	classJumper
)

var styles = map[class]lipgloss.Style{
	classHole:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	classBody:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	classPad:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
	classTrace:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	classBridge: lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
	classJumper: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
}

type cell struct {
	r rune
	c class
}

type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(width, height int) *canvas {
	cv := &canvas{w: 2*width - 1, h: 2*height - 1}
	cv.cells = make([][]cell, cv.h)
	for y := range cv.cells {
		cv.cells[y] = make([]cell, cv.w)
		for x := range cv.cells[y] {
			cv.cells[y][x] = cell{' ', classGap}
			if x%2 == 0 && y%2 == 0 {
				cv.cells[y][x] = cell{'.', classHole}
			}
		}
	}
	return cv
}

func (cv *canvas) set(x, y int, r rune, c class) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.cells[y][x] = cell{r, c}
}

func (cv *canvas) hole(p grid.Position, r rune, c class) {
	cv.set(2*p.Col, 2*p.Row, r, c)
}

// link draws the glyph between two adjacent holes.
func (cv *canvas) link(a, b grid.Position, horizontal, vertical rune, c class) {
	r := horizontal
	if a.Col == b.Col {
		r = vertical
	}
	cv.set(a.Col+b.Col, a.Row+b.Row, r, c)
}

// Render draws res on b. A nil res draws the bare board.
func Render(b *grid.Board, res *autoroute.Result, opts Options) string {
	if b.Width <= 0 || b.Height <= 0 {
		return ""
	}
	if opts.Layers == 0 {
		opts.Layers = AllLayers
	}
	cv := newCanvas(b.Width, b.Height)

	if opts.Layers&LayerParts != 0 {
		for i := range b.Components {
			c := &b.Components[i]
			if c.Footprint == nil {
				continue
			}
			for _, h := range c.Holes() {
				cv.hole(h, '#', classBody)
			}
			for _, h := range c.PadHoles() {
				cv.hole(h, 'o', classPad)
			}
		}
	}

	if res != nil {
		// Top after bottom: a jumper hides the trace it crosses.
		for _, layer := range []Layer{LayerBottom, LayerTop} {
			if opts.Layers&layer == 0 {
				continue
			}
			for _, c := range res.Connections {
				if opts.Net != "" && c.Net != opts.Net {
					continue
				}
				if layerOf(c) == layer {
					drawConnection(cv, c)
				}
			}
		}
	}

	return cv.String(opts)
}

func layerOf(c autoroute.Connection) Layer {
	if c.Type == autoroute.Jumper || c.Surface == autoroute.Top {
		return LayerTop
	}
	return LayerBottom
}

func drawConnection(cv *canvas, c autoroute.Connection) {
	cells := router.Cells(c.Path())
	for i := 1; i < len(cells); i++ {
		a, b := cells[i-1], cells[i]
		switch c.Type {
		case autoroute.Bridge:
			cv.link(a, b, '=', '"', classBridge)
		case autoroute.Jumper:
			cv.link(a, b, '~', ':', classJumper)
		default:
			cv.link(a, b, '-', '|', classTrace)
		}
	}
	for i := 1; i < len(cells)-1; i++ {
		switch c.Type {
		case autoroute.Jumper:
			r := '~'
			if cells[i].Col == cells[i-1].Col {
				r = ':'
			}
			cv.hole(cells[i], r, classJumper)
		default:
			cv.hole(cells[i], '+', classTrace)
		}
	}
}

func (cv *canvas) String(opts Options) string {
	var sb strings.Builder
	if opts.Rulers {
		var ruler strings.Builder
		ruler.WriteString("   ")
		for x := 0; x < cv.w; x++ {
			if x%2 == 0 {
				ruler.WriteByte(byte('0' + (x/2)%10))
			} else {
				ruler.WriteByte(' ')
			}
		}
		sb.WriteString(ruler.String())
		sb.WriteByte('\n')
	}

	for y, row := range cv.cells {
		var line strings.Builder
		if opts.Rulers {
			if y%2 == 0 {
				line.WriteString(rowLabel(y / 2))
			} else {
				line.WriteString("   ")
			}
		}
		for _, c := range row {
			if opts.Color && c.c != classGap {
				line.WriteString(styles[c.c].Render(string(c.r)))
			} else {
				line.WriteRune(c.r)
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func rowLabel(row int) string { return fmt.Sprintf("%2d ", row%100) }
