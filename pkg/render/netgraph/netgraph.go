// Package netgraph renders netlists as Graphviz diagrams.
//
// Each component and each net is a node; an edge joins a component to every
// net one of its pins belongs to, labeled with the pin name. Nets that failed
// to route can be highlighted.
package netgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/perfroute/pkg/netlist"
)

// Options configures net graph rendering.
type Options struct {
	// PinLabels labels edges with pin names.
	PinLabels bool

	// Failed names nets drawn in red.
	Failed []string
}

// ToDOT converts a netlist to Graphviz DOT format. The result can be
// rendered with [RenderSVG].
func ToDOT(nets netlist.Netlist, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14];\n")
	buf.WriteString("\n")

	for _, ref := range nets.Components() {
		fmt.Fprintf(&buf, "  %q [shape=box, style=\"rounded,filled\", fillcolor=white];\n", componentID(ref))
	}
	for _, n := range nets {
		attrs := fmt.Sprintf("label=%q, shape=ellipse, style=filled, fillcolor=%s", n.Name, netFill(n.Name, opts))
		fmt.Fprintf(&buf, "  %q [%s];\n", netID(n.Name), attrs)
	}

	buf.WriteString("\n")
	for _, n := range nets {
		for _, p := range n.Pins {
			fmt.Fprintf(&buf, "  %q -- %q", componentID(p.Ref), netID(n.Name))
			if opts.PinLabels {
				fmt.Fprintf(&buf, " [label=%q]", p.Pin)
			}
			buf.WriteString(";\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Node IDs are prefixed so a net and a component may share a name.
func componentID(ref string) string { return "c:" + ref }
func netID(name string) string      { return "n:" + name }

func netFill(name string, opts Options) string {
	if slices.Contains(opts.Failed, name) {
		return "\"#f4a6a6\""
	}
	return "lightgrey"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin, so the image scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
