package autoroute

import (
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/perfroute/pkg/router"
)

// Stats summarizes a routing run. Wire figures cover newly routed
// connections only.
type Stats struct {
	Edges     int `json:"edges"`
	Bridges   int `json:"bridges"`
	Traces    int `json:"traces"`
	Jumpers   int `json:"jumpers"`
	Exchanges int `json:"exchanges"`
	Passes    int `json:"passes"`

	// WireLength is the total hole steps of traces and jumpers.
	WireLength int `json:"wire_length"`

	MeanTraceLength   float64 `json:"mean_trace_length"`
	StdDevTraceLength float64 `json:"stddev_trace_length"`

	// Corners is the total number of trace bends.
	Corners int `json:"corners"`
}

func computeStats(conns []Connection, edges int) Stats {
	s := Stats{Edges: edges}
	var lengths []float64
	for _, c := range conns {
		if c.Fixed {
			continue
		}
		switch c.Type {
		case Bridge:
			s.Bridges++
			continue
		case Trace:
			s.Traces++
			s.Corners += router.Turns(c.Path())
			lengths = append(lengths, float64(c.Length()))
		case Jumper:
			s.Jumpers++
		}
		s.WireLength += c.Length()
	}

	switch len(lengths) {
	case 0:
	case 1:
		s.MeanTraceLength = lengths[0]
	default:
		s.MeanTraceLength, s.StdDevTraceLength = stat.MeanStdDev(lengths, nil)
	}
	return s
}
