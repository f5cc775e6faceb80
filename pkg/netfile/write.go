package netfile

import (
	"bufio"
	"io"
	"regexp"
	"strconv"

	"github.com/matzehuels/perfroute/pkg/netlist"
)

var plainName = regexp.MustCompile(`^[A-Za-z0-9_+~/.-]+$`)

// Write formats nl in the text netlist format. The output parses back to
// the same nets.
func Write(w io.Writer, nl netlist.Netlist) error {
	bw := bufio.NewWriter(w)
	for _, n := range nl {
		bw.WriteString("net ")
		bw.WriteString(quoteName(n.Name))
		bw.WriteString(":")
		for _, p := range n.Pins {
			bw.WriteString(" ")
			bw.WriteString(p.String())
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func quoteName(name string) string {
	if name == "net" || !plainName.MatchString(name) {
		return strconv.Quote(name)
	}
	return name
}
