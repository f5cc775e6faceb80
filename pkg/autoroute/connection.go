package autoroute

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/perfroute/pkg/grid"
	"github.com/matzehuels/perfroute/pkg/router"
)

// ConnectionType is the physical kind of a connection.
type ConnectionType string

const (
	// Bridge is a solder blob between two adjacent holes.
	Bridge ConnectionType = "solder_bridge"
	// Trace is a bent wire or track on the solder side.
	Trace ConnectionType = "trace"
	// Jumper is a straight wire on the component side.
	Jumper ConnectionType = "jumper"
)

// Surface is a routing layer of the board.
type Surface string

const (
	Bottom Surface = "bottom"
	Top    Surface = "top"
)

// Valid reports whether s names a known surface.
func (s Surface) Valid() bool { return s == Bottom || s == Top }

// Connection is one realized route. It is created whole and removed whole;
// rip-up never edits a connection in place.
type Connection struct {
	ID        string          `json:"id" bson:"id"`
	Type      ConnectionType  `json:"type" bson:"type"`
	Surface   Surface         `json:"surface" bson:"surface"`
	From      grid.Position   `json:"from" bson:"from"`
	To        grid.Position   `json:"to" bson:"to"`
	Waypoints []grid.Position `json:"waypoints,omitempty" bson:"waypoints,omitempty"`
	Net       string          `json:"net" bson:"net"`

	// Fixed marks a connection that was present before routing. Fixed
	// connections occupy holes but are never ripped up.
	Fixed bool `json:"fixed,omitempty" bson:"fixed,omitempty"`
}

// Path returns the full corner list: From, the waypoints, then To.
func (c Connection) Path() []grid.Position {
	out := make([]grid.Position, 0, len(c.Waypoints)+2)
	out = append(out, c.From)
	out = append(out, c.Waypoints...)
	return append(out, c.To)
}

// Interior returns the holes the connection consumes, endpoints excluded.
// Bridges consume none.
func (c Connection) Interior() []grid.Position {
	if c.Type == Bridge {
		return nil
	}
	return router.Interior(c.Path())
}

// Length returns the number of hole steps the connection spans.
func (c Connection) Length() int { return router.Length(c.Path()) }

// Joins reports whether the connection links holes a and b, in either
// direction.
func (c Connection) Joins(a, b grid.Position) bool {
	return (c.From == a && c.To == b) || (c.From == b && c.To == a)
}

func (c Connection) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s/%s %v", c.Net, c.Type, c.Surface, c.From)
	for _, w := range c.Waypoints {
		fmt.Fprintf(&b, "-%v", w)
	}
	fmt.Fprintf(&b, "-%v", c.To)
	return b.String()
}

// idSpace is the UUID namespace connection IDs are derived in.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/perfroute/connection"))

// connectionID derives a stable name-based UUID from the connection's
// content, so rerunning the same routing yields the same IDs.
func connectionID(c Connection) string {
	key := fmt.Sprintf("%s|%s|%s|%v", c.Net, c.Type, c.Surface, c.Path())
	return uuid.NewSHA1(idSpace, []byte(key)).String()
}
