package cache

// keyVersion changes whenever cached payloads change shape, so old entries
// are never decoded into new types.
const keyVersion = "v1"

// NetsKeyOpts are the resolver settings a netlist depends on.
type NetsKeyOpts struct {
	Precision float64 `json:"precision"`
}

// RouteKeyOpts are the routing settings a result depends on.
type RouteKeyOpts struct {
	PrimarySurface     string  `json:"primary_surface"`
	ClearExisting      bool    `json:"clear_existing"`
	MaxPasses          int     `json:"max_passes"`
	TurnPenalty        float64 `json:"turn_penalty"`
	RelaxedTurnPenalty float64 `json:"relaxed_turn_penalty"`
	MaxIterations      int     `json:"max_iterations"`
	RipUpMargin        int     `json:"rip_up_margin"`
	CongestionRadius   int     `json:"congestion_radius"`
	CongestionWeight   float64 `json:"congestion_weight"`
	Weights            [4]int  `json:"weights"`
}

// Keyer builds cache keys.
type Keyer interface {
	// NetsKey identifies a resolved netlist by the hash of its source.
	NetsKey(sourceHash string, opts NetsKeyOpts) string

	// RouteKey identifies a routing result by the hash of its input (board,
	// nets and existing connections).
	RouteKey(inputHash string, opts RouteKeyOpts) string
}

// DefaultKeyer hashes every key component into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) NetsKey(sourceHash string, opts NetsKeyOpts) string {
	return hashKey("nets", keyVersion, sourceHash, opts)
}

func (DefaultKeyer) RouteKey(inputHash string, opts RouteKeyOpts) string {
	return hashKey("route", keyVersion, inputHash, opts)
}
