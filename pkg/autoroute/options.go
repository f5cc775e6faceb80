package autoroute

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perfroute/pkg/decompose"
	"github.com/matzehuels/perfroute/pkg/errors"
	"github.com/matzehuels/perfroute/pkg/router"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxPasses is the total number of routing passes: one initial
	// pass plus rip-up-and-retry passes.
	DefaultMaxPasses = 3

	// DefaultRelaxedTurnPenalty is the turn penalty of the last-chance
	// attempt for an edge that survived every rip-up exchange.
	DefaultRelaxedTurnPenalty = 0.5

	// DefaultRipUpMargin grows a failed edge's bounding box when looking for
	// routed connections to displace.
	DefaultRipUpMargin = 2

	// DefaultCongestionRadius is how far, in holes, a trace raises the cost
	// of nearby holes during rip-up passes.
	DefaultCongestionRadius = 2

	// DefaultCongestionWeight is the extra cost added on a trace hole itself;
	// it decays as weight/(d+1) with Manhattan distance d.
	DefaultCongestionWeight = 1.0
)

// =============================================================================
// Options
// =============================================================================

// Options configures a routing run. The zero value is usable after
// [Options.SetDefaults].
type Options struct {
	// PrimarySurface selects what is tried first for a non-adjacent edge:
	// a bottom trace (default) or a top jumper.
	PrimarySurface Surface `json:"primary_surface,omitempty" toml:"primary_surface"`

	// ClearExisting discards Input.Existing instead of routing around it.
	ClearExisting bool `json:"clear_existing,omitempty" toml:"clear_existing"`

	// MaxPasses is the total number of passes, the first included.
	MaxPasses int `json:"max_passes,omitempty" toml:"max_passes"`

	TurnPenalty        float64 `json:"turn_penalty,omitempty" toml:"turn_penalty"`
	RelaxedTurnPenalty float64 `json:"relaxed_turn_penalty,omitempty" toml:"relaxed_turn_penalty"`
	MaxIterations      int     `json:"max_iterations,omitempty" toml:"max_iterations"`

	RipUpMargin      int     `json:"rip_up_margin,omitempty" toml:"rip_up_margin"`
	CongestionRadius int     `json:"congestion_radius,omitempty" toml:"congestion_radius"`
	CongestionWeight float64 `json:"congestion_weight,omitempty" toml:"congestion_weight"`

	// Weights are the edge priority biases. Zero means decompose.DefaultWeights.
	Weights decompose.Weights `json:"weights,omitzero" toml:"weights"`

	// Logger receives progress output. Nil discards it.
	Logger *log.Logger `json:"-" toml:"-"`
}

// SetDefaults fills every unset field.
func (o *Options) SetDefaults() {
	if o.PrimarySurface == "" {
		o.PrimarySurface = Bottom
	}
	if o.MaxPasses == 0 {
		o.MaxPasses = DefaultMaxPasses
	}
	if o.TurnPenalty == 0 {
		o.TurnPenalty = router.DefaultTurnPenalty
	}
	if o.RelaxedTurnPenalty == 0 {
		o.RelaxedTurnPenalty = DefaultRelaxedTurnPenalty
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = router.DefaultMaxIterations
	}
	if o.RipUpMargin == 0 {
		o.RipUpMargin = DefaultRipUpMargin
	}
	if o.CongestionRadius == 0 {
		o.CongestionRadius = DefaultCongestionRadius
	}
	if o.CongestionWeight == 0 {
		o.CongestionWeight = DefaultCongestionWeight
	}
	if o.Weights.IsZero() {
		o.Weights = decompose.DefaultWeights()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges. Call after SetDefaults.
func (o *Options) Validate() error {
	switch {
	case !o.PrimarySurface.Valid():
		return errors.New(errors.ErrCodeInvalidOptions, "primary surface must be %q or %q, got %q", Bottom, Top, o.PrimarySurface)
	case o.MaxPasses < 1:
		return errors.New(errors.ErrCodeInvalidOptions, "max passes must be at least 1, got %d", o.MaxPasses)
	case o.TurnPenalty < 0 || o.RelaxedTurnPenalty < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "turn penalties cannot be negative")
	case o.MaxIterations < 1:
		return errors.New(errors.ErrCodeInvalidOptions, "max iterations must be positive, got %d", o.MaxIterations)
	case o.RipUpMargin < 0 || o.CongestionRadius < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "rip-up margin and congestion radius cannot be negative")
	case o.CongestionWeight < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "congestion weight cannot be negative")
	}
	return nil
}
