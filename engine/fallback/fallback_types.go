package fallback

import (
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// State is a step of the resolution chain.
type State int

const (
	// Idle means no chain is running for the sequence number.
	Idle State = iota
	// RequestingPrimary means the requested asset is being loaded.
	RequestingPrimary
	// RequestingDefault means the requested asset failed and the default asset is being loaded.
	RequestingDefault
	// Placeholder means both loads failed and the procedural placeholder was generated.
	Placeholder
	// Installed means a loaded asset was produced.
	Installed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RequestingPrimary:
		return "requesting_primary"
	case RequestingDefault:
		return "requesting_default"
	case Placeholder:
		return "placeholder"
	case Installed:
		return "installed"
	default:
		return "unknown"
	}
}

// Tier labels which source a fetch or an install came from.
type Tier string

const (
	TierRequested   Tier = "requested"
	TierDefault     Tier = "default"
	TierPlaceholder Tier = "placeholder"
)

// Transition describes one state change of a chain.
type Transition struct {
	// Seq is the sequence number of the chain.
	Seq uint64
	// Requested is the asset name the chain was started for.
	Requested string
	From      State
	To        State
	// Asset is the asset fetched by the step that just finished, empty for the first transition
	// and for placeholder generation.
	Asset string
	// Tier is the tier of the step that just finished.
	Tier Tier
	// Err is the failure cause when a fetch step failed.
	Err error
	// Elapsed is the duration of the fetch step that just finished.
	Elapsed time.Duration
	// Stale is set on the final transition of a chain whose result was discarded because a newer
	// request had been issued.
	Stale bool
}

// Result is the outcome of a complete chain.
type Result struct {
	Seq       uint64
	Requested string
	// Final is Installed, Placeholder, or Idle when the chain was cancelled before producing a fragment.
	Final State
	// Fragment is the fragment to display. It is nil only for a cancelled chain.
	Fragment model.Model
	// Source is the asset the fragment was loaded from, empty for the placeholder.
	Source string
	// Failures lists the failed outcomes in the order they happened.
	Failures []loader.Outcome
}

// Tier reports which tier produced the fragment.
func (r Result) Tier() Tier {
	switch {
	case r.Final == Placeholder:
		return TierPlaceholder
	case r.Source != r.Requested:
		return TierDefault
	default:
		return TierRequested
	}
}

// Observer receives every transition of every chain. Observers run on the goroutine that
// performed the step, so they must be safe for concurrent use.
type Observer func(Transition)

// Installer places a fragment into the displayed slot, taking ownership of it.
type Installer interface {
	// Install replaces the displayed object with fragment.
	//
	// Parameters:
	//   - fragment: the fragment to display
	Install(fragment model.Model)
}

// InstallerFunc adapts a function to the Installer interface.
type InstallerFunc func(fragment model.Model)

// Install calls f(fragment).
func (f InstallerFunc) Install(fragment model.Model) {
	f(fragment)
}

// Dispatcher runs fn on the event loop that owns the scene.
type Dispatcher func(fn func())
