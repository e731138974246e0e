package loader

import "github.com/Carmen-Shannon/oxy-viewer/engine/model"

// Outcome is the normalized result of a load. It is either Loaded, carrying a fragment,
// or Failed, carrying the cause.
type Outcome struct {
	fragment model.Model
	source   string
	err      error
}

// Loaded creates a successful Outcome.
//
// Parameters:
//   - fragment: the decoded fragment
//   - source: the asset name the fragment came from
//
// Returns:
//   - Outcome: the loaded outcome
func Loaded(fragment model.Model, source string) Outcome {
	return Outcome{fragment: fragment, source: source}
}

// Failed creates a failed Outcome.
//
// Parameters:
//   - source: the asset name that failed
//   - cause: the reason, matched with errors.Is against the package sentinels
//
// Returns:
//   - Outcome: the failed outcome
func Failed(source string, cause error) Outcome {
	return Outcome{source: source, err: cause}
}

// Ok reports whether the outcome is Loaded.
func (o Outcome) Ok() bool {
	return o.err == nil && o.fragment != nil
}

// Fragment returns the decoded fragment, or nil for a Failed outcome.
func (o Outcome) Fragment() model.Model {
	return o.fragment
}

// Source returns the asset name the outcome refers to.
func (o Outcome) Source() string {
	return o.source
}

// Err returns the failure cause, or nil for a Loaded outcome.
func (o Outcome) Err() error {
	return o.err
}

// HasBounds reports whether the loaded fragment has a usable bounding box.
func (o Outcome) HasBounds() bool {
	if !o.Ok() {
		return false
	}
	_, ok := o.fragment.Bounds()
	return ok
}
