package loader

import (
	"context"
	"errors"
)

var (
	// ErrAssetNotFound is returned when storage has no asset under the requested name.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrDecodeFailure is returned when the retrieved bytes are not a usable model.
	ErrDecodeFailure = errors.New("asset decode failure")
	// ErrLoadTimeout is returned when a load does not finish within the configured timeout.
	ErrLoadTimeout = errors.New("asset load timed out")
)

// Classify maps a load error to a short label for metrics and logs.
//
// Parameters:
//   - err: the error to classify, may be nil
//
// Returns:
//   - string: one of "ok", "not_found", "decode", "timeout", "canceled" or "fetch"
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLoadTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrDecodeFailure):
		return "decode"
	case errors.Is(err, ErrAssetNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "fetch"
	}
}
