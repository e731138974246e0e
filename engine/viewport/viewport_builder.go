package viewport

import "log/slog"

// ViewportBuilderOption is a functional option for configuring a Viewport via NewViewport.
type ViewportBuilderOption func(*viewport)

// WithLogger sets the logger.
//
// Parameters:
//   - logger: the logger; ignored when nil
//
// Returns:
//   - ViewportBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) ViewportBuilderOption {
	return func(v *viewport) {
		if logger != nil {
			v.logger = logger
		}
	}
}
