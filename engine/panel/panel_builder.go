package panel

import "log/slog"

// PanelBuilderOption is a functional option for configuring a Panel via NewPanel.
type PanelBuilderOption func(*panel)

// WithHidden sets the initial visibility; a hidden panel can still be toggled into view.
//
// Parameters:
//   - hidden: true to start hidden
//
// Returns:
//   - PanelBuilderOption: a function that sets the initial visibility
func WithHidden(hidden bool) PanelBuilderOption {
	return func(p *panel) {
		p.visible = !hidden
	}
}

// WithLocked hides the panel permanently when locked is true: it can be neither toggled into
// view nor pressed. Embedders use it to remove the catalog from the view.
//
// Parameters:
//   - locked: true to lock the panel hidden
//
// Returns:
//   - PanelBuilderOption: a function that locks the panel
func WithLocked(locked bool) PanelBuilderOption {
	return func(p *panel) {
		p.locked = locked
		if locked {
			p.visible = false
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PanelBuilderOption {
	return func(p *panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}
