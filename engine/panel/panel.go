package panel

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/internal/logging"
)

// Handler is called when a control is pressed, with the control's asset name.
type Handler func(asset string)

// Control is one catalog entry of the panel.
type Control struct {
	// Label is the asset name without its extension.
	Label string
	// Asset is the asset the control loads.
	Asset string
}

// panel is the implementation of the Panel interface.
type panel struct {
	mu       *sync.Mutex
	logger   *slog.Logger
	controls []Control
	handlers []Handler
	visible  bool
	locked   bool
}

// Panel is the catalog side panel: one control per catalog entry. Each control must be bound
// to a handler explicitly; pressing an unbound control does nothing.
type Panel interface {
	// Controls returns the controls in catalog order.
	//
	// Returns:
	//   - []Control: the controls
	Controls() []Control

	// Bind registers the handler of the control for asset.
	//
	// Parameters:
	//   - asset: the catalog asset
	//   - handler: called with the asset when the control is pressed
	//
	// Returns:
	//   - error: an error if asset is not in the catalog
	Bind(asset string, handler Handler) error

	// BindAll registers the same handler for every control.
	//
	// Parameters:
	//   - handler: called with the pressed control's asset
	BindAll(handler Handler)

	// Press activates the control at index, counted from zero. Presses are ignored while the
	// panel is hidden.
	//
	// Parameters:
	//   - index: the control index
	//
	// Returns:
	//   - bool: true when a handler ran
	Press(index int) bool

	// Visible reports whether the panel is shown.
	//
	// Returns:
	//   - bool: true when shown
	Visible() bool

	// SetVisible shows or hides the panel. It has no effect on a locked panel.
	//
	// Parameters:
	//   - visible: the new visibility
	SetVisible(visible bool)

	// Toggle flips the visibility. A locked panel stays hidden.
	//
	// Returns:
	//   - bool: the new visibility
	Toggle() bool

	// Locked reports whether the embedder removed the panel for good.
	//
	// Returns:
	//   - bool: true when locked
	Locked() bool

	// Text renders the panel as a single line such as "[1] chair  [2] table", or "" when hidden.
	//
	// Returns:
	//   - string: the panel text
	Text() string
}

var _ Panel = &panel{}

// NewPanel creates a Panel for the catalog. The panel starts visible.
//
// Parameters:
//   - catalog: the asset names, in display order
//   - options: functional options
//
// Returns:
//   - Panel: the panel
func NewPanel(catalog []string, options ...PanelBuilderOption) Panel {
	p := &panel{
		mu:      &sync.Mutex{},
		logger:  logging.NewNop(),
		visible: true,
	}
	for _, asset := range catalog {
		p.controls = append(p.controls, Control{Label: Label(asset), Asset: asset})
	}
	p.handlers = make([]Handler, len(p.controls))
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Label returns the display label of an asset: its base name without the extension.
//
// Parameters:
//   - asset: the asset name
//
// Returns:
//   - string: the label
func Label(asset string) string {
	base := path.Base(asset)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (p *panel) Controls() []Control {
	return append([]Control(nil), p.controls...)
}

func (p *panel) Bind(asset string, handler Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	bound := false
	for i, c := range p.controls {
		if c.Asset == asset {
			p.handlers[i] = handler
			bound = true
		}
	}
	if !bound {
		return fmt.Errorf("no control for asset %q", asset)
	}
	return nil
}

func (p *panel) BindAll(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.handlers {
		p.handlers[i] = handler
	}
}

func (p *panel) Press(index int) bool {
	p.mu.Lock()
	if !p.visible || index < 0 || index >= len(p.controls) || p.handlers[index] == nil {
		p.mu.Unlock()
		return false
	}
	control, handler := p.controls[index], p.handlers[index]
	p.mu.Unlock()

	p.logger.Debug("panel control pressed", "label", control.Label, "asset", control.Asset)
	handler(control.Asset)
	return true
}

func (p *panel) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *panel) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.locked {
		p.visible = visible
	}
}

func (p *panel) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.locked {
		p.visible = !p.visible
	}
	return p.visible
}

func (p *panel) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locked
}

func (p *panel) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible {
		return ""
	}
	parts := make([]string, len(p.controls))
	for i, c := range p.controls {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, c.Label)
	}
	return strings.Join(parts, "  ")
}
