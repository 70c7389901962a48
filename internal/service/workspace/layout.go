package workspace

import (
	"sync"

	"inkwell/internal/domain/services"
)

// PanelState is an in-memory LayoutNotifier the UI shell polls for the
// auxiliary panel's visibility.
type PanelState struct {
	mu      sync.Mutex
	visible bool
	size    int
}

// NewPanelState creates a collapsed panel state
func NewPanelState() *PanelState {
	return &PanelState{}
}

var _ services.LayoutNotifier = (*PanelState)(nil)

// ExpandPanel ensures the panel is visible. The size is only applied when
// the panel was hidden; an already-visible panel keeps its user-chosen size.
func (p *PanelState) ExpandPanel(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible {
		p.size = size
	}
	p.visible = true
}

// CollapsePanel hides the panel
func (p *PanelState) CollapsePanel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

// Snapshot returns the current visibility and size
func (p *PanelState) Snapshot() (visible bool, size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible, p.size
}
