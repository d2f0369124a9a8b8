package scene

import "sync"

// Panels tracks which marker details panel is open. At most one is open
// at a time across the whole view.
type Panels struct {
	mu   sync.Mutex
	open string
}

// Toggle opens the panel of id, closing any other, or closes it when it
// is already open. It returns the id of the open panel, or "".
func (p *Panels) Toggle(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open == id {
		p.open = ""
	} else {
		p.open = id
	}
	return p.open
}

// CloseAll closes the open panel and returns the id that was open.
func (p *Panels) CloseAll() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.open
	p.open = ""
	return prev
}

// Open returns the id of the open panel, or "".
func (p *Panels) Open() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
