// Package view holds the renderers that project cart state onto display elements.
//
// Every renderer is idempotent and total: rendering the same snapshot twice gives
// the same output, and items missing from a snapshot render as quantity 0.
// Elements are bound to item ids once, when the view is built, and looked up by key
// on every render.
package view

import "sync"

// Element is a render target: some text that may be shown or hidden.
// A nil *Element is a valid target that ignores writes and reads as hidden.
type Element struct {
	mu      sync.RWMutex
	text    string
	visible bool
}

// NewElement returns a visible element with the given initial text.
func NewElement(text string) *Element {
	return &Element{text: text, visible: true}
}

func (e *Element) SetText(text string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

func (e *Element) SetVisible(visible bool) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.visible = visible
	e.mu.Unlock()
}

func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

func (e *Element) Visible() bool {
	if e == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.visible
}

func (e *Element) String() string {
	if !e.Visible() {
		return "hidden"
	}
	return e.Text()
}
