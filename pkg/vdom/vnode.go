package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
//
// A VNode is built fresh on every view call and is not modified after H
// returns, except for HID which the differ carries over from the previous
// tree.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes, class, style and handler bindings
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText
	HID      string   // Hydration ID (assigned during patch)
}

// Props holds attributes and event handlers.
//
// After normalization by H, "class" is always a string, "style" is always a
// Style, and handler entries are stored under their lower-cased name
// ("onclick").
type Props map[string]any

// Handlers returns the handler bindings of the node keyed by event name
// ("click" for "onclick").
func (v *VNode) Handlers() map[string]any {
	if v == nil || v.Kind != KindElement {
		return nil
	}
	var out map[string]any
	for key, val := range v.Props {
		if !IsEventHandler(key) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[EventName(key)] = val
	}
	return out
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	return len(v.Handlers()) > 0
}

// IsEventHandler returns true if the key is an event handler (starts with "on").
// SECURITY: Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func IsEventHandler(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName returns the DOM event name for a handler prop ("onClick" -> "click").
func EventName(key string) string {
	return strings.ToLower(key[2:])
}
