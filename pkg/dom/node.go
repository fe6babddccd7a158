package dom

import (
	"sort"
	"strings"

	"github.com/vango-dev/hyper/pkg/vdom"
)

// NodeType distinguishes element and text nodes.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
)

// Listener handles a DOM event delivered to a node.
type Listener func(ev *Event)

// Node is an element or text node owned by a Document.
//
// All accessors lock the owning document, so nodes may be read while an app
// renders from another goroutine.
type Node struct {
	doc *Document

	Type NodeType
	Tag  string
	HID  string

	data      string
	attrs     map[string]string
	className string
	style     vdom.Style
	value     string
	checked   bool
	selected  bool
	listeners map[string]Listener
	expandos  map[string]any

	parent   *Node
	children []*Node
}

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.parent
}

// ChildNodes returns a snapshot of the node's children, text nodes included.
func (n *Node) ChildNodes() []*Node {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return append([]*Node(nil), n.children...)
}

// Children returns a snapshot of the node's element children.
func (n *Node) Children() []*Node {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	var out []*Node
	for _, c := range n.children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Data returns the content of a text node.
func (n *Node) Data() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.data
}

// TextContent returns the concatenated text of the node and its descendants.
func (n *Node) TextContent() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	var b strings.Builder
	n.textContent(&b)
	return b.String()
}

func (n *Node) textContent(b *strings.Builder) {
	if n.Type == TextNode {
		b.WriteString(n.data)
		return
	}
	for _, c := range n.children {
		c.textContent(b)
	}
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.GetAttribute("id")
}

// GetAttribute returns the attribute value, or "" when absent. "class" and
// "style" return their computed serialization.
func (n *Node) GetAttribute(name string) string {
	v, _ := n.LookupAttribute(name)
	return v
}

// LookupAttribute returns the attribute value and whether it is present.
func (n *Node) LookupAttribute(name string) (string, bool) {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.lookupAttr(name)
}

func (n *Node) lookupAttr(name string) (string, bool) {
	switch name {
	case "class":
		return n.className, n.className != ""
	case "style":
		s := n.style.String()
		return s, s != ""
	}
	v, ok := n.attrs[name]
	return v, ok
}

// AttributeNames returns the names of all attributes present on the node,
// sorted.
func (n *Node) AttributeNames() []string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.attrNames()
}

func (n *Node) attrNames() []string {
	names := make([]string, 0, len(n.attrs)+2)
	for name := range n.attrs {
		names = append(names, name)
	}
	if n.className != "" {
		names = append(names, "class")
	}
	if len(n.style) > 0 {
		names = append(names, "style")
	}
	sort.Strings(names)
	return names
}

// SetAttribute sets a plain attribute. "class" and "style" are routed to the
// class name and inline style.
func (n *Node) SetAttribute(name, value string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.setAttr(name, value)
}

func (n *Node) setAttr(name, value string) {
	switch name {
	case "class":
		n.className = value
	case "style":
		n.style = vdom.StyleOf(value)
	default:
		if n.attrs == nil {
			n.attrs = make(map[string]string)
		}
		n.attrs[name] = value
	}
}

// RemoveAttribute removes an attribute.
func (n *Node) RemoveAttribute(name string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.removeAttr(name)
}

func (n *Node) removeAttr(name string) {
	switch name {
	case "class":
		n.className = ""
	case "style":
		n.style = nil
	default:
		delete(n.attrs, name)
	}
}

// ClassList returns the individual class names.
func (n *Node) ClassList() []string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return strings.Fields(n.className)
}

// HasClass reports whether the node carries the class name.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.ClassList() {
		if c == name {
			return true
		}
	}
	return false
}

// Style returns the value of an inline style property by CSS name
// ("font-size") or camelCase name ("fontSize").
func (n *Node) Style(name string) string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.style[vdom.CSSName(name)]
}

// Value returns the live value property.
func (n *Node) Value() string {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.value
}

// Checked returns the live checked property.
func (n *Node) Checked() bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.checked
}

// Selected returns the live selected property.
func (n *Node) Selected() bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.selected
}

// HasListener reports whether a listener is bound for the event.
func (n *Node) HasListener(event string) bool {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.listeners[event] != nil
}

// SetListener binds l to the event slot, replacing any previous listener.
// A nil listener clears the slot.
func (n *Node) SetListener(event string, l Listener) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.setListener(event, l)
}

func (n *Node) setListener(event string, l Listener) {
	if l == nil {
		delete(n.listeners, event)
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string]Listener)
	}
	n.listeners[event] = l
}

// Expando returns a value previously stored on the node with SetExpando.
func (n *Node) Expando(key string) any {
	n.doc.mu.RLock()
	defer n.doc.mu.RUnlock()
	return n.expandos[key]
}

// SetExpando stores an arbitrary value on the node. It is never rendered.
// A nil value deletes the key.
func (n *Node) SetExpando(key string, v any) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if v == nil {
		delete(n.expandos, key)
		return
	}
	if n.expandos == nil {
		n.expandos = make(map[string]any)
	}
	n.expandos[key] = v
}

// AppendChild appends child to the node, detaching it from its previous
// parent first.
func (n *Node) AppendChild(child *Node) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.insertAt(len(n.children), child)
}

// RemoveChild detaches child from the node. It is a no-op when child is not
// a child of n.
func (n *Node) RemoveChild(child *Node) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if child.parent == n {
		n.detach(child)
	}
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if n.parent != nil {
		n.parent.detach(n)
	}
}

// ReplaceChildren removes every child of the node.
func (n *Node) ReplaceChildren() {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	for len(n.children) > 0 {
		n.detach(n.children[0])
	}
}

// insertAt places child at index i, clamped to the child count. The caller
// must hold the write lock.
func (n *Node) insertAt(i int, child *Node) {
	if child.parent != nil {
		child.parent.removeFromChildren(child)
	}
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
	n.doc.index(child)
}

func (n *Node) detach(child *Node) {
	n.removeFromChildren(child)
	n.doc.unindex(child)
}

func (n *Node) removeFromChildren(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

// contains reports whether n is other or one of its ancestors.
func (n *Node) contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}
