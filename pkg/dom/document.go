package dom

import (
	"errors"
	"sync"

	"github.com/vango-dev/hyper/pkg/vdom"
)

// ErrNodeNotFound is returned when a patch addresses a HID the document
// does not know.
var ErrNodeNotFound = errors.New("dom: node not found")

// Document is an in-memory DOM: a body element, the nodes created for it,
// and an index from HID to node.
//
// A single RWMutex guards the whole tree. Patches are applied under the
// write lock; listeners always run without it.
type Document struct {
	mu    sync.RWMutex
	gen   *vdom.HIDGenerator
	nodes map[string]*Node
	body  *Node
}

// NewDocument creates an empty document with a <body> element.
func NewDocument() *Document {
	d := &Document{
		gen:   vdom.NewHIDGenerator(),
		nodes: make(map[string]*Node),
	}
	d.body = d.newNode(ElementNode, "body", "")
	return d
}

// Body returns the body element.
func (d *Document) Body() *Node { return d.body }

// Generator returns the HID generator shared by every node of the document.
func (d *Document) Generator() *vdom.HIDGenerator { return d.gen }

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.newNode(ElementNode, tag, "")
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.newNode(TextNode, "", data)
}

func (d *Document) newNode(typ NodeType, tag, data string) *Node {
	n := &Node{
		doc:  d,
		Type: typ,
		Tag:  tag,
		HID:  d.gen.Next(),
		data: data,
	}
	d.nodes[n.HID] = n
	return n
}

// ByHID returns the node with the given HID, or nil.
func (d *Document) ByHID(hid string) *Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.nodes[hid]
}

// GetElementByID returns the first attached element whose id attribute
// matches, in document order.
func (d *Document) GetElementByID(id string) *Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return findFirst(d.body, func(n *Node) bool {
		return n.Type == ElementNode && n.attrs["id"] == id
	})
}

// Contains reports whether n is attached to the document body.
func (d *Document) Contains(n *Node) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return n != nil && d.body.contains(n)
}

// Find returns every attached node matching fn, in document order.
func (d *Document) Find(fn func(n *Node) bool) []*Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Node
	walk(d.body, func(n *Node) bool {
		if fn(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// index registers n and its subtree. The caller must hold the write lock.
func (d *Document) index(n *Node) {
	walk(n, func(c *Node) bool {
		d.nodes[c.HID] = c
		return true
	})
}

// unindex forgets n and its subtree. The caller must hold the write lock.
func (d *Document) unindex(n *Node) {
	walk(n, func(c *Node) bool {
		if d.nodes[c.HID] == c {
			delete(d.nodes, c.HID)
		}
		return true
	})
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func findFirst(n *Node, fn func(*Node) bool) *Node {
	var found *Node
	walk(n, func(c *Node) bool {
		if fn(c) {
			found = c
			return false
		}
		return true
	})
	return found
}
