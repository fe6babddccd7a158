package dom

import (
	"fmt"
	"strconv"

	"github.com/vango-dev/hyper/pkg/vdom"
)

// Binder converts a handler binding from a VNode into a Listener. A nil
// result leaves the slot empty.
type Binder func(handler any) Listener

// bindDefault accepts handlers that already are listeners.
func bindDefault(handler any) Listener {
	switch h := handler.(type) {
	case Listener:
		return h
	case func(*Event):
		return h
	case func():
		return func(*Event) { h() }
	}
	return nil
}

// Patch reconciles node, last rendered as old, against next and returns the
// node that now represents next. A nil old recycles the existing node, so
// its children are patched in place and attributes the view never sets are
// kept.
//
// Nodes new to the tree get HIDs from the document generator. The applied
// patches are returned for observers (wire encoders, metrics).
func (d *Document) Patch(node *Node, old, next *vdom.VNode, bind Binder) (*Node, []vdom.Patch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.index(node)
	if old == nil {
		old = recycle(node)
	}
	patches := vdom.Diff(old, next)
	vdom.AssignHIDs(next, d.gen)

	if err := d.apply(patches, bind); err != nil {
		return node, patches, err
	}
	if n := d.nodes[next.HID]; n != nil {
		return n, patches, nil
	}
	return node, patches, fmt.Errorf("dom: patched root %s: %w", next.HID, ErrNodeNotFound)
}

// Apply applies patches in order. Patches that create nodes must carry
// VNodes with HIDs assigned.
func (d *Document) Apply(patches []vdom.Patch, bind Binder) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.apply(patches, bind)
}

// Recycle builds a VNode describing an existing node: tag, HIDs and
// children, without props.
func (d *Document) Recycle(n *Node) *vdom.VNode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return recycle(n)
}

// Snapshot builds a VNode describing n as it is now: attributes, computed
// class and style, DOM properties and listener slots. Listener props carry
// the event name as their handler.
func (d *Document) Snapshot(n *Node) *vdom.VNode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshot(n)
}

func snapshot(n *Node) *vdom.VNode {
	if n.Type == TextNode {
		return &vdom.VNode{Kind: vdom.KindText, Text: n.data, HID: n.HID}
	}
	v := &vdom.VNode{Kind: vdom.KindElement, Tag: n.Tag, HID: n.HID, Props: vdom.Props{}}
	for _, name := range n.attrNames() {
		v.Props[name], _ = n.lookupAttr(name)
	}
	if n.value != "" {
		v.Props["value"] = n.value
	}
	if n.checked {
		v.Props["checked"] = true
	}
	if n.selected {
		v.Props["selected"] = true
	}
	for event := range n.listeners {
		v.Props["on"+event] = event
	}
	for _, c := range n.children {
		v.Children = append(v.Children, snapshot(c))
	}
	return v
}

func recycle(n *Node) *vdom.VNode {
	if n.Type == TextNode {
		return &vdom.VNode{Kind: vdom.KindText, Text: n.data, HID: n.HID}
	}
	v := &vdom.VNode{Kind: vdom.KindElement, Tag: n.Tag, HID: n.HID}
	for _, c := range n.children {
		v.Children = append(v.Children, recycle(c))
	}
	return v
}

func (d *Document) apply(patches []vdom.Patch, bind Binder) error {
	if bind == nil {
		bind = bindDefault
	}
	for i := range patches {
		if err := d.applyOne(&patches[i], bind); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) applyOne(p *vdom.Patch, bind Binder) error {
	if p.Op == vdom.PatchInsertNode {
		parent := d.nodes[p.ParentID]
		if parent == nil {
			return d.notFound(p, p.ParentID)
		}
		parent.insertAt(p.Index, d.build(p.Node, bind))
		return nil
	}

	n := d.nodes[p.HID]
	if n == nil {
		return d.notFound(p, p.HID)
	}

	switch p.Op {
	case vdom.PatchSetText:
		n.data = p.Value
	case vdom.PatchSetAttr:
		n.setAttr(p.Key, p.Value)
	case vdom.PatchRemoveAttr:
		n.removeAttr(p.Key)
	case vdom.PatchRemoveNode:
		if n.parent != nil {
			n.parent.detach(n)
		}
	case vdom.PatchMoveNode:
		parent := d.nodes[p.ParentID]
		if parent == nil {
			return d.notFound(p, p.ParentID)
		}
		parent.insertAt(p.Index, n)
	case vdom.PatchReplaceNode:
		repl := d.build(p.Node, bind)
		if parent := n.parent; parent != nil {
			for i, c := range parent.children {
				if c == n {
					parent.children[i] = repl
					break
				}
			}
			repl.parent = parent
			n.parent = nil
		}
		d.unindex(n)
		d.index(repl)
	case vdom.PatchSetValue:
		n.value = p.Value
	case vdom.PatchSetChecked:
		n.checked, _ = strconv.ParseBool(p.Value)
	case vdom.PatchSetSelected:
		n.selected, _ = strconv.ParseBool(p.Value)
	case vdom.PatchSetStyle:
		if n.style == nil {
			n.style = make(vdom.Style)
		}
		n.style[p.Key] = p.Value
	case vdom.PatchRemoveStyle:
		delete(n.style, p.Key)
	case vdom.PatchSetListener:
		n.setListener(p.Key, bind(p.Handler))
	case vdom.PatchRemoveListener:
		n.setListener(p.Key, nil)
	default:
		return fmt.Errorf("dom: unsupported patch op %s", p.Op)
	}
	return nil
}

func (d *Document) notFound(p *vdom.Patch, hid string) error {
	return fmt.Errorf("dom: %s %s: %w", p.Op, hid, ErrNodeNotFound)
}

// build creates the node tree for v. Nodes keep the HID of their VNode; a
// VNode without one gets a fresh HID.
func (d *Document) build(v *vdom.VNode, bind Binder) *Node {
	n := &Node{doc: d, HID: v.HID}
	if n.HID == "" {
		n.HID = d.gen.Next()
		v.HID = n.HID
	}

	if v.Kind == vdom.KindText {
		n.Type = TextNode
		n.data = v.Text
		d.nodes[n.HID] = n
		return n
	}

	n.Type = ElementNode
	n.Tag = v.Tag
	for key, val := range v.Props {
		switch {
		case vdom.IsEventHandler(key):
			n.setListener(vdom.EventName(key), bind(val))
		case key == "style":
			n.style = vdom.StyleOf(val)
		case key == "value":
			n.value = vdom.PropString(val)
		case key == "checked":
			n.checked = vdom.Truthy(val)
		case key == "selected":
			n.selected = vdom.Truthy(val)
		default:
			n.setAttr(key, vdom.PropString(val))
		}
	}
	d.nodes[n.HID] = n

	n.children = make([]*Node, 0, len(v.Children))
	for _, c := range v.Children {
		child := d.build(c, bind)
		child.parent = n
		n.children = append(n.children, child)
	}
	return n
}
