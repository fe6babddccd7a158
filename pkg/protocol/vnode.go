package protocol

import (
	"sort"

	"github.com/vango-dev/hyper/pkg/vdom"
)

// VNodeWire is the wire format for VNodes. Handlers never cross the wire:
// an element lists the events it listens to and the client reports them
// back as Event frames.
type VNodeWire struct {
	Kind      vdom.VKind        // Node type
	Tag       string            // Element tag name
	HID       string            // Hydration ID
	Attrs     map[string]string // Attributes, computed class and style included
	Listeners []string          // Event names with a bound handler, sorted
	Children  []*VNodeWire      // Child nodes
	Text      string            // Text node content
}

// VNodeToWire converts a vdom.VNode to wire format. Class and style
// values are serialized, DOM properties become attributes, handlers become
// listener names.
func VNodeToWire(node *vdom.VNode) *VNodeWire {
	if node == nil {
		return nil
	}

	w := &VNodeWire{
		Kind: node.Kind,
		Tag:  node.Tag,
		HID:  node.HID,
		Text: node.Text,
	}

	for key, val := range node.Props {
		switch {
		case vdom.IsEventHandler(key):
			w.Listeners = append(w.Listeners, vdom.EventName(key))
			continue
		case key == "checked" || key == "selected":
			if !vdom.Truthy(val) {
				continue
			}
			val = "true"
		case key == "style":
			val = vdom.StyleOf(val).String()
		case key == "class":
			val = vdom.ClassName(val)
		}
		s := vdom.PropString(val)
		if s == "" && (key == "class" || key == "style") {
			continue
		}
		if w.Attrs == nil {
			w.Attrs = make(map[string]string, len(node.Props))
		}
		w.Attrs[key] = s
	}
	sort.Strings(w.Listeners)

	if len(node.Children) > 0 {
		w.Children = make([]*VNodeWire, 0, len(node.Children))
		for _, child := range node.Children {
			if child != nil {
				w.Children = append(w.Children, VNodeToWire(child))
			}
		}
	}
	return w
}

// ToVNode converts a VNodeWire back to a vdom.VNode. Each listener becomes
// an "on<event>" prop whose handler is the event name, for a dom.Binder to
// turn into a remote sender.
func (w *VNodeWire) ToVNode() *vdom.VNode {
	if w == nil {
		return nil
	}

	node := &vdom.VNode{
		Kind: w.Kind,
		Tag:  w.Tag,
		HID:  w.HID,
		Text: w.Text,
	}

	if n := len(w.Attrs) + len(w.Listeners); n > 0 {
		node.Props = make(vdom.Props, n)
		for k, v := range w.Attrs {
			node.Props[k] = v
		}
		for _, ev := range w.Listeners {
			node.Props["on"+ev] = ev
		}
	}

	if len(w.Children) > 0 {
		node.Children = make([]*vdom.VNode, len(w.Children))
		for i, child := range w.Children {
			node.Children[i] = child.ToVNode()
		}
	}
	return node
}

// encodeVNode writes node. Attributes are written in key order so equal
// trees encode to equal bytes.
func encodeVNode(e *Encoder, node *VNodeWire) {
	if node == nil {
		e.WriteByte(0xFF) // Null marker
		return
	}

	e.WriteByte(byte(node.Kind))
	e.WriteString(node.HID)

	switch node.Kind {
	case vdom.KindElement:
		e.WriteString(node.Tag)

		keys := make([]string, 0, len(node.Attrs))
		for k := range node.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.WriteUvarint(uint64(len(keys)))
		for _, k := range keys {
			e.WriteString(k)
			e.WriteString(node.Attrs[k])
		}

		e.WriteUvarint(uint64(len(node.Listeners)))
		for _, l := range node.Listeners {
			e.WriteString(l)
		}

		e.WriteUvarint(uint64(len(node.Children)))
		for _, child := range node.Children {
			encodeVNode(e, child)
		}

	case vdom.KindText:
		e.WriteString(node.Text)
	}
}

func decodeVNode(d *Decoder, depth int) (*VNodeWire, error) {
	if depth > MaxVNodeDepth {
		return nil, ErrMaxDepthExceeded
	}

	kindByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kindByte == 0xFF {
		return nil, nil
	}

	node := &VNodeWire{Kind: vdom.VKind(kindByte)}
	if node.HID, err = d.ReadString(); err != nil {
		return nil, err
	}

	switch node.Kind {
	case vdom.KindElement:
		if node.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}

		attrCount, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		if attrCount > 0 {
			node.Attrs = make(map[string]string, attrCount)
			for i := 0; i < attrCount; i++ {
				key, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				value, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				node.Attrs[key] = value
			}
		}

		listenerCount, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		for i := 0; i < listenerCount; i++ {
			l, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			node.Listeners = append(node.Listeners, l)
		}

		childCount, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		if childCount > 0 {
			node.Children = make([]*VNodeWire, childCount)
			for i := range node.Children {
				child, err := decodeVNode(d, depth+1)
				if err != nil {
					return nil, err
				}
				if child == nil {
					return nil, ErrInvalidNodeKind
				}
				node.Children[i] = child
			}
		}

	case vdom.KindText:
		if node.Text, err = d.ReadString(); err != nil {
			return nil, err
		}

	default:
		return nil, ErrInvalidNodeKind
	}
	return node, nil
}
