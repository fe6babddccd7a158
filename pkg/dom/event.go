package dom

// Event is a DOM event dispatched through a Document.
type Event struct {
	Type string

	// Target is the node the event was dispatched to.
	Target *Node

	// CurrentTarget is the node whose listener is running.
	CurrentTarget *Node

	// Value carries the new value for input and change events.
	Value string

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// DispatchEvent delivers ev to target and then to each ancestor, invoking
// the listener bound to ev.Type on every node along the way. It returns the
// number of listeners invoked.
//
// The propagation path and its listeners are captured before any listener
// runs; listeners are invoked without the document lock held.
func (d *Document) DispatchEvent(target *Node, ev *Event) int {
	ev.Target = target

	type hop struct {
		node *Node
		l    Listener
	}
	d.mu.RLock()
	var path []hop
	for n := target; n != nil; n = n.parent {
		if l := n.listeners[ev.Type]; l != nil {
			path = append(path, hop{n, l})
		}
	}
	d.mu.RUnlock()

	invoked := 0
	for _, h := range path {
		ev.CurrentTarget = h.node
		h.l(ev)
		invoked++
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return invoked
}

// Click dispatches a click event to the node.
func (n *Node) Click() int {
	return n.doc.DispatchEvent(n, &Event{Type: "click"})
}

// Input sets the node's value and dispatches an input event carrying it.
func (n *Node) Input(value string) int {
	n.doc.mu.Lock()
	n.value = value
	n.doc.mu.Unlock()
	return n.doc.DispatchEvent(n, &Event{Type: "input", Value: value})
}
