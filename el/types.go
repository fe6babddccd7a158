package el

import "github.com/vango-dev/hyper/pkg/vdom"

// Type aliases for the VDOM primitives used by the DSL.
type (
	VNode = vdom.VNode
	Props = vdom.Props
	Style = vdom.Style
)

// Element builds an element with the given tag from mixed props and
// children.
func Element(tag string, args ...any) *VNode {
	var props Props
	children := make([]any, 0, len(args))
	for _, arg := range args {
		p, ok := arg.(Props)
		if !ok {
			children = append(children, arg)
			continue
		}
		if props == nil {
			props = make(Props, len(p))
		}
		for k, v := range p {
			props[k] = v
		}
	}
	return vdom.H(tag, props, children...)
}

// Text creates a text node.
func Text(content string) *VNode {
	return vdom.Text(content)
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return vdom.Textf(format, args...)
}

// If returns node when condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	return vdom.If(condition, node)
}

// Range maps items to nodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	return vdom.Range(items, fn)
}
