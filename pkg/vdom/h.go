package vdom

import (
	"fmt"
	"strings"
)

// H builds an element VNode from a tag, a property mapping and children.
//
// Children are flattened: strings and numbers become text nodes, nested
// []*VNode and []any are spliced, and nil, false and true are dropped.
// Props are normalized:
//
//	key      extracted into VNode.Key, never an attribute
//	class    string verbatim, or a toggle map / list (see ClassName)
//	style    map or inline CSS string, stored as Style
//	on<Ev>   handler binding stored under "on<ev>"
//	other    literal attribute; nil and false values are dropped
func H(tag string, props Props, children ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props, len(props)),
	}

	for key, val := range props {
		switch {
		case key == "key":
			if val != nil {
				node.Key = keyString(val)
			}
		case key == "class" || key == "className":
			if class := ClassName(val); class != "" {
				node.Props["class"] = class
			}
		case key == "style":
			if style := StyleOf(val); len(style) > 0 {
				node.Props["style"] = style
			}
		case IsEventHandler(key):
			if val != nil {
				node.Props[strings.ToLower(key)] = val
			}
		default:
			if val == nil || val == false {
				continue
			}
			node.Props[key] = val
		}
	}

	node.Children = appendChildren(nil, children)
	return node
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

func appendChildren(dst []*VNode, children []any) []*VNode {
	for _, child := range children {
		dst = appendChild(dst, child)
	}
	return dst
}

func appendChild(dst []*VNode, child any) []*VNode {
	switch v := child.(type) {
	case nil, bool:
		return dst
	case *VNode:
		if v != nil {
			dst = append(dst, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				dst = append(dst, c)
			}
		}
	case []any:
		dst = appendChildren(dst, v)
	case string:
		dst = append(dst, Text(v))
	case fmt.Stringer:
		dst = append(dst, Text(v.String()))
	default:
		dst = append(dst, Text(fmt.Sprintf("%v", v)))
	}
	return dst
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// If returns node when condition is true, nil otherwise.
// Nil children are dropped by H.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}
