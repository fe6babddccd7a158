package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// Diff compares two VNode trees and returns the patches needed to transform prev into next.
//
// Matched nodes in next inherit the HID of their counterpart in prev. Nodes
// that only exist in next are left without a HID; the patcher assigns them
// before applying the patches.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, &patches)
	return patches
}

// diff recursively compares nodes and appends patches.
func diff(prev, next *VNode, patches *[]Patch) {
	// Both nil - nothing to do
	if prev == nil && next == nil {
		return
	}

	// Node added (handled by parent via InsertNode)
	if prev == nil {
		return
	}

	// Node removed
	if next == nil {
		*patches = append(*patches, Patch{
			Op:  PatchRemoveNode,
			HID: prev.HID,
		})
		return
	}

	// Different types or tags - replace
	if prev.Kind != next.Kind || prev.Tag != next.Tag {
		*patches = append(*patches, Patch{
			Op:   PatchReplaceNode,
			HID:  prev.HID,
			Node: next,
		})
		return
	}

	next.HID = prev.HID

	if prev.Kind == KindText {
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{
				Op:    PatchSetText,
				HID:   prev.HID,
				Value: next.Text,
			})
		}
		return
	}

	diffProps(prev, next, patches)
	diffChildren(prev, next, patches)
}

// diffProps compares and patches attributes, style, DOM properties and handlers.
func diffProps(prev, next *VNode, patches *[]Patch) {
	hid := prev.HID

	// Check for removed/changed props
	for key, prevVal := range prev.Props {
		nextVal, exists := next.Props[key]
		switch {
		case IsEventHandler(key):
			if !exists {
				*patches = append(*patches, Patch{Op: PatchRemoveListener, HID: hid, Key: EventName(key)})
			}
		case key == "style":
			if !exists {
				diffStyle(hid, styleProp(prevVal), nil, patches)
			}
		case isDOMProperty(key):
			if !exists {
				*patches = append(*patches, propertyPatch(hid, key, nil))
			}
		case !exists:
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, HID: hid, Key: key})
		case !propsEqual(prevVal, nextVal):
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				HID:   hid,
				Key:   key,
				Value: PropString(nextVal),
			})
		}
	}

	// Check for added props
	for key, nextVal := range next.Props {
		prevVal, existed := prev.Props[key]
		switch {
		case IsEventHandler(key):
			// Handler references are never compared; the slot is rebound
			// on every render so events reach the latest binding.
			*patches = append(*patches, Patch{
				Op:      PatchSetListener,
				HID:     hid,
				Key:     EventName(key),
				Handler: nextVal,
			})
		case key == "style":
			diffStyle(hid, styleProp(prevVal), styleProp(nextVal), patches)
		case isDOMProperty(key):
			if !existed || !propsEqual(prevVal, nextVal) {
				*patches = append(*patches, propertyPatch(hid, key, nextVal))
			}
		case !existed:
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				HID:   hid,
				Key:   key,
				Value: PropString(nextVal),
			})
		}
	}
}

// diffStyle emits per-property style patches.
func diffStyle(hid string, prev, next Style, patches *[]Patch) {
	for name := range prev {
		if _, ok := next[name]; !ok {
			*patches = append(*patches, Patch{Op: PatchRemoveStyle, HID: hid, Key: name})
		}
	}
	for name, val := range next {
		if old, ok := prev[name]; !ok || old != val {
			*patches = append(*patches, Patch{Op: PatchSetStyle, HID: hid, Key: name, Value: val})
		}
	}
}

func styleProp(v any) Style {
	switch s := v.(type) {
	case nil:
		return nil
	case Style:
		return s
	default:
		return StyleOf(v)
	}
}

// isDOMProperty reports whether the prop is a live DOM property rather
// than an attribute.
func isDOMProperty(key string) bool {
	switch key {
	case "value", "checked", "selected":
		return true
	}
	return false
}

func propertyPatch(hid, key string, v any) Patch {
	switch key {
	case "checked":
		return Patch{Op: PatchSetChecked, HID: hid, Value: strconv.FormatBool(Truthy(v))}
	case "selected":
		return Patch{Op: PatchSetSelected, HID: hid, Value: strconv.FormatBool(Truthy(v))}
	default:
		val := ""
		if v != nil {
			val = PropString(v)
		}
		return Patch{Op: PatchSetValue, HID: hid, Value: val}
	}
}

// diffChildren compares and patches child nodes.
func diffChildren(prev, next *VNode, patches *[]Patch) {
	if allKeyed(prev.Children) && allKeyed(next.Children) {
		diffKeyedChildren(prev, prev.Children, next.Children, patches)
	} else {
		diffUnkeyedChildren(prev, prev.Children, next.Children, patches)
	}
}

// diffUnkeyedChildren handles children without keys using positional matching.
func diffUnkeyedChildren(parent *VNode, prev, next []*VNode, patches *[]Patch) {
	maxLen := len(prev)
	if len(next) > maxLen {
		maxLen = len(next)
	}

	for i := 0; i < maxLen; i++ {
		var prevChild, nextChild *VNode

		if i < len(prev) {
			prevChild = prev[i]
		}
		if i < len(next) {
			nextChild = next[i]
		}

		if prevChild == nil && nextChild != nil {
			// Insert new child
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: parent.HID,
				Index:    i,
				Node:     nextChild,
			})
		} else {
			diff(prevChild, nextChild, patches)
		}
	}
}

// diffKeyedChildren matches children by key, preserving the identity of
// matched nodes.
//
// Stale keys are removed first. The remaining children are then walked in
// next order against a simulated current order, so every MoveNode and
// InsertNode index refers to the list as it stands once the preceding
// patches have been applied.
func diffKeyedChildren(parent *VNode, prev, next []*VNode, patches *[]Patch) {
	nextKeys := make(map[string]struct{}, len(next))
	for _, child := range next {
		nextKeys[child.Key] = struct{}{}
	}

	prevByKey := make(map[string]*VNode, len(prev))
	current := make([]string, 0, len(prev))
	for _, child := range prev {
		if _, keep := nextKeys[child.Key]; !keep {
			*patches = append(*patches, Patch{
				Op:  PatchRemoveNode,
				HID: child.HID,
			})
			continue
		}
		prevByKey[child.Key] = child
		current = append(current, child.Key)
	}

	for nextIdx, nextChild := range next {
		prevChild, exists := prevByKey[nextChild.Key]
		if !exists {
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: parent.HID,
				Index:    nextIdx,
				Node:     nextChild,
			})
			current = insertAt(current, nextIdx, nextChild.Key)
			continue
		}

		if pos := indexOf(current, nextChild.Key); pos != nextIdx {
			*patches = append(*patches, Patch{
				Op:       PatchMoveNode,
				HID:      prevChild.HID,
				ParentID: parent.HID,
				Index:    nextIdx,
			})
			current = insertAt(append(current[:pos], current[pos+1:]...), nextIdx, nextChild.Key)
		}

		diff(prevChild, nextChild, patches)
	}
}

// allKeyed reports whether every child carries a non-empty key and no key
// repeats. Anything else is reconciled positionally.
func allKeyed(children []*VNode) bool {
	seen := make(map[string]struct{}, len(children))
	for _, child := range children {
		if child == nil || child.Key == "" {
			return false
		}
		if _, dup := seen[child.Key]; dup {
			return false
		}
		seen[child.Key] = struct{}{}
	}
	return true
}

func indexOf(keys []string, key string) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return -1
}

func insertAt(keys []string, i int, key string) []string {
	if i >= len(keys) {
		return append(keys, key)
	}
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = key
	return keys
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// PropString converts a prop value to its attribute string.
func PropString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
