package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ClassName normalizes a class prop to its attribute value.
//
// A string is used verbatim. A map selects the keys whose value is truthy,
// sorted so the result does not depend on map iteration order. Slices are
// normalized element by element and joined.
func ClassName(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case map[string]bool:
		names := make([]string, 0, len(c))
		for name, on := range c {
			if on && name != "" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return strings.Join(names, " ")
	case map[string]any:
		names := make([]string, 0, len(c))
		for name, on := range c {
			if Truthy(on) && name != "" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return strings.Join(names, " ")
	case []string:
		return joinNonEmpty(c)
	case []any:
		parts := make([]string, 0, len(c))
		for _, item := range c {
			parts = append(parts, ClassName(item))
		}
		return joinNonEmpty(parts)
	case bool:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func joinNonEmpty(parts []string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Truthy reports whether v counts as "on": non-nil, non-false, non-zero and
// non-empty.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return !rv.IsZero()
	}
	return true
}

// Style is a normalized inline style: kebab-case property name to value.
type Style map[string]string

// String serializes the style as an inline CSS declaration list with
// properties in sorted order.
func (s Style) String() string {
	if len(s) == 0 {
		return ""
	}
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(s[name])
		b.WriteString(";")
	}
	return b.String()
}

// StyleOf normalizes a style prop. Maps have their property names converted
// from camelCase to kebab-case; strings are parsed as inline CSS. Empty
// values are dropped.
func StyleOf(v any) Style {
	out := make(Style)
	switch st := v.(type) {
	case nil:
	case Style:
		for name, val := range st {
			out.set(name, val)
		}
	case map[string]string:
		for name, val := range st {
			out.set(name, val)
		}
	case map[string]any:
		for name, val := range st {
			if val == nil || val == false {
				continue
			}
			out.set(name, fmt.Sprintf("%v", val))
		}
	case string:
		for _, decl := range strings.Split(st, ";") {
			name, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			out.set(strings.TrimSpace(name), strings.TrimSpace(val))
		}
	}
	return out
}

func (s Style) set(name, val string) {
	if name == "" || val == "" {
		return
	}
	s[CSSName(name)] = val
}

// CSSName converts a camelCase style property to its CSS name
// ("fontSize" -> "font-size"). Custom properties ("--x") are kept as is.
func CSSName(name string) string {
	if strings.HasPrefix(name, "--") || strings.IndexFunc(name, isUpper) < 0 {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if isUpper(r) {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
