package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHChildrenFlattened(t *testing.T) {
	node := H("div", nil,
		"text",
		nil,
		false,
		true,
		42,
		[]*VNode{H("p", nil, "a"), nil},
		[]any{"b", []any{H("span", nil)}},
	)

	var kinds []string
	for _, c := range node.Children {
		if c.Kind == KindText {
			kinds = append(kinds, "text:"+c.Text)
		} else {
			kinds = append(kinds, c.Tag)
		}
	}
	want := []string{"text:text", "text:42", "p", "text:b", "span"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestHKeyExtracted(t *testing.T) {
	tests := []struct {
		name string
		key  any
		want string
	}{
		{"string", "a", "a"},
		{"int", 7, "7"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := H("li", Props{"key": tt.key, "data-foo": "bar"})
			if node.Key != tt.want {
				t.Errorf("Key = %q, want %q", node.Key, tt.want)
			}
			if _, ok := node.Props["key"]; ok {
				t.Error("key left in Props")
			}
			if node.Props["data-foo"] != "bar" {
				t.Errorf("data-foo = %v, want bar", node.Props["data-foo"])
			}
		})
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string verbatim", "hook  x", "hook  x"},
		{"toggle map", map[string]bool{"on": true, "off": false}, "on"},
		{"toggle map sorted", map[string]bool{"b": true, "a": true, "c": true}, "a b c"},
		{"any map", map[string]any{"x": 1, "y": 0, "z": "yes", "w": nil}, "x z"},
		{"sized zeros", map[string]any{"a": int32(0), "b": uint(0), "c": uint8(1)}, "c"},
		{"slice", []string{"a", "", "b"}, "a b"},
		{"nested", []any{"a", map[string]bool{"b": true}, nil}, "a b"},
		{"nil", nil, ""},
		{"false", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassName(tt.in); got != tt.want {
				t.Errorf("ClassName(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type toggle bool

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{0, false},
		{int32(0), false},
		{int8(3), true},
		{uint(0), false},
		{uint64(7), true},
		{float32(0), false},
		{0.5, true},
		{toggle(false), false},
		{toggle(true), true},
		{[]string{}, true},
		{struct{}{}, true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHClassOrderIndependent(t *testing.T) {
	for i := 0; i < 20; i++ {
		node := H("p", Props{"class": map[string]bool{"a": true, "b": false, "c": true, "d": false}})
		if got := node.Props["class"]; got != "a c" {
			t.Fatalf("class = %v, want %q", got, "a c")
		}
	}
}

func TestHEmptyClassDropped(t *testing.T) {
	node := H("p", Props{"class": map[string]bool{"off": false}})
	if _, ok := node.Props["class"]; ok {
		t.Errorf("class = %v, want no class prop", node.Props["class"])
	}
}

func TestStyleOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Style
	}{
		{"camel map", map[string]string{"fontSize": "20px"}, Style{"font-size": "20px"}},
		{"any map", map[string]any{"zIndex": 3, "color": nil}, Style{"z-index": "3"}},
		{"vendor", map[string]string{"WebkitTransition": "none"}, Style{"-webkit-transition": "none"}},
		{"custom property", map[string]string{"--mainColor": "red"}, Style{"--mainColor": "red"}},
		{"inline string", "color: red; margin-top : 1em;;", Style{"color": "red", "margin-top": "1em"}},
		{"nil", nil, Style{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, StyleOf(tt.in)); diff != "" {
				t.Errorf("StyleOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStyleString(t *testing.T) {
	s := Style{"font-size": "20px", "color": "red"}
	if got, want := s.String(), "color: red; font-size: 20px;"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := (Style{}).String(); got != "" {
		t.Errorf("empty String() = %q, want empty", got)
	}
}

func TestHHandlers(t *testing.T) {
	fn := func() {}
	node := H("button", Props{"onClick": fn, "onInput": nil, "title": "x"}, "b")

	if _, ok := node.Props["onclick"]; !ok {
		t.Error("onClick not stored as onclick")
	}
	if _, ok := node.Props["onInput"]; ok {
		t.Error("nil handler kept")
	}
	handlers := node.Handlers()
	if len(handlers) != 1 || handlers["click"] == nil {
		t.Errorf("Handlers() = %v, want click only", handlers)
	}
	if node.Props["title"] != "x" {
		t.Errorf("title = %v, want x", node.Props["title"])
	}
	if !node.IsInteractive() {
		t.Error("IsInteractive() = false, want true")
	}
}

func TestHFalseAttributesDropped(t *testing.T) {
	node := H("input", Props{"disabled": false, "title": nil, "required": true})
	if _, ok := node.Props["disabled"]; ok {
		t.Error("false attribute kept")
	}
	if _, ok := node.Props["title"]; ok {
		t.Error("nil attribute kept")
	}
	if node.Props["required"] != true {
		t.Errorf("required = %v, want true", node.Props["required"])
	}
}

func TestIsEventHandler(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"onclick", true},
		{"onClick", true},
		{"ONCLICK", true},
		{"on", false},
		{"one", true},
		{"class", false},
	}

	for _, tt := range tests {
		if got := IsEventHandler(tt.key); got != tt.want {
			t.Errorf("IsEventHandler(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestRangeAndIf(t *testing.T) {
	nodes := Range([]string{"a", "b", "c"}, func(s string, i int) *VNode {
		return If(i != 1, Text(s))
	})
	if len(nodes) != 2 || nodes[1].Text != "c" {
		t.Errorf("Range() = %v, want [a c]", nodes)
	}
}
