package demo

import (
	"slices"
	"strconv"
	"strings"

	. "github.com/vango-dev/hyper/el"
	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/vdom"
)

// Item is one todo entry. ID keys its list element.
type Item struct {
	ID   int
	Text string
}

// Todos is the todo demo's state.
type Todos struct {
	Items  []Item
	Draft  string
	NextID int
}

func (t Todos) with(items []Item) Todos {
	t.Items = items
	return t
}

var (
	draftValue = app.FromEvent(func(ev *dom.Event) any {
		if ev == nil {
			return ""
		}
		return ev.Value
	})

	setDraft = app.Func(func(s, v any) any {
		t := s.(Todos)
		t.Draft = v.(string)
		return t
	})

	addItem = app.Func(func(s, _ any) any {
		t := s.(Todos)
		text := strings.TrimSpace(t.Draft)
		if text == "" {
			return t
		}
		t.NextID++
		items := append(slices.Clone(t.Items), Item{ID: t.NextID, Text: text})
		t = t.with(items)
		t.Draft = ""
		return t
	})

	removeItem = app.Func(func(s, id any) any {
		t := s.(Todos)
		return t.with(slices.DeleteFunc(slices.Clone(t.Items), func(it Item) bool {
			return it.ID == id.(int)
		}))
	})

	reverseItems = app.Func(func(s, _ any) any {
		t := s.(Todos)
		items := slices.Clone(t.Items)
		slices.Reverse(items)
		return t.with(items)
	})
)

// Todo is a todo list rendered with keyed children, so reordering moves
// the existing elements.
func Todo() app.Config {
	return app.Config{
		Init: Todos{},
		View: func(s any) *vdom.VNode {
			t := s.(Todos)
			return Main(
				H1("Todo"),
				Input(ID("draft"), Value(t.Draft), OnInput(app.With(setDraft, draftValue))),
				Button(ID("add"), OnClick(addItem), "add"),
				Button(ID("reverse"), OnClick(reverseItems), "reverse"),
				Ul(ID("items"), Range(t.Items, func(it Item, _ int) *vdom.VNode {
					return Li(Key(it.ID), ID("item-"+strconv.Itoa(it.ID)),
						Span(it.Text),
						Button(Class("remove"), OnClick(app.With(removeItem, it.ID)), "x"),
					)
				})),
				P(ID("remaining"), len(t.Items), " items"),
			)
		},
	}
}
