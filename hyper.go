package hyper

import (
	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/vdom"
)

// =============================================================================
// Runtime
// =============================================================================

// Runtime binds the builder and app factory to one document.
type Runtime struct {
	doc  *dom.Document
	opts []app.Option
}

// New returns a runtime for doc. A nil doc creates a fresh document. opts
// apply to every app the runtime mounts.
func New(doc *dom.Document, opts ...app.Option) *Runtime {
	if doc == nil {
		doc = dom.NewDocument()
	}
	return &Runtime{doc: doc, opts: opts}
}

// Document returns the runtime's document.
func (r *Runtime) Document() *dom.Document {
	return r.doc
}

// H builds an element VNode. See vdom.H.
func (r *Runtime) H(tag string, props Props, children ...any) *VNode {
	return vdom.H(tag, props, children...)
}

// App mounts cfg and renders its initial state. cfg.Node must belong to
// the runtime's document.
func (r *Runtime) App(cfg Config, opts ...Option) (*App, error) {
	all := make([]app.Option, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)
	return app.Mount(cfg, all...)
}

// Element returns the element with the given id, creating an empty
// <div id=id> at the end of <body> when there is none.
func (r *Runtime) Element(id string) *Node {
	if n := r.doc.GetElementByID(id); n != nil {
		return n
	}
	n := r.doc.CreateElement("div")
	n.SetAttribute("id", id)
	r.doc.Body().AppendChild(n)
	return n
}

// =============================================================================
// Views (re-export from pkg/vdom)
// =============================================================================

type (
	VNode = vdom.VNode
	Props = vdom.Props
	Style = vdom.Style
)

// Text creates a text node.
var Text = vdom.Text

// =============================================================================
// Actions and effects (re-export from pkg/app)
// =============================================================================

type (
	App           = app.App
	Config        = app.Config
	Option        = app.Option
	Action        = app.Action
	Func          = app.Func
	Bound         = app.Bound
	Next          = app.Next
	Transform     = app.Transform
	Effect        = app.Effect
	EffectFunc    = app.EffectFunc
	EffectCall    = app.EffectCall
	Cleanup       = app.Cleanup
	CleanupFunc   = app.CleanupFunc
	Dispatcher    = app.Dispatcher
	Subscriptions = app.Subscriptions
	Middleware    = app.Middleware
	DispatchFunc  = app.DispatchFunc
)

var (
	Set       = app.Set
	With      = app.With
	FromEvent = app.FromEvent
	Fx        = app.Fx
	When      = app.When

	WithLogger     = app.WithLogger
	WithMiddleware = app.WithMiddleware
	WithObserver   = app.WithObserver

	ErrNoView = app.ErrNoView
	ErrNoNode = app.ErrNoNode
)

// =============================================================================
// Document (re-export from pkg/dom)
// =============================================================================

type (
	Document = dom.Document
	Node     = dom.Node
	Event    = dom.Event
)
