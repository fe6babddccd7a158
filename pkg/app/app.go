package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/hyper/pkg/dom"
	"github.com/vango-dev/hyper/pkg/vdom"
)

// Mount errors.
var (
	ErrNoView = errors.New("app: config has no view")
	ErrNoNode = errors.New("app: config has no mount node")
)

// hostKey is the expando under which a mount node records its host.
const hostKey = "hyper.app"

// host is the mount record of one element. Only the app it names may patch
// the element, and mu orders a remount against a render in progress.
type host struct {
	mu  sync.Mutex
	app *App
}

func hostOf(n *dom.Node) *host {
	if h, ok := n.Expando(hostKey).(*host); ok {
		return h
	}
	h := &host{}
	n.SetExpando(hostKey, h)
	return h
}

var appIDs atomic.Uint64

// Config describes an app.
type Config struct {
	// Init is the initial state. It may be a literal, a func() any called
	// at mount, or an Action (for example Set(state, effects...)).
	Init any

	// View renders a state. It must not return nil.
	View func(state any) *vdom.VNode

	// Node is the mount element. It becomes the root element of the view:
	// its attributes survive unless the view sets them.
	Node *dom.Node

	// Subscriptions derives the running subscriptions from each new state.
	Subscriptions Subscriptions

	// Middleware wraps every dispatched action, outermost first.
	Middleware []Middleware
}

// App is a mounted application: one state, one view tree, one set of
// subscription slots.
//
// Dispatch may be called from any goroutine. Actions are processed one at a
// time in arrival order; a caller that finds the app idle processes the
// queue itself, including everything dispatched while it does so.
type App struct {
	id            uint64
	logger        *slog.Logger
	view          func(state any) *vdom.VNode
	subscriptions Subscriptions
	observers     []Observer
	dispatch      DispatchFunc
	host          *host
	teardownOnce  sync.Once

	mu         sync.Mutex
	state      any
	node       *dom.Node
	queue      []item
	draining   bool
	stopping   bool
	removeNode bool
	done       chan struct{}

	// Owned by the goroutine draining the queue.
	vnode *vdom.VNode
	slots []slot

	active atomic.Int64
}

// item is one queued dispatch. from is set for dispatches made by a
// subscription and voids them once that subscription stops.
type item struct {
	action  Action
	payload any
	from    *activation
}

// Mount creates an app on cfg.Node and renders its initial state before
// returning. Mounting on a node that hosts another app stops that app and
// clears the node first. A render of the previous app still in progress on
// another goroutine finishes before the node is cleared and leaves it
// untouched afterwards.
func Mount(cfg Config, opts ...Option) (*App, error) {
	if cfg.View == nil {
		return nil, ErrNoView
	}
	if cfg.Node == nil {
		return nil, ErrNoNode
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		id:            appIDs.Add(1),
		view:          cfg.View,
		subscriptions: cfg.Subscriptions,
		observers:     o.observers,
		node:          cfg.Node,
		done:          make(chan struct{}),
	}
	a.logger = o.logger.With("component", "app", "app_id", a.id)
	a.dispatch = chain(a.process, append(o.middleware, cfg.Middleware...))

	a.host = hostOf(cfg.Node)
	a.host.mu.Lock()
	prev := a.host.app
	a.host.app = a
	cfg.Node.ReplaceChildren()
	a.host.mu.Unlock()
	if prev != nil {
		a.logger.Debug("replacing app on node", "previous", prev.id)
		prev.stop(false)
	}

	a.logger.Debug("mounted", "node", cfg.Node.HID)
	a.enqueue(item{action: initAction(cfg.Init)})
	return a, nil
}

func initAction(init any) Action {
	switch v := init.(type) {
	case Action:
		return v
	case func() any:
		return Func(func(_, _ any) any { return v() })
	default:
		return Set(v)
	}
}

// Dispatch queues action with payload. It is a no-op once the app is
// unmounted.
func (a *App) Dispatch(action Action, payload any) {
	a.enqueue(item{action: action, payload: payload})
}

// State returns the current state.
func (a *App) State() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Node returns the element the view is rendered into. It changes when the
// view's root tag changes.
func (a *App) Node() *dom.Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.node
}

// ActiveSubscriptions returns the number of running subscriptions.
func (a *App) ActiveSubscriptions() int {
	return int(a.active.Load())
}

// Done is closed once the app has been torn down.
func (a *App) Done() <-chan struct{} {
	return a.done
}

// Unmount cancels every running subscription and removes the root element
// from its parent. It is idempotent and safe on a nil App.
//
// Called while the app is idle, teardown completes before Unmount returns.
// Called while another goroutine is processing the queue, teardown happens
// as soon as the action in progress finishes; Done reports completion.
func (a *App) Unmount() {
	a.stop(true)
}

func (a *App) stop(remove bool) {
	if a == nil {
		return
	}
	a.mu.Lock()
	if a.stopping || a.done == nil {
		a.stopping = true
		a.mu.Unlock()
		return
	}
	a.stopping = true
	a.removeNode = remove
	a.queue = nil
	if a.draining {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	a.teardown()
}

func (a *App) teardown() {
	a.teardownOnce.Do(func() {
		defer close(a.done)
		a.stopSubscriptions()

		a.host.mu.Lock()
		if a.host.app == a {
			a.host.app = nil
		}
		a.host.mu.Unlock()
		if a.removeNode {
			a.Node().Remove()
		}
		a.logger.Debug("unmounted")
	})
}

func (a *App) stopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopping
}

func (a *App) enqueue(it item) {
	a.mu.Lock()
	if a.stopping {
		a.mu.Unlock()
		a.logger.Debug("dispatch after unmount dropped", "action", Kind(it.action))
		return
	}
	a.queue = append(a.queue, it)
	if a.draining {
		a.mu.Unlock()
		return
	}
	a.draining = true
	a.mu.Unlock()

	a.drain()
}

// drain processes queued items until the queue is empty. A panic from an
// action, view or effect discards the queue and propagates to the caller,
// after finishing a teardown that an Unmount during the drain deferred.
func (a *App) drain() {
	defer func() {
		if r := recover(); r != nil {
			a.mu.Lock()
			a.draining = false
			a.queue = nil
			teardown := a.stopping
			a.mu.Unlock()
			if teardown {
				a.teardown()
			}
			panic(r)
		}
	}()

	for {
		a.mu.Lock()
		if a.stopping || len(a.queue) == 0 {
			a.draining = false
			teardown := a.stopping
			a.mu.Unlock()
			if teardown {
				a.teardown()
			}
			return
		}
		it := a.queue[0]
		a.queue[0] = item{}
		a.queue = a.queue[1:]
		a.mu.Unlock()

		if it.from != nil && it.from.cancelled.Load() {
			continue
		}
		a.dispatch(it.action, it.payload)
	}
}

// process is the innermost DispatchFunc: resolve, swap state, render,
// refresh subscriptions, then run effects in order.
func (a *App) process(action Action, payload any) {
	state, effects, ok := resolve(action, payload, a.State)
	if !ok {
		return
	}

	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	if a.stopped() {
		return
	}
	a.render(state)
	a.refreshSubscriptions(state)

	for _, call := range effects {
		runEffect(call, a)
	}
}

func (a *App) render(state any) {
	next := a.view(state)
	if next == nil {
		panic("app: view returned nil")
	}

	patches, ok := a.patch(next)
	if !ok {
		return
	}

	for _, o := range a.observers {
		if o.OnRender != nil {
			o.OnRender(a, patches)
		}
	}
}

// patch applies next to the mount element. It reports false when another
// app has since been mounted there.
func (a *App) patch(next *vdom.VNode) ([]vdom.Patch, bool) {
	a.host.mu.Lock()
	defer a.host.mu.Unlock()
	if a.host.app != a {
		return nil, false
	}

	node := a.Node()
	root, patches, err := node.Document().Patch(node, a.vnode, next, a.bind)
	if err != nil {
		a.logger.Error("patch failed", "error", err)
	}
	a.vnode = next

	if root != node {
		node.SetExpando(hostKey, nil)
		root.SetExpando(hostKey, a.host)
		a.mu.Lock()
		a.node = root
		a.mu.Unlock()
	}
	return patches, true
}

// bind turns a handler prop into a listener that dispatches the action
// with the event as payload.
func (a *App) bind(handler any) dom.Listener {
	var action Action
	switch h := handler.(type) {
	case Action:
		action = h
	case func(state, payload any) any:
		action = Func(h)
	case dom.Listener:
		return h
	case func(*dom.Event):
		return h
	default:
		a.logger.Warn("unsupported handler", "type", fmt.Sprintf("%T", handler))
		return nil
	}
	return func(ev *dom.Event) {
		a.Dispatch(action, ev)
	}
}

func (a *App) notifySubscriptions() {
	n := a.activeSubscriptions()
	a.active.Store(int64(n))
	for _, o := range a.observers {
		if o.OnSubscriptions != nil {
			o.OnSubscriptions(a, n)
		}
	}
}
