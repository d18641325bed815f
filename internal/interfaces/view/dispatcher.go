package view

import (
	"context"
	"sync"
)

// Dispatcher is an in-process EventPort. Emitted events are handled one at
// a time, in arrival order, so every read-mutate-persist-render cycle
// finishes before the next one starts.
type Dispatcher struct {
	mu sync.Mutex

	onRemove         RemoveHandler
	onQuantityChange QuantityChangeHandler
	onBulkUpdate     BulkUpdateHandler
	onClear          ClearHandler
	onAddRequest     AddRequestHandler
}

type dispatchKey struct{}

// InDispatch reports whether ctx belongs to a handler or function run by a
// Dispatcher. Such code already holds the dispatcher and must not wait on it.
func InDispatch(ctx context.Context) bool {
	in, _ := ctx.Value(dispatchKey{}).(bool)
	return in
}

func withinDispatch(ctx context.Context) context.Context {
	return context.WithValue(ctx, dispatchKey{}, true)
}

// NewDispatcher creates a Dispatcher with no handlers bound
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// OnRemove binds the handler for a row's remove button. Binding again
// replaces the previous handler.
func (d *Dispatcher) OnRemove(h RemoveHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onRemove = h
}

// OnQuantityChange binds the handler for edits of a row's quantity field
func (d *Dispatcher) OnQuantityChange(h QuantityChangeHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onQuantityChange = h
}

// OnBulkUpdate binds the handler for the "update cart" action
func (d *Dispatcher) OnBulkUpdate(h BulkUpdateHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onBulkUpdate = h
}

// OnClear binds the handler for the "clear cart" action
func (d *Dispatcher) OnClear(h ClearHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClear = h
}

// OnAddRequest binds the handler for add-to-cart triggers
func (d *Dispatcher) OnAddRequest(h AddRequestHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onAddRequest = h
}

// EmitRemove delivers a remove click for the row with the given id
func (d *Dispatcher) EmitRemove(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.onRemove == nil {
		return ErrNoHandler
	}
	return d.onRemove(withinDispatch(ctx), id)
}

// EmitQuantityChange delivers an edit of one quantity field
func (d *Dispatcher) EmitQuantityChange(ctx context.Context, id, raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.onQuantityChange == nil {
		return ErrNoHandler
	}
	return d.onQuantityChange(withinDispatch(ctx), id, raw)
}

// EmitBulkUpdate delivers the "update cart" action with every visible
// quantity field keyed by item id
func (d *Dispatcher) EmitBulkUpdate(ctx context.Context, raw map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.onBulkUpdate == nil {
		return ErrNoHandler
	}
	return d.onBulkUpdate(withinDispatch(ctx), raw)
}

// EmitClear delivers the "clear cart" action
func (d *Dispatcher) EmitClear(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.onClear == nil {
		return ErrNoHandler
	}
	return d.onClear(withinDispatch(ctx))
}

// EmitAddRequest delivers an add-to-cart trigger with its product attributes
func (d *Dispatcher) EmitAddRequest(ctx context.Context, attrs ProductAttributes) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.onAddRequest == nil {
		return ErrNoHandler
	}
	return d.onAddRequest(withinDispatch(ctx), attrs)
}

// Run executes fn in the same serial order as emitted events. It is used for
// work that is not a UI event, such as the initial page render or a refresh
// after the cart changed elsewhere.
func (d *Dispatcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(withinDispatch(ctx))
}

var _ EventPort = (*Dispatcher)(nil)
