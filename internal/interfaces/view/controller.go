package view

import (
	"context"

	"github.com/storefront/cart/internal/domain/cart"
	"github.com/storefront/cart/internal/domain/shared"
	"go.uber.org/zap"
)

// CartStore is the part of the application cart store the view drives
type CartStore interface {
	GetCart(ctx context.Context) *cart.Cart
	AddToCart(ctx context.Context, product cart.Item) (*cart.Cart, error)
	RemoveFromCart(ctx context.Context, id string) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*cart.Cart, error)
	BulkUpdateQuantities(ctx context.Context, updates map[string]int) (*cart.Cart, error)
	ClearCart(ctx context.Context) error
}

// Runner executes work in the same serial order as UI events
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Controller reacts to UI events by calling the store and rendering the
// result. It is also an event handler: cart changes made through the store
// by anything other than the controller, such as a product listing adding
// items, refresh the surface.
type Controller struct {
	store     CartStore
	projector *Projector
	surface   Surface
	logger    *zap.Logger
	runner    Runner
}

type ownEventKey struct{}

// withOwnEvents marks ctx so that events raised by our own store calls are
// not rendered a second time
func withOwnEvents(ctx context.Context) context.Context {
	return context.WithValue(ctx, ownEventKey{}, true)
}

func isOwnEvent(ctx context.Context) bool {
	own, _ := ctx.Value(ownEventKey{}).(bool)
	return own
}

// ControllerOption is a functional option for configuring the Controller
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger for the Controller
func WithControllerLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller rendering into surface
func NewController(store CartStore, projector *Projector, surface Surface, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:     store,
		projector: projector,
		surface:   surface,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.projector == nil {
		c.projector = NewProjector(nil)
	}
	return c
}

// Bind registers the controller's handlers on port. When port is also a
// Runner, refreshes triggered by bus events are serialised through it.
// Bind is called once, before events flow.
func (c *Controller) Bind(port EventPort) {
	if r, ok := port.(Runner); ok {
		c.runner = r
	}
	port.OnRemove(c.handleRemove)
	port.OnQuantityChange(c.handleQuantityChange)
	port.OnBulkUpdate(c.handleBulkUpdate)
	port.OnClear(c.handleClear)
	port.OnAddRequest(c.handleAddRequest)
}

// Refresh renders the stored cart
func (c *Controller) Refresh(ctx context.Context) error {
	c.render(c.store.GetCart(ctx))
	return nil
}

func (c *Controller) handleRemove(ctx context.Context, id string) error {
	ctx = withOwnEvents(ctx)
	current, err := c.store.RemoveFromCart(ctx, id)
	c.render(current)
	return c.report(err)
}

// handleQuantityChange runs on every keystroke, so only the edited row and
// the totals are redrawn
func (c *Controller) handleQuantityChange(ctx context.Context, id, raw string) error {
	ctx = withOwnEvents(ctx)
	current, err := c.store.UpdateQuantity(ctx, id, ParseQuantity(raw))
	row, ok := c.projector.Row(current, id)
	if ok {
		c.surface.PatchRow(row, c.projector.Totals(current))
	} else {
		c.render(current)
	}
	return c.report(err)
}

func (c *Controller) handleBulkUpdate(ctx context.Context, raw map[string]string) error {
	ctx = withOwnEvents(ctx)
	current, err := c.store.BulkUpdateQuantities(ctx, ParseQuantities(raw))
	c.render(current)
	return c.report(err)
}

func (c *Controller) handleClear(ctx context.Context) error {
	ctx = withOwnEvents(ctx)
	if err := c.store.ClearCart(ctx); err != nil {
		c.render(c.store.GetCart(ctx))
		return c.report(err)
	}
	c.render(cart.New())
	return nil
}

func (c *Controller) handleAddRequest(ctx context.Context, attrs ProductAttributes) error {
	ctx = withOwnEvents(ctx)
	item, err := attrs.ToItem()
	if err != nil {
		c.logger.Info("rejected add to cart request", zap.String("item_id", attrs.ID), zap.Error(err))
		return c.report(err)
	}
	current, err := c.store.AddToCart(ctx, item)
	c.render(current)
	return c.report(err)
}

// Handle implements shared.EventHandler. Events raised by the controller's
// own handlers are skipped because those handlers render themselves.
func (c *Controller) Handle(ctx context.Context, event shared.DomainEvent) error {
	if isOwnEvent(ctx) {
		return nil
	}
	c.logger.Debug("refreshing cart view", zap.String("event_type", event.EventType()))
	if c.runner == nil || InDispatch(ctx) {
		return c.Refresh(ctx)
	}
	return c.runner.Run(ctx, c.Refresh)
}

// EventTypes implements shared.EventHandler
func (c *Controller) EventTypes() []string {
	return cart.EventTypes()
}

func (c *Controller) render(current *cart.Cart) {
	if current == nil {
		current = cart.New()
	}
	c.surface.Render(c.projector.Page(current))
}

func (c *Controller) report(err error) error {
	if err == nil {
		return nil
	}
	c.logger.Warn("cart view action failed", zap.Error(err))
	c.surface.ReportError(err)
	return err
}

var _ shared.EventHandler = (*Controller)(nil)
