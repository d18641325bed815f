package view

import (
	"context"
	"errors"
)

// ErrNoHandler is returned when an event is emitted before a handler was bound
var ErrNoHandler = errors.New("no handler bound for cart view event")

// Handler signatures for the UI events the cart view reacts to
type (
	RemoveHandler         func(ctx context.Context, id string) error
	QuantityChangeHandler func(ctx context.Context, id, raw string) error
	BulkUpdateHandler     func(ctx context.Context, raw map[string]string) error
	ClearHandler          func(ctx context.Context) error
	AddRequestHandler     func(ctx context.Context, attrs ProductAttributes) error
)

// EventPort is the set of UI events a rendering technology delivers to the
// cart view. Quantities arrive as raw field text and are parsed by the
// handler.
type EventPort interface {
	OnRemove(h RemoveHandler)
	OnQuantityChange(h QuantityChangeHandler)
	OnBulkUpdate(h BulkUpdateHandler)
	OnClear(h ClearHandler)
	OnAddRequest(h AddRequestHandler)
}

// Surface is a render target for the cart page
type Surface interface {
	// Render replaces rows, totals and badge
	Render(page Page)
	// PatchRow updates one row and the totals without touching the other rows
	PatchRow(row RowViewModel, totals Totals)
	// ReportError shows a user-visible error
	ReportError(err error)
}
