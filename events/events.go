// Package events fans committed reservation changes out to websocket
// clients and to a RabbitMQ exchange.
package events

import (
	"context"
	"errors"

	"go-restobook/models"
)

type Publisher interface {
	Publish(ctx context.Context, e models.Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e models.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, models.Event) error { return nil }
