package app

import (
	"context"

	"github.com/dshills/gitpanel/internal/event"
)

// Watch calls fn for every event matching pattern until ctx is done.
func (app *Application) Watch(ctx context.Context, pattern string, fn event.Handler) error {
	sub, err := app.bus.Subscribe(pattern, fn)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	<-ctx.Done()
	return nil
}
