// Package event fans repository events out to subscribers.
//
// Event types are dotted topics such as "git.branch.switched".
// Subscribers register a pattern in which "*" matches exactly one
// segment and "**" matches zero or more:
//
//	bus := event.NewBus(event.WithScheduler(l))
//	sub, err := bus.Subscribe("git.**", func(ev event.Event) {
//	    fmt.Println(ev.Type, ev.Data)
//	})
//
// Bus satisfies git.EventPublisher, so it can be handed directly to
// git.ManagerConfig.EventBus. Without a scheduler, handlers run on the
// publishing goroutine; with one they are posted to it in publish order.
package event
