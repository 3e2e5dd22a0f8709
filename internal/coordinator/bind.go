package coordinator

import (
	"github.com/FranLegon/cloud-drives-search/internal/eventbus"
)

// Bind subscribes the coordinator to search and menu-reset events on bus and
// publishes page outcomes back to it. Handlers hop onto the coordinator's
// main loop before touching state. The returned function unsubscribes.
//
// Bind must be called before the main loop starts running.
func (c *Coordinator) Bind(bus eventbus.EventBus) func() {
	c.bus = bus

	unsubSearch := bus.Subscribe(eventbus.EventSearchRequested, func(e eventbus.Event) {
		ev, ok := e.(eventbus.SearchRequestedEvent)
		if !ok {
			return
		}
		c.poster.Post(func() { c.StartSearch(ev.Request) })
	})
	unsubReset := bus.Subscribe(eventbus.EventMenuReset, func(eventbus.Event) {
		c.poster.Post(c.ResetSession)
	})

	return func() {
		unsubSearch()
		unsubReset()
	}
}
