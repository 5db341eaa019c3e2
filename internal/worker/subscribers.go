package worker

import (
	"github.com/spec-kit/reservation-service/internal/events"
)

// Subscriber attaches its handlers to a dispatcher. Implementations must tolerate a
// nil receiver so optional sinks (an unconfigured broker) can be passed as is.
type Subscriber interface {
	Register(dispatcher events.Dispatcher)
}

// StartSubscribers wires every event sink onto the dispatcher.
func StartSubscribers(dispatcher events.Dispatcher, subscribers ...Subscriber) {
	if dispatcher == nil {
		return
	}
	for _, s := range subscribers {
		if s != nil {
			s.Register(dispatcher)
		}
	}
}
