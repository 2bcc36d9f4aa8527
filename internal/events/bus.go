package events

import (
	platformevents "salesorch_backend/platform/events"
	"salesorch_backend/platform/logger"
)

// InMemoryBus aliases the platform implementation so modules only ever
// import internal/events.
type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
