package region

import (
	"time"

	"github.com/google/uuid"
)

type InstanceOpt func(*Instance)

// WithRegionID fixes the region id instead of generating one.
func WithRegionID(id uuid.UUID) InstanceOpt {
	return func(i *Instance) {
		i.id = id
	}
}

func WithInboxSize(n int) InstanceOpt {
	return func(i *Instance) {
		i.inboxSize = n
	}
}

func WithOutboxSize(n int) InstanceOpt {
	return func(i *Instance) {
		i.outboxSize = n
	}
}

// WithScriptTimeout bounds every script call.
func WithScriptTimeout(d time.Duration) InstanceOpt {
	return func(i *Instance) {
		i.callTimeout = d
	}
}
