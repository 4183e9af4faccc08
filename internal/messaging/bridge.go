package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pixil98/go-regions/internal/region"
)

const subjectPrefix = "region"

// OutSubject is where a region's output is published.
func OutSubject(id uuid.UUID) string {
	return fmt.Sprintf("%s.%s.out", subjectPrefix, id)
}

// InSubject accepts messages for a region, addressed by id or by name.
func InSubject(region string) string {
	return fmt.Sprintf("%s.%s.in", subjectPrefix, region)
}

// Bus is the pub/sub transport the bridge runs over.
type Bus interface {
	Ready() <-chan struct{}
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(subject string, data []byte)) (func(), error)
}

// Router delivers inbound messages to regions.
type Router interface {
	Send(id uuid.UUID, m region.Message) error
	SendByName(name string, m region.Message) error
}

var (
	_ Bus              = (*NatsServer)(nil)
	_ region.Publisher = (*RegionBridge)(nil)
)

// RegionBridge connects regions to a Bus: it publishes their output and
// feeds them what arrives on their inbound subjects.
type RegionBridge struct {
	bus    Bus
	router Router
	codec  *Codec
}

func NewRegionBridge(bus Bus, router Router, codec *Codec) *RegionBridge {
	return &RegionBridge{bus: bus, router: router, codec: codec}
}

// Publish implements region.Publisher.
func (b *RegionBridge) Publish(id uuid.UUID, m region.Message) error {
	data, err := b.codec.Encode(m)
	if err != nil {
		return err
	}
	if err := b.bus.Publish(OutSubject(id), data); err != nil {
		return fmt.Errorf("publishing %s: %w", m.Kind(), err)
	}
	return nil
}

// Start subscribes to every region's inbound subject once the bus is up
// and blocks until ctx is done.
func (b *RegionBridge) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-b.bus.Ready():
	}

	unsubscribe, err := b.bus.Subscribe(InSubject("*"), b.receive)
	if err != nil {
		return fmt.Errorf("subscribing to region input: %w", err)
	}
	defer unsubscribe()

	slog.InfoContext(ctx, "region bridge subscribed", "subject", InSubject("*"))
	<-ctx.Done()
	return nil
}

func (b *RegionBridge) receive(subject string, data []byte) {
	target, ok := regionToken(subject)
	if !ok {
		slog.Warn("malformed region subject", "subject", subject)
		return
	}

	m, err := b.codec.Decode(data)
	if err != nil {
		slog.Warn("dropping undecodable region message", "subject", subject, "error", err)
		return
	}

	if id, perr := uuid.Parse(target); perr == nil {
		err = b.router.Send(id, m)
	} else {
		err = b.router.SendByName(target, m)
	}
	if err != nil {
		slog.Warn("delivering region message", "region", target, "kind", m.Kind(), "error", err)
	}
}

func regionToken(subject string) (string, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != subjectPrefix || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
