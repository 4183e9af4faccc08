package driver

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = time.Second * 15
)

type Ticker interface {
	Tick(context.Context) error
}

// TickerFunc adapts a plain function to a Ticker.
type TickerFunc func(context.Context) error

func (f TickerFunc) Tick(ctx context.Context) error { return f(ctx) }

// Driver calls each of its tickers in order at a fixed interval. A tick
// that overruns the interval delays the next one rather than queueing it.
type Driver struct {
	name       string
	tickLength time.Duration
	tickers    []Ticker
}

func NewDriver(name string, tickers []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		name:       name,
		tickLength: DefaultTickLength,
		tickers:    tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "driver started", "driver", d.name, "interval", d.tickLength)

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, t := range d.tickers {
		if err := t.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
