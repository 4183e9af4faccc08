package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/messaging"
)

// NatsConfig controls the embedded NATS server region traffic runs over.
// Port -1 picks a free port.
type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
	MaxPayload   int32  `json:"max_payload"`
}

func (n *NatsConfig) validate() error {
	_, err := n.serverOpts()
	return err
}

func (n *NatsConfig) serverOpts() ([]messaging.NatsServerOpt, error) {
	el := errors.NewErrorList()
	var opts []messaging.NatsServerOpt

	if n.StartTimeout != "" {
		d, err := time.ParseDuration(n.StartTimeout)
		switch {
		case err != nil:
			el.Add(fmt.Errorf("parsing start_timeout: %w", err))
		case d <= 0:
			el.Add(fmt.Errorf("start_timeout must be positive"))
		default:
			opts = append(opts, messaging.WithStartTimeout(d))
		}
	}

	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}

	switch {
	case n.Port < -1 || n.Port > 65535:
		el.Add(fmt.Errorf("port %d out of range", n.Port))
	case n.Port != 0:
		opts = append(opts, messaging.WithPort(n.Port))
	}

	switch {
	case n.MaxPayload < 0:
		el.Add(fmt.Errorf("max_payload must not be negative"))
	case n.MaxPayload > 0:
		opts = append(opts, messaging.WithMaxPayload(n.MaxPayload))
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	opts, err := n.serverOpts()
	if err != nil {
		return nil, err
	}
	return messaging.NewNatsServer(opts...)
}
