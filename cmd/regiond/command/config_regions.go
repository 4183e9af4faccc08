package command

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-regions/internal/region"
)

type RegionsConfig struct {
	// Start lists the map ids to run. Empty runs every map.
	Start         []string `json:"start"`
	InboxSize     int      `json:"inbox_size"`
	OutboxSize    int      `json:"outbox_size"`
	ScriptTimeout string   `json:"script_timeout"`
}

func (c *RegionsConfig) validate() error {
	el := errors.NewErrorList()

	if c.InboxSize < 0 {
		el.Add(fmt.Errorf("inbox_size must not be negative"))
	}
	if c.OutboxSize < 0 {
		el.Add(fmt.Errorf("outbox_size must not be negative"))
	}
	if _, err := parseInterval(c.ScriptTimeout, 0, 0); err != nil {
		el.Add(fmt.Errorf("script_timeout: %w", err))
	}

	return el.Err()
}

func (c *RegionsConfig) instanceOpts() []region.InstanceOpt {
	var opts []region.InstanceOpt
	if c.InboxSize > 0 {
		opts = append(opts, region.WithInboxSize(c.InboxSize))
	}
	if c.OutboxSize > 0 {
		opts = append(opts, region.WithOutboxSize(c.OutboxSize))
	}
	if d, _ := parseInterval(c.ScriptTimeout, 0, 0); d > 0 {
		opts = append(opts, region.WithScriptTimeout(d))
	}
	return opts
}

// BuildManager starts every configured region. Output is discarded until
// a publisher is set.
func (c *RegionsConfig) BuildManager(lib *Library) (*region.Manager, error) {
	for _, err := range lib.ScriptErrors {
		slog.Warn("script failed to compile", "error", err)
	}

	ids := c.Start
	if len(ids) == 0 {
		ids = slices.Sorted(maps.Keys(lib.Maps.GetAll()))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no maps to run")
	}

	m := region.NewManager(nil, c.instanceOpts()...)
	for _, id := range ids {
		assets, err := lib.Assets(id)
		if err != nil {
			return nil, err
		}
		if _, err := m.AddRegion(assets); err != nil {
			return nil, fmt.Errorf("starting region %q: %w", id, err)
		}
	}
	return m, nil
}
