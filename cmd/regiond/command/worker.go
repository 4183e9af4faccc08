package command

import (
	"fmt"

	"github.com/pixil98/go-regions/internal/driver"
	"github.com/pixil98/go-regions/internal/messaging"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	tick, err := parseInterval(cfg.TickInterval, defaultTickInterval, 0)
	if err != nil {
		return nil, fmt.Errorf("tick_interval: %w", err)
	}
	lib, err := cfg.Storage.BuildLibrary()
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	manager, err := cfg.Regions.BuildManager(lib)
	if err != nil {
		return nil, fmt.Errorf("creating region manager: %w", err)
	}

	defRedraw := manager.RedrawInterval()
	if defRedraw == 0 {
		defRedraw = defaultRedrawInterval
	}
	redraw, err := parseInterval(cfg.RedrawInterval, defRedraw, 0)
	if err != nil {
		return nil, fmt.Errorf("redraw_interval: %w", err)
	}

	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	codec, err := messaging.NewCodec()
	if err != nil {
		return nil, fmt.Errorf("creating codec: %w", err)
	}
	bridge := messaging.NewRegionBridge(nats, manager, codec)
	manager.SetPublisher(bridge)

	workers := service.WorkerList{
		"nats":    nats,
		"bridge":  bridge,
		"regions": manager,
		"system-driver": driver.NewDriver("system", []driver.Ticker{
			driver.TickerFunc(manager.TickSystem),
		}, driver.WithTickLength(tick)),
		"redraw-driver": driver.NewDriver("redraw", []driver.Ticker{
			driver.TickerFunc(manager.TickRedraw),
		}, driver.WithTickLength(redraw)),
	}
	if cfg.Metrics.Addr != "" {
		workers["metrics"] = cfg.Metrics.buildMetricsServer()
	}

	return workers, nil
}
