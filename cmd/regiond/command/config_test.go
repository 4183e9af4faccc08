package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-regions/internal/region"
	"github.com/pixil98/go-testutil"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func testStorage(t *testing.T) StorageConfig {
	t.Helper()
	maps, ents, items := t.TempDir(), t.TempDir(), t.TempDir()

	writeFile(t, maps, "keep.json", `{
  "version": 1,
  "id": "keep",
  "spec": {
    "name": "keep",
    "game_config": "game:\n  ticks_per_minute: 4\n",
    "sectors": [{"name": "hall", "vertices": [[0, 0], [4, 0], [4, 4]]}],
    "entities": [{"class": "guard", "pos": [1, 0, 1]}]
  }
}`)
	writeFile(t, maps, "castle.json", `{"version": 1, "id": "castle", "spec": {"name": "castle"}}`)
	writeFile(t, ents, "guard.json", `{"version": 1, "id": "guard", "spec": {"name": "guard", "script": "guard.lua"}}`)
	writeFile(t, ents, "guard.lua", `function event(name, value) end`)
	writeFile(t, items, "door.json", `{"version": 1, "id": "door", "spec": {"name": "door", "script": "door.lua"}}`)
	writeFile(t, items, "door.lua", `function event(`)

	return StorageConfig{
		Maps:          AssetConfig[*region.Map]{Path: maps},
		EntityClasses: AssetConfig[*region.EntityClass]{Path: ents},
		ItemClasses:   AssetConfig[*region.ItemClass]{Path: items},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"valid":             {mutate: func(*Config) {}},
		"bad tick":          {mutate: func(c *Config) { c.TickInterval = "soon" }, expErr: "tick_interval"},
		"tick too short":    {mutate: func(c *Config) { c.TickInterval = "10ms" }, expErr: "at least 1s"},
		"bad redraw":        {mutate: func(c *Config) { c.RedrawInterval = "fast" }, expErr: "redraw_interval"},
		"missing map path":  {mutate: func(c *Config) { c.Storage.Maps.Path = "" }, expErr: "maps: path is required"},
		"bad nats port":     {mutate: func(c *Config) { c.Nats.Port = 70000 }, expErr: "out of range"},
		"zero nats timeout": {mutate: func(c *Config) { c.Nats.StartTimeout = "0s" }, expErr: "start_timeout must be positive"},
		"negative payload":  {mutate: func(c *Config) { c.Nats.MaxPayload = -1 }, expErr: "max_payload"},
		"bad metrics addr":  {mutate: func(c *Config) { c.Metrics.Addr = "nowhere" }, expErr: "metrics addr"},
		"negative inbox":    {mutate: func(c *Config) { c.Regions.InboxSize = -1 }, expErr: "inbox_size"},
		"bad script limit":  {mutate: func(c *Config) { c.Regions.ScriptTimeout = "lots" }, expErr: "script_timeout"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{Storage: testStorage(t)}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestBuildManager(t *testing.T) {
	tests := map[string]struct {
		start      []string
		expRegions []string
		expErr     string
	}{
		"every map":   {expRegions: []string{"castle", "keep"}},
		"chosen maps": {start: []string{"keep"}, expRegions: []string{"keep"}},
		"unknown map": {start: []string{"atlantis"}, expErr: `map "atlantis" not found`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			storage := testStorage(t)
			lib, err := storage.BuildLibrary()
			if err != nil {
				t.Fatalf("loading library: %v", err)
			}
			testutil.AssertEqual(t, "programs", len(lib.Programs), 1)
			testutil.AssertEqual(t, "script errors", len(lib.ScriptErrors), 1)

			rc := RegionsConfig{Start: tt.start}
			m, err := rc.BuildManager(lib)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "regions", len(m.Registry().IDs()), len(tt.expRegions))
			for _, name := range tt.expRegions {
				_, ok := m.Lookup(name)
				testutil.AssertEqual(t, name, ok, true)
			}
		})
	}
}
