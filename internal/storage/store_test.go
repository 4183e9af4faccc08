package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockStoreSpec implements ValidatingSpec for testing FileStore
type mockStoreSpec struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Script string `json:"script,omitempty"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return root
}

func assetJSON(t *testing.T, version uint, id string, spec *mockStoreSpec) string {
	t.Helper()
	data, err := json.Marshal(Asset[*mockStoreSpec]{Version: version, Identifier: Identifier(id), Spec: spec})
	if err != nil {
		t.Fatalf("marshalling asset %s: %v", id, err)
	}
	return string(data)
}

func TestNewFileStore(t *testing.T) {
	goblin := &mockStoreSpec{Name: "Goblin", Value: 3}
	orc := &mockStoreSpec{Name: "Orc", Value: 5}

	tests := map[string]struct {
		files   func(t *testing.T) map[string]string
		expKeys []string
		expErrs []string
	}{
		"empty directory": {
			files: func(*testing.T) map[string]string { return nil },
		},
		"nested assets": {
			files: func(t *testing.T) map[string]string {
				return map[string]string{
					"goblin.json":        assetJSON(t, 1, "goblin", goblin),
					"deep/down/orc.json": assetJSON(t, 1, "orc", orc),
				}
			},
			expKeys: []string{"goblin", "orc"},
		},
		"other files ignored": {
			files: func(t *testing.T) map[string]string {
				return map[string]string{
					"goblin.json": assetJSON(t, 1, "goblin", goblin),
					"goblin.lua":  "function event() end",
					"notes.yaml":  "ignore: me",
				}
			},
			expKeys: []string{"goblin"},
		},
		"bad json": {
			files: func(*testing.T) map[string]string {
				return map[string]string{"bad.json": "{invalid json"}
			},
			expErrs: []string{"bad.json: unmarshalling asset"},
		},
		"every bad file reported": {
			files: func(t *testing.T) map[string]string {
				return map[string]string{
					"old.json":    assetJSON(t, 0, "old", goblin),
					"future.json": assetJSON(t, 9, "future", orc),
					"fine.json":   assetJSON(t, 1, "fine", orc),
				}
			},
			expErrs: []string{"old.json: validating asset", "version must be set", "future.json", "newer than supported"},
		},
		"duplicate id": {
			files: func(t *testing.T) map[string]string {
				return map[string]string{
					"a.json":     assetJSON(t, 1, "goblin", goblin),
					"sub/b.json": assetJSON(t, 1, "goblin", orc),
				}
			},
			expErrs: []string{`duplicate id "goblin", already loaded from a.json`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := writeTree(t, tt.files(t))

			store, err := NewFileStore[*mockStoreSpec](root)
			if len(tt.expErrs) > 0 {
				for _, e := range tt.expErrs {
					testutil.AssertErrorContains(t, err, e)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "root", store.root, root)
			testutil.AssertEqual(t, "record count", len(store.records), len(tt.expKeys))
			for _, k := range tt.expKeys {
				_, ok := store.Lookup(k)
				testutil.AssertEqual(t, k, ok, true)
			}
		})
	}
}

func TestNewFileStore_MissingDirectory(t *testing.T) {
	_, err := NewFileStore[*mockStoreSpec](filepath.Join(t.TempDir(), "absent"))
	testutil.AssertErrorContains(t, err, "walking")
}

func TestFileStore_Reads(t *testing.T) {
	store, err := NewFileStore[*mockStoreSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*mockStoreSpec{
		"goblin": {Name: "Goblin", Value: 3},
		"orc":    {Name: "Orc", Value: 5},
	}

	tests := map[string]struct {
		id       string
		expFound bool
		expName  string
	}{
		"present":  {id: "goblin", expFound: true, expName: "Goblin"},
		"absent":   {id: "troll"},
		"empty id": {id: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := store.Lookup(tt.id)
			testutil.AssertEqual(t, "found", ok, tt.expFound)
			testutil.AssertEqual(t, "get", store.Get(tt.id), got)
			if tt.expFound {
				testutil.AssertEqual(t, "name", got.Name, tt.expName)
			}
		})
	}

	all := store.GetAll()
	testutil.AssertEqual(t, "all", len(all), 2)
	delete(all, "orc")
	testutil.AssertEqual(t, "copy", len(store.GetAll()), 2)
}

func TestFileStore_ReadSidecar(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.MkdirAll(filepath.Join(tmpDir, "scripts"), 0755)
	if err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	err = os.WriteFile(filepath.Join(tmpDir, "scripts", "goblin.lua"), []byte("function event() end"), 0644)
	if err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	tests := map[string]struct {
		name    string
		expData string
		expErr  string
	}{
		"existing file": {
			name:    "scripts/goblin.lua",
			expData: "function event() end",
		},
		"missing file": {
			name:   "scripts/orc.lua",
			expErr: "reading sidecar",
		},
		"escaping path": {
			name:   "../secrets.lua",
			expErr: "escapes the asset directory",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := store.ReadSidecar(tt.name)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "data", string(data), tt.expData)
		})
	}
}
