package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvPrefix starts every override variable. storage.dsn is overridden by
// HOUSEPLAN_STORAGE_DSN.
const EnvPrefix = "HOUSEPLAN_"

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvKey names the variable that overrides key.
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(envKeyReplacer.Replace(key))
}

// ConfigStore keeps dotted keys in memory and writes them to config.toml as
// nested tables. Environment overrides win on read and are never written.
type ConfigStore struct {
	filePath string
	lookup   func(string) (string, bool)

	mu   sync.RWMutex
	data map[string]any
}

// NewConfigStore opens dir/config.toml, creating dir if needed. An empty
// dir means ~/.houseplan.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".houseplan")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(dir, "config.toml"),
		lookup:   os.LookupEnv,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Path() string { return s.filePath }

// Get returns the override as a string when one is set.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.lookup(EnvKey(key)); ok {
		return v, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt truncates floats and parses numeric strings. Anything else is 0.
func (s *ConfigStore) GetInt(key string) int {
	n, _ := s.number(key)
	return int(n)
}

func (s *ConfigStore) GetFloat64(key string) float64 {
	n, _ := s.number(key)
	return n
}

// number reads key as a float64 whatever numeric form TOML or an
// environment override gave it.
func (s *ConfigStore) number(key string) (float64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Set updates key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.writeLocked()
}

func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked()
}

func (s *ConfigStore) writeLocked() error {
	out, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	// The file may hold API keys.
	return os.WriteFile(s.filePath, out, 0o600)
}

// Load replaces the in-memory values with the file's. A missing file
// leaves the store empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = map[string]any{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	s.data = flattenMap(tree, "")
	return nil
}

// flattenMap turns nested tables into dotted keys under prefix.
func flattenMap(tree map[string]any, prefix string) map[string]any {
	flat := map[string]any{}
	var walk func(string, map[string]any)
	walk = func(path string, node map[string]any) {
		for k, v := range node {
			if path != "" {
				k = path + "." + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(k, child)
				continue
			}
			flat[k] = v
		}
	}
	walk(prefix, tree)
	return flat
}

// nestMap undoes flattenMap so llm.model lands in an [llm] table. When a
// key is both a value and a table prefix the value wins.
func nestMap(flat map[string]any) map[string]any {
	root := map[string]any{}
	// Sorted order visits "a" before "a.b".
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		path := strings.Split(key, ".")
		if table := descend(root, path[:len(path)-1]); table != nil {
			table[path[len(path)-1]] = flat[key]
		}
	}
	return root
}

// descend walks to the table at path, creating missing tables. It returns
// nil when a value sits where a table is needed.
func descend(node map[string]any, path []string) map[string]any {
	for _, p := range path {
		next, exists := node[p]
		if !exists {
			child := map[string]any{}
			node[p] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil
		}
		node = child
	}
	return node
}
