package memory

import (
	"fmt"
	"maps"
	"sync"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

var (
	_ driven.ConfigStore = (*ConfigStore)(nil)
	_ driven.PromptStore = (*PromptStore)(nil)
)

// ConfigStore holds settings in process memory for tests. Nothing
// is persisted.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a config store seeded with a copy of values.
func NewConfigStore(values ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, v := range values {
		maps.Copy(s.values, v)
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt truncates floats. Non-numeric values read as 0.
func (s *ConfigStore) GetInt(key string) int {
	switch v := s.number(key).(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (s *ConfigStore) GetFloat64(key string) float64 {
	switch v := s.number(key).(type) {
	case int:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// number normalises the numeric types values may hold to int or float64.
func (s *ConfigStore) number(key string) any {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return nil
	}
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }

// PromptStore serves prompt templates from a fixed map.
type PromptStore struct {
	mu      sync.RWMutex
	prompts map[string]string
}

// NewPromptStore creates a prompt store holding a copy of prompts.
func NewPromptStore(prompts map[string]string) *PromptStore {
	return &PromptStore{prompts: maps.Clone(prompts)}
}

// Load returns the named template.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[name]
	if !ok {
		return "", fmt.Errorf("load prompt %q: not found", name)
	}
	return p, nil
}

// Set replaces one template.
func (s *PromptStore) Set(name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prompts == nil {
		s.prompts = make(map[string]string)
	}
	s.prompts[name] = text
}

// Reload is a no-op.
func (s *PromptStore) Reload() {}
