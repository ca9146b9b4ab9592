// Package lookup serves the named value lists pages offer as choices.
package lookup

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownList is returned for list names the service does not know.
var ErrUnknownList = errors.New("unknown lookup list")

// Roles is the list the login page offers.
const Roles = "roles"

// Item is one choice.
type Item struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Service returns lookup lists by name.
type Service interface {
	List(name string) ([]Item, error)
}

// MemoryService is a Service over in-memory lists.
type MemoryService struct {
	mu    sync.RWMutex
	lists map[string][]Item
}

// NewMemoryService creates a service with the given lists.
func NewMemoryService(lists map[string][]Item) *MemoryService {
	s := &MemoryService{lists: make(map[string][]Item, len(lists))}
	for name, items := range lists {
		s.Set(name, items)
	}
	return s
}

// Defaults returns a service with the built-in lists.
func Defaults() *MemoryService {
	return NewMemoryService(map[string][]Item{
		Roles: {
			{Value: "user", Label: "User"},
			{Value: "admin", Label: "Administrator"},
			{Value: "guest", Label: "Guest"},
		},
	})
}

// List implements Service. The returned slice is a copy.
func (s *MemoryService) List(name string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.lists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return append([]Item(nil), items...), nil
}

// Set replaces a list. Items without a label use their value.
func (s *MemoryService) Set(name string, items []Item) {
	cp := make([]Item, len(items))
	for i, it := range items {
		if it.Label == "" {
			it.Label = it.Value
		}
		cp[i] = it
	}
	s.mu.Lock()
	s.lists[name] = cp
	s.mu.Unlock()
}

// Names returns the list names, sorted.
func (s *MemoryService) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.lists))
	for n := range s.lists {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadYAML reads lists from a file and layers them over the defaults.
//
//	roles:
//	  - value: admin
//	    label: Administrator
func LoadYAML(path string) (*MemoryService, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lists map[string][]Item
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	s := Defaults()
	for name, items := range lists {
		s.Set(name, items)
	}
	return s, nil
}
