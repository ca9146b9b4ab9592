// Package shared provides the typed key/value store carried by a wizard run.
// Every page controller receives the same Context and may read what earlier
// pages committed.
package shared

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Key names a value of type T. Two keys with the same name but different
// types address different entries.
type Key[T any] struct {
	name string
}

// NewKey declares a key.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key name.
func (k Key[T]) Name() string {
	return k.name
}

func (k Key[T]) slot() slot {
	return slot{name: k.name, typ: reflect.TypeFor[T]()}
}

type slot struct {
	name string
	typ  reflect.Type
}

type entry struct {
	value any
	seq   uint64 // insertion order of the slot
}

// Entry is a read-only view of one stored value.
type Entry struct {
	Name  string
	Type  string
	Value any
}

// Context is safe for concurrent use.
type Context struct {
	mu      sync.RWMutex
	entries map[slot]*entry
	seq     uint64
}

// New creates an empty context.
func New() *Context {
	return &Context{entries: make(map[slot]*entry)}
}

// Get returns the value stored under k.
func Get[T any](c *Context, k Key[T]) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	e, ok := c.entries[k.slot()]
	if !ok {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// GetOr returns the value stored under k or def when absent.
func GetOr[T any](c *Context, k Key[T], def T) T {
	if v, ok := Get(c, k); ok {
		return v
	}
	return def
}

// Set stores v under k, replacing any previous value of the same key.
func Set[T any](c *Context, k Key[T], v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(k.slot(), v)
}

// Has reports whether k holds a value.
func Has[T any](c *Context, k Key[T]) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[k.slot()]
	return ok
}

func (c *Context) put(s slot, v any) {
	if e, ok := c.entries[s]; ok {
		e.value = v
		return
	}
	c.seq++
	c.entries[s] = &entry{value: v, seq: c.seq}
}

// Merge copies every entry of patch into c. Entries present in patch replace
// entries of the same key; all other entries of c are kept.
func (c *Context) Merge(patch *Context) {
	if patch == nil || patch == c {
		return
	}

	patch.mu.RLock()
	type kv struct {
		s slot
		e entry
	}
	incoming := make([]kv, 0, len(patch.entries))
	for s, e := range patch.entries {
		incoming = append(incoming, kv{s: s, e: *e})
	}
	patch.mu.RUnlock()

	sort.Slice(incoming, func(i, j int) bool { return incoming[i].e.seq < incoming[j].e.seq })

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, in := range incoming {
		c.put(in.s, in.e.value)
	}
}

// Len returns the number of stored entries.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns all entries in insertion order.
func (c *Context) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	type ordered struct {
		seq uint64
		e   Entry
	}
	list := make([]ordered, 0, len(c.entries))
	for s, e := range c.entries {
		list = append(list, ordered{
			seq: e.seq,
			e:   Entry{Name: s.name, Type: s.typ.String(), Value: e.value},
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })

	out := make([]Entry, len(list))
	for i, o := range list {
		out[i] = o.e
	}
	return out
}

// Snapshot flattens the context into a name → value map. When two types
// share a name, the later entry is keyed "name(type)".
func (c *Context) Snapshot() map[string]any {
	entries := c.Entries()
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		key := e.Name
		if _, taken := out[key]; taken {
			key = fmt.Sprintf("%s(%s)", e.Name, e.Type)
		}
		out[key] = e.Value
	}
	return out
}

// YAML renders the snapshot as YAML with sorted keys.
func (c *Context) YAML() (string, error) {
	data, err := yaml.Marshal(c.Snapshot())
	if err != nil {
		return "", fmt.Errorf("marshaling context: %w", err)
	}
	return string(data), nil
}
