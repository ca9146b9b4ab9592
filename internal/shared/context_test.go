package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	keyA = NewKey[int]("a")
	keyB = NewKey[int]("b")
)

func TestSetGet(t *testing.T) {
	c := New()

	_, ok := Get(c, keyA)
	require.False(t, ok)
	require.Equal(t, 7, GetOr(c, keyA, 7))

	Set(c, keyA, 1)
	v, ok := Get(c, keyA)
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.True(t, Has(c, keyA))
	require.False(t, Has(c, keyB))
}

func TestKeysAreTyped(t *testing.T) {
	c := New()
	asInt := NewKey[int]("user")
	asString := NewKey[string]("user")

	Set(c, asInt, 42)
	Set(c, asString, "alice")

	i, _ := Get(c, asInt)
	s, _ := Get(c, asString)
	require.Equal(t, 42, i)
	require.Equal(t, "alice", s)
	require.Equal(t, 2, c.Len())

	snap := c.Snapshot()
	require.Equal(t, 42, snap["user"])
	require.Equal(t, "alice", snap["user(string)"])
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		first  map[Key[int]]int
		second map[Key[int]]int
		want   map[string]any
	}{
		{
			name:   "overwrite existing key",
			first:  map[Key[int]]int{keyA: 1},
			second: map[Key[int]]int{keyA: 2, keyB: 3},
			want:   map[string]any{"a": 2, "b": 3},
		},
		{
			name:   "disjoint keys are preserved",
			first:  map[Key[int]]int{keyA: 1},
			second: map[Key[int]]int{keyB: 2},
			want:   map[string]any{"a": 1, "b": 2},
		},
		{
			name:   "empty patch",
			first:  map[Key[int]]int{keyA: 1},
			second: map[Key[int]]int{},
			want:   map[string]any{"a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Merge(patchOf(tt.first))
			c.Merge(patchOf(tt.second))
			require.Equal(t, tt.want, c.Snapshot())
		})
	}
}

func patchOf(values map[Key[int]]int) *Context {
	p := New()
	for k, v := range values {
		Set(p, k, v)
	}
	return p
}

func TestMerge_NilAndSelf(t *testing.T) {
	c := New()
	Set(c, keyA, 1)
	c.Merge(nil)
	c.Merge(c)
	require.Equal(t, map[string]any{"a": 1}, c.Snapshot())
}

func TestEntries_InsertionOrder(t *testing.T) {
	c := New()
	Set(c, NewKey[string]("z"), "last-name")
	Set(c, NewKey[string]("a"), "first-name")
	Set(c, NewKey[string]("z"), "updated")

	entries := c.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "z", entries[0].Name)
	require.Equal(t, "updated", entries[0].Value)
	require.Equal(t, "string", entries[0].Type)
	require.Equal(t, "a", entries[1].Name)
}

func TestYAML(t *testing.T) {
	c := New()
	Set(c, NewKey[string]("username"), "alice")
	Set(c, NewKey[bool]("terms"), true)

	out, err := c.YAML()
	require.NoError(t, err)
	require.Equal(t, "terms: true\nusername: alice\n", out)
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Set(c, keyA, n)
			_, _ = Get(c, keyA)
			c.Merge(patchOf(map[Key[int]]int{keyB: n}))
		}(i)
	}
	wg.Wait()
	require.Equal(t, 2, c.Len())
}
