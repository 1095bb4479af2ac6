package command

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, opts Options) *Command {
	t.Helper()
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestRegistry_Uniqueness(t *testing.T) {
	r := NewRegistry()

	first := mustNew(t, Options{Name: "imdb", Description: "first"})
	require.NoError(t, r.Add(first))

	err := r.Add(mustNew(t, Options{Name: "imdb", Description: "second"}))
	assert.ErrorIs(t, err, ErrDuplicate)

	err = r.Add(mustNew(t, Options{Name: "movies", UUID: "imdb"}))
	assert.ErrorIs(t, err, ErrDuplicate, "collision is by id, not by name")

	all := r.All()
	require.Len(t, all, 1)
	assert.Same(t, first, all[0])
}

func TestRegistry_ConcurrentAdd(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c, err := New(Options{Name: fmt.Sprintf("cmd-%d", n%5)})
			if err != nil {
				t.Error(err)
				return
			}
			if r.Add(c) == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, accepted)
	assert.Equal(t, 5, r.Len())

	seen := map[string]bool{}
	for _, c := range r.All() {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestRegistry_FindFilterRemove(t *testing.T) {
	r := NewRegistry()
	a := mustNew(t, Options{Name: "a", Names: []string{"alpha"}})
	b := mustNew(t, Options{Name: "b"})
	c := mustNew(t, Options{Name: "c"})
	for _, cmd := range []*Command{a, b, c} {
		require.NoError(t, r.Add(cmd))
	}
	b.Assign("Search", true)

	assert.Same(t, a, r.Find(func(x *Command) bool { return x.HasName("alpha") }))
	assert.Nil(t, r.Find(func(x *Command) bool { return x.HasName("zeta") }))
	assert.Equal(t, []*Command{b}, r.Filter(func(x *Command) bool { return x.Builtin() }))

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))

	removed := r.RemoveFunc(func(x *Command) bool { return !x.Builtin() })
	assert.Equal(t, []*Command{c}, removed)
	assert.Equal(t, []*Command{b}, r.All())

	r.Clear()
	assert.Zero(t, r.Len())
}

func TestCommand_Summarize(t *testing.T) {
	c := mustNew(t, Options{Name: "note", Names: []string{"memo"}, Description: "take a note"})
	c.Assign("iShell", true)
	c.SetDisabled(true)

	s := c.Summarize()
	assert.Equal(t, "note", s.Name)
	assert.Equal(t, []string{"note", "memo"}, s.Names)
	assert.Equal(t, "iShell", s.Namespace)
	assert.True(t, s.Builtin)
	assert.True(t, s.Disabled)
	assert.Equal(t, KindCommand, s.Kind)
}
