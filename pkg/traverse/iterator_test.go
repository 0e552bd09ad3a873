package traverse_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(name string) *domain.Item { return domain.NewItem(name, "", false, 1) }

// Root[A, Sub[B, C], D]
func abcd() *domain.Menu {
	return domain.NewMenu("Root", "",
		item("A"),
		domain.NewMenu("Sub", "", item("B"), item("C")),
		item("D"),
	)
}

func drain(t *testing.T, it *traverse.Iterator) []string {
	t.Helper()
	var names []string
	for it.HasNext() {
		n, err := it.Next()
		require.NoError(t, err)
		names = append(names, n.Name())
	}
	return names
}

func TestIterator_Order(t *testing.T) {
	tests := []struct {
		name string
		root domain.Node
		want []string
	}{
		{name: "Pre-order", root: abcd(), want: []string{"A", "B", "C", "D"}},
		{name: "Leaf Root", root: item("X"), want: []string{"X"}},
		{name: "Empty Menu", root: domain.NewMenu("empty", ""), want: nil},
		{name: "Nil Root", root: nil, want: nil},
		{
			name: "Empty Submenus Are Skipped",
			root: domain.NewMenu("r", "",
				domain.NewMenu("e1", ""),
				domain.NewMenu("s", "", domain.NewMenu("e2", ""), item("A")),
				domain.NewMenu("e3", ""),
				item("B"),
			),
			want: []string{"A", "B"},
		},
		{
			name: "Menu Last",
			root: domain.NewMenu("r", "", item("A"), domain.NewMenu("s", "", domain.NewMenu("t", "", item("B")))),
			want: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := traverse.New(tt.root)
			assert.Equal(t, tt.want, drain(t, it))
			assert.Equal(t, domain.StateExhausted, it.State())
			assert.Equal(t, len(tt.want), it.Visited())
		})
	}
}

func TestIterator_EmptyMenuHasNextFalseImmediately(t *testing.T) {
	it := traverse.New(domain.NewMenu("empty", ""))
	assert.False(t, it.HasNext())
	assert.Equal(t, domain.StateExhausted, it.State())
}

func TestIterator_ExactlyNCalls(t *testing.T) {
	root := domain.NewMenu("r", "")
	sub := domain.NewMenu("s", "")
	for i := range 50 {
		if i%3 == 0 {
			root.Add(item("x"))
		} else {
			sub.Add(item("y"))
		}
	}
	root.Add(sub)
	_, n := domain.Count(root)

	it := traverse.New(root)
	for i := range n {
		_, err := it.Next()
		require.NoError(t, err, "call %d", i)
	}
	assert.False(t, it.HasNext())
}

func TestIterator_NextAfterExhaustion(t *testing.T) {
	it := traverse.New(item("X"))
	_, err := it.Next()
	require.NoError(t, err)

	for range 3 {
		got, err := it.Next()
		assert.ErrorIs(t, err, domain.ErrExhausted)
		assert.Nil(t, got)
	}
	assert.Equal(t, domain.StateExhausted, it.State())
	assert.False(t, it.HasNext())
}

func TestIterator_Remove(t *testing.T) {
	it := traverse.New(abcd())
	assert.ErrorIs(t, it.Remove(), domain.ErrUnsupported)
	_, _ = it.Next()
	assert.ErrorIs(t, it.Remove(), domain.ErrUnsupported)
	assert.Equal(t, []string{"B", "C", "D"}, drain(t, it))
}

func TestIterator_StateMachine(t *testing.T) {
	it := traverse.New(abcd())
	assert.Equal(t, domain.StateReady, it.State())

	it.HasNext()
	assert.Equal(t, domain.StateInProgress, it.State())

	drain(t, it)
	assert.Equal(t, domain.StateExhausted, it.State())

	t.Run("Next moves out of Ready", func(t *testing.T) {
		it := traverse.New(abcd())
		_, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, domain.StateInProgress, it.State())
	})
}

func TestIterator_HasNextIdempotent(t *testing.T) {
	it := traverse.New(abcd())
	var got []string
	for {
		for range 5 {
			it.HasNext()
		}
		if !it.HasNext() {
			break
		}
		n, err := it.Next()
		require.NoError(t, err)
		got = append(got, n.Name())
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
}

func TestIterator_Independent(t *testing.T) {
	root := abcd()
	a := traverse.New(root)
	b := traverse.New(root)

	first, err := a.Next()
	require.NoError(t, err)
	second, err := a.Next()
	require.NoError(t, err)
	assert.Equal(t, "A", first.Name())
	assert.Equal(t, "B", second.Name())

	assert.Equal(t, []string{"A", "B", "C", "D"}, drain(t, b))
	assert.Equal(t, []string{"C", "D"}, drain(t, a))
}

func TestIterator_Depth(t *testing.T) {
	it := traverse.New(abcd())
	assert.Equal(t, 0, it.Depth())
	_, _ = it.Next() // A
	assert.Equal(t, 1, it.Depth())
	_, _ = it.Next() // B
	assert.Equal(t, 2, it.Depth())
}

func TestIterator_DeepTree(t *testing.T) {
	const depth = 100_000
	leaf := item("bottom")
	var root domain.Node = leaf
	for range depth {
		root = domain.NewMenu("level", "", root)
	}

	it := traverse.New(root)
	require.True(t, it.HasNext())
	assert.Equal(t, depth, it.Depth())

	got, err := it.Next()
	require.NoError(t, err)
	assert.Same(t, leaf, got)
	assert.False(t, it.HasNext())

	var steps int
	for range traverse.Walk(root) {
		steps++
	}
	assert.Equal(t, depth+1, steps)
}
