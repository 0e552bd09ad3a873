package traverse_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResume_EveryStep(t *testing.T) {
	root := domain.NewMenu("r", "",
		item("A"),
		domain.NewMenu("s", "", item("B"), domain.NewMenu("t", "", item("C")), item("D")),
		domain.NewMenu("empty", ""),
		item("E"),
	)
	want := []string{"A", "B", "C", "D", "E"}

	for k := 0; k <= len(want); k++ {
		it := traverse.New(root)
		for range k {
			_, err := it.Next()
			require.NoError(t, err)
		}

		c := it.Snapshot()
		resumed, err := traverse.Resume(root, c)
		require.NoError(t, err, "after %d items", k)
		assert.Equal(t, it.State(), resumed.State())
		assert.Equal(t, k, resumed.Visited())
		assert.Equal(t, want[k:], orNil(drain(t, resumed)), "after %d items", k)
	}
}

func TestResume_AfterHasNext(t *testing.T) {
	root := abcd()
	it := traverse.New(root)
	_, _ = it.Next()
	require.True(t, it.HasNext()) // settles into Sub

	resumed, err := traverse.Resume(root, it.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D"}, drain(t, resumed))
}

func TestResume_Exhausted(t *testing.T) {
	root := abcd()
	it := traverse.New(root)
	drain(t, it)

	c := it.Snapshot()
	assert.Empty(t, c.Positions)

	resumed, err := traverse.Resume(root, c)
	require.NoError(t, err)
	_, err = resumed.Next()
	assert.ErrorIs(t, err, domain.ErrExhausted)
}

func TestResume_Invalid(t *testing.T) {
	root := abcd()
	tests := []struct {
		name   string
		root   domain.Node
		cursor domain.Cursor
	}{
		{name: "Nil Root", root: nil, cursor: domain.Cursor{State: domain.StateReady, Positions: []int{0}}},
		{name: "Unknown State", root: root, cursor: domain.Cursor{State: "paused", Positions: []int{0}}},
		{name: "No Frames", root: root, cursor: domain.Cursor{State: domain.StateInProgress}},
		{name: "Exhausted With Frames", root: root, cursor: domain.Cursor{State: domain.StateExhausted, Positions: []int{1}}},
		{name: "Ready Not At Start", root: root, cursor: domain.Cursor{State: domain.StateReady, Positions: []int{1}}},
		{name: "Root Position Out Of Range", root: root, cursor: domain.Cursor{State: domain.StateInProgress, Positions: []int{2}}},
		{name: "Child Position Out Of Range", root: root, cursor: domain.Cursor{State: domain.StateInProgress, Positions: []int{1, 4}}},
		{name: "Negative Position", root: root, cursor: domain.Cursor{State: domain.StateInProgress, Positions: []int{1, -1}}},
		{name: "Parent Is Item", root: root, cursor: domain.Cursor{State: domain.StateInProgress, Positions: []int{1, 1, 0}}},
		{name: "No Open Menu", root: root, cursor: domain.Cursor{State: domain.StateInProgress, Positions: []int{0, 0}}},
		{name: "Negative Visited", root: root, cursor: domain.Cursor{State: domain.StateInProgress, Positions: []int{1, 0}, Visited: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := traverse.Resume(tt.root, tt.cursor)
			assert.ErrorIs(t, err, domain.ErrInvalidCursor)
		})
	}
}

func orNil(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return s
}
