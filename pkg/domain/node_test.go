package domain_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *domain.Menu {
	return domain.NewMenu("ALL MENUS", "All menus combined",
		domain.NewMenu("PANCAKE HOUSE MENU", "Breakfast",
			domain.NewItem("K&B's Pancake Breakfast", "Pancakes with scrambled eggs and toast", true, 2.99),
			domain.NewItem("Regular Pancake Breakfast", "Pancakes with fried eggs, sausage", false, 2.99),
		),
		domain.NewMenu("DINER MENU", "Lunch",
			domain.NewItem("Vegetarian BLT", "(Fakin') Bacon with lettuce & tomato on whole wheat", true, 2.99),
			domain.NewMenu("DESSERT MENU", "Dessert of course!",
				domain.NewItem("Apple Pie", "Apple pie with a flakey crust", true, 1.59),
			),
		),
	)
}

func TestMenu_Add(t *testing.T) {
	var nilItem *domain.Item
	m := domain.NewMenu("root", "").Add(nil, nilItem, domain.NewItem("a", "", false, 1))
	assert.Equal(t, 1, m.Len())

	c, err := m.Child(0)
	require.NoError(t, err)
	assert.Equal(t, "a", c.Name())

	_, err = m.Child(1)
	assert.ErrorIs(t, err, domain.ErrChildIndex)
	_, err = m.Child(-1)
	assert.ErrorIs(t, err, domain.ErrChildIndex)
}

func TestMenu_ChildrenIsCopy(t *testing.T) {
	m := domain.NewMenu("root", "", domain.NewItem("a", "", false, 1))
	children := m.Children()
	children[0] = domain.NewItem("b", "", false, 1)

	c, _ := m.Child(0)
	assert.Equal(t, "a", c.Name())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, domain.NodeTypeItem, domain.TypeOf(domain.NewItem("a", "", false, 0)))
	assert.Equal(t, domain.NodeTypeMenu, domain.TypeOf(domain.NewMenu("m", "")))
}

func TestValidate(t *testing.T) {
	shared := domain.NewItem("shared", "", false, 1)
	loop := domain.NewMenu("loop", "")
	loop.Add(domain.NewMenu("inner", "", loop))

	tests := []struct {
		name    string
		root    domain.Node
		wantErr error
	}{
		{name: "Sample", root: sampleTree()},
		{name: "Leaf", root: domain.NewItem("x", "", false, 0)},
		{name: "Empty Menu", root: domain.NewMenu("empty", "")},
		{name: "Nil", root: nil, wantErr: domain.ErrNotATree},
		{name: "Shared Child", root: domain.NewMenu("r", "", shared, domain.NewMenu("s", "", shared)), wantErr: domain.ErrNotATree},
		{name: "Cycle", root: loop, wantErr: domain.ErrNotATree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.Validate(tt.root)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCount(t *testing.T) {
	menus, items := domain.Count(sampleTree())
	assert.Equal(t, 4, menus)
	assert.Equal(t, 4, items)
}

func TestFingerprint(t *testing.T) {
	a := sampleTree()
	b := sampleTree()
	assert.Equal(t, domain.Fingerprint(a), domain.Fingerprint(b))

	reordered := domain.NewMenu("r", "", domain.NewItem("x", "", false, 1), domain.NewItem("y", "", false, 1))
	original := domain.NewMenu("r", "", domain.NewItem("y", "", false, 1), domain.NewItem("x", "", false, 1))
	assert.NotEqual(t, domain.Fingerprint(reordered), domain.Fingerprint(original))

	priced := domain.NewMenu("r", "", domain.NewItem("x", "", false, 1.5))
	assert.NotEqual(t, domain.Fingerprint(priced), domain.Fingerprint(domain.NewMenu("r", "", domain.NewItem("x", "", false, 1))))

	// Flattening must change the hash even if leaf order is equal.
	nested := domain.NewMenu("r", "", domain.NewMenu("s", "", domain.NewItem("x", "", false, 1)))
	flat := domain.NewMenu("r", "", domain.NewItem("x", "", false, 1))
	assert.NotEqual(t, domain.Fingerprint(nested), domain.Fingerprint(flat))
}

func TestCodec_RoundTrip(t *testing.T) {
	root := sampleTree()
	data, err := json.Marshal(root)
	require.NoError(t, err)

	decoded, err := domain.UnmarshalNode(data)
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint(root), domain.Fingerprint(decoded))
}

func TestUnmarshalNode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "Unknown Type", in: `{"type":"drink","name":"x"}`},
		{name: "Item With Children", in: `{"type":"item","name":"x","children":[{"name":"y"}]}`},
		{name: "Menu With Price", in: `{"type":"menu","name":"x","price":1}`},
		{name: "Unknown Field", in: `{"type":"item","name":"x","calories":100}`},
		{name: "Bad Child", in: `{"type":"menu","name":"x","children":[{"type":"?"}]}`},
		{name: "Malformed", in: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.UnmarshalNode([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnItem: func(_ context.Context, _ *domain.TraversalEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnItem:      func(_ context.Context, _ *domain.TraversalEvent) { calls = append(calls, "b") },
		OnExhausted: func(_ context.Context, _ *domain.TraversalEvent) { calls = append(calls, "x") },
	}
	merged := a.Merge(b)
	merged.OnItem(context.Background(), &domain.TraversalEvent{})
	merged.OnExhausted(context.Background(), &domain.TraversalEvent{})
	assert.Nil(t, merged.OnTreeLoad)
	assert.Equal(t, []string{"a", "b", "x"}, calls)
}

func TestCursor_Clone(t *testing.T) {
	c := &domain.Cursor{ID: "1", Positions: []int{1, 2}, State: domain.StateInProgress}
	clone := c.Clone()
	clone.Positions[0] = 9
	assert.Equal(t, 1, c.Positions[0])
	assert.True(t, c.State.Valid())
	assert.False(t, domain.TraversalState("bogus").Valid())
	assert.Equal(t, "in_progress", c.State.String())
}
