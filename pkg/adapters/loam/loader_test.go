package loam

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, files)
	return New(loam.NewTypedRepository[NodeMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"menu.md": `---
type: menu
name: ALL MENUS
children: [pancake, dessert]
---
All menus combined`,
		"pancake.md": `---
type: menu
name: PANCAKE HOUSE MENU
children: [blueberry]
---
Breakfast`,
		"blueberry.md": `---
name: Blueberry Pancakes
price: 3.49
vegetarian: true
---
Pancakes made with fresh blueberries`,
		"dessert.json": `{
  "type": "menu",
  "name": "DESSERT MENU",
  "description": "Dessert of course!",
  "children": ["pie"]
}`,
		"pie.yaml": `name: Apple Pie
price: 1.59
vegetarian: true
description: Apple pie with a flakey crust`,
	})

	pie := func() domain.Node {
		return domain.NewItem("Apple Pie", "Apple pie with a flakey crust", true, 1.59)
	}
	blueberry := func() domain.Node {
		return domain.NewItem("Blueberry Pancakes", "Pancakes made with fresh blueberries", true, 3.49)
	}
	dessert := func() domain.Node { return domain.NewMenu("DESSERT MENU", "Dessert of course!", pie()) }
	pancake := func() domain.Node { return domain.NewMenu("PANCAKE HOUSE MENU", "Breakfast", blueberry()) }

	tests.TreeLoaderContractTest(t, loader, map[string]domain.Node{
		"menu":      domain.NewMenu("ALL MENUS", "All menus combined", pancake(), dessert()),
		"pancake":   pancake(),
		"blueberry": blueberry(),
		"dessert":   dessert(),
		"pie":       pie(),
	})
}

func TestLoader_List_NormalizesIDs(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"start.md": `---
id: start.md
---
Hello`,
		"choice.json": `{ "id": "choice.json", "price": 1 }`,
		"implicit.md": `---
price: 2
---
ID is implied from filename`,
	})

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"choice", "implicit", "start"}, ids)
}

func TestLoader_List_SkipsSettingsAndState(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"menu.md": `---
type: menu
children: []
---`,
		"arbor.yaml":                 "root: menu\n",
		".arbor/traversals/abc.json": `{"id":"abc","tree":"menu","state":"ready"}`,
	})

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"menu"}, ids)
}

func TestLoader_List_KeepsNestedArborDocuments(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"menu.md": `---
type: menu
children: [sub/arbor]
---`,
		"arbor.yaml": "root: menu\n",
		"sub/arbor.md": `---
name: Arbor Salad
price: 4.5
vegetarian: true
---`,
	})

	ids, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"menu", "sub/arbor"}, ids)

	root, err := loader.Load(context.Background(), "menu")
	require.NoError(t, err)
	menu := root.(*domain.Menu)
	require.Equal(t, 1, menu.Len())
	assert.Equal(t, "Arbor Salad", menu.Children()[0].Name())
}

func TestLoader_List_DetectsCollisions(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"foo.md": `---
id: foo
---
Explicit ID`,
		"foo.json": `{ "id": "foo" }`,
	})

	_, err := loader.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_Defaults(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"soup.md": `---
price: "3.29"
---
Soup of the day`,
	})

	n, err := loader.Load(context.Background(), "soup")
	require.NoError(t, err)
	item, ok := n.(*domain.Item)
	require.True(t, ok, "default type is item")
	assert.Equal(t, "soup", item.Name())
	assert.Equal(t, "Soup of the day", item.Description())
	assert.InDelta(t, 3.29, item.Price(), 1e-9)
	assert.False(t, item.Vegetarian())
}

func TestLoader_SharedChildIsCopied(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"menu.md": `---
type: menu
children: [lunch, dinner]
---`,
		"lunch.md": `---
type: menu
children: [pie]
---`,
		"dinner.md": `---
type: menu
children: [pie]
---`,
		"pie.md": `---
price: 1.59
---`,
	})

	root, err := loader.Load(context.Background(), "menu")
	require.NoError(t, err)
	assert.NoError(t, domain.Validate(root))
	_, items := domain.Count(root)
	assert.Equal(t, 2, items)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		root    string
		wantErr error
		wantMsg string
	}{
		{
			name: "Cycle",
			files: map[string]string{
				"a.md": "---\ntype: menu\nchildren: [b]\n---",
				"b.md": "---\ntype: menu\nchildren: [a]\n---",
			},
			root:    "a",
			wantErr: domain.ErrCycle,
		},
		{
			name:    "Self Reference",
			files:   map[string]string{"a.md": "---\ntype: menu\nchildren: [a]\n---"},
			root:    "a",
			wantErr: domain.ErrCycle,
		},
		{
			name:    "Missing Child",
			files:   map[string]string{"a.md": "---\ntype: menu\nchildren: [ghost]\n---"},
			root:    "a",
			wantErr: domain.ErrNodeNotFound,
			wantMsg: "child of a",
		},
		{
			name:    "Item With Children",
			files:   map[string]string{"a.md": "---\nchildren: [b]\n---", "b.md": "---\nprice: 1\n---"},
			root:    "a",
			wantMsg: "cannot have children",
		},
		{
			name:    "Unknown Type",
			files:   map[string]string{"a.md": "---\ntype: drink\n---"},
			root:    "a",
			wantMsg: "unknown type",
		},
		{
			name:    "Bad Price",
			files:   map[string]string{"a.md": "---\nprice: cheap\n---"},
			root:    "a",
			wantMsg: "invalid price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newLoader(t, tt.files)
			_, err := loader.Load(context.Background(), tt.root)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoader_Watch(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{"pie.md": "---\nprice: 1\n---"})
	loader := New(loam.NewTypedRepository[NodeMetadata](repo))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	cancel()
	// The relay closes once the context is done.
	for range ch {
	}
}
