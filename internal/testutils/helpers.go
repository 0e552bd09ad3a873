package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFiles writes each name/content pair under dir, creating parent directories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
}

// MenuFixture is a small two-level menu laid out as Loam documents.
// Its root ID is "menu".
func MenuFixture() map[string]string {
	return map[string]string{
		"menu.md": `---
type: menu
name: ALL MENUS
children: [pancake, diner]
---
All menus combined`,
		"pancake.md": `---
type: menu
name: PANCAKE HOUSE MENU
children: [kb-breakfast, blueberry]
---
Breakfast`,
		"kb-breakfast.md": `---
name: K&B's Pancake Breakfast
price: 2.99
vegetarian: true
---
Pancakes with scrambled eggs and toast`,
		"blueberry.md": `---
name: Blueberry Pancakes
price: 3.49
vegetarian: true
---
Pancakes made with fresh blueberries`,
		"diner.md": `---
type: menu
name: DINER MENU
children: [hotdog, dessert]
---
Lunch`,
		"hotdog.md": `---
name: Hotdog
price: 3.05
---
A hot dog, with saurkraut, relish, onions, topped with cheese`,
		"dessert.md": `---
type: menu
name: DESSERT MENU
children: [pie]
---
Dessert of course!`,
		"pie.md": `---
name: Apple Pie
price: 1.59
vegetarian: true
---
Apple pie with a flakey crust, topped with vanilla icecream`,
	}
}
