/*
Package dsl provides a Go DSL for programmatically constructing Arbor menu trees.

It lets developers describe menus with a fluent builder instead of relying on
external YAML or Markdown files. This is particularly useful for tests and for
generating menus at runtime.

Example usage:

	menu := dsl.Menu("ALL MENUS", "All menus combined").
		Sub("PANCAKE HOUSE MENU", "Breakfast", func(m *dsl.MenuBuilder) {
			m.Item("K&B's Pancake Breakfast", "Pancakes with scrambled eggs and toast", 2.99).Veg()
			m.Item("Regular Pancake Breakfast", "Pancakes with fried eggs, sausage", 2.99)
		}).
		Sub("DINER MENU", "Lunch", func(m *dsl.MenuBuilder) {
			m.Item("Hotdog", "A hot dog, with saurkraut", 3.05)
		})

	// The resulting set can be used as a ports.TreeLoader
	loader, err := dsl.New().Tree("menu", menu).Build()
	// ... pass loader to arbor.New("", arbor.WithLoader(loader))
*/
package dsl
