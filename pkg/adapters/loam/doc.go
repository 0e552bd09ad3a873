/*
Package loam loads menu trees from a directory of Markdown, YAML or JSON
documents through github.com/aretw0/loam.

Every document is a node. Frontmatter keys:

	type: menu            # or item (default)
	name: DINER MENU      # defaults to the document ID
	description: Lunch    # defaults to the document body
	children: [hotdog, dessert]   # menus only, in display order
	price: 3.05           # items only
	vegetarian: false     # items only
*/
package loam
