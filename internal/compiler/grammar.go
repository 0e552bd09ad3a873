package compiler

// menuFile is the root of a .menu document: exactly one entry.
type menuFile struct {
	Root *entry `@@`
}

type entry struct {
	Menu *menuDecl `  @@`
	Item *itemDecl `| @@`
}

type menuDecl struct {
	Name        string   `"menu" @String`
	Description string   `@String?`
	Children    []*entry `"{" @@* "}"`
}

type itemDecl struct {
	Name        string  `"item" @String`
	Description string  `@String?`
	Price       float64 `@Number`
	Vegetarian  bool    `@"veg"?`
}
