package loam

// NodeMetadata represents the frontmatter of a menu document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type NodeMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Type        string `json:"type" mapstructure:"type"` // "menu" or "item" (default)
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`

	// Price is loose on purpose: strict mode yields json.Number, YAML may
	// give float64 or int, and hand-written files sometimes quote it.
	Price      any  `json:"price" mapstructure:"price"`
	Vegetarian bool `json:"vegetarian" mapstructure:"vegetarian"`

	// Children lists child document IDs in display order.
	Children []string `json:"children" mapstructure:"children"`
}
