package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/aretw0/arbor/pkg/domain"
)

var menuLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `\d+(\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Formats understood by Compile, keyed by file extension.
const (
	FormatDSL  = ".menu"
	FormatYAML = ".yaml"
	FormatYML  = ".yml"
	FormatJSON = ".json"
)

// Compiler turns whole-tree documents into domain nodes.
type Compiler struct {
	parser *participle.Parser[menuFile]
}

// New builds the menu DSL parser.
func New() (*Compiler, error) {
	parser, err := participle.Build[menuFile](
		participle.Lexer(menuLexer),
		participle.Elide("whitespace", "comment"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Compiler{parser: parser}, nil
}

// Supported reports whether filename has an extension Compile understands.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case FormatDSL, FormatYAML, FormatYML, FormatJSON:
		return true
	}
	return false
}

// Compile decodes src according to the extension of filename.
// The result is always a valid tree.
func (c *Compiler) Compile(filename string, src []byte) (domain.Node, error) {
	var (
		root domain.Node
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case FormatDSL:
		root, err = c.ParseDSL(filename, src)
	case FormatYAML, FormatYML:
		root, err = ParseYAML(src)
	case FormatJSON:
		root, err = domain.UnmarshalNode(src)
	default:
		return nil, fmt.Errorf("unsupported menu format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := domain.Validate(root); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return root, nil
}

// ParseDSL parses the menu DSL:
//
//	menu "DINER MENU" "Lunch" {
//	    item "Hotdog" "A hot dog" 3.05
//	    item "Vegetarian BLT" 2.99 veg
//	}
func (c *Compiler) ParseDSL(filename string, src []byte) (domain.Node, error) {
	file, err := c.parser.ParseBytes(filename, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return convertEntry(file.Root), nil
}

func convertEntry(e *entry) domain.Node {
	switch {
	case e.Item != nil:
		return domain.NewItem(e.Item.Name, e.Item.Description, e.Item.Vegetarian, e.Item.Price)
	case e.Menu != nil:
		m := domain.NewMenu(e.Menu.Name, e.Menu.Description)
		for _, child := range e.Menu.Children {
			m.Add(convertEntry(child))
		}
		return m
	default:
		panic("compiler: empty entry")
	}
}
