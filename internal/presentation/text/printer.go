package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/traverse"
)

const rule = "---------------------"

// VegetarianTitle heads the listing of vegetarian items.
const VegetarianTitle = "VEGETARIAN MENU"

// PrintMenu writes the whole tree in pre-order: a heading per menu followed by its children.
func PrintMenu(w io.Writer, root domain.Node) error {
	p := &printer{w: w}
	for step := range traverse.Walk(root) {
		switch n := step.Node.(type) {
		case *domain.Menu:
			p.printf("\n%s, %s\n%s\n", n.Name(), n.Description(), rule)
		case *domain.Item:
			p.item(n)
		}
	}
	return p.err
}

// PrintItems writes a flat listing of items under title.
func PrintItems(w io.Writer, title string, items []*domain.Item) error {
	p := &printer{w: w}
	p.printf("\n%s\n----\n", title)
	for _, item := range items {
		p.item(item)
	}
	return p.err
}

// PrintItem writes a single item in the listing format.
func PrintItem(w io.Writer, item *domain.Item) error {
	p := &printer{w: w}
	p.item(item)
	return p.err
}

// Markdown renders the tree as a Markdown document: menus become headings
// (capped at level 6) and items list entries.
func Markdown(root domain.Node) string {
	var sb strings.Builder
	inList := false
	for step := range traverse.Walk(root) {
		switch n := step.Node.(type) {
		case *domain.Menu:
			if inList {
				sb.WriteString("\n")
				inList = false
			}
			fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", min(step.Depth+1, 6)), n.Name())
			if d := n.Description(); d != "" {
				fmt.Fprintf(&sb, "_%s_\n\n", d)
			}
		case *domain.Item:
			inList = true
			fmt.Fprintf(&sb, "- **%s**", n.Name())
			if n.Vegetarian() {
				sb.WriteString(" (v)")
			}
			fmt.Fprintf(&sb, " `%.2f`", n.Price())
			if d := n.Description(); d != "" {
				fmt.Fprintf(&sb, ": %s", d)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) item(i *domain.Item) {
	veg := ""
	if i.Vegetarian() {
		veg = "(v)"
	}
	p.printf(" %s%s, %.2f\n     -- %s\n", i.Name(), veg, i.Price(), i.Description())
}
