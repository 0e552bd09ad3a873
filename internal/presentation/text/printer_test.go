package text_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aretw0/arbor/internal/presentation/text"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() domain.Node {
	return domain.NewMenu("ALL MENUS", "All menus combined",
		domain.NewMenu("DINER MENU", "Lunch",
			domain.NewItem("Hotdog", "A hot dog", false, 3.05),
			domain.NewMenu("DESSERT MENU", "Dessert of course!",
				domain.NewItem("Apple Pie", "Apple pie", true, 1.59),
			),
		),
	)
}

func TestPrintMenu(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, text.PrintMenu(&buf, tree()))

	want := "\nALL MENUS, All menus combined\n---------------------\n" +
		"\nDINER MENU, Lunch\n---------------------\n" +
		" Hotdog, 3.05\n     -- A hot dog\n" +
		"\nDESSERT MENU, Dessert of course!\n---------------------\n" +
		" Apple Pie(v), 1.59\n     -- Apple pie\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, text.PrintItems(&buf, text.VegetarianTitle, query.Collect(tree(), query.Vegetarian())))

	assert.Equal(t, "\nVEGETARIAN MENU\n----\n Apple Pie(v), 1.59\n     -- Apple pie\n", buf.String())
}

func TestPrintItem(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, text.PrintItem(&buf, domain.NewItem("Hotdog", "A hot dog", false, 3.05)))
	assert.Equal(t, " Hotdog, 3.05\n     -- A hot dog\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPrintMenu_WriteError(t *testing.T) {
	assert.EqualError(t, text.PrintMenu(failingWriter{}, tree()), "disk full")
}

func TestMarkdown(t *testing.T) {
	got := text.Markdown(tree())

	assert.Equal(t, "# ALL MENUS\n\n_All menus combined_\n\n"+
		"## DINER MENU\n\n_Lunch_\n\n"+
		"- **Hotdog** `3.05`: A hot dog\n\n"+
		"### DESSERT MENU\n\n_Dessert of course!_\n\n"+
		"- **Apple Pie** (v) `1.59`: Apple pie\n", got)
}
