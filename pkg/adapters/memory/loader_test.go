package memory_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	contract "github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	trees := map[string]domain.Node{
		"menu": domain.NewMenu("ALL MENUS", "",
			domain.NewItem("Pasta", "Spaghetti with Marinara Sauce", true, 3.89),
			domain.NewMenu("DESSERT MENU", "", domain.NewItem("Apple Pie", "", true, 1.59)),
		),
		"special": domain.NewItem("Soup of the day", "", false, 3.29),
	}

	loader, err := memory.NewFromNodes(trees)
	require.NoError(t, err)

	contract.TreeLoaderContractTest(t, loader, trees)
}

func TestNewLoader_JSON(t *testing.T) {
	loader, err := memory.NewLoader(map[string]string{
		"menu": `{"type":"menu","name":"root","children":[{"type":"item","name":"a","price":1.5,"vegetarian":true}]}`,
	})
	require.NoError(t, err)

	want := domain.NewMenu("root", "", domain.NewItem("a", "", true, 1.5))
	contract.TreeLoaderContractTest(t, loader, map[string]domain.Node{"menu": want})

	_, err = memory.NewLoader(map[string]string{"bad": `{"type":"drink"}`})
	assert.Error(t, err)
}

func TestNewFromNodes_RejectsNonTree(t *testing.T) {
	shared := domain.NewItem("x", "", false, 1)
	_, err := memory.NewFromNodes(map[string]domain.Node{
		"menu": domain.NewMenu("r", "", shared, shared),
	})
	assert.ErrorIs(t, err, domain.ErrNotATree)

	_, err = memory.NewFromNodes(map[string]domain.Node{"": domain.NewMenu("r", "")})
	assert.Error(t, err)
}
