package arbor_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// swapLoader serves one mutable tree and counts loads.
type swapLoader struct {
	mu     sync.Mutex
	tree   domain.Node
	loads  atomic.Int32
	events chan string
}

func (l *swapLoader) Load(_ context.Context, id string) (domain.Node, error) {
	l.loads.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()
	if id != "menu" {
		return nil, domain.ErrNodeNotFound
	}
	return l.tree, nil
}

func (l *swapLoader) List(context.Context) ([]string, error) {
	return []string{"menu"}, nil
}

func (l *swapLoader) set(n domain.Node) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tree = n
}

// watchLoader adds change notifications to swapLoader.
type watchLoader struct {
	*swapLoader
}

func (l watchLoader) Watch(context.Context) (<-chan string, error) {
	return l.events, nil
}

func twoItems() domain.Node {
	return domain.NewMenu("M", "",
		domain.NewItem("a", "", true, 1),
		domain.NewMenu("S", "", domain.NewItem("b", "", false, 2)),
	)
}

func names(items []*domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name())
	}
	return out
}

func TestNew_Errors(t *testing.T) {
	_, err := arbor.New("")
	assert.Error(t, err)

	_, err = arbor.New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestEngine_LoamDirectory(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, testutils.MenuFixture())

	engine, err := arbor.New(dir)
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	items, err := engine.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"K&B's Pancake Breakfast",
		"Blueberry Pancakes",
		"Hotdog",
		"Apple Pie",
	}, names(items))

	veg, err := engine.Items(ctx, query.Vegetarian(), query.MaxPrice(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"K&B's Pancake Breakfast", "Apple Pie"}, names(veg))

	infos, err := engine.Inspect(ctx)
	require.NoError(t, err)
	byID := make(map[string]arbor.TreeInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	require.Contains(t, byID, "menu")
	assert.Equal(t, 4, byID["menu"].Menus)
	assert.Equal(t, 4, byID["menu"].Items)
	assert.Equal(t, 1, byID["pie"].Items)
}

func TestEngine_SingleFile(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"breakfast.menu": `menu "PANCAKE HOUSE MENU" "Breakfast" {
    item "Blueberry Pancakes" 3.49 veg
    item "Waffles" "with blueberries" 3.59 veg
}`,
	})

	engine, err := arbor.New(filepath.Join(dir, "breakfast.menu"))
	require.NoError(t, err)
	defer engine.Close()

	assert.Equal(t, "breakfast", engine.Root())
	it, err := engine.Iterator(context.Background())
	require.NoError(t, err)

	var got []string
	for item := range it.All() {
		got = append(got, item.Name())
	}
	assert.Equal(t, []string{"Blueberry Pancakes", "Waffles"}, got)
}

func TestEngine_Traversal(t *testing.T) {
	var started, served, exhausted, loaded atomic.Int32
	hooks := domain.LifecycleHooks{
		OnTreeLoad:       func(context.Context, *domain.TreeEvent) { loaded.Add(1) },
		OnTraversalStart: func(context.Context, *domain.TraversalEvent) { started.Add(1) },
		OnItem:           func(context.Context, *domain.TraversalEvent) { served.Add(1) },
		OnExhausted:      func(context.Context, *domain.TraversalEvent) { exhausted.Add(1) },
	}
	engine, err := arbor.New("", arbor.WithLoader(&swapLoader{tree: twoItems()}), arbor.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	cursor, err := engine.StartTraversal(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "menu", cursor.Tree)
	assert.Equal(t, domain.StateReady, cursor.State)

	more, err := engine.HasNextItem(ctx, cursor.ID)
	require.NoError(t, err)
	assert.True(t, more)

	item, c, err := engine.NextItem(ctx, cursor.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", item.Name())
	assert.Equal(t, domain.StateInProgress, c.State)

	item, c, err = engine.NextItem(ctx, cursor.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", item.Name())
	assert.Equal(t, domain.StateExhausted, c.State)

	_, _, err = engine.NextItem(ctx, cursor.ID)
	assert.ErrorIs(t, err, domain.ErrExhausted)

	more, err = engine.HasNextItem(ctx, cursor.ID)
	require.NoError(t, err)
	assert.False(t, more)

	ids, err := engine.Traversals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{cursor.ID}, ids)

	require.NoError(t, engine.StopTraversal(ctx, cursor.ID))
	_, err = engine.Traversal(ctx, cursor.ID)
	assert.ErrorIs(t, err, domain.ErrTraversalNotFound)

	assert.EqualValues(t, 1, started.Load())
	assert.EqualValues(t, 2, served.Load())
	assert.EqualValues(t, 1, exhausted.Load())
	assert.Positive(t, loaded.Load())
}

func TestEngine_StaleCursor(t *testing.T) {
	loader := &swapLoader{tree: twoItems()}
	engine, err := arbor.New("", arbor.WithLoader(loader))
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	cursor, err := engine.StartTraversal(ctx, "menu")
	require.NoError(t, err)

	loader.set(domain.NewMenu("M", "", domain.NewItem("a", "", true, 1)))
	_, _, err = engine.NextItem(ctx, cursor.ID)
	assert.ErrorIs(t, err, domain.ErrStaleCursor)
}

func TestEngine_UnknownTree(t *testing.T) {
	engine, err := arbor.New("", arbor.WithLoader(&swapLoader{tree: twoItems()}), arbor.WithRoot("drinks"))
	require.NoError(t, err)
	defer engine.Close()

	_, err = engine.Tree(context.Background())
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	_, err = engine.StartTraversal(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestEngine_Cache(t *testing.T) {
	loader := &swapLoader{tree: twoItems()}
	engine, err := arbor.New("", arbor.WithLoader(loader), arbor.WithCacheTTL(time.Minute))
	require.NoError(t, err)

	ctx := context.Background()
	for range 3 {
		_, err := engine.Tree(ctx)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, loader.loads.Load())

	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())
}

func TestEngine_CacheExpiry(t *testing.T) {
	loader := &swapLoader{tree: twoItems()}
	engine, err := arbor.New("", arbor.WithLoader(loader), arbor.WithCacheTTL(10*time.Millisecond))
	require.NoError(t, err)
	defer engine.Close()

	ctx := context.Background()
	_, err = engine.Tree(ctx)
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	_, err = engine.Tree(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loader.loads.Load())
}

func TestEngine_CloseLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	for range 20 {
		engine, err := arbor.New("", arbor.WithLoader(&swapLoader{tree: twoItems()}), arbor.WithCacheTTL(time.Minute))
		require.NoError(t, err)
		_, err = engine.Tree(context.Background())
		require.NoError(t, err)
		require.NoError(t, engine.Close())
	}
}

func TestEngine_Watch(t *testing.T) {
	t.Run("Unsupported", func(t *testing.T) {
		engine, err := arbor.New("", arbor.WithLoader(&swapLoader{tree: twoItems()}))
		require.NoError(t, err)
		defer engine.Close()

		_, err = engine.Watch(context.Background())
		assert.ErrorIs(t, err, arbor.ErrWatchUnsupported)
	})

	t.Run("InvalidatesCache", func(t *testing.T) {
		loader := watchLoader{&swapLoader{tree: twoItems(), events: make(chan string)}}
		engine, err := arbor.New("", arbor.WithLoader(loader), arbor.WithCacheTTL(time.Minute))
		require.NoError(t, err)
		defer engine.Close()

		ctx, cancel := context.WithCancel(context.Background())
		changes, err := engine.Watch(ctx)
		require.NoError(t, err)

		_, err = engine.Tree(ctx)
		require.NoError(t, err)

		loader.set(domain.NewMenu("M", "", domain.NewItem("c", "", false, 3)))
		loader.events <- "menu"
		assert.Equal(t, "menu", <-changes)

		items, err := engine.Items(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, names(items))
		assert.EqualValues(t, 2, loader.loads.Load())

		cancel()
		for range changes {
		}
	})
}
