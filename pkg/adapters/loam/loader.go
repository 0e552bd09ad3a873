package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/spf13/cast"
)

// ConfigFileName is the settings file kept next to the documents; it is never a node.
const ConfigFileName = "arbor.yaml"

// WatchPattern selects the documents that can describe menu nodes.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Loader adapts the Loam library to the Arbor TreeLoader interface.
// Each document is one node; menus reference their children by document ID.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Load resolves the tree rooted at id, following children references.
// A document may be referenced from several menus; each reference yields its
// own node. A reference back to an ancestor fails with domain.ErrCycle.
func (l *Loader) Load(ctx context.Context, id string) (domain.Node, error) {
	index, err := l.Index(ctx)
	if err != nil {
		return nil, err
	}
	return l.resolve(ctx, NormalizeID(id), index, make(map[string]bool), nil)
}

// List lists all node IDs in the repository, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	index, err := l.Index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Index maps normalized node IDs to the document IDs Loam knows them by.
func (l *Loader) Index(ctx context.Context) (map[string]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	index := make(map[string]string, len(docs))
	for _, doc := range docs {
		if skipped(doc.ID) {
			continue
		}
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := NormalizeID(rawID)

		if existing, ok := index[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		index[id] = NormalizeID(doc.ID)
	}
	return index, nil
}

func (l *Loader) resolve(ctx context.Context, id string, index map[string]string, visited map[string]bool, path []string) (domain.Node, error) {
	docID, ok := index[id]
	if !ok {
		if len(path) == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s (child of %s)", domain.ErrNodeNotFound, id, path[len(path)-1])
	}
	if visited[id] {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrCycle, strings.Join(path, " -> "), id)
	}

	// DFS Cycle Detection: Mark
	visited[id] = true
	defer delete(visited, id)

	doc, err := l.Repo.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	meta := doc.Data

	name := meta.Name
	if name == "" {
		name = id
	}
	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(doc.Content)
	}

	switch strings.ToLower(meta.Type) {
	case "", domain.NodeTypeItem:
		if len(meta.Children) > 0 {
			return nil, fmt.Errorf("item %s cannot have children", id)
		}
		price, err := cast.ToFloat64E(meta.Price)
		if err != nil {
			return nil, fmt.Errorf("item %s has invalid price %v: %w", id, meta.Price, err)
		}
		return domain.NewItem(name, description, meta.Vegetarian, price), nil

	case domain.NodeTypeMenu:
		menu := domain.NewMenu(name, description)
		path = append(path, id)
		for _, ref := range meta.Children {
			child, err := l.resolve(ctx, NormalizeID(ref), index, visited, path)
			if err != nil {
				return nil, err
			}
			menu.Add(child)
		}
		return menu, nil

	default:
		return nil, fmt.Errorf("node %s has unknown type %q", id, meta.Type)
	}
}

// skipped reports documents that never describe nodes: the settings file and
// anything under a hidden directory such as .arbor.
// Loam drops extensions from document IDs, so the top-level id "arbor" is
// reserved for the settings file. Nested documents named arbor are kept.
func skipped(docID string) bool {
	p := filepath.ToSlash(docID)
	if NormalizeID(p) == NormalizeID(ConfigFileName) {
		return true
	}
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}

// NormalizeID strips the file extension and uses forward slashes.
func NormalizeID(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- NormalizeID(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
