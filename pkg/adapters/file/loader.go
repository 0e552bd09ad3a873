package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/domain"
)

// Loader implements ports.TreeLoader over whole-tree files.
// Each .menu, .yaml, .yml or .json file holds one complete tree whose ID is
// its slash-separated path relative to the root, without extension.
type Loader struct {
	root     string // directory scanned for trees
	single   string // set when the loader was opened on one file
	compiler *compiler.Compiler
}

// NewLoader opens a directory of tree files or a single tree file.
func NewLoader(p string) (*Loader, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open menu source %s: %w", p, err)
	}
	c, err := compiler.New()
	if err != nil {
		return nil, err
	}

	l := &Loader{root: p, compiler: c}
	if !info.IsDir() {
		if !compiler.Supported(p) {
			return nil, fmt.Errorf("unsupported menu file %s", p)
		}
		l.root = filepath.Dir(p)
		l.single = filepath.Base(p)
	}
	return l, nil
}

// Load compiles the file registered under id.
func (l *Loader) Load(ctx context.Context, id string) (domain.Node, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	rel, ok := index[trimExtension(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	src, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return l.compiler.Compile(rel, src)
}

// List returns the IDs of every tree file, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	index, err := l.index(ctx)
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

// index maps tree IDs to file paths relative to root.
func (l *Loader) index(ctx context.Context) (map[string]string, error) {
	if l.single != "" {
		return map[string]string{trimExtension(l.single): l.single}, nil
	}

	index := make(map[string]string)
	err := fs.WalkDir(os.DirFS(l.root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Hidden directories hold state (e.g. .arbor), not trees.
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !compiler.Supported(p) || d.Name() == ConfigFileName {
			return nil
		}
		id := trimExtension(p)
		if existing, ok := index[id]; ok {
			return fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, p)
		}
		index[id] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", l.root, err)
	}
	return index, nil
}

// ConfigFileName is skipped when scanning so arbor.yaml never shows up as a tree.
const ConfigFileName = "arbor.yaml"

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	return strings.TrimSuffix(id, path.Ext(id))
}
