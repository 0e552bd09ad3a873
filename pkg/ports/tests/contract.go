package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/google/go-cmp/cmp"
)

// TreeLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeLoader.
// want maps each node ID the loader should know about to its expected resolved tree.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, want map[string]domain.Node) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, expected := range want {
			got, err := loader.Load(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", id, err)
			}
			if diff := cmp.Diff(outline(expected), outline(got)); diff != "" {
				t.Errorf("tree mismatch for %s (-want +got):\n%s", id, diff)
			}
			if domain.Fingerprint(got) != domain.Fingerprint(expected) {
				t.Errorf("fingerprint mismatch for %s", id)
			}
			if err := domain.Validate(got); err != nil {
				t.Errorf("loaded tree %s is not a tree: %v", id, err)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-node")
		if !errors.Is(err, domain.ErrNodeNotFound) {
			t.Errorf("expected ErrNodeNotFound for non-existent node, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing nodes: %v", err)
		}
		if len(ids) != len(want) {
			t.Errorf("expected %d nodes, got %d (%v)", len(want), len(ids), ids)
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range want {
			if !lookup[id] {
				t.Errorf("node %s missing from list", id)
			}
		}
	})
}

// outlineRow is a comparable view of a node used for readable diffs.
type outlineRow struct {
	Type       string
	Name       string
	Depth      int
	Price      float64
	Vegetarian bool
}

func outline(root domain.Node) []outlineRow {
	var rows []outlineRow
	for s := range traverse.Walk(root) {
		row := outlineRow{Type: domain.TypeOf(s.Node), Name: s.Node.Name(), Depth: s.Depth}
		if it, ok := s.Node.(*domain.Item); ok {
			row.Price = it.Price()
			row.Vegetarian = it.Vegetarian()
		}
		rows = append(rows, row)
	}
	return rows
}
