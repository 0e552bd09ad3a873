package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/spf13/cast"
)

// Report lists the problems found while crawling a menu repository.
// Unreachable documents are warnings: they may be roots of other trees.
type Report struct {
	Root        string
	Visited     int
	Missing     []string
	Cycles      []string
	Invalid     []string
	Unreachable []string
}

// Err returns nil when the tree rooted at Root can be loaded.
func (r *Report) Err() error {
	var problems []string
	for _, m := range r.Missing {
		problems = append(problems, "Missing node: "+m)
	}
	for _, c := range r.Cycles {
		problems = append(problems, "Cycle: "+c)
	}
	problems = append(problems, r.Invalid...)
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
}

type frame struct {
	id       string
	children []string
	next     int
}

// ValidateTree crawls the documents reachable from rootID and reports broken
// child references, cycles, malformed nodes and documents nothing points to.
func ValidateTree(ctx context.Context, repo core.Repository, rootID string) (*Report, error) {
	typed := loam.NewTypedRepository[loamAdapter.NodeMetadata](repo)
	index, err := loamAdapter.New(typed).Index(ctx)
	if err != nil {
		return nil, err
	}

	rootID = loamAdapter.NormalizeID(rootID)
	if _, ok := index[rootID]; !ok {
		return nil, fmt.Errorf("root node '%s': %w", rootID, domain.ErrNodeNotFound)
	}

	report := &Report{Root: rootID}
	visit := func(id string) []string {
		report.Visited++
		doc, err := typed.Get(ctx, index[id])
		if err != nil {
			report.Invalid = append(report.Invalid, fmt.Sprintf("Load error: '%s': %v", id, err))
			return nil
		}
		meta := doc.Data
		switch strings.ToLower(meta.Type) {
		case "", domain.NodeTypeItem:
			if len(meta.Children) > 0 {
				report.Invalid = append(report.Invalid, fmt.Sprintf("Item '%s' has children", id))
			}
			if _, err := cast.ToFloat64E(meta.Price); err != nil {
				report.Invalid = append(report.Invalid, fmt.Sprintf("Item '%s' has invalid price %v", id, meta.Price))
			}
			return nil
		case domain.NodeTypeMenu:
			return meta.Children
		default:
			report.Invalid = append(report.Invalid, fmt.Sprintf("Node '%s' has unknown type %q", id, meta.Type))
			return nil
		}
	}

	visited := map[string]bool{rootID: true}
	onPath := map[string]bool{rootID: true}
	stack := []frame{{id: rootID, children: visit(rootID)}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := &stack[len(stack)-1]
		if top.next >= len(top.children) {
			delete(onPath, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		ref := loamAdapter.NormalizeID(top.children[top.next])
		top.next++

		switch {
		case onPath[ref]:
			path := make([]string, 0, len(stack)+1)
			for _, f := range stack {
				path = append(path, f.id)
			}
			report.Cycles = append(report.Cycles, strings.Join(append(path, ref), " -> "))
		case index[ref] == "":
			report.Missing = append(report.Missing, fmt.Sprintf("'%s' (child of '%s')", ref, top.id))
		case visited[ref]:
			// Shared documents are loaded once per reference.
		default:
			visited[ref] = true
			onPath[ref] = true
			stack = append(stack, frame{id: ref, children: visit(ref)})
		}
	}

	for id := range index {
		if !visited[id] {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	sort.Strings(report.Unreachable)
	return report, nil
}
