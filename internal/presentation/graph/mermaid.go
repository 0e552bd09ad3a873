package graph

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/traverse"
)

// GraphOverlay contains traversal state to visualize on the graph.
// Node IDs are the ones produced by NodeID.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// NodeID names the node reached by following child indexes from the root.
// The root itself is "n".
func NodeID(path []int) string {
	var sb strings.Builder
	sb.WriteString("n")
	for _, i := range path {
		sb.WriteByte('_')
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}

// OverlayFor marks the first visited items of root, in traversal order, and
// the last of them as current.
func OverlayFor(root domain.Node, visited int) *GraphOverlay {
	overlay := &GraphOverlay{}
	if visited <= 0 {
		return overlay
	}
	for id, step := range steps(root) {
		if _, ok := step.Node.(*domain.Item); !ok {
			continue
		}
		overlay.VisitedNodes = append(overlay.VisitedNodes, id)
		overlay.CurrentNode = id
		if len(overlay.VisitedNodes) == visited {
			break
		}
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of the tree.
// It applies semantic styling:
// - Menu: [[Subroutine]]
// - Item: ("Rounded"), with its price
// - Vegetarian items get the veg class
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(root domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var vegetarian []string
	parents := []string{}
	for id, step := range steps(root) {
		parents = parents[:step.Depth]

		switch n := step.Node.(type) {
		case *domain.Menu:
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, escapeLabel(n.Name()))
		case *domain.Item:
			fmt.Fprintf(&sb, "    %s(\"%s <br/> %.2f\")\n", id, escapeLabel(n.Name()), n.Price())
			if n.Vegetarian() {
				vegetarian = append(vegetarian, id)
			}
		}
		if step.Depth > 0 {
			fmt.Fprintf(&sb, "    %s --> %s\n", parents[step.Depth-1], id)
		}
		parents = append(parents, id)
	}

	if len(vegetarian) > 0 {
		sb.WriteString("\n    classDef veg stroke:#2e7d32,stroke-width:2px;\n")
		fmt.Fprintf(&sb, "    class %s veg;\n", strings.Join(vegetarian, ","))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			if id == "" || seen[id] || id == overlay.CurrentNode {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.CurrentNode)
		}
	}

	return sb.String()
}

// steps pairs every node of root, in pre-order, with its NodeID.
func steps(root domain.Node) iter.Seq2[string, traverse.Step] {
	return func(yield func(string, traverse.Step) bool) {
		var path []int
		for step := range traverse.Walk(root) {
			if step.Depth == 0 {
				path = path[:0]
			} else {
				path = append(path[:step.Depth-1], step.Index)
			}
			if !yield(NodeID(path), step) {
				return
			}
		}
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
