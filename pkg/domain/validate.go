package domain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Validate checks that root describes a tree: every node is reachable exactly
// once. Cycles and shared children both fail with ErrNotATree.
// The check runs on an explicit stack so depth is bounded by heap, not by the
// goroutine stack.
func Validate(root Node) error {
	if isNil(root) {
		return fmt.Errorf("%w: nil root", ErrNotATree)
	}
	seen := make(map[Node]struct{})
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %s %q is reachable more than once", ErrNotATree, TypeOf(n), n.Name())
		}
		seen[n] = struct{}{}

		switch v := n.(type) {
		case *Item:
		case *Menu:
			stack = append(stack, v.children...)
		default:
			panic(fmt.Sprintf("domain: unknown node type %T", n))
		}
	}
	return nil
}

// Count returns the number of menus and items under root, root included.
// root must be a valid tree.
func Count(root Node) (menus, items int) {
	if isNil(root) {
		return 0, 0
	}
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v := n.(type) {
		case *Item:
			items++
		case *Menu:
			menus++
			stack = append(stack, v.children...)
		default:
			panic(fmt.Sprintf("domain: unknown node type %T", n))
		}
	}
	return menus, items
}

// Fingerprint returns an order-sensitive structural hash of the tree.
// Two trees with the same shape, names, descriptions and item values hash
// equally. root must be a valid tree.
func Fingerprint(root Node) uint64 {
	d := xxhash.New()
	if isNil(root) {
		return d.Sum64()
	}

	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = d.Write(buf[:])
		_, _ = d.WriteString(s)
	}
	writeUint := func(u uint64) {
		binary.LittleEndian.PutUint64(buf[:], u)
		_, _ = d.Write(buf[:])
	}

	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := n.(type) {
		case *Item:
			_, _ = d.Write([]byte{'i'})
			writeString(v.name)
			writeString(v.description)
			writeUint(math.Float64bits(v.price))
			if v.vegetarian {
				_, _ = d.Write([]byte{1})
			} else {
				_, _ = d.Write([]byte{0})
			}
		case *Menu:
			_, _ = d.Write([]byte{'m'})
			writeString(v.name)
			writeString(v.description)
			writeUint(uint64(len(v.children)))
			// Push in reverse so children are hashed in declared order.
			for i := len(v.children) - 1; i >= 0; i-- {
				stack = append(stack, v.children[i])
			}
		default:
			panic(fmt.Sprintf("domain: unknown node type %T", n))
		}
	}
	return d.Sum64()
}

func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Item:
		return v == nil
	case *Menu:
		return v == nil
	}
	return false
}
