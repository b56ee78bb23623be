// Package structidx builds lookup tables over a PDF's tag tree, resolving
// structure elements of interest by the page and marked-content id (MCID)
// or object reference that realizes them in the page content.
package structidx

import (
	"strings"

	"github.com/benoitkugler/pdfremediate/model"
)

// PageMCID identifies a marked-content sequence on a page.
type PageMCID struct {
	Page *model.PageObject
	MCID int
}

// PageObjRef identifies a PDF object (an image, a form XObject, an
// annotation) associated with a page outside of its content stream.
type PageObjRef struct {
	Page *model.PageObject
	Obj  model.StructParentObject
}

// Index is the set of lookup tables built from a structure tree for a
// fixed set of target roles (typically Figure and Link).
type Index struct {
	ByMCID   map[PageMCID]*model.StructureElement
	ByObjRef map[PageObjRef]*model.StructureElement

	// ByRole lists, for each resolved target role, every matching
	// element in document order (depth-first, left to right).
	ByRole map[string][]*model.StructureElement
}

func newIndex() *Index {
	return &Index{
		ByMCID:   map[PageMCID]*model.StructureElement{},
		ByObjRef: map[PageObjRef]*model.StructureElement{},
		ByRole:   map[string][]*model.StructureElement{},
	}
}

// ResolveRole follows `roleMap` up to 5 hops, the limit spec.md's
// Bookmark Builder uses for heading-role aliases; the same limit is
// applied here since role aliasing is not specific to headings.
func ResolveRole(role model.Name, roleMap map[model.Name]model.Name) string {
	seen := map[model.Name]bool{}
	cur := role
	for i := 0; i < 5; i++ {
		if seen[cur] {
			break
		}
		seen[cur] = true
		mapped, ok := roleMap[cur]
		if !ok || mapped == cur {
			break
		}
		cur = mapped
	}
	return string(cur)
}

// Build walks `tree` in document order and indexes every structure
// element whose resolved role is one of `targetRoles`, by (page, MCID)
// and by (page, object reference), following spec.md §4.8's traversal
// rules: Pg is inherited from the nearest ancestor that sets it, and the
// first writer wins on duplicate keys.
func Build(tree *model.StructureTree, targetRoles ...string) *Index {
	idx := newIndex()
	if tree == nil {
		return idx
	}
	wanted := make(map[string]bool, len(targetRoles))
	for _, r := range targetRoles {
		wanted[r] = true
	}

	// Explicit work stack: structure-tree depth is unbounded (unlike the
	// Bookmark Builder's heading traversal, which is bounded to depth ~6
	// and is left recursive), so this walk avoids growing the Go call
	// stack with document depth.
	type frame struct {
		se *model.StructureElement
		pg *model.PageObject
	}
	stack := make([]frame, 0, len(tree.K))
	for i := len(tree.K) - 1; i >= 0; i-- {
		stack = append(stack, frame{tree.K[i], nil})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		se := f.se
		if se == nil {
			continue
		}
		pg := f.pg
		if se.Pg != nil {
			pg = se.Pg
		}

		role := ResolveRole(se.S, tree.RoleMap)
		if wanted[role] {
			idx.ByRole[role] = append(idx.ByRole[role], se)
		}

		var structKids []*model.StructureElement
		for _, kid := range se.K {
			switch k := kid.(type) {
			case *model.StructureElement:
				structKids = append(structKids, k)
			case model.ContentItemMarkedReference:
				kidPg := pg
				if containerPg, ok := k.Container.(*model.PageObject); ok && containerPg != nil {
					kidPg = containerPg
				}
				if kidPg == nil || !wanted[role] {
					continue
				}
				key := PageMCID{Page: kidPg, MCID: k.MCID}
				if _, exists := idx.ByMCID[key]; !exists {
					idx.ByMCID[key] = se
				}
			case model.ContentItemObjectReference:
				kidPg := pg
				if k.Pg != nil {
					kidPg = k.Pg
				}
				if kidPg == nil || k.Obj == nil || !wanted[role] {
					continue
				}
				key := PageObjRef{Page: kidPg, Obj: k.Obj}
				if _, exists := idx.ByObjRef[key]; !exists {
					idx.ByObjRef[key] = se
				}
			}
		}
		// Push in reverse so the leftmost kid is processed next and its
		// whole subtree completes before its siblings, preserving
		// document order.
		for i := len(structKids) - 1; i >= 0; i-- {
			stack = append(stack, frame{structKids[i], pg})
		}
	}
	return idx
}

// IsHeading reports whether a resolved role name is "H" or "H1".."H6".
func IsHeading(role string) (level int, ok bool) {
	if role == "H" {
		return 1, true
	}
	if len(role) == 2 && role[0] == 'H' && role[1] >= '1' && role[1] <= '6' {
		return int(role[1] - '0'), true
	}
	return 0, false
}

// NormalizeWhitespace collapses runs of whitespace into single spaces
// and trims the result, matching the "normalized whitespace" rule used
// throughout spec.md.
func NormalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
