package model

// OutlineNode is either the root `Outline` or an `OutlineItem`,
// acting as the parent of an outline item.
type OutlineNode interface {
	isOutlineNode()
}

func (*Outline) isOutlineNode()     {}
func (*OutlineItem) isOutlineNode() {}

// OutlineFlag specifies the style used when displaying an outline
// item's text.
type OutlineFlag uint8

const (
	OutlineItalic OutlineFlag = 1 << iota
	OutlineBold
)

// Outline is the root of the document outline (bookmark) tree.
type Outline struct {
	First *OutlineItem // first top level item, optional
}

// OutlineItem is one entry of the outline tree. Siblings are
// linked through `Next`; children are reached through `First`.
type OutlineItem struct {
	Title  string
	Parent OutlineNode // either the root `Outline` or an `OutlineItem`
	First  *OutlineItem
	Next   *OutlineItem
	Open   bool // whether the item's children are shown expanded

	Dest Destination // optional, one of Dest or A is meaningful
	A    Action

	C [3]Fl // optional color, default to black
	F OutlineFlag
}

// outlineSiblings walks the `Next` linked list starting at `first`.
func outlineSiblings(first *OutlineItem) []*OutlineItem {
	var out []*OutlineItem
	for it := first; it != nil; it = it.Next {
		out = append(out, it)
	}
	return out
}

// pdfString writes the outline dictionary, and recursively every
// descendant item, allocating an object for each of them.
func (o *Outline) pdfString(pdf pdfWriter, ref Reference) string {
	first, last, count := writeOutlineSiblings(pdf, o.First, ref)
	b := newBuffer()
	b.WriteString("<</Type/Outlines")
	if first != 0 {
		b.fmt("/First %s/Last %s/Count %d", first, last, count)
	}
	b.WriteString(">>")
	return b.String()
}

// writeOutlineSiblings writes the linked list of items starting at
// `first`, whose common parent is referenced by `parentRef`.
// It returns the references of the first and last written items,
// and the total number of visible descendants (following the
// sign convention of the /Count entry).
func writeOutlineSiblings(pdf pdfWriter, first *OutlineItem, parentRef Reference) (firstRef, lastRef Reference, count int) {
	items := outlineSiblings(first)
	if len(items) == 0 {
		return 0, 0, 0
	}
	refs := make([]Reference, len(items))
	for i, it := range items {
		refs[i] = pdf.CreateObject()
		pdf.outlines[it] = refs[i]
	}
	for i, it := range items {
		var prev, next Reference
		if i != 0 {
			prev = refs[i-1]
		}
		if i != len(items)-1 {
			next = refs[i+1]
		}
		childFirst, childLast, childCount := writeOutlineSiblings(pdf, it.First, refs[i])
		content := it.pdfString(pdf, parentRef, prev, next, childFirst, childLast, childCount)
		pdf.WriteObject(content, refs[i])
		total := 1
		if it.Open {
			total += childCount
		}
		count += total
	}
	return refs[0], refs[len(refs)-1], count
}

func (it *OutlineItem) pdfString(pdf pdfWriter, parentRef, prev, next, first, last Reference, childCount int) string {
	b := newBuffer()
	b.fmt("<</Title %s/Parent %s", pdf.EncodeString(it.Title, TextString, parentRef), parentRef)
	if prev != 0 {
		b.fmt("/Prev %s", prev)
	}
	if next != 0 {
		b.fmt("/Next %s", next)
	}
	if first != 0 {
		c := childCount
		if !it.Open {
			c = -c
		}
		b.fmt("/First %s/Last %s/Count %d", first, last, c)
	}
	if it.Dest != nil {
		b.fmt("/Dest %s", it.Dest.pdfDestination(pdf, parentRef))
	} else if it.A.ActionType != nil {
		b.fmt("/A %s", it.A.pdfString(pdf, parentRef))
	}
	if it.C != ([3]Fl{}) {
		b.fmt("/C %s", writeFloatArray(it.C[:]))
	}
	if it.F != 0 {
		b.fmt("/F %d", it.F)
	}
	b.WriteString(">>")
	return b.String()
}

// clone returns a deep copy of the outline tree.
func (o *Outline) clone(cache cloneCache) *Outline {
	if o == nil {
		return nil
	}
	out := &Outline{}
	out.First = cloneOutlineSiblings(o.First, out, cache)
	return out
}

// cloneOutlineSiblings clones the linked list of items starting at
// `first`, attaching `parent` as their common `Parent`.
func cloneOutlineSiblings(first *OutlineItem, parent OutlineNode, cache cloneCache) *OutlineItem {
	items := outlineSiblings(first)
	if len(items) == 0 {
		return nil
	}
	clones := make([]*OutlineItem, len(items))
	for i := range items {
		clones[i] = new(OutlineItem)
	}
	for i, it := range items {
		c := clones[i]
		c.Title = it.Title
		c.Parent = parent
		c.Open = it.Open
		if it.Dest != nil {
			c.Dest = it.Dest.clone(cache)
		}
		c.A = it.A.clone(cache)
		c.C = it.C
		c.F = it.F
		c.First = cloneOutlineSiblings(it.First, c, cache)
		if i != len(items)-1 {
			c.Next = clones[i+1]
		}
	}
	return clones[0]
}
