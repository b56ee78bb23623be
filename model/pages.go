package model

// PageNode is either a `PageTree` or a `PageObject`
type PageNode interface {
	isPageNode()
	pdfString(pdf pdfWriter) string
	clone(cache cloneCache) PageNode
}

func (*PageTree) isPageNode()   {}
func (*PageObject) isPageNode() {}

// PageTree describe the page hierarchy
// of a PDF file.
type PageTree struct {
	Parent    *PageTree
	Kids      []PageNode
	Resources *ResourcesDict // if nil, will be inherited from the parent
}

// Count returns the number of Page objects (leaf node)
// in all the descendants of `p` (not only in its direct children)
func (p *PageTree) Count() int {
	return len(p.Flatten())
}

// Flatten returns all the leaf of the tree,
// respecting the indexing convention for pages (0-based):
// the page with index i is Flatten()[i].
// Be aware that inherited resource are not resolved
func (p *PageTree) Flatten() []*PageObject {
	var out []*PageObject
	for _, kid := range p.Kids {
		switch kid := kid.(type) {
		case *PageTree:
			out = append(out, kid.Flatten()...)
		case *PageObject:
			out = append(out, kid)
		}
	}
	return out
}

// allocateReferences registers `node`, and recursively every descendant
// kid, in `pdf.pages`, so that forward references (page labels, outline
// destinations, link annotations) may resolve to an object number before
// the page itself is actually written.
func (pdf pdfWriter) allocateReferences(node PageNode) {
	pdf.pages[node] = pdf.CreateObject()
	if tree, ok := node.(*PageTree); ok {
		for _, kid := range tree.Kids {
			pdf.allocateReferences(kid)
		}
	}
}

// pdfString writes the dictionary for the page tree node `p`.
// As a side effect, every descendant kid is written to `pdf`,
// using the reference preallocated by `allocateReferences`.
func (p *PageTree) pdfString(pdf pdfWriter) string {
	kidsRefs := make([]Reference, len(p.Kids))
	for i, kid := range p.Kids {
		ref := pdf.pages[kid]
		pdf.WriteObject(kid.pdfString(pdf), ref)
		kidsRefs[i] = ref
	}
	b := newBuffer()
	b.fmt("<</Type/Pages/Kids %s/Count %d", writeRefArray(kidsRefs), p.Count())
	if p.Parent != nil {
		b.fmt("/Parent %s", pdf.pages[p.Parent])
	}
	if p.Resources != nil {
		ref := pdf.pages[p]
		b.fmt("/Resources %s", p.Resources.pdfString(pdf, ref))
	}
	b.WriteString(">>")
	return b.String()
}

// clone fills the preallocated clone of `p` registered by
// `cloneCache.allocateClones`, or returns a fresh one if `p` is the
// (unregistered) root of the tree.
func (p *PageTree) clone(cache cloneCache) PageNode {
	out, _ := cache.pages[p].(*PageTree)
	if out == nil {
		out = new(PageTree)
	}
	if p.Parent != nil {
		out.Parent, _ = cache.pages[p.Parent].(*PageTree)
	}
	if p.Resources != nil {
		r := p.Resources.clone(cache)
		out.Resources = &r
	}
	if p.Kids != nil {
		out.Kids = make([]PageNode, len(p.Kids))
		for i, kid := range p.Kids {
			out.Kids[i] = kid.clone(cache)
		}
	}
	return out
}

// allocateClones registers `node`, and recursively every descendant kid,
// in `cache.pages`, so that sibling or cousin pages referenced by a link
// annotation or an outline destination may be resolved even before they
// are cloned themselves.
func (cache cloneCache) allocateClones(node PageNode) {
	if _, has := cache.pages[node]; has {
		return
	}
	switch node := node.(type) {
	case *PageTree:
		cache.pages[node] = new(PageTree)
		for _, kid := range node.Kids {
			cache.allocateClones(kid)
		}
	case *PageObject:
		cache.pages[node] = new(PageObject)
	}
}

type PageObject struct {
	Parent                    *PageTree
	Resources                 *ResourcesDict // if nil, will be inherited from the parent
	MediaBox                  *Rectangle     // if nil, will be inherited from the parent
	CropBox                   *Rectangle     // if nil, will be inherited. if still nil, default to MediaBox
	BleedBox, TrimBox, ArtBox *Rectangle     // if nil, default to CropBox
	Rotate                    *Rotation      // if nil, will be inherited from the parent. Only multiple of 90 are allowed
	Annots                    []*AnnotationDict
	Contents                  Contents
	StructParents             MaybeInt // optional, key into the structure parent tree
	Tabs                      Name     // optional, tab order: /R, /C, /S, /A, /W
}

// pdfString writes the dictionary for the page `p`.
func (p *PageObject) pdfString(pdf pdfWriter) string {
	b := newBuffer()
	b.WriteString("<</Type/Page")
	if p.Parent != nil {
		b.fmt("/Parent %s", pdf.pages[p.Parent])
	}
	if p.Resources != nil {
		ref := pdf.pages[p]
		b.fmt("/Resources %s", p.Resources.pdfString(pdf, ref))
	}
	if p.MediaBox != nil {
		b.fmt("/MediaBox %s", p.MediaBox.String())
	}
	if p.CropBox != nil {
		b.fmt("/CropBox %s", p.CropBox.String())
	}
	if p.BleedBox != nil {
		b.fmt("/BleedBox %s", p.BleedBox.String())
	}
	if p.TrimBox != nil {
		b.fmt("/TrimBox %s", p.TrimBox.String())
	}
	if p.ArtBox != nil {
		b.fmt("/ArtBox %s", p.ArtBox.String())
	}
	if p.Rotate != nil {
		b.fmt("/Rotate %d", p.Rotate.Degrees())
	}
	if len(p.Annots) != 0 {
		refs := make([]Reference, len(p.Annots))
		for i, a := range p.Annots {
			refs[i] = pdf.addItem(a)
		}
		b.fmt("/Annots %s", writeRefArray(refs))
	}
	if sp, ok := p.StructParents.(ObjInt); ok {
		b.fmt("/StructParents %d", sp)
	}
	if p.Tabs != "" {
		b.fmt("/Tabs %s", p.Tabs)
	}
	if len(p.Contents) != 0 {
		refs := make([]Reference, len(p.Contents))
		for i := range p.Contents {
			content, stream := p.Contents[i].Stream.PDFContent()
			refs[i] = pdf.addObject(content, stream)
		}
		if len(refs) == 1 {
			b.fmt("/Contents %s", refs[0])
		} else {
			b.fmt("/Contents %s", writeRefArray(refs))
		}
	}
	b.WriteString(">>")
	return b.String()
}

func (p *PageObject) clone(cache cloneCache) PageNode {
	out, _ := cache.pages[p].(*PageObject)
	if out == nil {
		out = new(PageObject)
	}
	*out = *p
	if p.Parent != nil {
		out.Parent, _ = cache.pages[p.Parent].(*PageTree)
	}
	if p.Resources != nil {
		r := p.Resources.clone(cache)
		out.Resources = &r
	}
	if p.MediaBox != nil {
		r := *p.MediaBox
		out.MediaBox = &r
	}
	if p.CropBox != nil {
		r := *p.CropBox
		out.CropBox = &r
	}
	if p.BleedBox != nil {
		r := *p.BleedBox
		out.BleedBox = &r
	}
	if p.TrimBox != nil {
		r := *p.TrimBox
		out.TrimBox = &r
	}
	if p.ArtBox != nil {
		r := *p.ArtBox
		out.ArtBox = &r
	}
	if p.Rotate != nil {
		r := *p.Rotate
		out.Rotate = &r
	}
	if p.Annots != nil {
		out.Annots = make([]*AnnotationDict, len(p.Annots))
		for i, a := range p.Annots {
			out.Annots[i] = cache.checkOrClone(a).(*AnnotationDict)
		}
	}
	if p.Contents != nil {
		out.Contents = make(Contents, len(p.Contents))
		for i, c := range p.Contents {
			out.Contents[i] = c.Clone()
		}
	}
	return out
}

// Contents is an array of stream (often of length 1)
type Contents []ContentStream

type ResourcesDict struct {
	ExtGState  map[Name]*GraphicState // optionnal
	ColorSpace map[Name]ColorSpace
	Shading    map[Name]*ShadingDict
	Pattern    map[Name]Pattern
	Font       map[Name]*FontDict
	XObject    map[Name]XObject
	Properties map[Name]PropertyList
}

// NewResourcesDict returns a ResourcesDict with all the maps
// allocated, ready to be filled in place (see ParseContentResources).
func NewResourcesDict() ResourcesDict {
	return ResourcesDict{
		ExtGState:  make(map[Name]*GraphicState),
		ColorSpace: make(map[Name]ColorSpace),
		Shading:    make(map[Name]*ShadingDict),
		Pattern:    make(map[Name]Pattern),
		Font:       make(map[Name]*FontDict),
		XObject:    make(map[Name]XObject),
		Properties: make(map[Name]PropertyList),
	}
}

// IsEmpty returns `true` if none of the resource categories has an entry,
// meaning the dictionary doesn't need to be written.
func (r ResourcesDict) IsEmpty() bool {
	return len(r.ExtGState) == 0 && len(r.ColorSpace) == 0 && len(r.Shading) == 0 &&
		len(r.Pattern) == 0 && len(r.Font) == 0 && len(r.XObject) == 0 && len(r.Properties) == 0
}

func (r ResourcesDict) pdfString(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.WriteString("<<")
	if len(r.ExtGState) != 0 {
		b.WriteString("/ExtGState <<")
		for name, gs := range r.ExtGState {
			b.fmt("%s %s", name, pdf.addItem(gs))
		}
		b.WriteString(">>")
	}
	if len(r.ColorSpace) != 0 {
		b.WriteString("/ColorSpace <<")
		for name, cs := range r.ColorSpace {
			b.fmt("%s %s", name, cs.colorSpacePDFString(pdf))
		}
		b.WriteString(">>")
	}
	if len(r.Shading) != 0 {
		b.WriteString("/Shading <<")
		for name, sh := range r.Shading {
			b.fmt("%s %s", name, pdf.addItem(sh))
		}
		b.WriteString(">>")
	}
	if len(r.Pattern) != 0 {
		b.WriteString("/Pattern <<")
		for name, pa := range r.Pattern {
			b.fmt("%s %s", name, pdf.addItem(pa))
		}
		b.WriteString(">>")
	}
	if len(r.Font) != 0 {
		b.WriteString("/Font <<")
		for name, ft := range r.Font {
			b.fmt("%s %s", name, pdf.addItem(ft))
		}
		b.WriteString(">>")
	}
	if len(r.XObject) != 0 {
		b.WriteString("/XObject <<")
		for name, xo := range r.XObject {
			b.fmt("%s %s", name, pdf.addItem(xo))
		}
		b.WriteString(">>")
	}
	if len(r.Properties) != 0 {
		b.WriteString("/Properties <<")
		for name, pl := range r.Properties {
			propRef := pdf.CreateObject()
			pdf.WriteObject(pl.Write(pdf, propRef), propRef)
			b.fmt("%s %s", name, propRef)
		}
		b.WriteString(">>")
	}
	b.WriteString(">>")
	return b.String()
}

func (r ResourcesDict) clone(cache cloneCache) ResourcesDict {
	var out ResourcesDict
	if r.ExtGState != nil {
		out.ExtGState = make(map[Name]*GraphicState, len(r.ExtGState))
		for n, gs := range r.ExtGState {
			out.ExtGState[n] = cache.checkOrClone(gs).(*GraphicState)
		}
	}
	if r.ColorSpace != nil {
		out.ColorSpace = make(map[Name]ColorSpace, len(r.ColorSpace))
		for n, cs := range r.ColorSpace {
			out.ColorSpace[n] = cloneColorSpace(cs, cache)
		}
	}
	if r.Shading != nil {
		out.Shading = make(map[Name]*ShadingDict, len(r.Shading))
		for n, sh := range r.Shading {
			out.Shading[n] = cache.checkOrClone(sh).(*ShadingDict)
		}
	}
	if r.Pattern != nil {
		out.Pattern = make(map[Name]Pattern, len(r.Pattern))
		for n, pa := range r.Pattern {
			out.Pattern[n] = cache.checkOrClone(pa).(Pattern)
		}
	}
	if r.Font != nil {
		out.Font = make(map[Name]*FontDict, len(r.Font))
		for n, ft := range r.Font {
			out.Font[n] = cache.checkOrClone(ft).(*FontDict)
		}
	}
	if r.XObject != nil {
		out.XObject = make(map[Name]XObject, len(r.XObject))
		for n, xo := range r.XObject {
			out.XObject[n] = cache.checkOrClone(xo).(XObject)
		}
	}
	if r.Properties != nil {
		out.Properties = make(map[Name]PropertyList, len(r.Properties))
		for n, pl := range r.Properties {
			out.Properties[n] = pl.Clone().(ObjDict)
		}
	}
	return out
}
