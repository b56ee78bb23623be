// Package scan walks a page's content stream producing ordered events
// (text run, image, path) annotated with the marked-content id and
// transformation matrix active at the time the operator was seen.
package scan

import (
	cs "github.com/benoitkugler/pdfremediate/contentstream"
	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/reader/parser"
)

// Fl is the library's common floating point type.
type Fl = model.Fl

// noMCID marks content that falls outside any marked-content sequence.
const noMCID = -1

// Line is a straight segment in unrotated page (PDF point) space.
type Line struct {
	X0, Y0, X1, Y1 Fl
}

func (l Line) bounds() model.Rectangle {
	return model.Rectangle{
		Llx: min4(l.X0, l.X1, l.X0, l.X1),
		Lly: min4(l.Y0, l.Y1, l.Y0, l.Y1),
		Urx: max4(l.X0, l.X1, l.X0, l.X1),
		Ury: max4(l.Y0, l.Y1, l.Y0, l.Y1),
	}
}

// TextRun is a contiguous run of text shown under one MCID, with a
// conservative ascent/descent bounding line pair already transformed into
// page space. ActualOrRaw is the text recorded in the accumulator: the
// raw show-text bytes of the run; BDC /ActualText properties are not read.
type TextRun struct {
	MCID        int
	ActualOrRaw string
	AscentLine  Line
	DescentLine Line

	// StartIndex/EndIndex locate this run's text in the page's
	// TextAccumulator buffer.
	StartIndex, EndIndex int
}

// Bounds returns the conservative bounding rectangle of the run: the union
// of the four endpoints of its ascent and descent lines.
func (t TextRun) Bounds() model.Rectangle {
	return unionRect(t.AscentLine.bounds(), t.DescentLine.bounds())
}

// Image is a raster image painted by a Do operator referencing an
// /Image XObject.
type Image struct {
	MCID int
	Obj  *model.XObjectImage
	// Ref is non nil when the image itself carries a /StructParent entry,
	// letting the structure index resolve it by object reference.
	Ref model.StructParentObject
	CTM model.Matrix

	// CharIndex is the position in the page's TextAccumulator buffer at
	// the time this image was painted, used to slice surrounding context.
	CharIndex int
}

// Path is a path-construction sequence terminated by a painting operator.
// Points are already transformed into page space by CTM and are enough to
// compute a conservative bounding box; curve control points are included
// without flattening, which only ever grows the box.
type Path struct {
	MCID           int
	CTM            model.Matrix
	IsClippingOnly bool
	Points         [][2]Fl
}

// Bounds returns the union bounding box of a path's points.
func (p Path) Bounds() model.Rectangle {
	if len(p.Points) == 0 {
		return model.Rectangle{}
	}
	r := model.Rectangle{Llx: p.Points[0][0], Lly: p.Points[0][1], Urx: p.Points[0][0], Ury: p.Points[0][1]}
	for _, pt := range p.Points[1:] {
		r = unionRect(r, model.Rectangle{Llx: pt[0], Lly: pt[1], Urx: pt[0], Ury: pt[1]})
	}
	return r
}

// Events collects everything a Scan pass produced for one page, in
// content-stream order.
type Events struct {
	TextRuns []TextRun
	Images   []Image
	Paths    []Path
	Text     *TextAccumulator
}

// TextAccumulator builds up a page's running text, tracking the character
// range contributed by each appended chunk. A single space is inserted
// between two chunks when neither is already whitespace-adjacent.
type TextAccumulator struct {
	buf []rune
}

// NewTextAccumulator returns an empty accumulator.
func NewTextAccumulator() *TextAccumulator { return &TextAccumulator{} }

// Append adds `text` (preferring actual text over raw show-text bytes is
// the caller's responsibility) and returns its [start, end) rune range in
// the accumulated buffer.
func (a *TextAccumulator) Append(text string) (start, end int) {
	if text == "" {
		return len(a.buf), len(a.buf)
	}
	if len(a.buf) > 0 {
		last := a.buf[len(a.buf)-1]
		first := []rune(text)[0]
		if !isSpace(last) && !isSpace(first) {
			a.buf = append(a.buf, ' ')
		}
	}
	start = len(a.buf)
	a.buf = append(a.buf, []rune(text)...)
	end = len(a.buf)
	return start, end
}

// String returns the accumulated text.
func (a *TextAccumulator) String() string { return string(a.buf) }

// Slice returns the text in [start, end), clamped to the buffer bounds.
func (a *TextAccumulator) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(a.buf) {
		end = len(a.buf)
	}
	if start >= end {
		return ""
	}
	return string(a.buf[start:end])
}

// Context returns up to `radius` runes on each side of [start, end).
func (a *TextAccumulator) Context(start, end, radius int) (before, after string) {
	bs := start - radius
	if bs < 0 {
		bs = 0
	}
	ae := end + radius
	if ae > len(a.buf) {
		ae = len(a.buf)
	}
	return string(a.buf[bs:start]), string(a.buf[end:ae])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// identity is the neutral transformation matrix.
var identity = model.Matrix{1, 0, 0, 1, 0, 0}

// apply transforms the point (x, y) by m.
func apply(m model.Matrix, x, y Fl) (Fl, Fl) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// multiply composes two matrices so that multiply(a, b) applied to a point
// is equivalent to first applying a, then b (PDF's left-to-right `cm`
// composition order).
func multiply(a, b model.Matrix) model.Matrix {
	return model.Matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

func unionRect(a, b model.Rectangle) model.Rectangle {
	if a == (model.Rectangle{}) {
		return b
	}
	if b == (model.Rectangle{}) {
		return a
	}
	return model.Rectangle{
		Llx: minFl(a.Llx, b.Llx),
		Lly: minFl(a.Lly, b.Lly),
		Urx: maxFl(a.Urx, b.Urx),
		Ury: maxFl(a.Ury, b.Ury),
	}
}

func minFl(a, b Fl) Fl {
	if a < b {
		return a
	}
	return b
}

func maxFl(a, b Fl) Fl {
	if a > b {
		return a
	}
	return b
}

func min4(a, b, c, d Fl) Fl { return minFl(minFl(a, b), minFl(c, d)) }
func max4(a, b, c, d Fl) Fl { return maxFl(maxFl(a, b), maxFl(c, d)) }

// textState tracks the handful of text-positioning operators a bounding-box
// pass actually needs; glyph-level metrics are not resolved from the
// embedded font programs, so ascent/descent are approximated from the
// current font size using typical Latin-text proportions. The result is
// intentionally conservative, matching spec's own "conservative bounding
// rectangles" wording.
type textState struct {
	tm, tlm  model.Matrix
	fontSize Fl
	leading  Fl
	active   bool
}

const (
	ascentRatio  = 0.75
	descentRatio = 0.25
	charWidthApprox = 0.5
)

// Scanner walks one page's (possibly form-nested) content, maintaining the
// MCID stack, the CTM stack and the text state described in the content
// stream scanner.
type Scanner struct {
	page *model.PageObject
	ev   Events
}

// Scan runs the content-stream scanner over `page` and returns the
// collected events; `page.Resources` supplies both the color spaces needed
// to parse the content and the font/XObject/property lookups needed to
// interpret it.
func Scan(page *model.PageObject) (*Events, error) {
	s := &Scanner{page: page, ev: Events{Text: NewTextAccumulator()}}
	var res model.ResourcesDict
	if page.Resources != nil {
		res = *page.Resources
	}
	var content []byte
	for _, c := range page.Contents {
		content = append(content, c.Content...)
		content = append(content, '\n')
	}
	ops, err := parser.ParseContent(content, colorSpacesOf(res))
	if err != nil {
		return nil, err
	}
	if err := s.run(ops, res, identity, noMCID); err != nil {
		return nil, err
	}
	return &s.ev, nil
}

func colorSpacesOf(res model.ResourcesDict) model.ResourcesColorSpace {
	out := make(model.ResourcesColorSpace, len(res.ColorSpace))
	for n, c := range res.ColorSpace {
		out[n] = c
	}
	return out
}

// run interprets `ops` against the resources and starting state given,
// appending events to s.ev. It recurses into form XObjects, carrying the
// enclosing MCID context forward (a form painted under a marked-content
// sequence inherits it) but switching resources and CTM to the form's own.
func (s *Scanner) run(ops []cs.Operation, res model.ResourcesDict, startCTM model.Matrix, startMCID int) error {
	var (
		ctmStack  = []model.Matrix{startCTM}
		mcidStack = []int{startMCID}
		ts        textState
		curX, curY, startX, startY Fl
		curPath      [][2]Fl
		pendingClip  bool
	)
	ctm := func() model.Matrix { return ctmStack[len(ctmStack)-1] }
	mcid := func() int { return mcidStack[len(mcidStack)-1] }

	flushPath := func(isClip bool) {
		if len(curPath) == 0 {
			return
		}
		if !isClip {
			s.ev.Paths = append(s.ev.Paths, Path{MCID: mcid(), CTM: ctm(), IsClippingOnly: false, Points: curPath})
		}
		curPath = nil
		pendingClip = false
	}

	addPoint := func(x, y Fl) {
		px, py := apply(ctm(), x, y)
		curPath = append(curPath, [2]Fl{px, py})
	}

	for _, op := range ops {
		switch o := op.(type) {
		case cs.OpSave:
			ctmStack = append(ctmStack, ctm())
		case cs.OpRestore:
			if len(ctmStack) > 1 {
				ctmStack = ctmStack[:len(ctmStack)-1]
			}
		case cs.OpConcat:
			ctmStack[len(ctmStack)-1] = multiply(o.Matrix, ctm())

		case cs.OpBeginMarkedContent:
			m := resolveMCID(o.Properties, res)
			mcidStack = append(mcidStack, m)
		case cs.OpEndMarkedContent:
			if len(mcidStack) > 1 {
				mcidStack = mcidStack[:len(mcidStack)-1]
			}

		case cs.OpBeginText:
			ts = textState{tm: identity, tlm: identity, active: true}
		case cs.OpEndText:
			ts.active = false
		case cs.OpSetFont:
			ts.fontSize = o.Size
		case cs.OpSetTextLeading:
			ts.leading = o.L
		case cs.OpTextMove:
			ts.tlm = multiply(model.Matrix{1, 0, 0, 1, o.X, o.Y}, ts.tlm)
			ts.tm = ts.tlm
		case cs.OpTextMoveSet:
			ts.leading = -o.Y
			ts.tlm = multiply(model.Matrix{1, 0, 0, 1, o.X, o.Y}, ts.tlm)
			ts.tm = ts.tlm
		case cs.OpTextNextLine:
			ts.tlm = multiply(model.Matrix{1, 0, 0, 1, 0, -ts.leading}, ts.tlm)
			ts.tm = ts.tlm
		case cs.OpSetTextMatrix:
			ts.tlm = o.Matrix
			ts.tm = o.Matrix
		case cs.OpShowText:
			s.emitTextRun(o.Text, ts, ctm(), mcid())
		case cs.OpMoveShowText:
			ts.tlm = multiply(model.Matrix{1, 0, 0, 1, 0, -ts.leading}, ts.tlm)
			ts.tm = ts.tlm
			s.emitTextRun(o.Text, ts, ctm(), mcid())
		case cs.OpMoveSetShowText:
			// word/char spacing affect glyph spacing only, not positioning
			ts.tlm = multiply(model.Matrix{1, 0, 0, 1, 0, -ts.leading}, ts.tlm)
			ts.tm = ts.tlm
			s.emitTextRun(o.Text, ts, ctm(), mcid())
		case cs.OpShowSpaceText:
			var b []byte
			for _, t := range o.Texts {
				b = append(b, t.Text...)
				if t.SpaceSubtractedAfter > 150 {
					b = append(b, ' ')
				}
			}
			s.emitTextRun(string(b), ts, ctm(), mcid())

		case cs.OpMoveTo:
			flushPath(false)
			curX, curY = o.X, o.Y
			startX, startY = o.X, o.Y
			addPoint(o.X, o.Y)
		case cs.OpLineTo:
			curX, curY = o.X, o.Y
			addPoint(o.X, o.Y)
		case cs.OpCubicTo:
			addPoint(o.X1, o.Y1)
			addPoint(o.X2, o.Y2)
			addPoint(o.X3, o.Y3)
			curX, curY = o.X3, o.Y3
		case cs.OpCurveTo1:
			addPoint(curX, curY)
			addPoint(o.X2, o.Y2)
			addPoint(o.X3, o.Y3)
			curX, curY = o.X3, o.Y3
		case cs.OpCurveTo:
			addPoint(o.X1, o.Y1)
			addPoint(o.X3, o.Y3)
			curX, curY = o.X3, o.Y3
		case cs.OpRectangle:
			flushPath(false)
			addPoint(o.X, o.Y)
			addPoint(o.X+o.W, o.Y)
			addPoint(o.X+o.W, o.Y+o.H)
			addPoint(o.X, o.Y+o.H)
			curX, curY = o.X, o.Y
			startX, startY = o.X, o.Y
		case cs.OpClosePath:
			curX, curY = startX, startY

		case cs.OpClip, cs.OpEOClip:
			pendingClip = true

		case cs.OpFill, cs.OpEOFill, cs.OpStroke,
			cs.OpFillStroke, cs.OpEOFillStroke,
			cs.OpCloseStroke, cs.OpCloseFillStroke, cs.OpCloseEOFillStroke:
			flushPath(false)
		case cs.OpEndPath:
			flushPath(pendingClip)

		case cs.OpXObject:
			if err := s.paintXObject(string(o.XObject), res, ctm(), mcid()); err != nil {
				return err
			}
		}
	}
	flushPath(pendingClip)
	return nil
}

// emitTextRun appends `text` to the page accumulator and records its
// conservative ascent/descent bounding lines in page space.
func (s *Scanner) emitTextRun(text string, ts textState, ctm model.Matrix, mcid int) {
	start, end := s.ev.Text.Append(text)
	size := ts.fontSize
	if size == 0 {
		size = 1
	}
	width := Fl(len([]rune(text))) * size * charWidthApprox
	m := multiply(ts.tm, ctm)
	ax0, ay0 := apply(m, 0, size*ascentRatio)
	ax1, ay1 := apply(m, width, size*ascentRatio)
	dx0, dy0 := apply(m, 0, -size*descentRatio)
	dx1, dy1 := apply(m, width, -size*descentRatio)
	s.ev.TextRuns = append(s.ev.TextRuns, TextRun{
		MCID:        mcid,
		ActualOrRaw: text,
		AscentLine:  Line{ax0, ay0, ax1, ay1},
		DescentLine: Line{dx0, dy0, dx1, dy1},
		StartIndex:  start,
		EndIndex:    end,
	})
}

// paintXObject handles a Do operator: images become Image events; forms are
// scanned recursively with their own resources and CTM.
func (s *Scanner) paintXObject(name string, res model.ResourcesDict, ctm model.Matrix, mcid int) error {
	xo, ok := res.XObject[model.Name(name)]
	if !ok {
		return nil
	}
	switch xo := xo.(type) {
	case *model.XObjectImage:
		var ref model.StructParentObject
		if xo.GetStructParent() != nil {
			ref = xo
		}
		charIdx := len(s.ev.Text.buf)
		s.ev.Images = append(s.ev.Images, Image{MCID: mcid, Obj: xo, Ref: ref, CTM: ctm, CharIndex: charIdx})
	case *model.XObjectForm:
		return s.scanForm(&xo.ContentStream, xo.Matrix, xo.Resources, res, ctm, mcid)
	case *model.XObjectTransparencyGroup:
		return s.scanForm(&xo.ContentStream, xo.Matrix, xo.Resources, res, ctm, mcid)
	}
	return nil
}

func (s *Scanner) scanForm(cstream *model.ContentStream, formMatrix model.Matrix, formRes, parentRes model.ResourcesDict, ctm model.Matrix, mcid int) error {
	effectiveRes := formRes
	if effectiveRes.XObject == nil && effectiveRes.Font == nil && effectiveRes.ColorSpace == nil &&
		effectiveRes.Properties == nil && effectiveRes.Pattern == nil && effectiveRes.Shading == nil {
		effectiveRes = parentRes
	}
	m := formMatrix
	if m == (model.Matrix{}) {
		m = identity
	}
	newCTM := multiply(m, ctm)
	ops, err := parser.ParseContent(cstream.Content, colorSpacesOf(effectiveRes))
	if err != nil {
		return err
	}
	return s.run(ops, effectiveRes, newCTM, mcid)
}

// resolveMCID extracts the /MCID entry of a BDC's property list, resolving
// a named reference into the resources' /Properties dictionary if needed.
func resolveMCID(p cs.PropertyList, res model.ResourcesDict) int {
	switch p := p.(type) {
	case cs.PropertyListDict:
		return mcidFromDict(model.ObjDict(p))
	case cs.PropertyListName:
		if pl, ok := res.Properties[model.Name(p)]; ok {
			return mcidFromDict(model.ObjDict(pl))
		}
	}
	return noMCID
}

func mcidFromDict(d model.ObjDict) int {
	if v, ok := d["MCID"].(model.ObjInt); ok {
		return int(v)
	}
	return noMCID
}
