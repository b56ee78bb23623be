package model

import "fmt"

// Pattern is either a tiling or a shading pattern.
type Pattern interface {
	Referenceable
	isPattern()
}

func (*PatternTiling) isPattern()  {}
func (*PatternShading) isPattern() {}

// PatternTiling is a type 1 pattern: a content stream
// describing a cell that is replicated across the area to paint.
type PatternTiling struct {
	ContentStream

	PaintType  uint8 // 1 for coloured; 2 for uncoloured
	TilingType uint8 // 1, 2, 3
	BBox       Rectangle
	XStep      Fl
	YStep      Fl
	Resources  ResourcesDict
	Matrix     Matrix // optional, default to identity
}

func (t *PatternTiling) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	b := newBuffer()
	b.fmt("<</Type/Pattern/PatternType 1/PaintType %d/TilingType %d/BBox %s/XStep %.3f/YStep %.3f",
		t.PaintType, t.TilingType, t.BBox.String(), t.XStep, t.YStep)
	if !t.Resources.IsEmpty() {
		b.fmt("/Resources %s", t.Resources.pdfString(pdf, ref))
	}
	if (t.Matrix != Matrix{}) {
		b.fmt("/Matrix %s", t.Matrix.String())
	}
	b.WriteString(">>")
	return b.String(), t.Content
}

func (t *PatternTiling) clone(cache cloneCache) Referenceable {
	if t == nil {
		return t
	}
	out := *t
	out.ContentStream = t.ContentStream.Clone()
	out.Resources = t.Resources.clone(cache)
	return &out
}

// PatternShading is a type 2 pattern, painting with a shading
// instead of a tiled cell.
type PatternShading struct {
	Shading   *ShadingDict  // required
	Matrix    Matrix        // optional, default to Identity
	ExtGState *GraphicState // optional
}

func (s *PatternShading) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	b := newBuffer()
	shadingRef := pdf.addItem(s.Shading)
	b.fmt("<</Type/Pattern/PatternType 2/Shading %s", shadingRef)
	if (s.Matrix != Matrix{}) {
		b.fmt("/Matrix %s", s.Matrix.String())
	}
	if s.ExtGState != nil {
		stateRef := pdf.addItem(s.ExtGState)
		b.fmt("/ExtGState %s", stateRef)
	}
	b.WriteString(">>")
	return b.String(), nil
}

func (s *PatternShading) clone(cache cloneCache) Referenceable {
	if s == nil {
		return s
	}
	out := *s
	if s.Shading != nil {
		out.Shading = cache.checkOrClone(s.Shading).(*ShadingDict)
	}
	if s.ExtGState != nil {
		out.ExtGState = cache.checkOrClone(s.ExtGState).(*GraphicState)
	}
	return &out
}

// ShadingDict is a shading, either a plain dict or a stream,
// depending on its ShadingType.
type ShadingDict struct {
	ShadingType ShadingType
	ColorSpace  ColorSpace // required
	// colour components appropriate to the colour space;
	// only meaningful when used as the Background of a (shading) pattern
	Background []Fl
	BBox       *Rectangle // optional, in the shading's target coordinate space
	AntiAlias  bool       // optional, default to false
}

func (s *ShadingDict) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	b := newBuffer()
	cs := "null"
	if s.ColorSpace != nil {
		cs = s.ColorSpace.colorSpacePDFString(pdf)
	}
	b.fmt("/ColorSpace %s", cs)
	if len(s.Background) != 0 {
		b.fmt("/Background %s", writeFloatArray(s.Background))
	}
	if s.BBox != nil {
		b.fmt("/BBox %s", s.BBox.String())
	}
	if s.AntiAlias {
		b.fmt("/AntiAlias %v", s.AntiAlias)
	}
	if s.ShadingType == nil {
		return "<<" + b.String() + ">>", nil
	}
	content, stream := s.ShadingType.shadingContent(b.String(), pdf)
	return content, stream
}

func (s *ShadingDict) clone(cache cloneCache) Referenceable {
	if s == nil {
		return s
	}
	out := *s
	out.ColorSpace = cloneColorSpace(s.ColorSpace, cache)
	out.Background = append([]Fl(nil), s.Background...)
	if s.BBox != nil {
		bbox := *s.BBox
		out.BBox = &bbox
	}
	if s.ShadingType != nil {
		out.ShadingType = s.ShadingType.cloneShading(cache)
	}
	return &out
}

// ShadingType is one of ShadingFunctionBased, ShadingAxial, ShadingRadial,
// ShadingFreeForm, ShadingLattice, ShadingCoons, ShadingTensorProduct.
type ShadingType interface {
	// shadingContent writes the complete dictionary (or stream dictionary),
	// merging in `commonFields` (the fields common to every shading type,
	// without the enclosing `<<` and `>>`)
	shadingContent(commonFields string, pdf pdfWriter) (string, []byte)
	cloneShading(cache cloneCache) ShadingType
}

type ShadingFunctionBased struct {
	Domain   [4]Fl        // optional, default to [0 1 0 1]
	Matrix   Matrix       // optional, default to identity
	Function []FunctionDict // either one 2 -> n function, or n 2 -> 1 functions
}

func (s ShadingFunctionBased) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	b := newBuffer()
	fns := pdf.writeFunctions(s.Function)
	b.fmt("<<%s/ShadingType 1/Function %s", commonFields, writeRefArray(fns))
	if s.Domain != [4]Fl{} {
		b.fmt("/Domain %s", writeFloatArray(s.Domain[:]))
	}
	if (s.Matrix != Matrix{}) {
		b.fmt("/Matrix %s", s.Matrix.String())
	}
	b.WriteString(">>")
	return b.String(), nil
}

func (s ShadingFunctionBased) cloneShading(cloneCache) ShadingType {
	out := s
	out.Function = make([]FunctionDict, len(s.Function))
	for i, f := range s.Function {
		out.Function[i] = f.Clone()
	}
	return out
}

// BaseGradient factors the fields shared by axial and radial shadings.
type BaseGradient struct {
	Domain   [2]Fl        // optional, default to [0 1]
	Function []FunctionDict // either one 1 -> n function, or n 1 -> 1 functions
	Extend   [2]bool      // optional, default to [false false]
}

// pdfString returns the inner fields, without the enclosing << >>.
// `pdf` is used to write the functions.
func (g BaseGradient) pdfString(pdf pdfWriter) string {
	fns := pdf.writeFunctions(g.Function)
	out := fmt.Sprintf("/Function %s", writeRefArray(fns))
	if g.Domain != [2]Fl{} {
		out += fmt.Sprintf("/Domain %s", writeFloatArray(g.Domain[:]))
	}
	if g.Extend != [2]bool{} {
		out += fmt.Sprintf("/Extend [%v %v]", g.Extend[0], g.Extend[1])
	}
	return out
}

func (g BaseGradient) clone() BaseGradient {
	out := g
	out.Function = make([]FunctionDict, len(g.Function))
	for i, f := range g.Function {
		out.Function[i] = f.Clone()
	}
	return out
}

type ShadingAxial struct {
	BaseGradient
	Coords [4]Fl // x0, y0, x1, y1
}

func (s ShadingAxial) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	gradArgs := s.BaseGradient.pdfString(pdf)
	out := fmt.Sprintf("<<%s/ShadingType 2%s/Coords %s>>",
		commonFields, gradArgs, writeFloatArray(s.Coords[:]))
	return out, nil
}

func (s ShadingAxial) cloneShading(cloneCache) ShadingType {
	return ShadingAxial{BaseGradient: s.BaseGradient.clone(), Coords: s.Coords}
}

type ShadingRadial struct {
	BaseGradient
	Coords [6]Fl // x0, y0, r0, x1, y1, r1
}

func (s ShadingRadial) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	gradArgs := s.BaseGradient.pdfString(pdf)
	out := fmt.Sprintf("<<%s/ShadingType 3%s/Coords %s>>",
		commonFields, gradArgs, writeFloatArray(s.Coords[:]))
	return out, nil
}

func (s ShadingRadial) cloneShading(cloneCache) ShadingType {
	return ShadingRadial{BaseGradient: s.BaseGradient.clone(), Coords: s.Coords}
}

// ShadingStream factors the fields shared by the mesh shading types
// (4 to 7), which are all written as a content stream.
type ShadingStream struct {
	Stream

	BitsPerCoordinate uint8 // 1, 2, 4, 8, 12, 16, 24, or 32
	BitsPerComponent  uint8 // 1, 2, 4, 8, 12, or 16
	Decode            [][2]Fl
	Function          []FunctionDict // optional, one 1->n function or n 1->1 functions
}

func (s ShadingStream) pdfString(pdf pdfWriter) string {
	common := s.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("%s/BitsPerCoordinate %d/BitsPerComponent %d/Decode %s",
		common, s.BitsPerCoordinate, s.BitsPerComponent, writePointsArray(s.Decode))
	if len(s.Function) != 0 {
		fns := pdf.writeFunctions(s.Function)
		b.fmt("/Function %s", writeRefArray(fns))
	}
	return b.String()
}

func (s ShadingStream) clone() ShadingStream {
	out := s
	out.Stream = s.Stream.Clone()
	out.Decode = append([][2]Fl(nil), s.Decode...)
	out.Function = make([]FunctionDict, len(s.Function))
	for i, f := range s.Function {
		out.Function[i] = f.Clone()
	}
	return out
}

type ShadingFreeForm struct {
	ShadingStream
	BitsPerFlag uint8 // 2, 4, or 8
}

func (s ShadingFreeForm) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	b := newBuffer()
	b.fmt("<<%s%s/ShadingType 4/BitsPerFlag %d>>", commonFields, s.ShadingStream.pdfString(pdf), s.BitsPerFlag)
	return b.String(), s.Content
}

func (s ShadingFreeForm) cloneShading(cloneCache) ShadingType {
	return ShadingFreeForm{ShadingStream: s.ShadingStream.clone(), BitsPerFlag: s.BitsPerFlag}
}

type ShadingLattice struct {
	ShadingStream
	VerticesPerRow int
}

func (s ShadingLattice) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	b := newBuffer()
	b.fmt("<<%s%s/ShadingType 5/VerticesPerRow %d>>", commonFields, s.ShadingStream.pdfString(pdf), s.VerticesPerRow)
	return b.String(), s.Content
}

func (s ShadingLattice) cloneShading(cloneCache) ShadingType {
	return ShadingLattice{ShadingStream: s.ShadingStream.clone(), VerticesPerRow: s.VerticesPerRow}
}

// ShadingCoons has the same fields as ShadingFreeForm, with a different
// ShadingType value.
type ShadingCoons ShadingFreeForm

func (s ShadingCoons) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	b := newBuffer()
	b.fmt("<<%s%s/ShadingType 6/BitsPerFlag %d>>", commonFields, s.ShadingStream.pdfString(pdf), s.BitsPerFlag)
	return b.String(), s.Content
}

func (s ShadingCoons) cloneShading(cache cloneCache) ShadingType {
	return ShadingCoons(ShadingFreeForm(s).cloneShading(cache).(ShadingFreeForm))
}

// ShadingTensorProduct has the same fields as ShadingFreeForm, with a
// different ShadingType value.
type ShadingTensorProduct ShadingFreeForm

func (s ShadingTensorProduct) shadingContent(commonFields string, pdf pdfWriter) (string, []byte) {
	b := newBuffer()
	b.fmt("<<%s%s/ShadingType 7/BitsPerFlag %d>>", commonFields, s.ShadingStream.pdfString(pdf), s.BitsPerFlag)
	return b.String(), s.Content
}

func (s ShadingTensorProduct) cloneShading(cache cloneCache) ShadingType {
	return ShadingTensorProduct(ShadingFreeForm(s).cloneShading(cache).(ShadingFreeForm))
}
