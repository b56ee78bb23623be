package model

import (
	"fmt"
	"sort"
)

// FontDict is a Font object, associating a glyph program
// (given by `Subtype`) with a PDF name usable in content streams.
type FontDict struct {
	Subtype   Font         // required
	ToUnicode *UnicodeCMap // optional
}

func (f *FontDict) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	b := newBuffer()
	b.WriteString("<</Type/Font")
	if f.Subtype != nil {
		b.WriteString(f.Subtype.fontFields(pdf, ref))
	}
	if f.ToUnicode != nil {
		content, stream := f.ToUnicode.pdfContent(pdf, ref)
		toURef := pdf.addObject(content, stream)
		b.fmt("/ToUnicode %s", toURef)
	}
	b.WriteString(">>")
	return b.String(), nil
}

func (f *FontDict) clone(cache cloneCache) Referenceable {
	if f == nil {
		return f
	}
	out := *f
	if f.Subtype != nil {
		out.Subtype = f.Subtype.clone(cache)
	}
	if f.ToUnicode != nil {
		u := f.ToUnicode.clone()
		out.ToUnicode = &u
	}
	return &out
}

// Font is the font program description, one of
// FontType0, FontType1, FontTrueType, FontType3.
type Font interface {
	// fontFields returns the dictionary entries specific to this font
	// subtype (not including the enclosing << >> nor /Type/Font).
	fontFields(pdf pdfWriter, ref Reference) string
	clone(cache cloneCache) Font
}

// ---------------------------- simple fonts ----------------------------

// FontType1 is either an actual Type1 font, or (via `FontTrueType`) a TrueType font.
type FontType1 struct {
	BaseFont            Name
	FirstChar           byte
	Widths              []int // length (LastChar − FirstChar + 1)
	FontDescriptor      FontDescriptor
	Encoding            SimpleEncoding // optional
}

func (f FontType1) fontFields(pdf pdfWriter, ref Reference) string {
	return fontType1Fields("Type1", f.BaseFont, f.FirstChar, f.Widths, f.FontDescriptor, f.Encoding, pdf, ref)
}

func (f FontType1) clone(cache cloneCache) Font {
	out := f
	out.Widths = append([]int(nil), f.Widths...)
	out.FontDescriptor = f.FontDescriptor.Clone()
	if f.Encoding != nil {
		out.Encoding = f.Encoding.cloneSE(cache)
	}
	return out
}

// FontTrueType is written in PDF with the same shape than FontType1.
type FontTrueType FontType1

func (f FontTrueType) fontFields(pdf pdfWriter, ref Reference) string {
	return fontType1Fields("TrueType", f.BaseFont, f.FirstChar, f.Widths, f.FontDescriptor, f.Encoding, pdf, ref)
}

func (f FontTrueType) clone(cache cloneCache) Font {
	return FontTrueType(FontType1(f).clone(cache).(FontType1))
}

func fontType1Fields(subtype string, baseFont Name, firstChar byte, widths []int,
	fd FontDescriptor, enc SimpleEncoding, pdf pdfWriter, ref Reference,
) string {
	b := newBuffer()
	b.fmt("/Subtype/%s/BaseFont %s", subtype, baseFont)
	if len(widths) != 0 {
		b.fmt("/FirstChar %d/LastChar %d/Widths %s",
			firstChar, int(firstChar)+len(widths)-1, writeIntArray(widths))
	}
	fdRef := pdf.CreateObject()
	pdf.WriteObject(fd.pdfString(pdf, fdRef), fdRef)
	b.fmt("/FontDescriptor %s", fdRef)
	if enc != nil {
		b.fmt("/Encoding %s", enc.simpleEncodingName(pdf, ref))
	}
	return b.String()
}

// FontType3 is a font whose glyphs are described by content streams.
type FontType3 struct {
	FontBBox            Rectangle
	FontMatrix          Matrix
	CharProcs           map[Name]ContentStream
	Encoding            SimpleEncoding
	FirstChar, LastChar byte
	Widths              []int
	FontDescriptor      *FontDescriptor // optional
	Resources           ResourcesDict
}

func (f FontType3) fontFields(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("/Subtype/Type3/FontBBox %s/FontMatrix %s", f.FontBBox.String(), f.FontMatrix.String())
	b.WriteString("/CharProcs <<")
	for name, proc := range f.CharProcs {
		content, stream := proc.Stream.PDFContent()
		procRef := pdf.addObject(content, stream)
		b.fmt("%s %s", name, procRef)
	}
	b.WriteString(">>")
	if f.Encoding != nil {
		b.fmt("/Encoding %s", f.Encoding.simpleEncodingName(pdf, ref))
	}
	if len(f.Widths) != 0 {
		b.fmt("/FirstChar %d/LastChar %d/Widths %s", f.FirstChar, f.LastChar, writeIntArray(f.Widths))
	}
	if f.FontDescriptor != nil {
		fdRef := pdf.CreateObject()
		pdf.WriteObject(f.FontDescriptor.pdfString(pdf, fdRef), fdRef)
		b.fmt("/FontDescriptor %s", fdRef)
	}
	if !f.Resources.IsEmpty() {
		resRef := pdf.CreateObject()
		b.fmt("/Resources %s", f.Resources.pdfString(pdf, resRef))
	}
	return b.String()
}

func (f FontType3) clone(cache cloneCache) Font {
	out := f
	if f.CharProcs != nil {
		out.CharProcs = make(map[Name]ContentStream, len(f.CharProcs))
		for n, cs := range f.CharProcs {
			out.CharProcs[n] = cs.Clone()
		}
	}
	if f.Encoding != nil {
		out.Encoding = f.Encoding.cloneSE(cache)
	}
	out.Widths = append([]int(nil), f.Widths...)
	if f.FontDescriptor != nil {
		fd := f.FontDescriptor.Clone()
		out.FontDescriptor = &fd
	}
	out.Resources = f.Resources.clone(cache)
	return out
}

// ---------------------------- composite fonts ----------------------------

// FontType0 is a composite font, whose glyphs are selected through
// a CMap (`Encoding`) mapping character codes to CIDs.
type FontType0 struct {
	BaseFont        Name
	Encoding        CMapEncoding // required
	DescendantFonts CIDFontDictionary
}

func (f FontType0) fontFields(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("/Subtype/Type0/BaseFont %s", f.BaseFont)
	if f.Encoding != nil {
		b.fmt("/Encoding %s", f.Encoding.cMapString(pdf, ref))
	}
	descRef := pdf.CreateObject()
	pdf.WriteObject(f.DescendantFonts.pdfString(pdf, descRef), descRef)
	b.fmt("/DescendantFonts [%s]", descRef)
	return b.String()
}

func (f FontType0) clone(cache cloneCache) Font {
	out := f
	out.Encoding = cloneCMapEncoding(f.Encoding, cache)
	out.DescendantFonts = f.DescendantFonts.clone(cache)
	return out
}

// CMapEncoding is either a predefined CMap name, or an embedded CMap stream.
type CMapEncoding interface {
	cMapString(pdf pdfWriter, ref Reference) string
}

type CMapEncodingPredefined Name

func (c CMapEncodingPredefined) cMapString(pdfWriter, Reference) string { return Name(c).String() }

// CMapEncodingEmbedded is a CMap stream, as used to map character codes to CIDs.
type CMapEncodingEmbedded struct {
	Stream

	CMapName      Name
	CIDSystemInfo CIDSystemInfo
	WMode         bool         // optional, default to false (horizontal)
	UseCMap       CMapEncoding // optional
}

func (c CMapEncodingEmbedded) cMapString(pdf pdfWriter, ref Reference) string {
	common := c.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("<</Type/CMap/CMapName %s/CIDSystemInfo %s %s", c.CMapName, c.CIDSystemInfo.pdfString(pdf, ref), common)
	if c.WMode {
		b.fmt("/WMode 1")
	}
	if c.UseCMap != nil {
		b.fmt("/UseCMap %s", c.UseCMap.cMapString(pdf, ref))
	}
	b.fmt(">>")
	objRef := pdf.addObject(b.String(), c.Content)
	return objRef.String()
}

func cloneCMapEncoding(c CMapEncoding, cache cloneCache) CMapEncoding {
	switch c := c.(type) {
	case nil:
		return nil
	case CMapEncodingPredefined:
		return c
	case CMapEncodingEmbedded:
		out := c
		out.Stream = c.Stream.Clone()
		if c.UseCMap != nil {
			out.UseCMap = cloneCMapEncoding(c.UseCMap, cache)
		}
		return out
	default:
		return nil
	}
}

// CIDSystemInfo identifies the character collection used by a CIDFont.
type CIDSystemInfo struct {
	Registry, Ordering string
	Supplement         int
}

func (c CIDSystemInfo) pdfString(pdf pdfWriter, ref Reference) string {
	return fmt.Sprintf("<</Registry %s/Ordering %s/Supplement %d>>",
		pdf.EncodeString(c.Registry, ByteString, ref), pdf.EncodeString(c.Ordering, ByteString, ref), c.Supplement)
}

// CID is a character code, obtained from a CMap, used to index CIDFont glyphs.
type CID int

// CIDFontDictionary is a descendant font of a composite (Type0) font.
type CIDFontDictionary struct {
	Subtype        Name // CIDFontType0 or CIDFontType2
	BaseFont       Name
	CIDSystemInfo  CIDSystemInfo
	FontDescriptor FontDescriptor
	DW             int                 // optional, default to 1000
	DW2            [2]int              // optional, default to [880 -1000]
	W              []CIDWidth          // optional
	W2             []CIDVerticalMetric // optional
	CIDToGIDMap    CIDToGIDMap         // optional, only for CIDFontType2
}

func (c CIDFontDictionary) pdfString(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("<</Type/Font/Subtype %s/BaseFont %s/CIDSystemInfo %s",
		c.Subtype, c.BaseFont, c.CIDSystemInfo.pdfString(pdf, ref))
	fdRef := pdf.CreateObject()
	pdf.WriteObject(c.FontDescriptor.pdfString(pdf, fdRef), fdRef)
	b.fmt("/FontDescriptor %s", fdRef)
	if c.DW != 0 {
		b.fmt("/DW %d", c.DW)
	}
	if c.DW2 != [2]int{} {
		b.fmt("/DW2 [%d %d]", c.DW2[0], c.DW2[1])
	}
	if len(c.W) != 0 {
		b.WriteString("/W [")
		for _, w := range c.W {
			b.WriteString(w.pdfString())
			b.WriteString(" ")
		}
		b.WriteString("]")
	}
	if len(c.W2) != 0 {
		b.WriteString("/W2 [")
		for _, w := range c.W2 {
			b.WriteString(w.pdfString())
			b.WriteString(" ")
		}
		b.WriteString("]")
	}
	if c.CIDToGIDMap != nil {
		b.fmt("/CIDToGIDMap %s", c.CIDToGIDMap.cidToGIDMapString(pdf))
	}
	b.fmt(">>")
	return b.String()
}

func (c CIDFontDictionary) clone(cache cloneCache) CIDFontDictionary {
	out := c
	out.FontDescriptor = c.FontDescriptor.Clone()
	out.W = append([]CIDWidth(nil), c.W...)
	out.W2 = append([]CIDVerticalMetric(nil), c.W2...)
	if c.CIDToGIDMap != nil {
		out.CIDToGIDMap = c.CIDToGIDMap.cloneCIDToGIDMap(cache)
	}
	return out
}

// CIDWidth is either CIDWidthRange or CIDWidthArray.
type CIDWidth interface {
	pdfString() string
}

type CIDWidthRange struct {
	First, Last CID
	Width       int
}

func (c CIDWidthRange) pdfString() string {
	return fmt.Sprintf("%d %d %d", c.First, c.Last, c.Width)
}

type CIDWidthArray struct {
	Start CID
	W     []int
}

func (c CIDWidthArray) pdfString() string {
	return fmt.Sprintf("%d %s", c.Start, writeIntArray(c.W))
}

// VerticalMetric describes vertical writing metrics shared
// by CIDVerticalMetricRange and CIDVerticalMetricArray.
type VerticalMetric struct {
	Vertical int
	Position [2]int // position vector
}

// CIDVerticalMetric is either CIDVerticalMetricRange or CIDVerticalMetricArray.
type CIDVerticalMetric interface {
	pdfString() string
}

type CIDVerticalMetricRange struct {
	First, Last CID
	VerticalMetric
}

func (c CIDVerticalMetricRange) pdfString() string {
	return fmt.Sprintf("%d %d %d %d %d", c.First, c.Last, c.Vertical, c.Position[0], c.Position[1])
}

type CIDVerticalMetricArray struct {
	Start     CID
	Verticals []VerticalMetric
}

func (c CIDVerticalMetricArray) pdfString() string {
	b := newBuffer()
	b.fmt("%d [", c.Start)
	for _, v := range c.Verticals {
		b.fmt("%d %d %d", v.Vertical, v.Position[0], v.Position[1])
	}
	b.WriteString("]")
	return b.String()
}

// CIDToGIDMap maps CIDs to glyph indices, either the identity mapping
// or an embedded stream.
type CIDToGIDMap interface {
	cidToGIDMapString(pdf pdfWriter) string
	cloneCIDToGIDMap(cloneCache) CIDToGIDMap
}

type CIDToGIDMapIdentity struct{}

func (CIDToGIDMapIdentity) cidToGIDMapString(pdfWriter) string                 { return "/Identity" }
func (c CIDToGIDMapIdentity) cloneCIDToGIDMap(cloneCache) CIDToGIDMap { return c }

type CIDToGIDMapStream struct {
	Stream
}

func (c CIDToGIDMapStream) cidToGIDMapString(pdf pdfWriter) string {
	content, stream := c.Stream.PDFContent()
	ref := pdf.addObject(content, stream)
	return ref.String()
}

func (c CIDToGIDMapStream) cloneCIDToGIDMap(cloneCache) CIDToGIDMap {
	return CIDToGIDMapStream{Stream: c.Stream.Clone()}
}

// ---------------------------- encodings ----------------------------

type FontFlag uint32

const (
	FixedPitch  FontFlag = 1
	Serif       FontFlag = 1 << 2
	Symbolic    FontFlag = 1 << 3
	Script      FontFlag = 1 << 4
	Nonsymbolic FontFlag = 1 << 6
	Italic      FontFlag = 1 << 7
	AllCap      FontFlag = 1 << 17
	SmallCap    FontFlag = 1 << 18
	ForceBold   FontFlag = 1 << 19
)

// FontFile is the embedded font program referenced by a FontDescriptor
// (FontFile, FontFile2 or FontFile3, discriminated by `Subtype`).
type FontFile struct {
	Stream

	Subtype                   Name // only used for FontFile3
	Length1, Length2, Length3 int  // meaning depends on the font format
}

func (f *FontFile) pdfString(pdf pdfWriter, ref Reference) string {
	common := f.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("<<%s", common)
	if f.Subtype != "" {
		b.fmt("/Subtype %s", f.Subtype)
	}
	if f.Length1 != 0 {
		b.fmt("/Length1 %d", f.Length1)
	}
	if f.Length2 != 0 {
		b.fmt("/Length2 %d", f.Length2)
	}
	if f.Length3 != 0 {
		b.fmt("/Length3 %d", f.Length3)
	}
	b.WriteString(">>")
	return b.String()
}

func (f *FontFile) Clone() *FontFile {
	if f == nil {
		return nil
	}
	out := *f
	out.Stream = f.Stream.Clone()
	return &out
}

type FontDescriptor struct {
	FontName        Name
	Flags           FontFlag
	FontBBox        Rectangle
	ItalicAngle     Fl
	Ascent, Descent Fl
	Leading         Fl
	CapHeight       Fl
	XHeight         Fl
	StemV, StemH    Fl
	AvgWidth        Fl
	MaxWidth        Fl
	MissingWidth    int
	CharSet         string    // optional, only meaningful for subset Type1 fonts
	FontFile        *FontFile // optional
}

func (fd FontDescriptor) pdfString(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("<</Type/FontDescriptor/FontName %s/Flags %d/FontBBox %s/ItalicAngle %.3f",
		fd.FontName, fd.Flags, fd.FontBBox.String(), fd.ItalicAngle)
	b.fmt("/Ascent %.3f/Descent %.3f/StemV %.3f", fd.Ascent, fd.Descent, fd.StemV)
	if fd.Leading != 0 {
		b.fmt("/Leading %.3f", fd.Leading)
	}
	if fd.CapHeight != 0 {
		b.fmt("/CapHeight %.3f", fd.CapHeight)
	}
	if fd.XHeight != 0 {
		b.fmt("/XHeight %.3f", fd.XHeight)
	}
	if fd.StemH != 0 {
		b.fmt("/StemH %.3f", fd.StemH)
	}
	if fd.AvgWidth != 0 {
		b.fmt("/AvgWidth %.3f", fd.AvgWidth)
	}
	if fd.MaxWidth != 0 {
		b.fmt("/MaxWidth %.3f", fd.MaxWidth)
	}
	if fd.MissingWidth != 0 {
		b.fmt("/MissingWidth %d", fd.MissingWidth)
	}
	if fd.CharSet != "" {
		b.fmt("/CharSet %s", pdf.EncodeString(fd.CharSet, ByteString, ref))
	}
	if fd.FontFile != nil {
		fileRef := pdf.CreateObject()
		pdf.WriteObject(fd.FontFile.pdfString(pdf, fileRef), fileRef)
		b.fmt("/%s %s", fd.fontFileKey(), fileRef)
	}
	b.WriteString(">>")
	return b.String()
}

// fontFileKey returns the dictionary key matching the font program format,
// inferred from its `Subtype` (empty for the TrueType/FontFile2 case).
func (fd FontDescriptor) fontFileKey() string {
	if fd.FontFile.Subtype != "" {
		return "FontFile3"
	}
	return "FontFile2"
}

func (fd FontDescriptor) Clone() FontDescriptor {
	out := fd
	out.FontFile = fd.FontFile.Clone()
	return out
}

// SimpleEncoding is either a predefined base encoding name,
// or a dictionary with custom Differences.
type SimpleEncoding interface {
	simpleEncodingName(pdf pdfWriter, ref Reference) string
	cloneSE(cache cloneCache) SimpleEncoding
}

type SimpleEncodingPredefined Name

// NewSimpleEncodingPredefined validates `s` against the three predefined
// base encodings, returning nil if it is not one of them.
func NewSimpleEncodingPredefined(s string) SimpleEncoding {
	switch Name(s) {
	case "MacRomanEncoding", "MacExpertEncoding", "WinAnsiEncoding":
		return SimpleEncodingPredefined(s)
	default:
		return nil
	}
}

func (s SimpleEncodingPredefined) simpleEncodingName(pdfWriter, Reference) string {
	return Name(s).String()
}

func (s SimpleEncodingPredefined) cloneSE(cloneCache) SimpleEncoding { return s }

// Differences describes the differences from the encoding specified by BaseEncoding.
// It is written in a PDF file in a condensed form:
//
//	[ code1 name1_1 name1_2 code2 name2_1 name2_2 name2_3 ... ]
type Differences map[byte]Name

func (d Differences) pdfString() string {
	codes := make([]int, 0, len(d))
	for c := range d {
		codes = append(codes, int(c))
	}
	sort.Ints(codes)
	b := newBuffer()
	b.WriteString("[")
	last := -2
	for _, c := range codes {
		if c != last+1 {
			b.fmt(" %d", c)
		}
		b.fmt("%s", d[byte(c)])
		last = c
	}
	b.WriteString("]")
	return b.String()
}

func (d Differences) clone() Differences {
	if d == nil {
		return nil
	}
	out := make(Differences, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// SimpleEncodingDict stores a custom simple encoding, optionally based
// on one of the predefined encodings.
type SimpleEncodingDict struct {
	BaseEncoding SimpleEncodingPredefined // optional
	Differences  Differences              // optional
}

func (s *SimpleEncodingDict) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	b := newBuffer()
	b.WriteString("<<")
	if s.BaseEncoding != "" {
		b.fmt("/BaseEncoding %s", Name(s.BaseEncoding).String())
	}
	if len(s.Differences) != 0 {
		b.fmt("/Differences %s", s.Differences.pdfString())
	}
	b.WriteString(">>")
	return b.String(), nil
}

func (s *SimpleEncodingDict) simpleEncodingName(pdf pdfWriter, ref Reference) string {
	return pdf.addItem(s).String()
}

func (s *SimpleEncodingDict) clone(cache cloneCache) Referenceable {
	if s == nil {
		return s
	}
	out := *s
	out.Differences = s.Differences.clone()
	return &out
}

func (s *SimpleEncodingDict) cloneSE(cache cloneCache) SimpleEncoding {
	return cache.checkOrClone(s).(*SimpleEncodingDict)
}

// ---------------------------- ToUnicode ----------------------------

// UnicodeCMap is an embedded CMap stream mapping character codes
// (or CIDs) to unicode code points, used for text extraction.
type UnicodeCMap struct {
	Stream
	UseCMap UnicodeCMapBase // optional
}

// UnicodeCMapBase is either a predefined CMap name, or a full CMap stream.
type UnicodeCMapBase interface {
	isUnicodeCMapBase()
}

type UnicodeCMapBasePredefined Name

func (UnicodeCMapBasePredefined) isUnicodeCMapBase() {}
func (UnicodeCMap) isUnicodeCMapBase()               {}

func (u *UnicodeCMap) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	common := u.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("<</Type/CMap %s", common)
	switch use := u.UseCMap.(type) {
	case UnicodeCMapBasePredefined:
		if use != "" {
			b.fmt("/UseCMap %s", Name(use).String())
		}
	case UnicodeCMap:
		content, stream := use.pdfContent(pdf, 0)
		useRef := pdf.addObject(content, stream)
		b.fmt("/UseCMap %s", useRef)
	}
	b.WriteString(">>")
	return b.String(), u.Content
}

func (u UnicodeCMap) clone() UnicodeCMap {
	out := u
	out.Stream = u.Stream.Clone()
	return out
}
