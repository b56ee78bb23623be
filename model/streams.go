package model

import "fmt"

const (
	ASCII85   Filter = "ASCII85Decode"
	ASCIIHex  Filter = "ASCIIHexDecode"
	RunLength Filter = "RunLengthDecode"
	LZW       Filter = "LZWDecode"
	Flate     Filter = "FlateDecode"
	CCITTFax  Filter = "CCITTFaxDecode"
	JBIG2     Filter = "JBIG2Decode"
	DCT       Filter = "DCTDecode"
	JPX       Filter = "JPXDecode"
)

type Filter string

// NewFilter validate `s` and returns
// an empty string it is not a known filter
func NewFilter(s string) Filter {
	f := Filter(s)
	switch f {
	case ASCII85, ASCIIHex, RunLength, LZW,
		Flate, CCITTFax, JBIG2, DCT, JPX:
		return f
	default:
		return ""
	}
}

var booleanDecodeParms = map[Name]bool{
	"EndOfLine":        true,
	"EncodedByteAlign": true,
	"EndOfBlock":       true,
	"BlackIs1":         true,
}

// Stream stores the metadata and the content shared by all
// PDF stream objects (font files, images, shadings, content streams, ...).
// It is always embedded in a more specialized type.
type Stream struct {
	Filter []Filter
	// nil, or same length than Filter
	// boolean value are stored as 0 (false) or 1 (true)
	DecodeParms []map[Name]int

	Content []byte // as written (that is, encoded by `Filter`)
}

// Clone returns a deep copy of `s`.
func (s Stream) Clone() Stream {
	out := s
	out.Filter = append([]Filter(nil), s.Filter...)
	if s.DecodeParms != nil {
		out.DecodeParms = make([]map[Name]int, len(s.DecodeParms))
		for i, m := range s.DecodeParms {
			if m == nil {
				continue
			}
			c := make(map[Name]int, len(m))
			for k, v := range m {
				c[k] = v
			}
			out.DecodeParms[i] = c
		}
	}
	out.Content = append([]byte(nil), s.Content...)
	return out
}

// PDFCommonFields returns the Filter/DecodeParms/Length dictionary
// entries, without the enclosing << >>.
// `withLength` controls whether the Length entry is included: it should
// be true, unless the caller computes it separately (as is done when
// encryption adjusts the stream length afterwards).
func (s Stream) PDFCommonFields(withLength bool) string {
	b := newBuffer()
	if len(s.Filter) != 0 {
		names := make([]Name, len(s.Filter))
		for i, f := range s.Filter {
			names[i] = Name(f)
		}
		if len(names) == 1 {
			b.fmt("/Filter %s", names[0])
		} else {
			b.fmt("/Filter %s", writeNameArray(names))
		}
	}
	if len(s.DecodeParms) != 0 {
		b.WriteString("/DecodeParms [")
		for _, parms := range s.DecodeParms {
			if parms == nil {
				b.WriteString("null ")
				continue
			}
			b.WriteString("<<")
			for k, v := range parms {
				if booleanDecodeParms[k] {
					b.fmt("%s %v", k, v != 0)
				} else {
					b.fmt("%s %d", k, v)
				}
			}
			b.WriteString(">> ")
		}
		b.WriteString("]")
	}
	if withLength {
		b.fmt("/Length %d", len(s.Content))
	}
	return b.String()
}

// PDFContent implements a convenience shortcut satisfying the shape
// expected by `Referenceable.pdfContent` for a bare stream, with no
// additional dictionary entries.
func (s *Stream) PDFContent() (string, []byte) {
	return fmt.Sprintf("<<%s>>", s.PDFCommonFields(true)), s.Content
}

// ContentStream is a stream of graphics operators, as found
// in a page content, a Form XObject, or a Type3 glyph description.
type ContentStream struct {
	Stream
}

func (c ContentStream) Length() int {
	return len(c.Content)
}

func (c ContentStream) Clone() ContentStream {
	return ContentStream{Stream: c.Stream.Clone()}
}
