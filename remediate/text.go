package remediate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/benoitkugler/pdfremediate/model"
	"github.com/benoitkugler/pdfremediate/scan"
	"github.com/benoitkugler/pdfremediate/structidx"
)

// Fl is the library's common floating point type.
type Fl = model.Fl

// truncateRunes truncates s to at most n runes, NFC-normalizing first so a
// combining-mark sequence is never split mid-character.
func truncateRunes(s string, n int) string {
	s = norm.NFC.String(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// textStringObject is a model.Object whose Write always goes through PDF
// text-string encoding (PDFDocEncoding, or UTF-16BE when the text needs
// it), unlike model.ObjStringLiteral's fixed ByteString mode. Used for
// attribute values the spec requires encoded as text strings (the
// Table-Summary Remediator's Summary entry).
type textStringObject string

func (s textStringObject) Clone() model.Object { return s }

func (s textStringObject) Write(w model.PDFWritter, ref model.Reference) string {
	if w == nil {
		return model.EscapeByteString([]byte(s))
	}
	return w.EncodeString(string(s), model.TextString, ref)
}

// earlyTextCache scans a document's leading pages at most once each, so
// the Title and Language remediators - which both need "early page text"
// under their own word-count threshold - share the underlying
// content-stream scans instead of re-walking the same pages twice.
type earlyTextCache struct {
	pages    []*model.PageObject
	pageText map[int]string
}

func newEarlyTextCache(pages []*model.PageObject) *earlyTextCache {
	return &earlyTextCache{pages: pages, pageText: map[int]string{}}
}

// textUpTo accumulates normalized text from the first maxPages pages,
// stopping as soon as minWords is reached or the pages run out.
func (c *earlyTextCache) textUpTo(maxPages, minWords int) (text string, words int) {
	var sb strings.Builder
	for i := 0; i < maxPages && i < len(c.pages); i++ {
		t, ok := c.pageText[i]
		if !ok {
			if ev, err := scan.Scan(c.pages[i]); err == nil {
				t = structidx.NormalizeWhitespace(ev.Text.String())
			}
			c.pageText[i] = t
		}
		if t != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(t)
		}
		words = wordCount(sb.String())
		if words >= minWords {
			break
		}
	}
	return sb.String(), words
}
