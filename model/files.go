package model

import (
	"fmt"
	"time"
)

type EmbeddedFile struct {
	Name     string
	FileSpec *FileSpec // indirect
}

type FileSpec struct {
	UF   string
	EF   *EmbeddedFileStream
	Desc string
}

// pdfContent writes the FileSpec dictionary; `ref` is not used directly,
// but required by the `Referenceable` interface.
func (fs *FileSpec) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	b := newBuffer()
	b.WriteString("<</Type/Filespec")
	if fs.UF != "" {
		s := pdf.EncodeString(fs.UF, TextString, ref)
		b.fmt("/UF %s/F %s", s, s)
	}
	if fs.Desc != "" {
		b.fmt("/Desc %s", pdf.EncodeString(fs.Desc, TextString, ref))
	}
	if fs.EF != nil {
		efRef := pdf.addItem(fs.EF)
		b.fmt("/EF <</F %s/UF %s>>", efRef, efRef)
	}
	b.WriteString(">>")
	return b.String(), nil
}

func (fs *FileSpec) clone(cache cloneCache) Referenceable {
	if fs == nil {
		return fs
	}
	out := *fs
	if fs.EF != nil {
		out.EF = cache.checkOrClone(fs.EF).(*EmbeddedFileStream)
	}
	return &out
}

type EmbeddedFileParams struct {
	Size         int
	CreationDate time.Time
	ModDate      time.Time
	CheckSum     string // should be wrote as hex16 encoded
}

func (p EmbeddedFileParams) pdfString(pdf pdfWriter, context Reference) string {
	b := newBuffer()
	b.WriteString("<<")
	if p.Size != 0 {
		b.fmt("/Size %d", p.Size)
	}
	if !p.CreationDate.IsZero() {
		b.fmt("/CreationDate %s", pdf.dateString(p.CreationDate, context))
	}
	if !p.ModDate.IsZero() {
		b.fmt("/ModDate %s", pdf.dateString(p.ModDate, context))
	}
	if p.CheckSum != "" {
		b.fmt("/CheckSum <%s>", p.CheckSum)
	}
	b.WriteString(">>")
	return b.String()
}

type EmbeddedFileStream struct {
	ContentStream
	Params EmbeddedFileParams
}

// pdfContent writes the embedded file stream dictionary.
func (e *EmbeddedFileStream) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	common := e.PDFCommonFields(true)
	content := fmt.Sprintf("<</Type/EmbeddedFile%s/Params %s>>", common, e.Params.pdfString(pdf, ref))
	return content, e.Content
}

func (e *EmbeddedFileStream) clone(cloneCache) Referenceable {
	if e == nil {
		return e
	}
	out := *e
	out.ContentStream = e.ContentStream.Clone()
	return &out
}
