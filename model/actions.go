package model

import "fmt"

// Action is an action to be performed in response to
// an event triggered by a document, annotation or form field.
// The zero value is a no-op action.
type Action struct {
	ActionType ActionSubtype // nil for a no-op action
	Next       []Action      // optional, additional actions to trigger afterwards
}

func (a Action) pdfString(pdf pdfWriter, ref Reference) string {
	if a.ActionType == nil {
		return "<<>>"
	}
	b := newBuffer()
	b.WriteString(a.ActionType.actionDictionary(pdf, ref))
	if len(a.Next) != 0 {
		// rewrite the enclosing dictionary to add the /Next entry
		s := b.String()
		s = s[:len(s)-2] // drop the trailing >>
		if len(a.Next) == 1 {
			s += fmt.Sprintf("/Next %s>>", a.Next[0].pdfString(pdf, ref))
		} else {
			chunks := make([]string, len(a.Next))
			for i, n := range a.Next {
				chunks[i] = n.pdfString(pdf, ref)
			}
			s += fmt.Sprintf("/Next %s>>", writeChunksArray(chunks))
		}
		return s
	}
	return b.String()
}

func (a Action) clone(cache cloneCache) Action {
	out := a
	if a.ActionType != nil {
		out.ActionType = a.ActionType.clone(cache)
	}
	if a.Next != nil {
		out.Next = make([]Action, len(a.Next))
		for i, n := range a.Next {
			out.Next[i] = n.clone(cache)
		}
	}
	return out
}

func writeChunksArray(chunks []string) string {
	b := newBuffer()
	b.WriteString("[")
	for _, c := range chunks {
		b.fmt("%s ", c)
	}
	b.WriteString("]")
	return b.String()
}

// ActionSubtype is one of the concrete action kinds
// a PDF document may trigger.
type ActionSubtype interface {
	// actionDictionary returns the dictionary defining the action,
	// as written in PDF (without the /Next entry, added by Action).
	actionDictionary(pdfWriter, Reference) string
	clone(cache cloneCache) ActionSubtype
}

// FormFielAdditionalActions stores the additional actions
// associated with a form field.
type FormFielAdditionalActions struct {
	K Action // optional, on update
	F Action // optional, before formating
	V Action // optional, on validate
	C Action // optional, to recalculate
}

func (f FormFielAdditionalActions) pdfString(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.WriteString("<<")
	if f.K.ActionType != nil {
		b.line("/K %s", f.K.pdfString(pdf, ref))
	}
	if f.F.ActionType != nil {
		b.line("/F %s", f.F.pdfString(pdf, ref))
	}
	if f.V.ActionType != nil {
		b.line("/V %s", f.V.pdfString(pdf, ref))
	}
	if f.C.ActionType != nil {
		b.line("/C %s", f.C.pdfString(pdf, ref))
	}
	b.fmt(">>")
	return b.String()
}

func (f FormFielAdditionalActions) clone(cache cloneCache) FormFielAdditionalActions {
	return FormFielAdditionalActions{
		K: f.K.clone(cache),
		F: f.F.clone(cache),
		V: f.V.clone(cache),
		C: f.C.clone(cache),
	}
}

// ActionJavaScript executes a JavaScript script.
type ActionJavaScript struct {
	JS string // text string, may be found in PDF as a stream object
}

func (j ActionJavaScript) actionDictionary(pdf pdfWriter, ref Reference) string {
	return fmt.Sprintf("<</S/JavaScript/JS %s>>", pdf.EncodeString(j.JS, TextString, ref))
}

func (j ActionJavaScript) clone(cloneCache) ActionSubtype { return j }

// ActionURI is a URI to resolve, usually a web address.
type ActionURI struct {
	URI   string
	IsMap bool // default to false
}

func (u ActionURI) actionDictionary(pdf pdfWriter, ref Reference) string {
	out := fmt.Sprintf("<</S/URI/URI %s", pdf.EncodeString(u.URI, ByteString, ref))
	if u.IsMap {
		out += "/IsMap true"
	}
	return out + ">>"
}

func (u ActionURI) clone(cloneCache) ActionSubtype { return u }

// ActionGoTo is a "go-to" action to a destination in the current document.
type ActionGoTo struct {
	D Destination
}

func (ac ActionGoTo) actionDictionary(pdf pdfWriter, ref Reference) string {
	return fmt.Sprintf("<</S/GoTo/D %s>>", ac.D.pdfDestination(pdf, ref))
}

func (ac ActionGoTo) clone(cache cloneCache) ActionSubtype {
	out := ac
	if ac.D != nil {
		out.D = ac.D.clone(cache)
	}
	return out
}

// ActionRemoteGoTo is a "go-to" action to a destination
// in another PDF file, or a launch action, when `D` is not set.
type ActionRemoteGoTo struct {
	D         Destination // optional; when empty, the action is a generic "Launch" action
	NewWindow bool
	F         *FileSpec
}

func (ac ActionRemoteGoTo) actionDictionary(pdf pdfWriter, ref Reference) string {
	s := "/S"
	if ac.D != nil {
		s += "/GoToR"
	} else {
		s += "/Launch"
	}
	b := newBuffer()
	b.fmt("<<%s", s)
	if ac.D != nil {
		b.fmt("/D %s", ac.D.pdfDestination(pdf, ref))
	}
	if ac.NewWindow {
		b.fmt("/NewWindow true")
	}
	if ac.F != nil {
		fRef := pdf.addItem(ac.F)
		b.fmt("/F %s", fRef)
	}
	b.fmt(">>")
	return b.String()
}

func (ac ActionRemoteGoTo) clone(cache cloneCache) ActionSubtype {
	out := ac
	if ac.D != nil {
		out.D = ac.D.clone(cache)
	}
	out.F = ac.F.clone(cache)
	return out
}

// ActionEmbeddedGoTo is a "go-to" action to a destination
// in another PDF file embedded in the current one.
type ActionEmbeddedGoTo struct {
	D         Destination // optional
	NewWindow bool
	F         *FileSpec       // optional
	T         *EmbeddedTarget // optional
}

func (ac ActionEmbeddedGoTo) actionDictionary(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("<</S/GoToE")
	if ac.D != nil {
		b.fmt("/D %s", ac.D.pdfDestination(pdf, ref))
	}
	if ac.NewWindow {
		b.fmt("/NewWindow true")
	}
	if ac.F != nil {
		fRef := pdf.addItem(ac.F)
		b.fmt("/F %s", fRef)
	}
	if ac.T != nil {
		b.fmt("/T %s", ac.T.pdfString())
	}
	b.fmt(">>")
	return b.String()
}

func (ac ActionEmbeddedGoTo) clone(cache cloneCache) ActionSubtype {
	out := ac
	if ac.D != nil {
		out.D = ac.D.clone(cache)
	}
	out.F = ac.F.clone(cache)
	if ac.T != nil {
		t := ac.T.clone()
		out.T = &t
	}
	return out
}

// ActionHideTarget is either the (text string) field name of a form
// field or an annotation dictionary.
type ActionHideTarget interface {
	isActionHideTarget()
}

// HideTargetFormName is the fully qualified name of a form field.
type HideTargetFormName string

func (HideTargetFormName) isActionHideTarget() {}

func (*AnnotationDict) isActionHideTarget() {}

// ActionHide hides or shows one or more annotations or form fields.
type ActionHide struct {
	Show bool // toggle the show/hide behavior; default is false (hide)
	T    []ActionHideTarget
}

func (ac ActionHide) actionDictionary(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("<</S/Hide")
	if !ac.Show {
		b.fmt("/H true")
	}
	targets := make([]string, len(ac.T))
	for i, t := range ac.T {
		switch t := t.(type) {
		case HideTargetFormName:
			targets[i] = pdf.EncodeString(string(t), TextString, ref)
		case *AnnotationDict:
			targets[i] = pdf.addItem(t).String()
		}
	}
	if len(targets) == 1 {
		b.fmt("/T %s", targets[0])
	} else {
		b.fmt("/T %s", writeChunksArray(targets))
	}
	b.fmt(">>")
	return b.String()
}

func (ac ActionHide) clone(cache cloneCache) ActionSubtype {
	out := ac
	if ac.T != nil {
		out.T = make([]ActionHideTarget, len(ac.T))
		for i, t := range ac.T {
			switch t := t.(type) {
			case HideTargetFormName:
				out.T[i] = t
			case *AnnotationDict:
				out.T[i] = cache.checkOrClone(t).(*AnnotationDict)
			}
		}
	}
	return out
}

// ActionNamed is one of the standard named actions
// ("NextPage", "PrevPage", "FirstPage", "LastPage", ...).
type ActionNamed Name

func (ac ActionNamed) actionDictionary(pdf pdfWriter, ref Reference) string {
	return fmt.Sprintf("<</S/Named/N %s>>", Name(ac).String())
}

func (ac ActionNamed) clone(cloneCache) ActionSubtype { return ac }

// ActionRendition controls the playing of a multimedia rendition.
type ActionRendition struct {
	R  RenditionDict
	AN *AnnotationDict // optional, the screen annotation
	OP ObjInt          // optional, the operation to perform (0-4)
	JS string          // optional, a JavaScript script
}

func (ac ActionRendition) actionDictionary(pdf pdfWriter, ref Reference) string {
	b := newBuffer()
	b.fmt("<</S/Rendition")
	if ac.R.Subtype != nil {
		b.fmt("/R %s", ac.R.pdfString(pdf, ref))
	}
	if ac.AN != nil {
		anRef := pdf.addItem(ac.AN)
		b.fmt("/AN %s", anRef)
	}
	if ac.OP != 0 {
		b.fmt("/OP %d", ac.OP)
	}
	if ac.JS != "" {
		b.fmt("/JS %s", pdf.EncodeString(ac.JS, TextString, ref))
	}
	b.fmt(">>")
	return b.String()
}

func (ac ActionRendition) clone(cache cloneCache) ActionSubtype {
	out := ac
	out.R = ac.R.clone(cache)
	if ac.AN != nil {
		out.AN = cache.checkOrClone(ac.AN).(*AnnotationDict)
	}
	return out
}

// EmbeddedTarget describes the relationship between an embedded file
// and its enclosing file (or a chain of such relationships).
type EmbeddedTarget struct {
	R Name   // "P" (parent) or "C" (child)
	N string // optional, the name of the file in the EmbeddedFiles name tree

	P EmbeddedTargetDest   // optional, the file containing the target
	A EmbeddedTargetAnnot  // optional, the annotation referring to the target
	T *EmbeddedTarget      // optional, the next element in the chain
}

func (t EmbeddedTarget) pdfString() string {
	b := newBuffer()
	b.fmt("<</R%s", t.R)
	if t.N != "" {
		b.fmt("/N %s", EscapeByteString([]byte(t.N)))
	}
	if t.P != nil {
		b.fmt("/P %s", t.P.embeddedTargetDest())
	}
	if t.A != nil {
		b.fmt("/A %s", t.A.embeddedTargetAnnot())
	}
	if t.T != nil {
		b.fmt("/T %s", t.T.pdfString())
	}
	b.fmt(">>")
	return b.String()
}

func (t EmbeddedTarget) clone() EmbeddedTarget {
	out := t
	if t.T != nil {
		tt := t.T.clone()
		out.T = &tt
	}
	return out
}

// EmbeddedTargetDest identifies the file containing an embedded-target
// destination, either by name or by page index.
type EmbeddedTargetDest interface {
	embeddedTargetDest() string
}

type EmbeddedTargetDestNamed string

func (n EmbeddedTargetDestNamed) embeddedTargetDest() string {
	return EscapeByteString([]byte(n))
}

type EmbeddedTargetDestPage int

func (p EmbeddedTargetDestPage) embeddedTargetDest() string {
	return fmt.Sprintf("%d", int(p))
}

// EmbeddedTargetAnnot identifies the annotation referred to by an
// embedded-target, either by name or by index on the page.
type EmbeddedTargetAnnot interface {
	embeddedTargetAnnot() string
}

type EmbeddedTargetAnnotNamed string

func (n EmbeddedTargetAnnotNamed) embeddedTargetAnnot() string {
	return EscapeByteString([]byte(n))
}

type EmbeddedTargetAnnotIndex int

func (i EmbeddedTargetAnnotIndex) embeddedTargetAnnot() string {
	return fmt.Sprintf("%d", int(i))
}

// Destination is a target view of a document, either a named destination
// or an explicit one.
type Destination interface {
	// pdfDestination returns the PDF content of the destination;
	// `context` is the object the destination is written into, needed
	// to properly encode text strings.
	pdfDestination(pdf pdfWriter, context Reference) string
	clone(cache cloneCache) Destination
}

// DestinationExplicit is a destination directly specifying a page
// and a view of it, either in the current document (DestinationExplicitIntern)
// or another one (DestinationExplicitExtern).
type DestinationExplicit interface {
	Destination
	isExplicit()
}

// DestinationExplicitIntern targets a page of the current document.
type DestinationExplicitIntern struct {
	Page     *PageObject
	Location DestinationLocation
}

func (d DestinationExplicitIntern) isExplicit() {}

func (d DestinationExplicitIntern) pdfDestination(pdf pdfWriter, context Reference) string {
	pageRef := pdf.pages[d.Page]
	return fmt.Sprintf("[%s %s]", pageRef, d.Location.pdfLocation())
}

func (d DestinationExplicitIntern) clone(cache cloneCache) Destination {
	out := d
	if d.Page != nil {
		out.Page = cache.pages[d.Page].(*PageObject)
	}
	return out
}

// DestinationExplicitExtern targets a page, given by a 0-based index,
// in another document.
type DestinationExplicitExtern struct {
	Page     int
	Location DestinationLocation
}

func (d DestinationExplicitExtern) isExplicit() {}

func (d DestinationExplicitExtern) pdfDestination(pdf pdfWriter, context Reference) string {
	return fmt.Sprintf("[%d %s]", d.Page, d.Location.pdfLocation())
}

func (d DestinationExplicitExtern) clone(cache cloneCache) Destination { return d }

// DestinationLocation is the view of a page targeted by an explicit destination.
type DestinationLocation interface {
	pdfLocation() string
}

// DestinationLocationFit is either "Fit" or "FitB".
type DestinationLocationFit Name

func (f DestinationLocationFit) pdfLocation() string {
	return Name(f).String()
}

// DestinationLocationFitDim is one of "FitH", "FitV", "FitBH", "FitBV".
type DestinationLocationFitDim struct {
	Name Name
	Dim  ObjFloat // the coordinate, may be null
}

func (f DestinationLocationFitDim) pdfLocation() string {
	return fmt.Sprintf("%s %s", f.Name, writeMaybeFloat(f.Dim))
}

// DestinationLocationXYZ is the "XYZ" view.
type DestinationLocationXYZ struct {
	Left, Top ObjFloat // may be null
	Zoom      Fl       // 0 means unchanged
}

func (l DestinationLocationXYZ) pdfLocation() string {
	return fmt.Sprintf("/XYZ %s %s %s", writeMaybeFloat(l.Left), writeMaybeFloat(l.Top), FmtFloat(l.Zoom))
}

// DestinationLocationFitR is the "FitR" view.
type DestinationLocationFitR struct {
	Left, Bottom, Right, Top Fl
}

func (l DestinationLocationFitR) pdfLocation() string {
	return fmt.Sprintf("/FitR %s %s %s %s", FmtFloat(l.Left), FmtFloat(l.Bottom), FmtFloat(l.Right), FmtFloat(l.Top))
}

// DestinationName is the name of a destination defined in the
// Dests name tree.
type DestinationName Name

func (n DestinationName) pdfDestination(pdfWriter, Reference) string {
	return Name(n).String()
}

func (d DestinationName) clone(cloneCache) Destination { return d }

// DestinationString is a (deprecated) destination name given
// as a byte string instead of a name.
type DestinationString string

func (s DestinationString) pdfDestination(pdf pdfWriter, context Reference) string {
	return pdf.EncodeString(string(s), ByteString, context)
}

func (d DestinationString) clone(cloneCache) Destination { return d }
