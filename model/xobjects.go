package model

import "fmt"

// XObject is either an image or an arbitrary content stream (a form),
// usable as a resource in a page or another form.
type XObject interface {
	Referenceable
	isXObject()
}

func (*XObjectForm) isXObject()              {}
func (*XObjectTransparencyGroup) isXObject() {}
func (*XObjectImage) isXObject()              {}

// XObjectForm is a self-contained content stream, with its own resources,
// that may be painted as a unit (for instance, an appearance stream).
type XObjectForm struct {
	ContentStream

	BBox      Rectangle
	Matrix    Matrix // optional, default to identity
	Resources ResourcesDict

	StructParent, StructParents ObjInt // at most one is meaningful
}

func (xo *XObjectForm) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	common := xo.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("<</Type/XObject/Subtype/Form%s/BBox %s", common, xo.BBox.String())
	if (xo.Matrix != Matrix{}) {
		b.fmt("/Matrix %s", xo.Matrix.String())
	}
	if !xo.Resources.IsEmpty() {
		b.fmt("/Resources %s", xo.Resources.pdfString(pdf, ref))
	}
	if xo.StructParent != 0 {
		b.fmt("/StructParent %d", xo.StructParent)
	} else if xo.StructParents != 0 {
		b.fmt("/StructParents %d", xo.StructParents)
	}
	b.WriteString(">>")
	return b.String(), xo.Content
}

// GetStructParent implements StructParentObject. At most one of
// StructParent and StructParents is meaningful on a given form.
func (xo *XObjectForm) GetStructParent() MaybeInt {
	if xo.StructParent != 0 {
		return xo.StructParent
	}
	if xo.StructParents != 0 {
		return xo.StructParents
	}
	return nil
}

func (xo *XObjectForm) clone(cache cloneCache) Referenceable {
	if xo == nil {
		return xo
	}
	out := *xo
	out.ContentStream = xo.ContentStream.Clone()
	out.Resources = xo.Resources.clone(cache)
	return &out
}

// XObjectTransparencyGroup is a form XObject further qualified
// as a transparency group.
type XObjectTransparencyGroup struct {
	XObjectForm

	CS ColorSpace // optional
	I  bool       // optional, isolated
	K  bool       // optional, knockout
}

func (xo *XObjectTransparencyGroup) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	content, stream := xo.XObjectForm.pdfContent(pdf, ref)
	group := newBuffer()
	group.WriteString("<</Type/Group/S/Transparency")
	if xo.CS != nil {
		group.fmt("/CS %s", xo.CS.colorSpacePDFString(pdf))
	}
	if xo.I {
		group.fmt("/I %v", xo.I)
	}
	if xo.K {
		group.fmt("/K %v", xo.K)
	}
	group.WriteString(">>")
	// insert the /Group entry just before the closing '>>' of the form dict
	content = content[:len(content)-2] + fmt.Sprintf("/Group %s>>", group.String())
	return content, stream
}

func (xo *XObjectTransparencyGroup) clone(cache cloneCache) Referenceable {
	if xo == nil {
		return xo
	}
	out := *xo
	form := xo.XObjectForm.clone(cache).(*XObjectForm)
	out.XObjectForm = *form
	out.CS = cloneColorSpace(xo.CS, cache)
	return &out
}

// AlternateImage is an alternative representation of an XObjectImage,
// for instance at a different resolution.
type AlternateImage struct {
	Image              *XObjectImage
	DefaultForPrinting bool
}

// ImageSMask is a soft-mask image, used as the SMask entry
// of an XObjectImage. It shares the same shape as an image,
// but is always restricted to a DeviceGray color space.
type ImageSMask struct {
	Stream

	Width, Height    int
	BitsPerComponent uint8
	Decode           [][2]Fl
	Interpolate      bool
	Matte            []Fl // optional
}

func (s *ImageSMask) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	common := s.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("<</Type/XObject/Subtype/Image%s/Width %d/Height %d/ColorSpace/DeviceGray/BitsPerComponent %d",
		common, s.Width, s.Height, s.BitsPerComponent)
	if len(s.Decode) != 0 {
		b.fmt("/Decode %s", writePointsArray(s.Decode))
	}
	if s.Interpolate {
		b.fmt("/Interpolate %v", s.Interpolate)
	}
	if len(s.Matte) != 0 {
		b.fmt("/Matte %s", writeFloatArray(s.Matte))
	}
	b.WriteString(">>")
	return b.String(), s.Content
}

func (s *ImageSMask) clone(cloneCache) Referenceable {
	if s == nil {
		return s
	}
	out := *s
	out.Stream = s.Stream.Clone()
	out.Decode = append([][2]Fl(nil), s.Decode...)
	out.Matte = append([]Fl(nil), s.Matte...)
	return &out
}

// XObjectImage is an image XObject: a sampled representation of
// a rectangular array of samples (pixels).
type XObjectImage struct {
	Stream

	Width, Height    int
	ColorSpace       ColorSpace // required unless ImageMask is true
	BitsPerComponent uint8      // required unless ImageMask is true
	Intent           Name       // optional
	ImageMask        bool       // optional, default to false
	Decode           [][2]Fl    // optional
	Interpolate      bool       // optional, default to false
	Alternates       []AlternateImage
	SMask            *ImageSMask // optional
	SMaskInData      uint8       // optional, 0, 1 or 2
	StructParent     ObjInt      // optional
}

// GetStructParent implements StructParentObject.
func (img *XObjectImage) GetStructParent() MaybeInt {
	if img.StructParent != 0 {
		return img.StructParent
	}
	return nil
}

func (img *XObjectImage) pdfContent(pdf pdfWriter, ref Reference) (string, []byte) {
	common := img.PDFCommonFields(true)
	b := newBuffer()
	b.fmt("<</Type/XObject/Subtype/Image%s/Width %d/Height %d", common, img.Width, img.Height)
	if img.ImageMask {
		b.fmt("/ImageMask %v", img.ImageMask)
	} else {
		if img.ColorSpace != nil {
			b.fmt("/ColorSpace %s", img.ColorSpace.colorSpacePDFString(pdf))
		}
		b.fmt("/BitsPerComponent %d", img.BitsPerComponent)
	}
	if img.Intent != "" {
		b.fmt("/Intent %s", img.Intent)
	}
	if len(img.Decode) != 0 {
		b.fmt("/Decode %s", writePointsArray(img.Decode))
	}
	if img.Interpolate {
		b.fmt("/Interpolate %v", img.Interpolate)
	}
	if len(img.Alternates) != 0 {
		b.WriteString("/Alternates [")
		for _, alt := range img.Alternates {
			altRef := pdf.addItem(alt.Image)
			b.fmt("<</Image %s/DefaultForPrinting %v>>", altRef, alt.DefaultForPrinting)
		}
		b.WriteString("]")
	}
	if img.SMask != nil {
		smRef := pdf.addItem(img.SMask)
		b.fmt("/SMask %s", smRef)
	}
	if img.SMaskInData != 0 {
		b.fmt("/SMaskInData %d", img.SMaskInData)
	}
	if img.StructParent != 0 {
		b.fmt("/StructParent %d", img.StructParent)
	}
	b.WriteString(">>")
	return b.String(), img.Content
}

func (img *XObjectImage) clone(cache cloneCache) Referenceable {
	if img == nil {
		return img
	}
	out := *img
	out.Stream = img.Stream.Clone()
	out.ColorSpace = cloneColorSpace(img.ColorSpace, cache)
	out.Decode = append([][2]Fl(nil), img.Decode...)
	if img.Alternates != nil {
		out.Alternates = make([]AlternateImage, len(img.Alternates))
		for i, alt := range img.Alternates {
			out.Alternates[i] = AlternateImage{
				Image:              cache.checkOrClone(alt.Image).(*XObjectImage),
				DefaultForPrinting: alt.DefaultForPrinting,
			}
		}
	}
	if img.SMask != nil {
		out.SMask = cache.checkOrClone(img.SMask).(*ImageSMask)
	}
	return &out
}
