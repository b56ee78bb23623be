package figurealt

import "bytes"

// detectMIME sniffs an image's container format from its magic bytes,
// matching spec.md §4.9's fixed set: PNG, JPEG, JPEG2000, else a generic
// octet stream. It never inspects decoded pixel data.
func detectMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' '}):
		return "image/jp2"
	case bytes.HasPrefix(data, []byte{0xFF, 0x4F, 0xFF, 0x51}):
		return "image/jp2"
	default:
		return "application/octet-stream"
	}
}
