package model

import (
	"bytes"
	"fmt"
	"testing"
)

func TestFunction(t *testing.T) {
	var out bytes.Buffer
	w := newWriter(&out, nil)
	fn := FunctionDict{Domain: make([]Range, 4), Range: make([]Range, 3)}

	f1 := FunctionSampled{
		Stream:        Stream{Content: []byte("654646464456")},
		BitsPerSample: 12,
		Order:         3,
		Size:          []int{1, 2, 35},
		Decode:        [][2]Fl{{1, 2}, {0.45654, 0.65487}},
		Encode:        [][2]Fl{{1, 2}, {0.45654, 0.65487}},
	}
	fn.FunctionType = f1
	w.addObject(fn.pdfContent(w, 0))

	f2 := FunctionExpInterpolation{N: 1, C0: make([]Fl, 5)}
	fn.FunctionType = f2
	w.addObject(fn.pdfContent(w, 0))

	f3 := FunctionStitching{
		Functions: []FunctionDict{fn, fn},
	}
	fn.FunctionType = f3
	w.addObject(fn.pdfContent(w, 0))

	f4 := FunctionPostScriptCalculator(f1.Stream)
	fn.FunctionType = f4
	w.addObject(fn.pdfContent(w, 0))

	fmt.Println(out.String())
}
