package dispatcher

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildPptx(t *testing.T, slideCount int, notes map[int]string) *bytes.Reader {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	for i := 1; i <= slideCount; i++ {
		w, err := zw.Create(pptxSlidePath(i))
		if err != nil {
			t.Fatalf("create slide %d: %v", i, err)
		}
		if _, err := w.Write([]byte(`<p:sld xmlns:p="x"/>`)); err != nil {
			t.Fatalf("write slide %d: %v", i, err)
		}
	}
	for idx, text := range notes {
		w, err := zw.Create(pptxNotesPath(idx))
		if err != nil {
			t.Fatalf("create notes %d: %v", idx, err)
		}
		xml := `<p:notes xmlns:a="a" xmlns:p="p"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:notes>`
		if _, err := w.Write([]byte(xml)); err != nil {
			t.Fatalf("write notes %d: %v", idx, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func pptxSlidePath(i int) string { return "ppt/slides/slide" + itoa(i) + ".xml" }
func pptxNotesPath(i int) string { return "ppt/notesSlides/notesSlide" + itoa(i) + ".xml" }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestExtractNotesOrdersPerSlideTextAndFillsGapsWithEmptyString(t *testing.T) {
	r := buildPptx(t, 3, map[int]string{1: "hello", 3: "third slide notes"})

	notes, err := ExtractNotes(r, int64(r.Len()))
	if err != nil {
		t.Fatalf("ExtractNotes: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(notes))
	}
	if notes[0] != "hello" {
		t.Fatalf("slide 1: got %q", notes[0])
	}
	if notes[1] != "" {
		t.Fatalf("slide 2 with no notesSlide entry: got %q", notes[1])
	}
	if notes[2] != "third slide notes" {
		t.Fatalf("slide 3: got %q", notes[2])
	}
}

func TestExtractNotesNoSlidesIsAnError(t *testing.T) {
	r := buildPptx(t, 0, nil)
	if _, err := ExtractNotes(r, int64(r.Len())); err == nil {
		t.Fatalf("expected an error for a pptx with no slides")
	}
}
