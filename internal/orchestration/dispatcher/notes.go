package dispatcher

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	slideFilePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesFilePattern = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
)

// drawingText is the minimal subset of the OOXML DrawingML schema needed
// to pull text runs out of a notes slide: <a:t> elements nested anywhere
// under the body. No OOXML-aware library appeared in the retrieved
// corpus, so this walks the XML token stream directly rather than
// modeling the full schema.
type drawingText struct {
	XMLName xml.Name `xml:"t"`
	Text    string   `xml:",chardata"`
}

// ExtractNotes opens a .pptx (a zip archive) and returns the speaker-notes
// text for each slide in 1-based order. Slides with no corresponding
// notesSlide entry, or with an empty notes body, contribute "".
func ExtractNotes(r io.ReaderAt, size int64) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: open pptx: %w", err)
	}

	slideCount := 0
	notesByIndex := map[int]string{}

	for _, f := range zr.File {
		if m := slideFilePattern.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			if n > slideCount {
				slideCount = n
			}
			continue
		}
		if m := notesFilePattern.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			text, err := extractRunText(f)
			if err != nil {
				return nil, fmt.Errorf("dispatcher: read notes slide %d: %w", n, err)
			}
			notesByIndex[n] = text
		}
	}
	if slideCount == 0 {
		return nil, fmt.Errorf("dispatcher: pptx has no slides")
	}

	out := make([]string, slideCount)
	for i := 1; i <= slideCount; i++ {
		out[i-1] = notesByIndex[i]
	}
	return out, nil
}

func extractRunText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var runs []string
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "t" {
			continue
		}
		var t drawingText
		if err := dec.DecodeElement(&t, &start); err != nil {
			return "", err
		}
		runs = append(runs, t.Text)
	}
	return strings.TrimSpace(strings.Join(runs, " ")), nil
}
