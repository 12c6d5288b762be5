package factory

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedContent signals input text containing characters the PDF
// text engine cannot encode. Callers must catch and report it; no partial
// document is ever produced.
var ErrUnsupportedContent = errors.New("unsupported content")

// UnsupportedContentError reports the first rune that cannot be rendered.
type UnsupportedContentError struct {
	Rune   rune
	Offset int
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("unsupported content: character %q at offset %d cannot be encoded", e.Rune, e.Offset)
}

func (e *UnsupportedContentError) Unwrap() error { return ErrUnsupportedContent }

// Generator converts a title and body text into a finished PDF byte buffer.
// Implementations are pure: no network, no disk, deterministic apart from
// embedded generation metadata.
type Generator interface {
	Generate(title, body string) ([]byte, error)
}

const (
	pageMarginMM   = 20
	titleFontPt    = 18
	bodyFontPt     = 12
	titleLineMM    = 9
	bodyLineMM     = 6
	titleGapMM     = 4
	bottomMarginMM = 25
)

// PDF renders minimal paginated text documents: the title in a larger bold
// weight above the body, both word-wrapped to the same usable width, with
// automatic page breaks. The core Helvetica fonts reach exactly the
// Windows-1252 repertoire, which covers standard Western-accented text.
type PDF struct{}

func New() *PDF { return &PDF{} }

var _ Generator = (*PDF)(nil)

func (p *PDF) Generate(title, body string) ([]byte, error) {
	if err := checkEncodable(title); err != nil {
		return nil, err
	}
	if err := checkEncodable(body); err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	doc.SetAutoPageBreak(true, bottomMarginMM)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("") // UTF-8 to cp1252

	doc.SetFont("Helvetica", "B", titleFontPt)
	doc.MultiCell(0, titleLineMM, tr(title), "", "L", false)
	doc.Ln(titleGapMM)

	doc.SetFont("Helvetica", "", bodyFontPt)
	doc.MultiCell(0, bodyLineMM, tr(body), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// checkEncodable rejects text up front so that an unsupported rune can be
// reported precisely instead of being silently dropped by the translator.
func checkEncodable(s string) error {
	for i, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return &UnsupportedContentError{Rune: r, Offset: i}
		}
	}
	return nil
}
