// Package pdf writes single-page PDF 1.4 documents made of positioned lines
// of Helvetica text. There is no layout beyond explicit coordinates and a
// character-count word wrap.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// US Letter in points.
const (
	PageWidth  = 612
	PageHeight = 792
)

// Line is one run of text placed at (X, Y) from the bottom-left corner.
type Line struct {
	X, Y float64
	Size float64
	Bold bool
	Text string
}

type Document struct {
	lines []Line
}

func New() *Document {
	return &Document{}
}

// Add places text at (x, y).
func (d *Document) Add(x, y, size float64, bold bool, text string) {
	d.lines = append(d.lines, Line{X: x, Y: y, Size: size, Bold: bold, Text: text})
}

func (d *Document) Lines() []Line {
	return d.lines
}

// Bytes renders the document. Object layout:
//
//	1 catalog, 2 pages, 3 page, 4 content stream,
//	5 Helvetica-Bold (/F1), 6 Helvetica (/F2)
func (d *Document) Bytes() []byte {
	content := d.contentStream()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Contents 4 0 R /Resources << /Font << /F1 5 0 R /F2 6 0 R >> >> >>", PageWidth, PageHeight),
		"", // stream, written below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		num := i + 1
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", num)
		if num == 4 {
			fmt.Fprintf(&buf, "<< /Length %d >>\nstream\n", len(content))
			buf.Write(content)
			buf.WriteString("\nendstream\n")
		} else {
			buf.WriteString(obj)
			buf.WriteByte('\n')
		}
		buf.WriteString("endobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func (d *Document) contentStream() []byte {
	var buf bytes.Buffer
	for _, l := range d.lines {
		font := "/F2"
		if l.Bold {
			font = "/F1"
		}
		fmt.Fprintf(&buf, "BT\n%s %s Tf\n%s %s Td\n(", font, num(l.Size), num(l.X), num(l.Y))
		buf.Write(escape(EncodeWinAnsi(l.Text)))
		buf.WriteString(") Tj\nET\n")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escape backslash-escapes the PDF string delimiters and flattens line breaks.
func escape(b []byte) []byte {
	out := make([]byte, 0, len(b)+8)
	for _, c := range b {
		switch c {
		case '\\', '(', ')':
			out = append(out, '\\', c)
		case '\n', '\r', '\t':
			out = append(out, ' ')
		default:
			out = append(out, c)
		}
	}
	return out
}

// EncodeWinAnsi converts s to Windows-1252 for the standard Type1 fonts.
// Runes outside the code page fall back to their base letter (ş -> s,
// İ -> I, ı -> i) or '?'.
func EncodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		if b, ok := fold(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

func fold(r rune) (byte, bool) {
	if r == 'ı' {
		return 'i', true
	}
	base, _ := utf8.DecodeRuneInString(norm.NFD.String(string(r)))
	if base == r {
		return 0, false
	}
	return charmap.Windows1252.EncodeRune(base)
}

// Wrap splits text into lines of at most width runes, breaking on spaces.
// A single word longer than width gets a line of its own.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}
