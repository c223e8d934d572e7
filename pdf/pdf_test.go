package pdf

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func TestBytesXrefOffsets(t *testing.T) {
	d := New()
	d.Add(50, 750, 24, true, "Türkiye'nin Coğrafi Merkezi")
	d.Add(50, 710, 12, false, "Koordinatlar: 39.245472° N, 35.487361° E")
	out := d.Bytes()

	if !bytes.HasPrefix(out, []byte("%PDF-1.4\n")) {
		t.Fatalf("missing header: %q", out[:16])
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatalf("missing trailer EOF")
	}

	m := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(out)
	if m == nil {
		t.Fatal("no startxref")
	}
	xref, _ := strconv.Atoi(string(m[1]))
	if !bytes.HasPrefix(out[xref:], []byte("xref\n0 7\n")) {
		t.Fatalf("startxref %d does not point at the xref table", xref)
	}

	entries := strings.Split(string(out[xref:]), "\n")[3:9]
	for i, e := range entries {
		off, err := strconv.Atoi(e[:10])
		if err != nil {
			t.Fatalf("bad xref entry %q", e)
		}
		want := strconv.Itoa(i+1) + " 0 obj\n"
		if !bytes.HasPrefix(out[off:], []byte(want)) {
			t.Errorf("xref entry %d points at %q, want %q", i+1, out[off:off+10], want)
		}
	}
}

func TestStreamLength(t *testing.T) {
	d := New()
	d.Add(50, 700, 10, false, "hello (world)")
	out := d.Bytes()

	m := regexp.MustCompile(`<< /Length (\d+) >>\nstream\n`).FindSubmatchIndex(out)
	if m == nil {
		t.Fatal("no stream dictionary")
	}
	length, _ := strconv.Atoi(string(out[m[2]:m[3]]))
	start := m[1]
	if !bytes.HasPrefix(out[start+length:], []byte("\nendstream")) {
		t.Errorf("/Length %d does not end at endstream", length)
	}
	if !bytes.Contains(out[start:start+length], []byte(`(hello \(world\)) Tj`)) {
		t.Errorf("text not escaped: %s", out[start:start+length])
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"abc", []byte("abc")},
		{"ö ü ç", []byte{0xF6, ' ', 0xFC, ' ', 0xE7}},
		{"39°", []byte{'3', '9', 0xB0}},
		{"Eşrefpaşa", []byte("Esrefpasa")},
		{"Doğrulama", []byte("Dogrulama")},
		{"Işık İzmir", []byte("Isik Izmir")},
		{"日", []byte("?")},
	}
	for _, tt := range tests {
		if got := EncodeWinAnsi(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeWinAnsi(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	got := Wrap("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Wrap = %q, want %q", got, want)
	}
	if Wrap("   ", 10) != nil {
		t.Error("Wrap of blank text should be nil")
	}
	if got := Wrap("supercalifragilistic x", 5); got[0] != "supercalifragilistic" || got[1] != "x" {
		t.Errorf("long word handling: %q", got)
	}
}
