// Package extracttest builds small PDF fixtures for tests.
package extracttest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ContentStream returns a page content stream that shows each line in its
// own text object, so extracted text keeps one line per entry.
func ContentStream(lines ...string) []byte {
	var b bytes.Buffer
	y := 740
	for _, l := range lines {
		fmt.Fprintf(&b, "BT /F1 11 Tf 72 %d Td (%s) Tj ET\n", y, escape(l))
		y -= 14
	}
	return b.Bytes()
}

// BuildPDF assembles a PDF with one page per content stream and a single
// Helvetica font resource named F1.
func BuildPDF(contentStreams ...[]byte) []byte {
	var buf bytes.Buffer
	offsets := map[int]int{}
	obj := func(id int, body string) {
		offsets[id] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", id, body)
	}

	buf.WriteString("%PDF-1.4\n")

	n := len(contentStreams)
	fontID := 3 + n*2
	kids := make([]string, n)
	for i := range contentStreams {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i*2)
	}

	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))

	for i, cs := range contentStreams {
		pageID, csID := 3+i*2, 4+i*2
		obj(pageID, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>", csID, fontID))
		obj(csID, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(cs), cs))
	}
	obj(fontID, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	size := fontID + 1
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for id := 1; id < size; id++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xref)
	return buf.Bytes()
}

// WriteBill writes a one-page PDF holding lines to dir/name and returns
// its path.
func WriteBill(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildPDF(ContentStream(lines...)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
