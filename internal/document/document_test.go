package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a one page PDF with a correct cross-reference table.
func buildPDF(t *testing.T) []byte {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
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

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(MimePDF))
	assert.True(t, Allowed(MimeDOCX))
	assert.False(t, Allowed("application/msword"))
	assert.False(t, Allowed("text/plain"))
	assert.False(t, Allowed(""))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", Extension(MimePDF))
	assert.Equal(t, "docx", Extension(MimeDOCX))
	assert.Equal(t, "", Extension("image/png"))
}

func TestVerifyPDF(t *testing.T) {
	require.NoError(t, Verify(MimePDF, buildPDF(t)))
	assert.Error(t, Verify(MimePDF, []byte("definitely not a pdf")))
}

func TestVerifyDocx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`)
	require.NoError(t, Verify(MimeDOCX, data))
	assert.Error(t, Verify(MimeDOCX, []byte("PK not really a zip")))
}

func TestVerifyMismatchedType(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`)
	assert.Error(t, Verify(MimePDF, data))
}

func TestVerifyUnsupported(t *testing.T) {
	err := Verify("image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractDocxText(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Go &amp; Postgres</w:t></w:r></w:p>`)

	text, err := ExtractText(MimeDOCX, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo & Postgres", text)
}

func TestExtractPlainText(t *testing.T) {
	text, err := ExtractText("text/plain", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
