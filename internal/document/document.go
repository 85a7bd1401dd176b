// Package document checks and reads the resume formats the service accepts.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Allowed reports whether mime is an accepted resume format.
func Allowed(mime string) bool {
	return mime == MimePDF || mime == MimeDOCX
}

// Extension returns the canonical file extension for mime, without the dot.
func Extension(mime string) string {
	switch mime {
	case MimePDF:
		return "pdf"
	case MimeDOCX:
		return "docx"
	default:
		return ""
	}
}

// Verify parses data with the reader for mime and fails if it cannot be opened.
func Verify(mime string, data []byte) error {
	switch mime {
	case MimePDF:
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return fmt.Errorf("failed to read pdf: %w", err)
		}
		if r.NumPage() == 0 {
			return errors.New("pdf has no pages")
		}
		return nil
	case MimeDOCX:
		doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return fmt.Errorf("failed to parse docx: %w", err)
		}
		return doc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
}

func ExtractText(mime string, data []byte) (string, error) {
	switch mime {
	case "text/plain":
		return string(data), nil
	case MimePDF:
		return extractPDFText(bytes.NewReader(data), int64(len(data)))
	case MimeDOCX:
		return extractDocxText(bytes.NewReader(data), int64(len(data)))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
}

func extractPDFText(reader io.ReaderAt, size int64) (string, error) {
	pdfReader, err := pdf.NewReader(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, _ := page.GetPlainText(nil)
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

func extractDocxText(reader io.ReaderAt, size int64) (string, error) {
	doc, err := docx.ReadDocxFromMemory(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns the raw document.xml body.
	content := doc.Editable().GetContent()
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content)), nil
}
