// Package preview extracts plain text from uploaded documents so the UI
// can show the candidate file before it is sent anywhere.
package preview

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/studio-mia/mia/pkg/domain"
)

// MaxChars caps the preview length; larger documents are truncated with
// an ellipsis marker.
const MaxChars = 4000

// Extract reads the file at path and returns its plain text. The upload
// type decides the decoder; files beyond the upload size limit are
// rejected before any parsing happens.
func Extract(path string, uploadType domain.UploadType) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}
	if info.Size() > domain.MaxUploadSize {
		return "", errors.New("o arquivo deve ter no máximo 10MB")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}
	return ExtractBytes(data, uploadType)
}

// ExtractBytes decodes an in-memory document of the given type.
func ExtractBytes(data []byte, uploadType domain.UploadType) (string, error) {
	var (
		text string
		err  error
	)
	switch uploadType {
	case domain.UploadPDF:
		text, err = pdfText(data)
	case domain.UploadDOCX:
		text, err = docxText(data)
	default:
		return "", fmt.Errorf("preview: tipo de arquivo desconhecido %q", uploadType)
	}
	if err != nil {
		return "", err
	}
	return truncate(text), nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("ler PDF: %w", err)
	}

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
	}
	return strings.TrimSpace(sb.String()), nil
}

// docxText walks word/document.xml inside the .docx container and collects
// the text runs (<w:t> elements).
func docxText(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("ler DOCX: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("ler DOCX: word/document.xml ausente")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("ler DOCX: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("ler DOCX: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "t" {
			var text string
			if err := decoder.DecodeElement(&text, &se); err == nil {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func truncate(s string) string {
	if len(s) <= MaxChars {
		return s
	}
	return s[:MaxChars] + "…"
}
