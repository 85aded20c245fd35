package preview

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/studio-mia/mia/pkg/domain"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractBytesDOCX(t *testing.T) {
	doc := buildDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Plano de aula</w:t></w:r></w:p>
    <w:p><w:r><w:t>Objetivos gerais</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := ExtractBytes(doc, domain.UploadDOCX)
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if !strings.Contains(text, "Plano de aula") || !strings.Contains(text, "Objetivos gerais") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractBytesDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/other.xml"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := ExtractBytes(buf.Bytes(), domain.UploadDOCX); err == nil {
		t.Fatal("expected error for docx without word/document.xml")
	}
}

func TestExtractBytesRejectsCorruptInput(t *testing.T) {
	if _, err := ExtractBytes([]byte("not a zip"), domain.UploadDOCX); err == nil {
		t.Fatal("expected error for corrupt docx")
	}
	if _, err := ExtractBytes([]byte("not a pdf"), domain.UploadPDF); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestExtractBytesUnknownType(t *testing.T) {
	if _, err := ExtractBytes([]byte("x"), domain.UploadType("txt")); err == nil {
		t.Fatal("expected error for unknown upload type")
	}
}

func TestExtractRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.docx")
	if err := os.WriteFile(path, make([]byte, domain.MaxUploadSize+1), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Extract(path, domain.UploadDOCX); err == nil {
		t.Fatal("expected error for oversized file")
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "nope.pdf"), domain.UploadPDF); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", MaxChars+100)
	got := truncate(long)
	if len(got) <= MaxChars {
		t.Fatalf("truncate dropped the marker: len=%d", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatal("expected ellipsis suffix")
	}
	if truncate("curto") != "curto" {
		t.Fatal("short strings must pass through")
	}
}
