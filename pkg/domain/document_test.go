package domain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectUploadType(t *testing.T) {
	tests := []struct {
		name     string
		wantType UploadType
		wantOK   bool
	}{
		{"plano.pdf", UploadPDF, true},
		{"plano.PDF", UploadPDF, true},
		{"plano.docx", UploadDOCX, true},
		{"plano.DOCX", UploadDOCX, true},
		{"plano.doc", "", false},
		{"plano.txt", "", false},
		{"plano", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			typ, ok := DetectUploadType(tc.name)
			if ok != tc.wantOK {
				t.Fatalf("DetectUploadType(%q) ok = %v, want %v", tc.name, ok, tc.wantOK)
			}
			if typ != tc.wantType {
				t.Errorf("DetectUploadType(%q) = %q, want %q", tc.name, typ, tc.wantType)
			}
		})
	}
}

func TestSelectUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aula.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 conteudo"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := SelectUpload(path)
	if err != nil {
		t.Fatalf("SelectUpload() error: %v", err)
	}
	if p.Type != UploadPDF {
		t.Errorf("Type = %q, want %q", p.Type, UploadPDF)
	}
	if p.Name != "aula.pdf" {
		t.Errorf("Name = %q, want %q", p.Name, "aula.pdf")
	}
	if p.Size == 0 {
		t.Error("Size = 0, want > 0")
	}
}

func TestSelectUploadRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aula.txt")
	if err := os.WriteFile(path, []byte("texto"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := SelectUpload(path); err == nil {
		t.Fatal("expected error for .txt file")
	}
}

func TestSelectUploadRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grande.pdf")
	// 11 MB of zeros, over the 10 MB client-side limit.
	if err := os.WriteFile(path, make([]byte, 11<<20), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := SelectUpload(path)
	if err == nil {
		t.Fatal("expected error for 11MB file")
	}
	if !strings.Contains(err.Error(), "10MB") {
		t.Errorf("error = %q, want it to mention the 10MB limit", err)
	}
}

func TestSelectUploadMissingFile(t *testing.T) {
	if _, err := SelectUpload(filepath.Join(t.TempDir(), "nao-existe.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidPlanID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"42", true},
		{"abc", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
	}
	for _, tc := range tests {
		if got := ValidPlanID(tc.id); got != tc.want {
			t.Errorf("ValidPlanID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}
