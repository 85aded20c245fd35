package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileType classifies a stored document.
type FileType string

const (
	FileTypeOriginal     FileType = "original"
	FileTypeGeneratedPDF FileType = "generated_pdf"
)

// Document is a file stored by the API, referenced by lesson plans.
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FilePath  string    `json:"file_path"`
	FileType  FileType  `json:"file_type"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// UploadType is the declared type of a file picked for upload.
type UploadType string

const (
	UploadPDF  UploadType = "pdf"
	UploadDOCX UploadType = "docx"
)

// MaxUploadSize is the client-side upload limit. Files over this size are
// rejected before any request is sent.
const MaxUploadSize = 10 << 20 // 10 MB

// PendingUpload is a locally selected file waiting to be sent.
type PendingUpload struct {
	Path string
	Name string
	Type UploadType
	Size int64
}

// DetectUploadType maps a file extension to its upload type.
// Returns false for anything that is not .pdf or .docx.
func DetectUploadType(name string) (UploadType, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return UploadPDF, true
	case ".docx":
		return UploadDOCX, true
	}
	return "", false
}

// SelectUpload validates a local file for upload and returns its pending
// record. Only PDF and DOCX up to MaxUploadSize are accepted.
func SelectUpload(path string) (*PendingUpload, error) {
	typ, ok := DetectUploadType(path)
	if !ok {
		return nil, fmt.Errorf("apenas arquivos PDF ou DOCX são suportados")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("abrir arquivo: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("abrir arquivo: %s é um diretório", path)
	}
	if info.Size() > MaxUploadSize {
		return nil, fmt.Errorf("o arquivo deve ter no máximo 10MB")
	}
	return &PendingUpload{
		Path: path,
		Name: filepath.Base(path),
		Type: typ,
		Size: info.Size(),
	}, nil
}
