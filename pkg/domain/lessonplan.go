package domain

import (
	"strings"
	"time"
)

// LessonPlan is the core domain entity: a teacher's instructional plan,
// optionally linked to an original document and a server-generated PDF.
type LessonPlan struct {
	ID                        string    `json:"id"`
	UserID                    string    `json:"user_id"`
	Objectives                string    `json:"objectives"`
	Activities                string    `json:"activities"`
	Assessment                string    `json:"assessment"`
	OriginalDocumentID        string    `json:"original_document_id,omitempty"`
	GeneratedDocumentID       string    `json:"generated_document_id,omitempty"`
	GeneratedDocumentFilePath string    `json:"generated_document_file_path,omitempty"`
	CreatedAt                 time.Time `json:"created_at,omitempty"`
	UpdatedAt                 time.Time `json:"updated_at,omitempty"`
}

// HasGeneratedPDF reports whether the server already generated a PDF for
// this plan. Generation happens server-side at creation time.
func (p LessonPlan) HasGeneratedPDF() bool {
	return p.GeneratedDocumentID != ""
}

// ValidPlanID reports whether id is a usable lesson-plan identifier.
// Blank and whitespace-only ids are rejected everywhere in the UI.
func ValidPlanID(id string) bool {
	return strings.TrimSpace(id) != ""
}
