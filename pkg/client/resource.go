package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/studio-mia/mia/pkg/domain"
)

// The API speaks a resource-document protocol: every response is
// {data, included?, errors?, meta?, links?} with one data entry per entity.
// Attribute keys are camelCase and numeric ids arrive as JSON numbers.

type resourceObject struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

type resourceDocument struct {
	Data   json.RawMessage `json:"data"`
	Errors []APIError      `json:"errors,omitempty"`
	Meta   json.RawMessage `json:"meta,omitempty"`
}

// one decodes a single-resource data member.
func (d *resourceDocument) one() (*resourceObject, error) {
	if len(d.Data) == 0 {
		return nil, fmt.Errorf("resposta sem data")
	}
	var obj resourceObject
	if err := json.Unmarshal(d.Data, &obj); err != nil {
		return nil, fmt.Errorf("decode resource: %w", err)
	}
	return &obj, nil
}

// many decodes a list data member. A single object is tolerated and
// returned as a one-element list.
func (d *resourceDocument) many() ([]resourceObject, error) {
	if len(d.Data) == 0 {
		return nil, nil
	}
	var objs []resourceObject
	if err := json.Unmarshal(d.Data, &objs); err == nil {
		return objs, nil
	}
	var obj resourceObject
	if err := json.Unmarshal(d.Data, &obj); err != nil {
		return nil, fmt.Errorf("decode resource list: %w", err)
	}
	return []resourceObject{obj}, nil
}

type userAttributes struct {
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type authAttributes struct {
	Token string `json:"token"`
}

type documentAttributes struct {
	UserID    json.Number `json:"userId"`
	FilePath  string      `json:"filePath"`
	FileType  string      `json:"fileType"`
	CreatedAt string      `json:"createdAt,omitempty"`
	UpdatedAt string      `json:"updatedAt,omitempty"`
}

type lessonPlanAttributes struct {
	UserID                    json.Number  `json:"userId"`
	Objectives                string       `json:"objectives"`
	Activities                string       `json:"activities"`
	Assessment                string       `json:"assessment"`
	OriginalDocumentID        *json.Number `json:"originalDocumentId,omitempty"`
	GeneratedDocumentID       *json.Number `json:"generatedDocumentId,omitempty"`
	GeneratedDocumentFilePath *string      `json:"generatedDocumentFilePath,omitempty"`
	CreatedAt                 string       `json:"createdAt,omitempty"`
	UpdatedAt                 string       `json:"updatedAt,omitempty"`
}

func (o *resourceObject) toUser() (*domain.User, error) {
	var attrs userAttributes
	if err := json.Unmarshal(o.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("decode user attributes: %w", err)
	}
	return &domain.User{
		ID:        o.ID,
		Email:     attrs.Email,
		CreatedAt: parseAPITime(attrs.CreatedAt),
		UpdatedAt: parseAPITime(attrs.UpdatedAt),
	}, nil
}

func (o *resourceObject) toDocument() (*domain.Document, error) {
	var attrs documentAttributes
	if err := json.Unmarshal(o.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("decode document attributes: %w", err)
	}
	return &domain.Document{
		ID:        o.ID,
		UserID:    attrs.UserID.String(),
		FilePath:  attrs.FilePath,
		FileType:  domain.FileType(attrs.FileType),
		CreatedAt: parseAPITime(attrs.CreatedAt),
		UpdatedAt: parseAPITime(attrs.UpdatedAt),
	}, nil
}

func (o *resourceObject) toLessonPlan() (*domain.LessonPlan, error) {
	var attrs lessonPlanAttributes
	if err := json.Unmarshal(o.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("decode lesson plan attributes: %w", err)
	}
	plan := &domain.LessonPlan{
		ID:         o.ID,
		UserID:     attrs.UserID.String(),
		Objectives: attrs.Objectives,
		Activities: attrs.Activities,
		Assessment: attrs.Assessment,
		CreatedAt:  parseAPITime(attrs.CreatedAt),
		UpdatedAt:  parseAPITime(attrs.UpdatedAt),
	}
	if attrs.OriginalDocumentID != nil {
		plan.OriginalDocumentID = attrs.OriginalDocumentID.String()
	}
	if attrs.GeneratedDocumentID != nil {
		plan.GeneratedDocumentID = attrs.GeneratedDocumentID.String()
	}
	if attrs.GeneratedDocumentFilePath != nil {
		plan.GeneratedDocumentFilePath = *attrs.GeneratedDocumentFilePath
	}
	return plan, nil
}

// parseAPITime parses an RFC3339 timestamp, returning the zero time for
// absent or malformed values.
func parseAPITime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
