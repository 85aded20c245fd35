package tui

import (
	"context"
	"fmt"

	"github.com/studio-mia/mia/internal/preview"
	"github.com/studio-mia/mia/pkg/client"
	"github.com/studio-mia/mia/pkg/domain"
)

// fetchDocumentText downloads a stored document and extracts its plain
// text. The document's stored file path decides the decoder.
func fetchDocumentText(ctx context.Context, c *client.Client, docID string) (string, error) {
	doc, err := c.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	typ, ok := domain.DetectUploadType(doc.FilePath)
	if !ok {
		return "", fmt.Errorf("documento %s: tipo de arquivo desconhecido", docID)
	}
	data, err := c.DownloadDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	return preview.ExtractBytes(data, typ)
}
