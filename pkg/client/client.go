package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studio-mia/mia/pkg/domain"
)

// TokenSource supplies the current bearer credential. It is consulted on
// every outbound request, never snapshotted, so a token mutation in the
// session store takes effect on the very next call.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken is a fixed-credential TokenSource, used by CLI subcommands
// and tests.
type StaticToken string

func (s StaticToken) Token() (string, bool) { return string(s), s != "" }

// Client is the Studio MIA API client.
type Client struct {
	baseURL    string
	uploadsURL string
	tokens     TokenSource
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a new API client. uploadsURL may be empty, in which case
// generated documents are served from baseURL. A nil logger is replaced
// with a no-op one.
func New(baseURL, uploadsURL string, tokens TokenSource, log *zap.Logger) *Client {
	if uploadsURL == "" {
		uploadsURL = baseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		uploadsURL: strings.TrimRight(uploadsURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, email, password string) (*domain.User, error) {
	var doc resourceDocument
	if err := c.post(ctx, "/users", credentials{Email: email, Password: password}, &doc, MsgRegisterFailed); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	user, err := obj.toUser()
	if err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return user, nil
}

// Login exchanges credentials for a bearer token. Persisting the token is
// the caller's job (the session store).
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var doc resourceDocument
	if err := c.post(ctx, "/login", credentials{Email: email, Password: password}, &doc, MsgLoginFailed); err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	var attrs authAttributes
	if err := json.Unmarshal(obj.Attributes, &attrs); err != nil || attrs.Token == "" {
		return "", fmt.Errorf("client.Login: resposta sem token")
	}
	return attrs.Token, nil
}

// GetProfile fetches a user by id.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	var doc resourceDocument
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), &doc, MsgProfileFailed); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	user, err := obj.toUser()
	if err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return user, nil
}

// UploadDocument sends a previously validated file as a standalone
// document (multipart: file, userId).
func (c *Client) UploadDocument(ctx context.Context, userID string, up *domain.PendingUpload) (*domain.Document, error) {
	var doc resourceDocument
	fields := map[string]string{"userId": userID}
	files := []filePart{{field: "file", up: up}}
	if err := c.postMultipart(ctx, "/documents", fields, files, &doc, MsgUploadFailed); err != nil {
		return nil, fmt.Errorf("client.UploadDocument: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return nil, fmt.Errorf("client.UploadDocument: %w", err)
	}
	d, err := obj.toDocument()
	if err != nil {
		return nil, fmt.Errorf("client.UploadDocument: %w", err)
	}
	return d, nil
}

// GetDocument fetches a single document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc resourceDocument
	if err := c.get(ctx, "/documents/"+url.PathEscape(id), &doc, MsgUploadFailed); err != nil {
		return nil, fmt.Errorf("client.GetDocument: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return nil, fmt.Errorf("client.GetDocument: %w", err)
	}
	d, err := obj.toDocument()
	if err != nil {
		return nil, fmt.Errorf("client.GetDocument: %w", err)
	}
	return d, nil
}

// ListUserDocuments fetches all documents owned by a user.
func (c *Client) ListUserDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	var doc resourceDocument
	if err := c.get(ctx, "/documents/user/"+url.PathEscape(userID), &doc, MsgFetchFailed); err != nil {
		return nil, fmt.Errorf("client.ListUserDocuments: %w", err)
	}
	objs, err := doc.many()
	if err != nil {
		return nil, fmt.Errorf("client.ListUserDocuments: %w", err)
	}
	docs := make([]domain.Document, 0, len(objs))
	for i := range objs {
		d, err := objs[i].toDocument()
		if err != nil {
			return nil, fmt.Errorf("client.ListUserDocuments: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, nil
}

// DeleteDocument removes a document by id.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil, MsgUploadFailed); err != nil {
		return fmt.Errorf("client.DeleteDocument: %w", err)
	}
	return nil
}

// CreateLessonPlanRequest is the payload for creating a lesson plan.
// Attached files must have passed domain.SelectUpload validation.
type CreateLessonPlanRequest struct {
	UserID            string
	Objectives        string
	Activities        string
	Assessment        string
	OriginalDocument  *domain.PendingUpload
	GeneratedDocument *domain.PendingUpload
}

// CreateLessonPlan creates a plan (multipart). The server generates the
// standardized PDF at creation time; the client only displays the result.
func (c *Client) CreateLessonPlan(ctx context.Context, req CreateLessonPlanRequest) (*domain.LessonPlan, error) {
	fields := map[string]string{
		"userId":     req.UserID,
		"objectives": req.Objectives,
		"activities": req.Activities,
		"assessment": req.Assessment,
	}
	var files []filePart
	if req.OriginalDocument != nil {
		files = append(files, filePart{field: "originalDocument", up: req.OriginalDocument})
	}
	if req.GeneratedDocument != nil {
		files = append(files, filePart{field: "generatedDocument", up: req.GeneratedDocument})
	}

	var doc resourceDocument
	if err := c.postMultipart(ctx, "/lesson-plans", fields, files, &doc, MsgCreateFailed); err != nil {
		return nil, fmt.Errorf("client.CreateLessonPlan: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return nil, fmt.Errorf("client.CreateLessonPlan: %w", err)
	}
	plan, err := obj.toLessonPlan()
	if err != nil {
		return nil, fmt.Errorf("client.CreateLessonPlan: %w", err)
	}
	if !domain.ValidPlanID(plan.ID) {
		return nil, fmt.Errorf("client.CreateLessonPlan: ID do plano de aula inválido retornado pela API")
	}
	return plan, nil
}

// GetLessonPlan fetches a single plan. Blank ids are rejected before any
// request is sent.
func (c *Client) GetLessonPlan(ctx context.Context, id string) (*domain.LessonPlan, error) {
	if !domain.ValidPlanID(id) {
		return nil, fmt.Errorf("client.GetLessonPlan: ID do plano de aula inválido")
	}
	var doc resourceDocument
	if err := c.get(ctx, "/lesson-plans/"+url.PathEscape(strings.TrimSpace(id)), &doc, MsgFetchFailed); err != nil {
		return nil, fmt.Errorf("client.GetLessonPlan: %w", err)
	}
	obj, err := doc.one()
	if err != nil {
		return nil, fmt.Errorf("client.GetLessonPlan: %w", err)
	}
	plan, err := obj.toLessonPlan()
	if err != nil {
		return nil, fmt.Errorf("client.GetLessonPlan: %w", err)
	}
	return plan, nil
}

// ListUserLessonPlans fetches all plans owned by a user.
func (c *Client) ListUserLessonPlans(ctx context.Context, userID string) ([]domain.LessonPlan, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("client.ListUserLessonPlans: ID do usuário inválido")
	}
	var doc resourceDocument
	if err := c.get(ctx, "/lesson-plans/user/"+url.PathEscape(userID), &doc, MsgFetchFailed); err != nil {
		return nil, fmt.Errorf("client.ListUserLessonPlans: %w", err)
	}
	objs, err := doc.many()
	if err != nil {
		return nil, fmt.Errorf("client.ListUserLessonPlans: %w", err)
	}
	plans := make([]domain.LessonPlan, 0, len(objs))
	for i := range objs {
		p, err := objs[i].toLessonPlan()
		if err != nil {
			return nil, fmt.Errorf("client.ListUserLessonPlans: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, nil
}

// DocumentURL returns the public URL a stored document is served from.
func (c *Client) DocumentURL(id string) string {
	return c.uploadsURL + "/uploads/" + url.PathEscape(id)
}

// DownloadDocument fetches the raw bytes of a stored document (for
// in-terminal preview or saving to disk). Responses are capped at 50 MB.
func (c *Client) DownloadDocument(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DocumentURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("client.DownloadDocument: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(req, 0, err)
		return nil, fmt.Errorf("client.DownloadDocument: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		c.logFailure(req, resp.StatusCode, nil)
		return nil, fmt.Errorf("client.DownloadDocument: %w", c.normalizeError(resp, MsgFetchFailed))
	}

	const maxDocumentSize = 50 << 20
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("client.DownloadDocument: read body: %w", err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string, out any, fallback string) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, fallback)
}

func (c *Client) post(ctx context.Context, path string, body any, out any, fallback string) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, fallback)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req)

	return c.send(req, out, fallback)
}

type filePart struct {
	field string
	up    *domain.PendingUpload
}

// postMultipart issues a multipart/form-data POST with the given text
// fields and file parts. Files are small (10 MB client-side cap) so the
// body is assembled in memory.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, files []filePart, out any, fallback string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, fp := range files {
		f, err := os.Open(fp.up.Path)
		if err != nil {
			return fmt.Errorf("open %s: %w", fp.up.Name, err)
		}
		part, err := w.CreateFormFile(fp.field, fp.up.Name)
		if err == nil {
			_, err = io.Copy(part, io.LimitReader(f, domain.MaxUploadSize))
		}
		f.Close() //nolint:errcheck // read-only file
		if err != nil {
			return fmt.Errorf("attach %s: %w", fp.up.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.decorate(req)

	return c.send(req, out, fallback)
}

// decorate attaches the current bearer token and a request id. The token
// is read from the source each time so store mutations apply immediately.
func (c *Client) decorate(req *http.Request) {
	if tok, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
}

func (c *Client) send(req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(req, 0, err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		apiErr := c.normalizeError(resp, fallback)
		c.logFailure(req, resp.StatusCode, nil)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// normalizeError maps an error response onto an *APIError, preferring the
// first entry of the server's error list.
func (c *Client) normalizeError(resp *http.Response, fallback string) *APIError {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr == nil {
		var doc resourceDocument
		if json.Unmarshal(body, &doc) == nil && len(doc.Errors) > 0 {
			apiErr := doc.Errors[0]
			apiErr.StatusCode = resp.StatusCode
			if apiErr.Detail == "" {
				apiErr.Detail = fallback
			}
			return &apiErr
		}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     fmt.Sprintf("%d", resp.StatusCode),
		Title:      "UnexpectedError",
		Detail:     fallback,
	}
}

func (c *Client) logFailure(req *http.Request, status int, err error) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get("X-Request-Id")),
	}
	if status > 0 {
		fields = append(fields, zap.Int("status", status))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	c.log.Warn("request failed", fields...)
}
