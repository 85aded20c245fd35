package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/studio-mia/mia/pkg/domain"
)

// mutableToken lets tests swap the credential between calls.
type mutableToken struct{ tok string }

func (m *mutableToken) Token() (string, bool) { return m.tok, m.tok != "" }

func writeTempUpload(t *testing.T, name, content string) *domain.PendingUpload {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	up, err := domain.SelectUpload(path)
	if err != nil {
		t.Fatalf("SelectUpload(%q) error: %v", name, err)
	}
	return up
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds.Email != "user@test.com" || creds.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":[{"status":"401","title":"AuthError","detail":"Credenciais inválidas."}]}`) //nolint:errcheck
			return
		}
		fmt.Fprint(w, `{"data":{"type":"auth","attributes":{"token":"abc123"}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken(""), nil)
	token, err := c.Login(context.Background(), "user@test.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token != "abc123" {
		t.Errorf("token = %q, want %q", token, "abc123")
	}
}

func TestLoginServerDetailPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"status":"401","title":"AuthError","detail":"Senha incorreta."}]}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken(""), nil)
	_, err := c.Login(context.Background(), "user@test.com", "wrong")
	if err == nil {
		t.Fatal("expected error for rejected login")
	}
	if got := Detail(err, MsgLoginFailed); got != "Senha incorreta." {
		t.Errorf("Detail() = %q, want server detail", got)
	}
	if !IsStatus(err, 401) {
		t.Errorf("IsStatus(err, 401) = false, want true")
	}
}

func TestLoginFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom") //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken(""), nil)
	_, err := c.Login(context.Background(), "a@b.c", "x")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := Detail(err, "outro"); got != MsgLoginFailed {
		t.Errorf("Detail() = %q, want fallback %q", got, MsgLoginFailed)
	}
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/7" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":{"type":"users","id":"7","attributes":{"email":"user@test.com"}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken("abc123"), nil)
	user, err := c.GetProfile(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if user.ID != "7" {
		t.Errorf("ID = %q, want %q", user.ID, "7")
	}
	if user.Email != "user@test.com" {
		t.Errorf("Email = %q, want %q", user.Email, "user@test.com")
	}
}

func TestTokenReadPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"type":"users","id":"1","attributes":{"email":"a@b.c"}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	src := &mutableToken{tok: "first"}
	c := New(srv.URL, "", src, nil)
	if _, err := c.GetProfile(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	src.tok = "second"
	if _, err := c.GetProfile(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}

	want := []string{"Bearer first", "Bearer second"}
	for i, w := range want {
		if seen[i] != w {
			t.Errorf("request %d Authorization = %q, want %q", i, seen[i], w)
		}
	}
}

func TestRequestIDAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"data":{"type":"users","id":"1","attributes":{"email":"a@b.c"}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken("tok"), nil)
	if _, err := c.GetProfile(context.Background(), "1"); err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
}

func TestCreateLessonPlanMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lesson-plans" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, field := range []string{"userId", "objectives", "activities", "assessment"} {
			if r.FormValue(field) == "" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"errors":[{"status":"400","title":"ValidationError","detail":"campo %s ausente"}]}`, field) //nolint:errcheck
				return
			}
		}
		file, header, err := r.FormFile("originalDocument")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close() //nolint:errcheck
		if header.Filename != "aula.pdf" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"type":"lesson-plans","id":"15","attributes":{"userId":7,"objectives":"obj","activities":"atv","assessment":"aval","generatedDocumentId":31,"generatedDocumentFilePath":"/uploads/31"}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	up := writeTempUpload(t, "aula.pdf", "%PDF-1.4 fake")
	c := New(srv.URL, "", StaticToken("tok"), nil)
	plan, err := c.CreateLessonPlan(context.Background(), CreateLessonPlanRequest{
		UserID:           "7",
		Objectives:       "obj",
		Activities:       "atv",
		Assessment:       "aval",
		OriginalDocument: up,
	})
	if err != nil {
		t.Fatalf("CreateLessonPlan() error: %v", err)
	}
	if plan.ID != "15" {
		t.Errorf("ID = %q, want %q", plan.ID, "15")
	}
	if plan.UserID != "7" {
		t.Errorf("UserID = %q, want %q", plan.UserID, "7")
	}
	if plan.GeneratedDocumentID != "31" {
		t.Errorf("GeneratedDocumentID = %q, want %q", plan.GeneratedDocumentID, "31")
	}
}

func TestGetLessonPlanRejectsBlankID(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken("tok"), nil)
	for _, id := range []string{"", "   "} {
		if _, err := c.GetLessonPlan(context.Background(), id); err == nil {
			t.Errorf("GetLessonPlan(%q): expected error", id)
		}
	}
	if called {
		t.Error("blank id must be rejected before any request is sent")
	}
}

func TestListUserLessonPlans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lesson-plans/user/7" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"type":"lesson-plans","id":"1","attributes":{"userId":7,"objectives":"a","activities":"b","assessment":"c","createdAt":"2026-03-01T10:00:00Z"}},
			{"type":"lesson-plans","id":"2","attributes":{"userId":7,"objectives":"d","activities":"e","assessment":"f"}}
		]}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken("tok"), nil)
	plans, err := c.ListUserLessonPlans(context.Background(), "7")
	if err != nil {
		t.Fatalf("ListUserLessonPlans() error: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("got %d plans, want 2", len(plans))
	}
	if plans[0].Objectives != "a" {
		t.Errorf("plans[0].Objectives = %q, want %q", plans[0].Objectives, "a")
	}
	if plans[0].CreatedAt.IsZero() {
		t.Error("plans[0].CreatedAt should be parsed")
	}
}

func TestUploadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.FormValue("userId") != "7" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"type":"documents","id":"9","attributes":{"userId":7,"filePath":"/uploads/9","fileType":"original"}}}`) //nolint:errcheck
	}))
	defer srv.Close()

	up := writeTempUpload(t, "material.docx", "PK fake docx")
	c := New(srv.URL, "", StaticToken("tok"), nil)
	d, err := c.UploadDocument(context.Background(), "7", up)
	if err != nil {
		t.Fatalf("UploadDocument() error: %v", err)
	}
	if d.ID != "9" {
		t.Errorf("ID = %q, want %q", d.ID, "9")
	}
	if d.FileType != domain.FileTypeOriginal {
		t.Errorf("FileType = %q, want %q", d.FileType, domain.FileTypeOriginal)
	}
}

func TestDocumentURL(t *testing.T) {
	c := New("http://localhost:3001", "", StaticToken(""), nil)
	if got := c.DocumentURL("31"); got != "http://localhost:3001/uploads/31" {
		t.Errorf("DocumentURL = %q", got)
	}
}

func TestDownloadDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/31" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("%PDF-1.4 gerado")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, srv.URL, StaticToken("tok"), nil)
	data, err := c.DownloadDocument(context.Background(), "31")
	if err != nil {
		t.Fatalf("DownloadDocument() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("unexpected payload %q", data)
	}
}

func TestDoRequestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second) // slow server
		fmt.Fprint(w, `{"data":null}`) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "", StaticToken("tok"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	if _, err := c.GetProfile(ctx, "1"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
