package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/csvnorm/csvnorm/internal/config"
	"github.com/csvnorm/csvnorm/internal/normalize"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Rate.Enabled = false
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return NewServer(cfg, normalize.New(), nil)
}

// multipartBody builds a multipart form with a single file field.
func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fw, err := form.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, form.FormDataContentType()
}

func postNormalize(t *testing.T, s *Server, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/normalize", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body["ok"] {
		t.Errorf("body = %s, want ok=true", rec.Body.String())
	}
}

func TestHandleNormalize_Success(t *testing.T) {
	s := newTestServer(t)

	rec := postNormalize(t, s, "file", "data.csv", []byte("a;b;c\n1;2;3\n"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var result normalize.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if result.NormalizedCSV.Encoding != "utf-8-sig" {
		t.Errorf("encoding = %q, want %q", result.NormalizedCSV.Encoding, "utf-8-sig")
	}
	if len(result.NormalizedCSV.SHA256) != 64 {
		t.Errorf("sha256 length = %d, want 64", len(result.NormalizedCSV.SHA256))
	}

	raw, err := base64.StdEncoding.DecodeString(result.NormalizedCSV.ContentB64)
	if err != nil {
		t.Fatalf("decode content_b64: %v", err)
	}
	want := "\xef\xbb\xbfa,b,c\n1,2,3\n"
	if string(raw) != want {
		t.Errorf("normalized bytes = %q, want %q", raw, want)
	}

	if result.Report.Summary.Rows != 2 {
		t.Errorf("summary.rows = %d, want 2", result.Report.Summary.Rows)
	}
	if result.Report.Normalizations.Delimiter.Detected != ";" {
		t.Errorf("delimiter.detected = %q, want %q",
			result.Report.Normalizations.Delimiter.Detected, ";")
	}
}

func TestHandleNormalize_DataErrorsStillSucceed(t *testing.T) {
	// Long rows are reported, not rejected.
	s := newTestServer(t)

	rec := postNormalize(t, s, "file", "ragged.csv", []byte("a,b\n1,2,3\n"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var result normalize.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Report.Summary.Errors != 1 {
		t.Errorf("summary.errors = %d, want 1", result.Report.Summary.Errors)
	}
}

func TestHandleNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		content    []byte
		wantStatus int
	}{
		{"missing file field", "attachment", "data.csv", []byte("a,b\n"), http.StatusBadRequest},
		{"wrong extension", "file", "data.txt", []byte("a,b\n"), http.StatusUnprocessableEntity},
		{"uppercase extension ok", "file", "DATA.CSV", []byte("a,b\n1,2\n"), http.StatusOK},
		{"empty file", "file", "empty.csv", nil, http.StatusUnprocessableEntity},
		{"whitespace only", "file", "blank.csv", []byte("   \n\t\n"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := postNormalize(t, s, tt.field, tt.filename, tt.content)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHandleNormalize_FileTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Upload.MaxFileSize = 64

	content := bytes.Repeat([]byte("0123456789,abcdef\n"), 64)
	rec := postNormalize(t, s, "file", "big.csv", content)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestHandleNormalize_ErrorBodyShape(t *testing.T) {
	s := newTestServer(t)

	rec := postNormalize(t, s, "file", "data.txt", []byte("a,b\n"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error == "" || resp.Message == "" {
		t.Errorf("error body = %s, want error and message set", rec.Body.String())
	}
}

func TestHistoryRouteDisabledWithoutRecorder(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing", "/history", 20},
		{"valid", "/history?limit=5", 5},
		{"zero falls back", "/history?limit=0", 20},
		{"negative falls back", "/history?limit=-3", 20},
		{"garbage falls back", "/history?limit=many", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if got := parseIntParam(req, "limit", 20); got != tt.want {
				t.Errorf("parseIntParam() = %d, want %d", got, tt.want)
			}
		})
	}
}
