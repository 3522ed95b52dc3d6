package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cat.png")
	if err := os.WriteFile(path, []byte("not really a png"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func TestHTTPUploaderReturnsHostedURL(t *testing.T) {
	var gotField string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, hdr, err := r.FormFile("image"); err == nil {
			gotField = hdr.Filename
		}
		_, _ = w.Write([]byte(`{"url":"https://img.example.com/hosted/cat.png"}`))
	}))
	defer srv.Close()

	up := NewHTTPUploader(srv.URL, "key")
	url, err := up.Upload(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://img.example.com/hosted/cat.png" {
		t.Fatalf("url mismatch: %q", url)
	}
	if gotField != "cat.png" {
		t.Fatalf("expected image form file, got %q", gotField)
	}
}

func TestHTTPUploaderNestedDataURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"url":"https://img.example.com/d.png"}}`))
	}))
	defer srv.Close()

	up := NewHTTPUploader(srv.URL, "")
	url, err := up.Upload(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://img.example.com/d.png" {
		t.Fatalf("url mismatch: %q", url)
	}
}

func TestHTTPUploaderSurfacesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	up := NewHTTPUploader(srv.URL, "")
	if _, err := up.Upload(context.Background(), writeTestImage(t)); err == nil {
		t.Fatalf("expected error on bad status")
	}

	missing := NewHTTPUploader(srv.URL, "")
	if _, err := missing.Upload(context.Background(), "/no/such/file.png"); err == nil || !strings.Contains(err.Error(), "open image") {
		t.Fatalf("expected open error, got %v", err)
	}

	unconfigured := NewHTTPUploader("", "")
	if _, err := unconfigured.Upload(context.Background(), writeTestImage(t)); err == nil {
		t.Fatalf("expected error when upload url unset")
	}
}

func TestHTTPUploaderRejectsResponseWithoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	up := NewHTTPUploader(srv.URL, "")
	if _, err := up.Upload(context.Background(), writeTestImage(t)); err == nil {
		t.Fatalf("expected missing url error")
	}
}
