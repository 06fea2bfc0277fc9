package imagekit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-vaultmedia/pkg/interfaces"
)

func TestUploadSuccess(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF, 0x0D, 0x0A}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "private_key" || pass != "" {
			t.Errorf("unexpected basic auth %q/%q ok=%v", user, pass, ok)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("fileName"); got != "banner.png" {
			t.Errorf("fileName = %q", got)
		}
		if got := r.FormValue("folder"); got != "vault" {
			t.Errorf("folder = %q", got)
		}
		if got := r.FormValue("tags"); got != "blog,banner" {
			t.Errorf("tags = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if !bytes.Equal(data, payload) {
			t.Errorf("payload corrupted across the wire: %v", data)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"fileId":       "f-1",
			"name":         "banner.png",
			"url":          "https://ik.imagekit.io/demo/vault/banner.png",
			"thumbnailUrl": "https://ik.imagekit.io/demo/tr:n-thumb/vault/banner.png",
			"filePath":     "/vault/banner.png",
			"fileType":     "image",
			"width":        1200,
			"height":       630,
			"size":         8,
			"tags":         []string{"blog", "banner"},
		})
	}))
	defer srv.Close()

	c := New(Config{PrivateKey: "private_key", UploadEndpoint: srv.URL})
	result, err := c.Upload(context.Background(), interfaces.UploadRequest{
		FileName: "banner.png",
		Folder:   "vault",
		Tags:     []string{"blog", "banner"},
		Data:     payload,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.FileID != "f-1" || result.RemoteURL != "https://ik.imagekit.io/demo/vault/banner.png" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Width != 1200 || result.Size != 8 {
		t.Fatalf("unexpected dimensions %+v", result)
	}
}

func TestUploadValidation(t *testing.T) {
	c := New(Config{PrivateKey: "k", UploadEndpoint: "https://upload.example.com"})

	if _, err := c.Upload(context.Background(), interfaces.UploadRequest{Data: []byte{1}}); !errors.Is(err, ErrMissingFileName) {
		t.Fatalf("expected ErrMissingFileName, got %v", err)
	}
	if _, err := c.Upload(context.Background(), interfaces.UploadRequest{FileName: "x.png"}); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}

	anon := New(Config{UploadEndpoint: "https://upload.example.com"})
	if _, err := anon.Upload(context.Background(), interfaces.UploadRequest{FileName: "x.png", Data: []byte{1}}); !errors.Is(err, ErrMissingPrivateKey) {
		t.Fatalf("expected ErrMissingPrivateKey, got %v", err)
	}
}

func TestUploadServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid key"}`))
	}))
	defer srv.Close()

	c := New(Config{PrivateKey: "bad", UploadEndpoint: srv.URL})
	_, err := c.Upload(context.Background(), interfaces.UploadRequest{FileName: "x.png", Data: []byte{1}})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Status != http.StatusForbidden {
		t.Fatalf("unexpected status %d", svcErr.Status)
	}
}
