package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Uploader is the opaque image-hosting collaborator: it turns a local
// image file into a publicly addressable URL. Any error means the send
// must be aborted before a message is committed.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// HTTPUploader posts the image as multipart form data and expects a
// JSON body carrying the hosted URL.
type HTTPUploader struct {
	UploadURL string
	APIKey    string
	HTTP      *http.Client
}

func NewHTTPUploader(uploadURL, apiKey string) *HTTPUploader {
	return &HTTPUploader{
		UploadURL: uploadURL,
		APIKey:    apiKey,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(u.UploadURL) == "" {
		return "", errors.New("upload url not configured")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, u.UploadURL, &body)
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", mw.FormDataContentType())
	if u.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+u.APIKey)
	}

	resp, err := u.HTTP.Do(request)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload error: status %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed struct {
		URL  string `json:"url"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("malformed upload response: %w", err)
	}
	url := parsed.URL
	if url == "" {
		url = parsed.Data.URL
	}
	if url == "" {
		return "", errors.New("upload response missing url")
	}
	return url, nil
}
