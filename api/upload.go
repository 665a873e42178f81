/*
upload.go - Photo upload with CDN proxy and local fallback

PURPOSE:
  Accepts a multipart image, forwards it to the configured CDN endpoint
  with the caller's bearer credential, and on any CDN failure falls back
  to local-disk storage served under /uploads/. Only when both tiers
  fail does the request surface an error. The two-tier degrade is an
  explicit policy: losing the CDN must not block recording site photos.

LIMITS:
  10 MiB per file; jpeg/png/webp only (sniffed, not trusted from the
  filename). The CDN call runs under a hard client-side timeout and is
  aborted via context when it expires.

THUMBNAILS:
  Locally stored images get a CatmullRom-scaled thumbnail (longest edge
  320px) written next to the original, for gallery grids.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/woodline/sitebook/ledger"
)

const (
	maxUploadBytes = 10 << 20
	thumbnailEdge  = 320
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Uploader implements the two-tier photo storage policy.
type Uploader struct {
	Endpoint string // CDN upload URL; empty means local-only
	Timeout  time.Duration
	Dir      string // local fallback directory
	BaseURL  string // public prefix for locally stored files
	Client   *http.Client
	Log      *zap.Logger
}

func NewUploader(endpoint string, timeout time.Duration, dir string, log *zap.Logger) *Uploader {
	return &Uploader{
		Endpoint: endpoint,
		Timeout:  timeout,
		Dir:      dir,
		BaseURL:  "/uploads/",
		Client:   &http.Client{},
		Log:      log,
	}
}

// Upload handles POST /api/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := parseImageUpload(r)
	if err != nil {
		h.fail(w, "upload", err)
		return
	}
	category := r.FormValue("category")

	url, err := h.Uploader.Store(r.Context(), data, mimeType, category, r.Header.Get("Authorization"))
	if err != nil {
		h.fail(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: url})
}

// parseImageUpload extracts and sniffs the image field.
func parseImageUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", &ledger.ValidationError{Field: "image", Reason: "expected multipart form data"}
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, "", &ledger.ValidationError{Field: "image", Reason: "image file is required"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, "", &ledger.UpstreamError{Op: "read upload", Err: err}
	}
	if len(data) > maxUploadBytes {
		return nil, "", &ledger.ValidationError{Field: "image", Reason: "file exceeds 10MB limit"}
	}

	mimeType := http.DetectContentType(data)
	if _, ok := allowedImageTypes[mimeType]; !ok {
		return nil, "", &ledger.ValidationError{Field: "image", Reason: "only jpeg, png, and webp images are accepted"}
	}
	return data, mimeType, nil
}

// Store runs the two-tier policy: CDN first, local disk second.
func (u *Uploader) Store(ctx context.Context, data []byte, mimeType, category, authorization string) (string, error) {
	if u.Endpoint != "" {
		url, err := u.forward(ctx, data, mimeType, category, authorization)
		if err == nil {
			return url, nil
		}
		if u.Log != nil {
			u.Log.Warn("cdn upload failed, falling back to local storage", zap.Error(err))
		}
	}
	return u.storeLocal(data, mimeType)
}

// forward proxies the image to the CDN under a hard timeout.
func (u *Uploader) forward(ctx context.Context, data []byte, mimeType, category, authorization string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.Timeout)
	defer cancel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "photo"+allowedImageTypes[mimeType])
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if category != "" {
		if err := mw.WriteField("category", category); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("cdn returned %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		URL       string `json:"url"`
		SecureURL string `json:"secure_url"`
	}
	if err := decodeJSON(resp.Body, &out); err != nil {
		return "", err
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	if out.URL == "" {
		return "", fmt.Errorf("cdn response missing url")
	}
	return out.URL, nil
}

// storeLocal writes the image and its thumbnail to the fallback directory.
func (u *Uploader) storeLocal(data []byte, mimeType string) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", &ledger.UpstreamError{Op: "local storage", Err: err}
	}

	name := uuid.NewString() + allowedImageTypes[mimeType]
	path := filepath.Join(u.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &ledger.UpstreamError{Op: "local storage", Err: err}
	}

	// Thumbnail failure is not fatal; the original is already safe.
	if err := u.writeThumbnail(data, name); err != nil && u.Log != nil {
		u.Log.Warn("thumbnail generation failed", zap.String("file", name), zap.Error(err))
	}

	return u.BaseURL + name, nil
}

func (u *Uploader) writeThumbnail(data []byte, name string) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= thumbnailEdge && h <= thumbnailEdge {
		return nil // already small enough
	}
	if w >= h {
		h = h * thumbnailEdge / w
		w = thumbnailEdge
	} else {
		w = w * thumbnailEdge / h
		h = thumbnailEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	out, err := os.Create(filepath.Join(u.Dir, "thumb_"+name+".jpg"))
	if err != nil {
		return err
	}
	defer out.Close()
	return jpeg.Encode(out, dst, &jpeg.Options{Quality: 80})
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(v)
}
