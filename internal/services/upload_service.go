package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// Upload limits applied when the caller leaves them unset
const (
	DefaultMaxUploadBytes = 5 << 20
	DefaultMaxImageSide   = 2048
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadService stores images posted by the admin UI
type UploadService struct {
	dir      string
	maxBytes int64
	maxSide  int
	now      func() time.Time
}

// NewUploadService creates an UploadService writing into dir
func NewUploadService(dir string, maxBytes int64, maxSide int) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if maxSide <= 0 {
		maxSide = DefaultMaxImageSide
	}
	return &UploadService{dir: dir, maxBytes: maxBytes, maxSide: maxSide, now: time.Now}
}

// Dir returns the directory uploads are written to
func (s *UploadService) Dir() string {
	return s.dir
}

// MaxBytes returns the largest accepted upload
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates an uploaded image, stores it and returns its public path
func (s *UploadService) Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return "", invalid("Only image files are allowed.")
	}
	if size > s.maxBytes {
		return "", invalid(fmt.Sprintf("File is too large. Maximum size is %d bytes.", s.maxBytes))
	}

	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return "", invalid(fmt.Sprintf("File is too large. Maximum size is %d bytes.", s.maxBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", invalid("Uploaded file is not a valid image.")
	}
	ext, ok := storedExt(format, ext)
	if !ok {
		return "", invalid("Only image files are allowed.")
	}

	data := raw
	if resized, ok := s.downscale(img, format); ok {
		var buf bytes.Buffer
		imgFormat, _ := imaging.FormatFromExtension(ext)
		if err := imaging.Encode(&buf, resized, imgFormat, imaging.JPEGQuality(85)); err != nil {
			slog.WarnContext(ctx, "failed to re-encode resized upload, keeping original", "file", filename, "error", err)
		} else {
			data = buf.Bytes()
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	slog.InfoContext(ctx, "stored upload", "file", name, "format", format, "bytes", len(data))
	return "/uploads/" + name, nil
}

// storedExt picks the file extension from the decoded format rather than the client's filename.
// A JPEG keeps whichever of .jpg and .jpeg it was uploaded as.
func storedExt(format, claimed string) (string, bool) {
	switch format {
	case "jpeg":
		if claimed == ".jpeg" {
			return ".jpeg", true
		}
		return ".jpg", true
	case "png", "gif", "webp":
		return "." + format, true
	default:
		return "", false
	}
}

// downscale shrinks JPEG and PNG images whose longest side exceeds maxSide
func (s *UploadService) downscale(img image.Image, format string) (image.Image, bool) {
	if format != "jpeg" && format != "png" {
		return nil, false
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= s.maxSide && h <= s.maxSide {
		return nil, false
	}
	if w >= h {
		return imaging.Resize(img, s.maxSide, 0, imaging.Lanczos), true
	}
	return imaging.Resize(img, 0, s.maxSide, imaging.Lanczos), true
}
