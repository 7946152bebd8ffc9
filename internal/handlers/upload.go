package handlers

import (
	"errors"
	"net/http"
	"os"

	"craftfolio.dev/internal/services"
)

// uploadField is the multipart form field carrying the image
const uploadField = "profilePicture"

// multipartOverhead leaves room for boundaries and headers on top of the file itself
const multipartOverhead = 1 << 20

// UploadHandler accepts image uploads
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(us *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: us}
}

// Upload handles POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadService.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, http.StatusBadRequest, "File is too large.")
		default:
			respondError(w, http.StatusBadRequest, "No file uploaded.")
		}
		return
	}
	defer file.Close()

	path, err := h.uploadService.Save(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		respondServiceError(w, r, err, "Failed to upload file.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"filePath": path})
}

// fileOnlyFS serves regular files and reports directories as missing so no listing is rendered
type fileOnlyFS struct {
	http.FileSystem
}

func (fs fileOnlyFS) Open(name string) (http.File, error) {
	f, err := fs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
