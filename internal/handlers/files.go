package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/docdrop-io/apiserver/internal/services"
	"github.com/docdrop-io/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBytes     = 64 << 20
	maxMultipartMemory = 32 << 20
	formFieldFile      = "file"
)

// FileHandler provides HTTP handlers for uploads, listing, and the
// scoped download flow.
type FileHandler struct {
	files *services.FileService
}

// NewFileHandler constructs a handler with the provided service.
func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// FileRouter registers file routes on the given router. Uploads require
// the ops role; listing and download-link issuance require a verified
// client. Token redemption is public: the scoped token is the
// credential.
func FileRouter(r chi.Router, files *services.FileService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewFileHandler(files)

	requireOps := Require(services.IsOps, "ops access required")
	requireVerifiedClient := Require(services.IsVerifiedClient, "verified client access required")

	r.With(authMiddleware, requireOps).Post("/upload-file", handler.Upload)
	r.With(authMiddleware, requireVerifiedClient).Get("/files", handler.ListFiles)
	r.With(authMiddleware, requireVerifiedClient).Get("/download-file/{fileID}", handler.GrantDownload)
	r.Get("/download-file-secure/{token}", handler.Download)
}

// Upload accepts a multipart office document from an ops user.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	record, err := h.files.Upload(r.Context(), user, header.Filename, file, header.Size)
	if err != nil {
		if errors.Is(err, services.ErrInvalidFileType) {
			writeError(w, http.StatusBadRequest, "invalid file type")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		FileID:  record.ID,
		Message: "file uploaded successfully",
	})
}

// ListFiles returns every registered file record.
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.files.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GrantDownload issues a short-lived single-file download link.
func (h *FileHandler) GrantDownload(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID := chi.URLParam(r, "fileID")
	link, err := h.files.GrantDownload(r.Context(), user, fileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create download link")
		return
	}

	writeJSON(w, http.StatusOK, DownloadLinkResponse{
		DownloadLink: link,
		Message:      "success",
	})
}

// Download redeems a scoped token and streams the file bytes back with
// the original filename and inferred media type.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	tokenString := chi.URLParam(r, "token")

	record, body, err := h.files.Redeem(r.Context(), tokenString)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			writeError(w, http.StatusForbidden, "invalid or expired token")
		case errors.Is(err, services.ErrInvalidAccess):
			writeError(w, http.StatusForbidden, "invalid access")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "file not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to download file")
		}
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", services.ContentTypeFor(record.Filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

type UploadResponse struct {
	FileID  string `json:"file_id"`
	Message string `json:"message"`
}

type DownloadLinkResponse struct {
	DownloadLink string `json:"download-link"`
	Message      string `json:"message"`
}
