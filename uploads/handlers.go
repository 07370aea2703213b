// Package uploads, as part of the upload module.
// This file is the controller layer: it reads the multipart form, hands the
// file to the service, and shapes the responses.
package uploads

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/auth"
)

// UploadResponse is the body returned after a successful upload.
type UploadResponse struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}

// PresignResponse carries a freshly minted retrieval URL.
type PresignResponse struct {
	URL string `json:"url"`
}

// Handlers wraps the S3Service to provide HTTP handlers.
type Handlers struct {
	service *S3Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *S3Service) *Handlers {
	return &Handlers{service: service}
}

// HandleUpload godoc
// @Summary Upload a file
// @Description Validates and stores a file, returning its key and a time-limited URL.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} uploads.UploadResponse "File stored"
// @Failure 400 {object} apperror.ErrorResponse "File rejected by validation"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 502 {object} apperror.ErrorResponse "Storage unavailable"
// @Router /upload/file [post]
func (h *Handlers) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			auth.WriteError(w, r, apperror.NewValidationError(msgNoFile, err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("failed to read file", err))
			return
		}

		result, err := h.service.UploadFile(r.Context(), UploadInput{
			Data:         data,
			Size:         header.Size,
			MimeType:     header.Header.Get("Content-Type"),
			OriginalName: header.Filename,
		})
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, UploadResponse{
			Message: "File uploaded successfully",
			FileURL: result.URL,
			Key:     result.Key,
		})
	}
}

// HandlePresign godoc
// @Summary Mint a retrieval URL
// @Description Returns a presigned URL for an existing object. The TTL is capped at 7 days.
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param key path string true "Object key"
// @Param expires query int false "URL lifetime in seconds (default 3600)"
// @Success 200 {object} uploads.PresignResponse "Presigned URL"
// @Failure 404 {object} apperror.ErrorResponse "Object not found"
// @Failure 502 {object} apperror.ErrorResponse "Storage unavailable"
// @Router /upload/presign/{key} [get]
func (h *Handlers) HandlePresign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		if key == "" {
			auth.WriteError(w, r, apperror.NewBadRequestError("object key is required", nil))
			return
		}

		ttl := int64(3600)
		if raw := r.URL.Query().Get("expires"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				auth.WriteError(w, r, apperror.NewBadRequestError("expires must be a positive integer", err))
				return
			}
			ttl = parsed
		}
		// S3 refuses presigned URLs that outlive 7 days.
		if ttl > 7*24*3600 {
			ttl = 7 * 24 * 3600
		}

		url, err := h.service.PresignedURL(r.Context(), key, ttl)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, PresignResponse{URL: url})
	}
}

// HandleDelete godoc
// @Summary Delete a stored file
// @Description Removes an object. Deleting an absent key succeeds.
// @Tags Uploads
// @Security BearerAuth
// @Param key path string true "Object key"
// @Success 204 "Object deleted"
// @Failure 502 {object} apperror.ErrorResponse "Storage unavailable"
// @Router /upload/{key} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		if key == "" {
			auth.WriteError(w, r, apperror.NewBadRequestError("object key is required", nil))
			return
		}

		if err := h.service.DeleteFile(r.Context(), key); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
