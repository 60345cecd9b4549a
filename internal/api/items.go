package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/service"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temp files.
const multipartMemory = 1 << 20

// ItemsHandler handles item submission, listing and found reports.
type ItemsHandler struct {
	Service        *service.Service
	MaxUploadBytes int64
}

type uploadResponse struct {
	Success bool `json:"success"`
	*model.Item
}

type foundReportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

type verifyRequest struct {
	SecretDetail string `json:"secretDetail"`
}

// Upload handles POST /upload.
func (h *ItemsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	image, closeImage := formFile(r, "image")
	defer closeImage()

	item, err := h.Service.Submit(r.Context(), service.Submission{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Status:       r.FormValue("status"),
		Location:     r.FormValue("location"),
		SecretDetail: r.FormValue("secretDetail"),
		Image:        image,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, uploadResponse{Success: true, Item: item})
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// FoundReport handles POST /found-report.
func (h *ItemsHandler) FoundReport(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	image, closeImage := formFile(r, "foundImage")
	defer closeImage()

	report, err := h.Service.ReportFound(r.Context(), service.FoundSubmission{
		ItemID: r.FormValue("itemId"),
		Phone:  r.FormValue("phone"),
		Image:  image,
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, foundReportResponse{
		Success: true,
		Message: "Found report received",
		ID:      report.ID,
	})
}

// Verify handles POST /items/{id}/verify.
func (h *ItemsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req verifyRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		req.SecretDetail = r.FormValue("secretDetail")
	}

	ok, err := h.Service.VerifySecret(r.Context(), id, req.SecretDetail)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true, "verified": ok})
}

// parseForm limits the body size and parses a multipart form. A body that
// is not multipart is left to field validation. It reports whether the
// handler should continue.
func (h *ItemsHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, http.StatusRequestEntityTooLarge, "File too large")
		return false
	}
	jsonError(w, http.StatusBadRequest, "Invalid multipart form")
	return false
}

// formFile returns the named file part, or nil if none was attached, and a
// func that closes it.
func formFile(r *http.Request, field string) (io.Reader, func()) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, func() {}
	}
	return file, func() { closeFile(file) }
}

func closeFile(f multipart.File) {
	_ = f.Close()
}
