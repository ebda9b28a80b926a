package enhance

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ultraview/enhancer/internal/log"
	"github.com/ultraview/enhancer/internal/metrics"
	"github.com/ultraview/enhancer/internal/response"
	"github.com/ultraview/enhancer/internal/storage"
	"github.com/ultraview/enhancer/internal/transform"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before the remainder spills to temporary files.
const multipartMemory = 32 << 20

// Form field names of the upload request.
const (
	fileField     = "file"
	settingsField = "settings"
)

// Handler holds the HTTP handlers of the enhancement API.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new Handler. A positive maxUploadBytes caps the
// request body of uploads.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Routes registers the handlers on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/enhance", h.Enhance)
	r.Get(DownloadPath, h.Download)
	r.Get("/api/artifacts/{token}", h.Describe)
}

type enhanceResponse struct {
	DownloadURL string `json:"downloadUrl" example:"/api/download?file=1712345678901_sample.mp4"`
}

// Enhance godoc
//
//	@Summary		Upload and enhance a file
//	@Description	Stores the uploaded file through the configured transformer and returns a relative download URL. The optional settings field carries the enhancement settings as JSON.
//	@Tags			enhance
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"File to enhance"
//	@Param			settings	formData	string	false	"Enhancement settings JSON"
//	@Success		200			{object}	enhanceResponse
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		405			{object}	response.ErrorBody
//	@Failure		413			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/enhance [post]
func (h *Handler) Enhance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.Uploads.WithLabelValues("rejected").Inc()
			response.TooLarge(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		metrics.Uploads.WithLabelValues("failed").Inc()
		log.Errorf("[%s] enhance: parse upload: %v", reqID, err)
		response.InternalError(w, err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	name, open, ok := uploadedFile(r.MultipartForm)
	if !ok {
		metrics.Uploads.WithLabelValues("failed").Inc()
		response.InternalError(w, "No file received")
		return
	}

	var rawSettings string
	if v := r.MultipartForm.Value[settingsField]; len(v) > 0 {
		rawSettings = v[0]
	}
	settings, err := transform.ParseSettings(rawSettings)
	if err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		response.BadRequest(w, err.Error())
		return
	}

	src, err := open()
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		log.Errorf("[%s] enhance: open upload %q: %v", reqID, name, err)
		response.InternalError(w, err.Error())
		return
	}
	defer src.Close()

	art, err := h.svc.Enhance(r.Context(), name, src, settings)
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		log.Errorf("[%s] enhance: %q: %v", reqID, name, err)
		response.InternalError(w, err.Error())
		return
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	log.Infof("[%s] enhance: stored %q (%d bytes, %s)", reqID, art.Token, art.Size, art.Transformer)
	response.OK(w, enhanceResponse{DownloadURL: DownloadURL(art.Token)})
}

// uploadedFile returns the first "file" part of form. A part sent without a
// filename is parsed as a plain value by net/http; it still counts as the
// upload, with an empty original name.
func uploadedFile(form *multipart.Form) (string, func() (io.ReadCloser, error), bool) {
	if files := form.File[fileField]; len(files) > 0 {
		fh := files[0]
		return fh.Filename, func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		}, true
	}
	if values := form.Value[fileField]; len(values) > 0 {
		content := values[0]
		return "", func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		}, true
	}
	return "", nil, false
}

// Download godoc
//
//	@Summary		Download an artifact
//	@Description	Streams the stored artifact as an attachment named after its token.
//	@Tags			enhance
//	@Produce		octet-stream
//	@Param			file	query		string	true	"Artifact token"
//	@Success		200		{file}		binary
//	@Failure		400		{string}	string	"Missing file"
//	@Failure		404		{string}	string	"File not found"
//	@Router			/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("file")
	if token == "" {
		metrics.Downloads.WithLabelValues("bad_request").Inc()
		response.Text(w, http.StatusBadRequest, "Missing file")
		return
	}

	rc, obj, err := h.svc.Open(r.Context(), token)
	if errors.Is(err, storage.ErrNotFound) {
		metrics.Downloads.WithLabelValues("not_found").Inc()
		response.Text(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		metrics.Downloads.WithLabelValues("failed").Inc()
		log.Errorf("[%s] download %q: %v", middleware.GetReqID(r.Context()), token, err)
		response.Text(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, token))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		metrics.Downloads.WithLabelValues("failed").Inc()
		log.Warnf("[%s] download %q interrupted: %v", middleware.GetReqID(r.Context()), token, err)
		return
	}
	metrics.Downloads.WithLabelValues("ok").Inc()
}

// Describe godoc
//
//	@Summary		Describe an artifact
//	@Description	Returns size and creation time of a stored artifact, plus the original name and settings when the ledger is enabled.
//	@Tags			enhance
//	@Produce		json
//	@Param			token	path		string	true	"Artifact token"
//	@Success		200		{object}	Artifact
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/artifacts/{token} [get]
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	art, err := h.svc.Describe(r.Context(), token)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, "File not found")
		return
	}
	if err != nil {
		log.Errorf("[%s] describe %q: %v", middleware.GetReqID(r.Context()), token, err)
		response.InternalError(w, "")
		return
	}
	response.OK(w, art)
}
