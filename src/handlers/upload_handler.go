package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/username/gstfolio/src/config"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/security/validation"
	"github.com/username/gstfolio/src/services"
	"github.com/username/gstfolio/src/utils"
)

type UploadHandler struct {
	uploadService services.UploadService
	cfg           *config.AppConfig
}

func NewUploadHandler(service services.UploadService, cfg *config.AppConfig) *UploadHandler {
	return &UploadHandler{
		uploadService: service,
		cfg:           cfg,
	}
}

// HandleUpload accepts one or more "file" fields. A single "bank" value
// applies to every file; one "bank" value per file pairs them in order.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context())

	maxRequest := h.cfg.MaxUploadSizeBytes * int64(h.cfg.MaxFilesPerUpload)
	r.Body = http.MaxBytesReader(w, r.Body, maxRequest)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSizeBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", maxRequest)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %s)", humanize.Bytes(uint64(maxRequest))), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		utils.SendJSONError(w, "No files received. Ensure the 'file' field is used.", http.StatusBadRequest)
		return
	}
	if len(headers) > h.cfg.MaxFilesPerUpload {
		utils.SendJSONError(w, fmt.Sprintf("Too many files: %d, at most %d per upload", len(headers), h.cfg.MaxFilesPerUpload), http.StatusBadRequest)
		return
	}

	banks := r.MultipartForm.Value["bank"]
	files := make([]models.FileInput, 0, len(headers))
	for i, fh := range headers {
		bank := h.bankFor(banks, i)
		if err := validation.ValidateFileExtension(fh.Filename); err != nil {
			// The pipeline reports it as this file's failure; siblings still run.
			log.Info("Passing unsupported file to the pipeline", "filename", fh.Filename)
			files = append(files, models.FileInput{Name: fh.Filename, Bank: bank})
			continue
		}
		data, err := h.readValidated(fh)
		if err != nil {
			log.Warn("Uploaded file rejected", "filename", fh.Filename, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		files = append(files, models.FileInput{Name: fh.Filename, Bank: bank, Data: data})
	}

	log.Info("Processing upload request", "files", len(files))
	result, err := h.uploadService.ProcessUpload(r.Context(), key, files)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) && result != nil {
			log.Warn("Upload processing failed for every file", "error", err)
			utils.WriteJSON(w, http.StatusBadRequest, result)
			return
		}
		writeServiceError(w, r, err, "process upload")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (h *UploadHandler) bankFor(banks []string, i int) string {
	switch {
	case len(banks) > 1 && i < len(banks):
		return strings.TrimSpace(banks[i])
	case len(banks) == 1 && strings.TrimSpace(banks[0]) != "":
		return strings.TrimSpace(banks[0])
	}
	return h.cfg.DefaultBank
}

func (h *UploadHandler) readValidated(fh *multipart.FileHeader) ([]byte, error) {
	if err := validation.ValidateFileSize(fh.Filename, fh.Size, h.cfg.MaxUploadSizeBytes); err != nil {
		return nil, err
	}
	if err := validation.ValidateClientContentType(fh.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
	}
	defer file.Close()

	detected, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	logger.L.Debug("File content validated by magic bytes", "filename", fh.Filename, "detectedType", detected)

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", fh.Filename, err)
	}
	return data, nil
}
