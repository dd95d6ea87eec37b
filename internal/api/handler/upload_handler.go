package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/metrics"
)

const (
	fieldProfileImage = "profileImage"
	fieldDocuments    = "documents"

	maxUploadMemory = 32 << 20
	maxImageBytes   = 5 << 20
	maxDocumentSize = 10 << 20
	maxDocuments    = 10
)

// UploadHandler accepts multipart uploads and reports what was received.
// File contents are discarded.
type UploadHandler struct {
	metrics *metrics.Backend
}

func NewUploadHandler(m *metrics.Backend) *UploadHandler {
	return &UploadHandler{metrics: m}
}

type uploadedFile struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func (h *UploadHandler) ProfileImage(c echo.Context) error {
	files, err := formFiles(c, fieldProfileImage)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "exactly one profileImage file is required")
	}

	info, err := inspect(fieldProfileImage, files[0], maxImageBytes)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(info.ContentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "profileImage must be an image")
	}
	h.metrics.Uploaded(fieldProfileImage, 1)
	return respond(c, http.StatusOK, "Profile image uploaded successfully", info)
}

func (h *UploadHandler) Documents(c echo.Context) error {
	files, err := formFiles(c, fieldDocuments)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one documents file is required")
	}
	if len(files) > maxDocuments {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("at most %d documents per upload", maxDocuments))
	}

	out := make([]uploadedFile, 0, len(files))
	for _, fh := range files {
		info, err := inspect(fieldDocuments, fh, maxDocumentSize)
		if err != nil {
			return err
		}
		out = append(out, info)
	}
	h.metrics.Uploaded(fieldDocuments, len(out))
	return respond(c, http.StatusOK, "Documents uploaded successfully", out)
}

func formFiles(c echo.Context, field string) ([]*multipart.FileHeader, error) {
	if err := c.Request().ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	form := c.Request().MultipartForm
	if form == nil {
		return nil, nil
	}
	return form.File[field], nil
}

// inspect sniffs the content type of an uploaded file and enforces maxSize.
func inspect(field string, fh *multipart.FileHeader, maxSize int64) (uploadedFile, error) {
	if fh.Size > maxSize {
		return uploadedFile{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("%s exceeds %d bytes", fh.Filename, maxSize))
	}
	f, err := fh.Open()
	if err != nil {
		return uploadedFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(io.LimitReader(f, 3072))
	if err != nil {
		return uploadedFile{}, fmt.Errorf("detect type of %s: %w", fh.Filename, err)
	}
	return uploadedFile{Field: field, Filename: fh.Filename, Size: fh.Size, ContentType: mt.String()}, nil
}
