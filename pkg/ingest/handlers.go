package ingest

import (
	"io"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/zeepubs/zeepubs/pkg/errcodes"
	"github.com/zeepubs/zeepubs/pkg/models"
)

type handler struct {
	pipeline  *Pipeline
	uploadDir string
}

type uploadResponse struct {
	Duplicate bool         `json:"duplicate"`
	Book      *models.Book `json:"book,omitempty"`
}

func (h *handler) upload(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errcodes.EmptyRequestBody()
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return errors.WithStack(err)
	}
	tmp, err := os.CreateTemp(h.uploadDir, "upload-*.epub")
	if err != nil {
		return errors.WithStack(err)
	}
	tmpPath := tmp.Name()
	_, err = io.Copy(tmp, src)
	tmp.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return errors.WithStack(err)
	}

	// Sniff the actual content; the transport's filename and declared
	// content type are not trusted.
	mtype, err := mimetype.DetectFile(tmpPath)
	if err != nil || !mtype.Is("application/epub+zip") {
		_ = os.Remove(tmpPath)
		return errcodes.UnsupportedMediaType()
	}

	result, err := h.pipeline.Ingest(ctx, tmpPath, c.FormValue("file_ref"))
	if err != nil {
		_ = os.Remove(tmpPath)
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, uploadResponse{
		Duplicate: result.Duplicate,
		Book:      result.Book,
	}))
}
