package ingest

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeepubs/zeepubs/internal/testgen"
	"github.com/zeepubs/zeepubs/pkg/errcodes"
)

func newUploadRequest(t *testing.T, filename string, content []byte, fileRef string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if fileRef != "" {
		require.NoError(t, writer.WriteField("file_ref", fileRef))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/books", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestUploadHandler(t *testing.T) {
	pipeline, _, _ := setupPipeline(t, &stubResolver{})
	h := &handler{pipeline: pipeline, uploadDir: t.TempDir()}
	e := echo.New()

	epubPath := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		Title:   "Dune",
		Creator: "Frank Herbert",
	})
	content, err := os.ReadFile(epubPath)
	require.NoError(t, err)

	req, rec := newUploadRequest(t, "book.epub", content, "tg-ref-9")
	c := e.NewContext(req, rec)

	require.NoError(t, h.upload(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := uploadResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Duplicate)
	require.NotNil(t, resp.Book)
	assert.Equal(t, "dune", resp.Book.Title)
	require.NotNil(t, resp.Book.FileRef)
	assert.Equal(t, "tg-ref-9", *resp.Book.FileRef)
}

func TestUploadHandlerDuplicate(t *testing.T) {
	pipeline, _, _ := setupPipeline(t, &stubResolver{})
	h := &handler{pipeline: pipeline, uploadDir: t.TempDir()}
	e := echo.New()

	epubPath := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		Title:   "Dune",
		Creator: "Frank Herbert",
	})
	content, err := os.ReadFile(epubPath)
	require.NoError(t, err)

	req, rec := newUploadRequest(t, "book.epub", content, "")
	require.NoError(t, h.upload(e.NewContext(req, rec)))

	req, rec = newUploadRequest(t, "book.epub", content, "")
	require.NoError(t, h.upload(e.NewContext(req, rec)))

	resp := uploadResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Duplicate)
	assert.Nil(t, resp.Book)
}

func TestUploadHandlerRejectsNonEPUB(t *testing.T) {
	pipeline, _, _ := setupPipeline(t, &stubResolver{})
	uploadDir := t.TempDir()
	h := &handler{pipeline: pipeline, uploadDir: uploadDir}
	e := echo.New()

	req, rec := newUploadRequest(t, "malware.pdf", []byte("%PDF-1.4 not a book"), "")
	err := h.upload(e.NewContext(req, rec))
	assert.ErrorIs(t, err, errcodes.UnsupportedMediaType())

	// The rejected upload doesn't linger in the upload directory.
	entries, readErr := os.ReadDir(uploadDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestUploadHandlerMissingFile(t *testing.T) {
	pipeline, _, _ := setupPipeline(t, &stubResolver{})
	h := &handler{pipeline: pipeline, uploadDir: t.TempDir()}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEMultipartForm)
	err := h.upload(e.NewContext(req, httptest.NewRecorder()))
	assert.ErrorIs(t, err, errcodes.EmptyRequestBody())
}
