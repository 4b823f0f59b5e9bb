package books

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/zeepubs/zeepubs/pkg/errcodes"
	"github.com/zeepubs/zeepubs/pkg/models"
)

type handler struct {
	bookService *Service
	libraryRoot string
}

type listBooksResponse struct {
	Books []*models.Book `json:"books"`
	Total int            `json:"total"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListBooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	}
	if params.Search != "" {
		opts.Search = pointerutil.String(params.Search)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, listBooksResponse{Books: books, Total: total}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		BookCode: pointerutil.String(c.Param("code")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) cover(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		BookCode: pointerutil.String(c.Param("code")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if book.CoverPath == nil || *book.CoverPath == "" {
		return errcodes.NotFound("Cover")
	}
	coverPath := filepath.Join(h.libraryRoot, *book.CoverPath)
	if _, err := os.Stat(coverPath); err != nil {
		return errcodes.NotFound("Cover")
	}

	return errors.WithStack(c.File(coverPath))
}

func (h *handler) download(c echo.Context) error {
	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		BookCode: pointerutil.String(c.Param("code")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	bookPath := filepath.Join(h.libraryRoot, book.Filepath)
	if _, err := os.Stat(bookPath); err != nil {
		return errcodes.NotFound("Book")
	}

	return errors.WithStack(c.Attachment(bookPath, filepath.Base(bookPath)))
}

func (h *handler) updateFileRef(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := UpdateFileRefPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		BookCode: pointerutil.String(c.Param("code")),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	book.FileRef = pointerutil.String(params.FileRef)
	if err := h.bookService.UpdateFileRef(ctx, book); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}
